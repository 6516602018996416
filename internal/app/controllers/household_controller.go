package controllers

import (
	"strconv"

	"rwportal-http-service/internal/app/middleware"
	"rwportal-http-service/internal/domain/models"
	"rwportal-http-service/internal/domain/services"
	"rwportal-http-service/internal/domain/services/container"
	"rwportal-http-service/internal/error/code"
	"rwportal-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// HouseholdController 处理RT与户号相关的请求
type HouseholdController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHouseholdController 创建户号控制器
func NewHouseholdController(ctx *gin.Context, container *container.ServiceContainer) *HouseholdController {
	return &HouseholdController{
		Ctx:       ctx,
		Container: container,
	}
}

// RTRequest 创建RT请求
type RTRequest struct {
	Number string `json:"number" binding:"required" example:"003"`
	Name   string `json:"name" example:"RT 003"`
}

// HandleHouseholdFunc 返回一个处理户号请求的Gin处理函数
func HandleHouseholdFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHouseholdController(ctx, container)
		switch method {
		case "getRTs":
			controller.GetRTs()
		case "createRT":
			controller.CreateRT()
		case "getHouseholds":
			controller.GetHouseholds()
		case "getHousehold":
			controller.GetHousehold()
		case "createHousehold":
			controller.CreateHousehold()
		case "updateHousehold":
			controller.UpdateHousehold()
		case "deleteHousehold":
			controller.DeleteHousehold()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *HouseholdController) service() services.InterfaceHouseholdService {
	return c.Container.GetService("household").(services.InterfaceHouseholdService)
}

// GetRTs 获取RT列表
// @Summary      RT列表
// @Tags         Household
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=[]models.RT}
// @Failure      401  {object}  ErrorResponse
// @Router       /rts [get]
func (c *HouseholdController) GetRTs() {
	rts, err := c.service().GetAllRTs(c.Ctx.Request.Context())
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, rts)
}

// CreateRT 创建RT
// @Summary      创建RT
// @Tags         Household
// @Accept       json
// @Produce      json
// @Param        request body RTRequest true "RT信息"
// @Security     BearerAuth
// @Success      201  {object}  SuccessResponse{data=models.RT}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /rts [post]
func (c *HouseholdController) CreateRT() {
	var req RTRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}
	rt := &models.RT{Number: req.Number, Name: req.Name}
	if err := c.service().CreateRT(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), rt); err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	middleware.PurgeCache()
	response.Created(c.Ctx, rt)
}

// GetHouseholds 获取户号列表
// @Summary      户号列表
// @Tags         Household
// @Produce      json
// @Param        rt_id query int false "RT ID"
// @Param        zone query string false "区域"
// @Param        occupied query bool false "是否居住"
// @Param        page query int false "页码，默认为1"
// @Param        page_size query int false "每页条数，默认为20"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /households [get]
func (c *HouseholdController) GetHouseholds() {
	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	q := services.HouseholdQuery{
		Zone:     c.Ctx.Query("zone"),
		Page:     page,
		PageSize: pageSize,
	}
	if raw := c.Ctx.Query("rt_id"); raw != "" {
		rtID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.ParamError(c.Ctx, "无效的 rt_id")
			return
		}
		q.RTID = uint(rtID)
	}
	if raw := c.Ctx.Query("occupied"); raw != "" {
		occupied, err := strconv.ParseBool(raw)
		if err != nil {
			response.ParamError(c.Ctx, "无效的 occupied")
			return
		}
		q.Occupied = &occupied
	}

	households, total, err := c.service().GetAllHouseholds(c.Ctx.Request.Context(), q)
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, gin.H{
		"items":      households,
		"pagination": models.NewPaginationResult(total, page, pageSize),
	})
}

// GetHousehold 获取户号详情
// @Summary      户号详情
// @Tags         Household
// @Produce      json
// @Param        id path int true "户号ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.Household}
// @Failure      404  {object}  ErrorResponse
// @Router       /households/{id} [get]
func (c *HouseholdController) GetHousehold() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	household, err := c.service().GetHouseholdByID(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, household)
}

// CreateHousehold 创建户号
// @Summary      创建户号
// @Tags         Household
// @Accept       json
// @Produce      json
// @Param        request body services.HouseholdInput true "户号信息"
// @Security     BearerAuth
// @Success      201  {object}  SuccessResponse{data=models.Household}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /households [post]
func (c *HouseholdController) CreateHousehold() {
	var req services.HouseholdInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}
	household, err := c.service().CreateHousehold(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), req)
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	middleware.PurgeCache()
	response.Created(c.Ctx, household)
}

// UpdateHousehold 更新户号
// @Summary      更新户号
// @Tags         Household
// @Accept       json
// @Produce      json
// @Param        id path int true "户号ID"
// @Param        request body services.HouseholdInput true "户号信息"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.Household}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /households/{id} [put]
func (c *HouseholdController) UpdateHousehold() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	var req services.HouseholdInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}
	household, err := c.service().UpdateHousehold(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), id, req)
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	middleware.PurgeCache()
	response.Success(c.Ctx, household)
}

// DeleteHousehold 删除户号
// @Summary      删除户号
// @Description  户号下仍有居民或账单时拒绝删除
// @Tags         Household
// @Produce      json
// @Param        id path int true "户号ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /households/{id} [delete]
func (c *HouseholdController) DeleteHousehold() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	if err := c.service().DeleteHousehold(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), id); err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	middleware.PurgeCache()
	response.Success(c.Ctx, nil)
}
