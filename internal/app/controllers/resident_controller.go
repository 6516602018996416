package controllers

import (
	"rwportal-http-service/internal/app/middleware"
	"rwportal-http-service/internal/domain/services"
	"rwportal-http-service/internal/domain/services/container"
	"rwportal-http-service/internal/error/code"
	"rwportal-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// ResidentController 处理居民相关的请求
type ResidentController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewResidentController 创建一个新的居民控制器
func NewResidentController(ctx *gin.Context, container *container.ServiceContainer) *ResidentController {
	return &ResidentController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleResidentFunc 返回一个处理居民请求的Gin处理函数
func HandleResidentFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewResidentController(ctx, container)
		switch method {
		case "getHouseholdResidents":
			controller.GetHouseholdResidents()
		case "createResident":
			controller.CreateResident()
		case "deleteResident":
			controller.DeleteResident()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *ResidentController) service() services.InterfaceResidentService {
	return c.Container.GetService("resident").(services.InterfaceResidentService)
}

// GetHouseholdResidents 获取一户的居民
// @Summary      户内居民列表
// @Tags         Resident
// @Produce      json
// @Param        id path int true "户号ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=[]models.Resident}
// @Failure      404  {object}  ErrorResponse
// @Router       /households/{id}/residents [get]
func (c *ResidentController) GetHouseholdResidents() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	residents, err := c.service().GetResidentsByHousehold(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, residents)
}

// CreateResident 新增居民
// @Summary      新增居民
// @Description  is_head 为 true 时取代原户主
// @Tags         Resident
// @Accept       json
// @Produce      json
// @Param        id path int true "户号ID"
// @Param        request body services.ResidentInput true "居民信息"
// @Security     BearerAuth
// @Success      201  {object}  SuccessResponse{data=models.Resident}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /households/{id}/residents [post]
func (c *ResidentController) CreateResident() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	var req services.ResidentInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}
	resident, err := c.service().CreateResident(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), id, req)
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	middleware.PurgeCache()
	response.Created(c.Ctx, resident)
}

// DeleteResident 删除居民
// @Summary      删除居民
// @Tags         Resident
// @Produce      json
// @Param        id path int true "居民ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /residents/{id} [delete]
func (c *ResidentController) DeleteResident() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	if err := c.service().DeleteResident(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), id); err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	middleware.PurgeCache()
	response.Success(c.Ctx, nil)
}
