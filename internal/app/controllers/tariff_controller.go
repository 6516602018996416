package controllers

import (
	"rwportal-http-service/internal/app/middleware"
	"rwportal-http-service/internal/domain/dues"
	"rwportal-http-service/internal/domain/services"
	"rwportal-http-service/internal/domain/services/container"
	"rwportal-http-service/internal/error/code"
	"rwportal-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// TariffController 处理费率规则请求
type TariffController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewTariffController 创建费率控制器
func NewTariffController(ctx *gin.Context, container *container.ServiceContainer) *TariffController {
	return &TariffController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleTariffFunc 返回一个处理费率请求的Gin处理函数
func HandleTariffFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewTariffController(ctx, container)
		switch method {
		case "getTariffs":
			controller.GetTariffs()
		case "createTariff":
			controller.CreateTariff()
		case "deleteTariff":
			controller.DeleteTariff()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *TariffController) service() services.InterfaceTariffService {
	return c.Container.GetService("tariff").(services.InterfaceTariffService)
}

// GetTariffs 费率规则列表
// @Summary      费率规则列表
// @Tags         Tariff
// @Produce      json
// @Param        period query string false "只返回该账期 YYYY-MM 生效的规则"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=[]models.TariffRule}
// @Failure      400  {object}  ErrorResponse
// @Router       /tariffs [get]
func (c *TariffController) GetTariffs() {
	var activeIn *dues.Period
	if raw := c.Ctx.Query("period"); raw != "" {
		p, err := dues.ParsePeriod(raw)
		if err != nil {
			response.FailWithMessage(c.Ctx, code.ErrInvalidPeriod, err.Error(), nil)
			return
		}
		activeIn = &p
	}
	rules, err := c.service().GetAllTariffs(c.Ctx.Request.Context(), activeIn)
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrTariffInvalid, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, rules)
}

// CreateTariff 新增费率规则
// @Summary      新增费率规则
// @Description  zone_scope 为区域名或 ALL，unoccupied_rate 为空时空置户按居住费率收取
// @Tags         Tariff
// @Accept       json
// @Produce      json
// @Param        request body services.TariffInput true "费率规则"
// @Security     BearerAuth
// @Success      201  {object}  SuccessResponse{data=models.TariffRule}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /tariffs [post]
func (c *TariffController) CreateTariff() {
	var req services.TariffInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}
	rule, err := c.service().CreateTariff(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), req)
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrTariffInvalid, code.ErrDatabase)
		return
	}
	middleware.PurgeCache()
	response.Created(c.Ctx, rule)
}

// DeleteTariff 删除费率规则
// @Summary      删除费率规则
// @Tags         Tariff
// @Produce      json
// @Param        id path int true "规则ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /tariffs/{id} [delete]
func (c *TariffController) DeleteTariff() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	if err := c.service().DeleteTariff(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), id); err != nil {
		handleServiceError(c.Ctx, err, code.ErrTariffInvalid, code.ErrDatabase)
		return
	}
	middleware.PurgeCache()
	response.Success(c.Ctx, nil)
}
