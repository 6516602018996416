package controllers

import (
	"fmt"
	"strconv"

	"rwportal-http-service/internal/app/middleware"
	"rwportal-http-service/internal/domain/dues"
	"rwportal-http-service/internal/domain/models"
	"rwportal-http-service/internal/domain/services"
	"rwportal-http-service/internal/domain/services/container"
	"rwportal-http-service/internal/error/code"
	"rwportal-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// DuesController 处理月费(IPL)账单请求
type DuesController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDuesController 创建账单控制器
func NewDuesController(ctx *gin.Context, container *container.ServiceContainer) *DuesController {
	return &DuesController{
		Ctx:       ctx,
		Container: container,
	}
}

// GenerateBillsRequest 生成账单请求
type GenerateBillsRequest struct {
	Period string `json:"period" binding:"required" example:"2024-03"`
}

// HandleDuesFunc 返回一个处理账单请求的Gin处理函数
func HandleDuesFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDuesController(ctx, container)
		switch method {
		case "generateBills":
			controller.GenerateBills()
		case "listBills":
			controller.ListBills()
		case "summarizeBills":
			controller.SummarizeBills()
		case "listRuns":
			controller.ListRuns()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *DuesController) service() services.InterfaceDuesService {
	return c.Container.GetService("dues").(services.InterfaceDuesService)
}

// GenerateBills 生成账期账单
// @Summary      生成月费账单
// @Description  为账期内尚未出账的户号生成账单，重复调用不会重复出账
// @Tags         Dues
// @Accept       json
// @Produce      json
// @Param        request body GenerateBillsRequest true "账期 YYYY-MM"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=services.GenerateResult}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /dues/bills:generate [post]
func (c *DuesController) GenerateBills() {
	var req GenerateBillsRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrInvalidPeriod, "无效的请求参数: "+err.Error(), nil)
		return
	}

	result, err := c.service().GenerateBills(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), req.Period)
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrInvalidPeriod, code.ErrBillingFailed)
		return
	}

	if result.Inserted > 0 {
		middleware.PurgeCache()
	}
	response.Success(c.Ctx, result)
}

// ListBills 查询账单
// @Summary      账单列表
// @Description  按账期倒序返回账单及户号、户主信息
// @Tags         Dues
// @Produce      json
// @Param        period query string false "账期 YYYY-MM"
// @Param        status query string false "unpaid 或 paid"
// @Param        household_id query int false "户号ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=[]services.BillView}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /dues/bills [get]
func (c *DuesController) ListBills() {
	q, err := c.billQuery()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrInvalidPeriod, err.Error(), nil)
		return
	}

	bills, err := c.service().ListBills(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), q)
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, bills)
}

// SummarizeBills 账期汇总
// @Summary      账期账单汇总
// @Tags         Dues
// @Produce      json
// @Param        period query string true "账期 YYYY-MM"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=services.BillSummary}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /dues/bills/summary [get]
func (c *DuesController) SummarizeBills() {
	summary, err := c.service().SummarizeBills(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), c.Ctx.Query("period"))
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrInvalidPeriod, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, summary)
}

// ListRuns 账单生成记录
// @Summary      账单生成记录
// @Description  返回最近的生成记录，可按账期筛选
// @Tags         Dues
// @Produce      json
// @Param        period query string false "账期 YYYY-MM"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=[]models.OperationLog}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /dues/runs [get]
func (c *DuesController) ListRuns() {
	runs, err := c.service().ListRuns(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), c.Ctx.Query("period"))
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrInvalidPeriod, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, runs)
}

// billQuery 由查询参数构造账单筛选条件
func (c *DuesController) billQuery() (services.BillQuery, error) {
	var q services.BillQuery
	if raw := c.Ctx.Query("period"); raw != "" {
		p, err := dues.ParsePeriod(raw)
		if err != nil {
			return q, err
		}
		q.Period = &p
	}
	if raw := c.Ctx.Query("status"); raw != "" {
		q.Status = models.BillStatus(raw)
	}
	if raw := c.Ctx.Query("household_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return q, fmt.Errorf("invalid household_id %q", raw)
		}
		q.HouseholdID = uint(id)
	}
	return q, nil
}
