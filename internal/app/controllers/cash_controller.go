package controllers

import (
	"time"

	"rwportal-http-service/internal/app/middleware"
	"rwportal-http-service/internal/domain/models"
	"rwportal-http-service/internal/domain/services"
	"rwportal-http-service/internal/domain/services/container"
	"rwportal-http-service/internal/error/code"
	"rwportal-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// CashController 处理现金账(kas)请求
type CashController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewCashController 创建现金账控制器
func NewCashController(ctx *gin.Context, container *container.ServiceContainer) *CashController {
	return &CashController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleCashFunc 返回一个处理现金账请求的Gin处理函数
func HandleCashFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewCashController(ctx, container)
		switch method {
		case "createTransaction":
			controller.CreateTransaction()
		case "getTransactions":
			controller.GetTransactions()
		case "getSummary":
			controller.GetSummary()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *CashController) service() services.InterfaceCashService {
	return c.Container.GetService("cash").(services.InterfaceCashService)
}

// CreateTransaction 录入现金账
// @Summary      录入现金账
// @Tags         Cash
// @Accept       json
// @Produce      json
// @Param        request body services.CashInput true "现金账"
// @Security     BearerAuth
// @Success      201  {object}  SuccessResponse{data=models.CashTransaction}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /cash [post]
func (c *CashController) CreateTransaction() {
	var req services.CashInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}
	tx, err := c.service().CreateTransaction(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), req)
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrCashInvalid, code.ErrDatabase)
		return
	}
	middleware.PurgeCache()
	response.Created(c.Ctx, tx)
}

// GetTransactions 现金账列表
// @Summary      现金账列表
// @Tags         Cash
// @Produce      json
// @Param        type query string false "income 或 expense"
// @Param        from query string false "起始日期 YYYY-MM-DD"
// @Param        to query string false "结束日期 YYYY-MM-DD"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=[]models.CashTransaction}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /cash [get]
func (c *CashController) GetTransactions() {
	q, ok := c.cashQuery()
	if !ok {
		return
	}
	txs, err := c.service().GetTransactions(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), q)
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrCashInvalid, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, txs)
}

// GetSummary 现金账汇总
// @Summary      现金账汇总
// @Tags         Cash
// @Produce      json
// @Param        type query string false "income 或 expense"
// @Param        from query string false "起始日期 YYYY-MM-DD"
// @Param        to query string false "结束日期 YYYY-MM-DD"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=services.CashSummary}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /cash/summary [get]
func (c *CashController) GetSummary() {
	q, ok := c.cashQuery()
	if !ok {
		return
	}
	summary, err := c.service().Summarize(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), q)
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrCashInvalid, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, summary)
}

func (c *CashController) cashQuery() (services.CashQuery, bool) {
	q := services.CashQuery{Type: models.CashType(c.Ctx.Query("type"))}
	for _, f := range []struct {
		name string
		dst  **time.Time
	}{{"from", &q.From}, {"to", &q.To}} {
		raw := c.Ctx.Query(f.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.FailWithMessage(c.Ctx, code.ErrCashInvalid, "日期格式应为 YYYY-MM-DD: "+f.name, nil)
			return q, false
		}
		*f.dst = &t
	}
	return q, true
}
