package controllers

import (
	"context"
	"time"

	"rwportal-http-service/internal/app/middleware"
	"rwportal-http-service/internal/domain/services"
	"rwportal-http-service/internal/domain/services/container"
	"rwportal-http-service/internal/error/code"
	"rwportal-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthController 健康检查控制器
type HealthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHealthController 创建健康检查控制器实例
func NewHealthController(ctx *gin.Context, container *container.ServiceContainer) *HealthController {
	return &HealthController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleHealthFunc 返回一个处理健康检查请求的Gin处理函数
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthController(ctx, container)
		switch method {
		case "ping":
			controller.Ping()
		case "health":
			controller.Health()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// Ping 存活检查
// @Summary      Ping
// @Tags         Health
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Router       /ping [get]
func (h *HealthController) Ping() {
	response.Success(h.Ctx, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Health 检查数据库和Redis连接
// @Summary      Health check
// @Description  检查数据库连接，启用Redis时同时检查Redis
// @Tags         Health
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /health [get]
func (h *HealthController) Health() {
	ctx, cancel := context.WithTimeout(h.Ctx.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	db := h.Container.GetService("db").(*gorm.DB)
	if sqlDB, err := db.DB(); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else if err := sqlDB.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if redisService, ok := h.Container.GetService("redis").(*services.RedisService); ok {
		if err := redisService.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}
	checks["cache"] = middleware.CacheStats()

	if !healthy {
		response.FailWithMessage(h.Ctx, code.ErrConnectionFailed, "依赖服务不可用", checks)
		return
	}
	checks["status"] = "healthy"
	response.Success(h.Ctx, checks)
}
