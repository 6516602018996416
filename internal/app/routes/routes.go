package routes

import (
	"net/http"
	"time"

	_ "rwportal-http-service/docs"
	"rwportal-http-service/internal/app/controllers"
	"rwportal-http-service/internal/app/middleware"
	"rwportal-http-service/internal/domain/models"
	"rwportal-http-service/internal/domain/services"
	"rwportal-http-service/internal/domain/services/container"
	"rwportal-http-service/internal/error/code"
	"rwportal-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(serviceContainer *container.ServiceContainer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 设置正确的Content-Type，确保UTF-8编码
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})

	// 初始化中间件
	middleware.InitAuthMiddleware(serviceContainer.GetService("jwt").(middleware.TokenParser))

	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.NoRoute(func(c *gin.Context) {
		response.FailWithMessage(c, code.ErrRecordNotFound, "接口不存在: "+c.Request.URL.Path, nil)
	})

	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(r *gin.Engine, container *container.ServiceContainer) {
	api := r.Group("/api")
	registerPublicRoutes(api, container)
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(api *gin.RouterGroup, container *container.ServiceContainer) {
	public := api.Group("")
	// 每秒允许10个请求，最多突发20个请求
	public.Use(middleware.IPRateLimiter(10, 20))

	public.GET("/ping", controllers.HandleHealthFunc(container, "ping"))
	public.GET("/health", controllers.HandleHealthFunc(container, "health"))

	// 登录接口单独限流，降低暴力破解风险
	public.POST("/auth/login", middleware.PathRateLimiter(5, 10), controllers.HandleJWTFunc(container, "login"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(api *gin.RouterGroup, container *container.ServiceContainer) {
	auth := api.Group("")
	auth.Use(middleware.Authenticate())
	// 每个用户每秒30个请求，最多突发50个请求
	auth.Use(middleware.CallerRateLimiter(30, 50))

	rwBoard := middleware.RequireRoles(models.RWBoardRoles()...)
	board := middleware.RequireRoles(models.BoardRoles()...)
	treasurer := middleware.RequireRoles(models.TreasurerRoles()...)

	// 账号
	userGroup := auth.Group("/users")
	userGroup.GET("/me", controllers.HandleUserFunc(container, "getMe"))
	userGroup.GET("", rwBoard, controllers.HandleUserFunc(container, "getUsers"))
	userGroup.POST("", rwBoard, controllers.HandleUserFunc(container, "createUser"))
	userGroup.DELETE("/:id", rwBoard, controllers.HandleUserFunc(container, "deleteUser"))

	// RT
	rtGroup := auth.Group("/rts")
	rtGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 5 * time.Minute}), controllers.HandleHouseholdFunc(container, "getRTs"))
	rtGroup.POST("", rwBoard, controllers.HandleHouseholdFunc(container, "createRT"))

	// 户号与居民
	householdGroup := auth.Group("/households")
	householdGroup.GET("", board, middleware.Cache(middleware.CacheConfig{Expiration: time.Minute}), controllers.HandleHouseholdFunc(container, "getHouseholds"))
	householdGroup.GET("/:id", board, middleware.Cache(middleware.CacheConfig{Expiration: time.Minute}), controllers.HandleHouseholdFunc(container, "getHousehold"))
	householdGroup.POST("", board, controllers.HandleHouseholdFunc(container, "createHousehold"))
	householdGroup.PUT("/:id", board, controllers.HandleHouseholdFunc(container, "updateHousehold"))
	householdGroup.DELETE("/:id", board, controllers.HandleHouseholdFunc(container, "deleteHousehold"))
	householdGroup.GET("/:id/residents", board, middleware.Cache(middleware.CacheConfig{Expiration: time.Minute}), controllers.HandleResidentFunc(container, "getHouseholdResidents"))
	householdGroup.POST("/:id/residents", board, controllers.HandleResidentFunc(container, "createResident"))
	auth.DELETE("/residents/:id", board, controllers.HandleResidentFunc(container, "deleteResident"))

	// 费率规则
	tariffGroup := auth.Group("/tariffs")
	tariffGroup.GET("", board, middleware.Cache(middleware.CacheConfig{Expiration: 5 * time.Minute}), controllers.HandleTariffFunc(container, "getTariffs"))
	tariffGroup.POST("", rwBoard, controllers.HandleTariffFunc(container, "createTariff"))
	tariffGroup.DELETE("/:id", rwBoard, controllers.HandleTariffFunc(container, "deleteTariff"))

	// 月费账单
	duesGroup := auth.Group("/dues")
	duesGroup.GET("/bills", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleDuesFunc(container, "listBills"))
	duesGroup.GET("/bills/summary", board, middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleDuesFunc(container, "summarizeBills"))
	// "bills:generate" 中的冒号会被路由解析为参数，这里校验参数值
	duesGroup.GET("/runs", rwBoard, controllers.HandleDuesFunc(container, "listRuns"))
	duesGroup.POST("/bills:generate", rwBoard, customMethod("generate", controllers.HandleDuesFunc(container, "generateBills")))

	// 现金账
	cashGroup := auth.Group("/cash")
	cashGroup.GET("", board, controllers.HandleCashFunc(container, "getTransactions"))
	cashGroup.GET("/summary", board, controllers.HandleCashFunc(container, "getSummary"))
	cashGroup.POST("", treasurer, controllers.HandleCashFunc(container, "createTransaction"))
}

// customMethod 处理 "resource:method" 形式的路由，param 为路由中冒号后的名字
func customMethod(param string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param(param) != ":"+param {
			c.JSON(http.StatusNotFound, response.Response{
				Code:    code.ErrRecordNotFound,
				Message: code.GetMessage(code.ErrRecordNotFound),
				Error:   "接口不存在: " + c.Request.URL.Path,
			})
			c.Abort()
			return
		}
		handler(c)
	}
}

// JWTService 用作认证中间件的令牌解析器
var _ middleware.TokenParser = (*services.JWTService)(nil)
