// @title           RW Portal HTTP Service API
// @version         1.0
// @description     RW/RT neighborhood administration: households, residents, monthly dues (IPL) billing and cash ledger

// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer ` prefix
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"rwportal-http-service/internal/app/routes"
	"rwportal-http-service/internal/domain/services"
	"rwportal-http-service/internal/domain/services/container"
	"rwportal-http-service/internal/infrastructure/config"
	"rwportal-http-service/internal/infrastructure/database"
	Logger "rwportal-http-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		Logger.Error("服务退出: %v", err)
		Logger.Close()
		os.Exit(1)
	}
}

func run() error {
	// 加载.env文件，失败时继续使用已有的环境变量
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	if err := Logger.SetupLogger(cfg.LogDir); err != nil {
		return fmt.Errorf("初始化日志配置失败: %w", err)
	}
	defer Logger.Close()
	if envErr != nil {
		Logger.Warning("无法加载.env文件: %v", envErr)
	}

	if cfg.EnvType != "LOCAL" {
		gin.SetMode(gin.ReleaseMode)
	}

	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		return fmt.Errorf("无法创建数据库连接池: %w", err)
	}
	defer pool.Close()
	db := pool.GetDB()

	Logger.Info("数据库迁移模式: %s", cfg.DBMigrationMode)
	if err := database.Migrate(db, cfg.DBMigrationMode); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}

	serviceContainer, err := container.NewServiceContainer(db, cfg, redisClient)
	if err != nil {
		return err
	}
	defer serviceContainer.Close()

	// 确保系统中有管理员账户
	userService := serviceContainer.GetService("user").(services.InterfaceUserService)
	created, password, err := userService.EnsureDefaultAdmin(context.Background())
	if err != nil {
		return fmt.Errorf("创建默认管理员失败: %w", err)
	}
	if created && cfg.DefaultAdminPassword == "" {
		Logger.Warning("默认管理员 %s 的初始密码: %s，请登录后立即修改", services.DefaultAdminUsername, password)
	}

	r := routes.SetupRouter(serviceContainer)
	printSystemInfo(pool)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.ServerPort,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		Logger.Info("服务器启动在: http://%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("启动服务器失败: %w", err)
	case sig := <-quit:
		Logger.Info("收到信号 %s，正在关闭服务器", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("关闭服务器失败: %w", err)
	}
	Logger.Info("服务器已关闭")
	return nil
}

// printSystemInfo 打印系统信息
func printSystemInfo(pool *database.ConnectionPool) {
	if stats, err := pool.Stats(); err == nil {
		Logger.Info("数据库连接池状态: %+v", stats)
	}

	Logger.Info("系统CPU核心数: %d", runtime.NumCPU())
	Logger.Info("当前Go协程数: %d", runtime.NumGoroutine())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	Logger.Info("系统内存使用: Alloc=%v MiB, TotalAlloc=%v MiB, Sys=%v MiB",
		m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024)
}
