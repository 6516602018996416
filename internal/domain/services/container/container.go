package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rwportal-http-service/internal/domain/dues"
	"rwportal-http-service/internal/domain/services"
	"rwportal-http-service/internal/infrastructure/config"
	Logger "rwportal-http-service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// 基础服务
	jwtService  *services.JWTService
	userService *services.UserService

	// 基础设施
	redisService *services.RedisService
	locker       services.PeriodLocker
	notifier     services.BillNotifier
	mqtt         *services.MQTTNotifier

	// 业务服务
	householdService *services.HouseholdService
	residentService  *services.ResidentService
	tariffService    *services.TariffService
	cashService      *services.CashService
	duesService      *services.DuesService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器，redisClient 为空时使用进程内锁
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) (*ServiceContainer, error) {
	if db == nil {
		return nil, fmt.Errorf("数据库连接为空")
	}
	if cfg == nil {
		return nil, fmt.Errorf("配置为空")
	}

	// 测试Redis连接
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			Logger.Warning("Redis连接测试失败: %v，账单生成锁将在首次使用时重试", err)
		}
	}

	c := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	if err := c.initializeServices(); err != nil {
		return nil, err
	}
	return c, nil
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	zones, err := dues.NewZoneDirectory(c.config.DuesDefaultZone, c.config.DuesZoneAliases)
	if err != nil {
		return fmt.Errorf("初始化区域目录失败: %w", err)
	}

	c.jwtService = services.NewJWTService(c.config, c.db)
	c.userService = services.NewUserService(c.db, c.config)

	if c.redis != nil {
		c.redisService = services.NewRedisServiceWithClient(c.redis, c.config.DuesLockTTL)
		c.locker = c.redisService
	} else {
		c.locker = services.NewLocalLocker()
	}

	if c.config.MQTTEnabled {
		c.mqtt = services.NewMQTTNotifier(c.config)
		if err := c.mqtt.Connect(); err != nil {
			// 发布前会再次尝试连接
			Logger.Warning("MQTT服务连接失败: %v", err)
		}
		c.notifier = c.mqtt
	} else {
		c.notifier = services.NopNotifier{}
	}

	c.householdService = services.NewHouseholdService(c.db, c.config)
	c.residentService = services.NewResidentService(c.db, c.config, c.householdService)
	c.tariffService = services.NewTariffService(c.db, zones)
	c.cashService = services.NewCashService(c.db)
	c.duesService = services.NewDuesService(
		services.NewGormDuesStore(c.db),
		zones,
		c.locker,
		c.notifier,
		c.config.DuesSkippedPreview,
	)
	return nil
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "user":
		return c.userService
	case "redis":
		if c.redisService == nil {
			return nil
		}
		return c.redisService
	case "household":
		return c.householdService
	case "resident":
		return c.residentService
	case "tariff":
		return c.tariffService
	case "cash":
		return c.cashService
	case "dues":
		return c.duesService
	default:
		return nil
	}
}

// Close 释放外部连接
func (c *ServiceContainer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mqtt != nil {
		c.mqtt.Disconnect()
	}
	if c.redisService != nil {
		if err := c.redisService.Close(); err != nil {
			Logger.Warning("关闭Redis连接失败: %v", err)
		}
	}
}
