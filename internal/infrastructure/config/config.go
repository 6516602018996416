package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Database
	DBDriver        string // "mysql"(默认) 或 "sqlite"
	DBPath          string // sqlite 数据库文件路径
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBMigrationMode string // 数据库迁移模式: "auto"(默认), "alter"(修改), "drop"(删除重建)

	// Server
	ServerPort      string
	ShutdownTimeout time.Duration
	LogDir          string

	// Redis
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MQTT配置，仅用于发布账单生成事件
	MQTTEnabled     bool
	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTQoS         int
	MQTTTopicPrefix string

	// JWT Authentication
	JWTSecretKey   string
	JWTExpireHours int

	// Admin
	DefaultAdminPassword string

	// 月费(IPL)账单生成
	DuesDefaultZone    string            // 户号区域为空时使用的默认区域
	DuesZoneAliases    map[string]string // 区域别名 -> 规范区域
	DuesSkippedPreview int               // 摘要中返回的已出账户号预览条数
	DuesLockTTL        time.Duration     // 同一账期生成锁的有效期
}

// LoadConfig loads config from environment variables based on ENV_TYPE.
// Missing required variables are reported as an error instead of being
// replaced by defaults.
func LoadConfig() (*Config, error) {
	envType := strings.ToUpper(getEnv("ENV_TYPE", "LOCAL"))
	var prefix string
	switch envType {
	case "LOCAL":
		prefix = "LOCAL_"
	case "SERVER":
		prefix = "SERVER_"
	default:
		return nil, fmt.Errorf("unknown ENV_TYPE %q, expected LOCAL or SERVER", envType)
	}

	r := &requiredVars{prefix: prefix}
	dbDriver := strings.ToLower(getEnv(prefix+"DB_DRIVER", getEnv("DB_DRIVER", "mysql")))
	// sqlite 模式不需要连接参数
	r.optional = dbDriver == "sqlite"

	aliases, err := parseAliases(getEnv("DUES_ZONE_ALIASES", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		EnvType: envType,

		// Database config - use environment-specific variables if available
		DBDriver:        dbDriver,
		DBPath:          getEnv(prefix+"DB_PATH", getEnv("DB_PATH", "rwportal.db")),
		DBHost:          r.get("DB_HOST"),
		DBUser:          r.get("DB_USER"),
		DBPassword:      getEnv(prefix+"DB_PASSWORD", getEnv("DB_PASSWORD", "")),
		DBName:          r.get("DB_NAME"),
		DBPort:          getEnv(prefix+"DB_PORT", getEnv("DB_PORT", "3306")),
		DBMigrationMode: getEnv(prefix+"DB_MIGRATION_MODE", getEnv("DB_MIGRATION_MODE", "auto")),

		// Server config
		ServerPort:      getEnv(prefix+"SERVER_PORT", getEnv("SERVER_PORT", "8080")),
		ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		LogDir:          getEnv("LOG_DIR", "logs"),

		// Redis config
		RedisEnabled:  getEnvAsBool("REDIS_ENABLED", false),
		RedisHost:     getEnv(prefix+"REDIS_HOST", getEnv("REDIS_HOST", "localhost")),
		RedisPort:     getEnv(prefix+"REDIS_PORT", getEnv("REDIS_PORT", "6379")),
		RedisPassword: getEnv(prefix+"REDIS_PASSWORD", getEnv("REDIS_PASSWORD", "")),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// MQTT配置
		MQTTEnabled:     getEnvAsBool("MQTT_ENABLED", false),
		MQTTBrokerURL:   getEnv("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "rwportal_server"),
		MQTTUsername:    getEnv("MQTT_USERNAME", ""),
		MQTTPassword:    getEnv("MQTT_PASSWORD", ""),
		MQTTQoS:         getEnvAsInt("MQTT_QOS", 1),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "rwportal"),

		// JWT Config
		JWTSecretKey:   r.getUnprefixed("JWT_SECRET_KEY"),
		JWTExpireHours: getEnvAsInt("JWT_EXPIRE_HOURS", 24),

		// Admin Config
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", ""),

		// Dues Config
		DuesDefaultZone:    getEnv("DUES_DEFAULT_ZONE", "umum"),
		DuesZoneAliases:    aliases,
		DuesSkippedPreview: getEnvAsInt("DUES_SKIPPED_PREVIEW", 20),
		DuesLockTTL:        getEnvAsDuration("DUES_LOCK_TTL", 2*time.Minute),
	}

	if len(r.missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %s", strings.Join(r.missing, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置取值是否合法
func (c *Config) Validate() error {
	if c.DBDriver != "mysql" && c.DBDriver != "sqlite" {
		return fmt.Errorf("invalid DB_DRIVER %q", c.DBDriver)
	}
	switch c.DBMigrationMode {
	case "auto", "alter", "drop":
	default:
		return fmt.Errorf("invalid DB_MIGRATION_MODE %q", c.DBMigrationMode)
	}
	if strings.TrimSpace(c.DuesDefaultZone) == "" {
		return fmt.Errorf("DUES_DEFAULT_ZONE must not be blank")
	}
	if c.DuesSkippedPreview <= 0 {
		return fmt.Errorf("DUES_SKIPPED_PREVIEW must be positive")
	}
	if c.MQTTQoS < 0 || c.MQTTQoS > 2 {
		return fmt.Errorf("MQTT_QOS must be 0, 1 or 2")
	}
	if c.JWTExpireHours <= 0 {
		return fmt.Errorf("JWT_EXPIRE_HOURS must be positive")
	}
	return nil
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=UTC&allowNativePasswords=true"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// requiredVars 收集缺失的必填环境变量，统一报错
type requiredVars struct {
	prefix   string
	optional bool
	missing  []string
}

func (r *requiredVars) get(key string) string {
	if v := getEnv(r.prefix+key, getEnv(key, "")); v != "" {
		return v
	}
	if !r.optional {
		r.missing = append(r.missing, r.prefix+key)
	}
	return ""
}

func (r *requiredVars) getUnprefixed(key string) string {
	if v := getEnv(key, ""); v != "" {
		return v
	}
	r.missing = append(r.missing, key)
	return ""
}

// parseAliases 解析 "alias=zone,alias2=zone2" 格式的区域别名
func parseAliases(raw string) (map[string]string, error) {
	aliases := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return aliases, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			return nil, fmt.Errorf("invalid DUES_ZONE_ALIASES entry %q", pair)
		}
		aliases[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return aliases, nil
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as boolean with default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
