package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var v *viper.Viper
var cfg *Config

// Config App-wide configuration
type Config struct {
	App       AppConfig       `mapstructure:"-"`
	Database  DatabaseConfig  `mapstructure:"-"`
	Redis     RedisConfig     `mapstructure:"-"`
	Cache     CacheConfig     `mapstructure:"-"`
	Snowflake SnowflakeConfig `mapstructure:"-"`
	JWT       JWTConfig       `mapstructure:"-"`
	Logging   LoggingConfig   `mapstructure:"-"`
	Security  SecurityConfig  `mapstructure:"-"`
	Board     BoardConfig     `mapstructure:"-"`
}

// AppConfig Application Configuration
type AppConfig struct {
	Host    string
	Port    int
	Mode    string
	BaseURL string
}

// DatabaseConfig MySQL Database Configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// RedisConfig Redis Configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// CacheConfig Cache Configuration
type CacheConfig struct {
	L1CapMB int // L1容量(MB)
	L2TTL   int // L2过期时间(秒)
}

// SnowflakeConfig Snowflake Configuration
type SnowflakeConfig struct {
	WorkerID int64
}

// JWTConfig JWT Configuration
type JWTConfig struct {
	Secret string
	Expiry int // Token过期时间(秒)
}

// LoggingConfig Logging Configuration
type LoggingConfig struct {
	Level  string
	Output string // stdout 或文件路径
}

// CORSConfig CORS Configuration
type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig Security Configuration
type SecurityConfig struct {
	AdminAllowIPs []string // 管理接口IP白名单(支持CIDR)
	RateLimit     int      // 每IP每分钟请求上限
	CORS          CORSConfig
}

// BoardConfig 板块业务配置
type BoardConfig struct {
	MinPasswordLen int // 匿名发帖密码最小长度
	MaxListLimit   int // 单次列表请求上限
	MaxDepth       int // 回复最大嵌套深度
}

// Init Initialize configuration with Viper
func Init(configPath string) error {
	v = viper.New()
	cfg = &Config{}

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// 没有配置文件时使用默认值 + 环境变量
	}

	// 环境变量覆盖
	v.SetEnvPrefix("BOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvs()

	return parseConfig()
}

// setDefaults 设置默认值
func setDefaults() {
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.mode", "release")
	v.SetDefault("app.base_url", "")

	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.name", "board")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 300)

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("cache.l1_cap_mb", 64)
	v.SetDefault("cache.l2_ttl", 3600)

	v.SetDefault("snowflake.worker_id", 0)

	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expiry", 86400)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("security.admin_allow_ips", []string{"127.0.0.1", "::1"})
	v.SetDefault("security.rate_limit", 100)
	v.SetDefault("security.cors.enabled", true)
	v.SetDefault("security.cors.allowed_origins", []string{})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization"})
	v.SetDefault("security.cors.allow_credentials", false)
	v.SetDefault("security.cors.max_age", 3600)

	v.SetDefault("board.min_password_len", 4)
	v.SetDefault("board.max_list_limit", 100)
	v.SetDefault("board.max_depth", 10)
}

// bindEnvs 绑定环境变量
func bindEnvs() {
	v.BindEnv("database.host", "BOARD_DATABASE_HOST")
	v.BindEnv("database.port", "BOARD_DATABASE_PORT")
	v.BindEnv("database.username", "BOARD_DATABASE_USERNAME")
	v.BindEnv("database.password", "BOARD_DATABASE_PASSWORD")
	v.BindEnv("database.name", "BOARD_DATABASE_NAME")

	v.BindEnv("redis.host", "BOARD_REDIS_HOST")
	v.BindEnv("redis.port", "BOARD_REDIS_PORT")
	v.BindEnv("redis.password", "BOARD_REDIS_PASSWORD")

	v.BindEnv("jwt.secret", "BOARD_JWT_SECRET")
}

// parseConfig 解析配置到结构体
func parseConfig() error {
	cfg.App.Host = v.GetString("app.host")
	cfg.App.Port = v.GetInt("app.port")
	cfg.App.Mode = v.GetString("app.mode")
	cfg.App.BaseURL = strings.TrimSpace(v.GetString("app.base_url"))

	cfg.Database.Host = v.GetString("database.host")
	cfg.Database.Port = v.GetInt("database.port")
	cfg.Database.Username = v.GetString("database.username")
	cfg.Database.Password = v.GetString("database.password")
	cfg.Database.Name = v.GetString("database.name")
	cfg.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	cfg.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")
	cfg.Database.ConnMaxLifetime = v.GetInt("database.conn_max_lifetime")

	cfg.Redis.Host = v.GetString("redis.host")
	cfg.Redis.Port = v.GetInt("redis.port")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.Redis.PoolSize = v.GetInt("redis.pool_size")

	cfg.Cache.L1CapMB = v.GetInt("cache.l1_cap_mb")
	cfg.Cache.L2TTL = v.GetInt("cache.l2_ttl")

	cfg.Snowflake.WorkerID = v.GetInt64("snowflake.worker_id")

	cfg.JWT.Secret = v.GetString("jwt.secret")
	cfg.JWT.Expiry = v.GetInt("jwt.expiry")

	cfg.Logging.Level = v.GetString("logging.level")
	cfg.Logging.Output = v.GetString("logging.output")

	cfg.Security.AdminAllowIPs = v.GetStringSlice("security.admin_allow_ips")
	cfg.Security.RateLimit = v.GetInt("security.rate_limit")
	cfg.Security.CORS.Enabled = v.GetBool("security.cors.enabled")
	cfg.Security.CORS.AllowedOrigins = v.GetStringSlice("security.cors.allowed_origins")
	cfg.Security.CORS.AllowedMethods = v.GetStringSlice("security.cors.allowed_methods")
	cfg.Security.CORS.AllowedHeaders = v.GetStringSlice("security.cors.allowed_headers")
	cfg.Security.CORS.AllowCredentials = v.GetBool("security.cors.allow_credentials")
	cfg.Security.CORS.MaxAge = v.GetInt("security.cors.max_age")

	cfg.Board.MinPasswordLen = v.GetInt("board.min_password_len")
	cfg.Board.MaxListLimit = v.GetInt("board.max_list_limit")
	cfg.Board.MaxDepth = v.GetInt("board.max_depth")

	return nil
}

// Get 获取配置实例
func Get() *Config {
	return cfg
}

// GetDSN Get MySQL DSN
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Username, c.Password, c.Host, c.Port, c.Name)
}

// GetRedisAddr Get Redis address
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetServerAddr Get server address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
