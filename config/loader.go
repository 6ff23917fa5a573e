// =============================================================================
// 📦 路由网关配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("GATEWAY").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config is the routing gateway's complete configuration.
type Config struct {
	// Server HTTP server configuration
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Redis backs the T2 cache tier
	Redis RedisConfig `yaml:"redis" env:"REDIS"`

	// Database backs the T3 cache tier and the budget ledger
	Database DatabaseConfig `yaml:"database" env:"DATABASE"`

	// Cache configures per-tier capacities and TTLs
	Cache CacheConfig `yaml:"cache" env:"CACHE"`

	// Budget configures the default spending limits applied to newly
	// provisioned user/team/company scopes
	Budget BudgetConfig `yaml:"budget" env:"BUDGET"`

	// Providers lists the upstream LLM providers the router selects across
	Providers []ProviderConfig `yaml:"providers" env:"-"`

	// JWT configures Bearer-token authentication
	JWT JWTConfig `yaml:"jwt" env:"JWT"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// HTTP 端口
	HTTPPort int `yaml:"http_port" env:"HTTP_PORT"`
	// Metrics 端口
	MetricsPort int `yaml:"metrics_port" env:"METRICS_PORT"`
	// 读取超时
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	// 写入超时
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	// 优雅关闭超时
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// 基于 IP 的限流：每秒请求数
	RateLimitRPS float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	// 基于 IP 的限流：突发容量
	RateLimitBurst int `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	// 允许的 CORS 来源；为空时拒绝所有跨域请求
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	// 合法的 X-API-Key 取值集合
	APIKeys []string `yaml:"api_keys" env:"API_KEYS"`
}

// RedisConfig Redis 配置（T2 缓存层）
type RedisConfig struct {
	// 地址
	Addr string `yaml:"addr" env:"ADDR"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库编号
	DB int `yaml:"db" env:"DB"`
	// 连接池大小
	PoolSize int `yaml:"pool_size" env:"POOL_SIZE"`
	// 最小空闲连接
	MinIdleConns int `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
}

// DatabaseConfig 数据库配置（T3 缓存层与预算台账）
type DatabaseConfig struct {
	// 驱动类型: postgres, mysql, sqlite
	Driver string `yaml:"driver" env:"DRIVER"`
	// 主机
	Host string `yaml:"host" env:"HOST"`
	// 端口
	Port int `yaml:"port" env:"PORT"`
	// 用户名
	User string `yaml:"user" env:"USER"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库名（SQLite 下为文件路径）
	Name string `yaml:"name" env:"NAME"`
	// SSL 模式
	SSLMode string `yaml:"ssl_mode" env:"SSL_MODE"`
	// 最大连接数
	MaxOpenConns int `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	// 最大空闲连接
	MaxIdleConns int `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	// 连接最大生命周期
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

// CacheConfig mirrors internal/cache.Config's per-tier capacities and TTLs.
type CacheConfig struct {
	// L1Capacity is the in-process LRU's entry capacity
	L1Capacity int `yaml:"l1_capacity" env:"L1_CAPACITY"`
	// L1TTL is the in-process LRU's entry lifetime
	L1TTL time.Duration `yaml:"l1_ttl" env:"L1_TTL"`
	// L2TTL is the Redis tier's entry lifetime
	L2TTL time.Duration `yaml:"l2_ttl" env:"L2_TTL"`
	// L3TTL is the durable (gorm-backed) tier's entry lifetime
	L3TTL time.Duration `yaml:"l3_ttl" env:"L3_TTL"`
}

// BudgetConfig holds the default spending limits applied to a newly
// provisioned budget scope; per-entity overrides are written through the
// admin surface, not this file.
type BudgetConfig struct {
	// Period is the default rollover cadence: daily, weekly, monthly, yearly
	Period string `yaml:"period" env:"PERIOD"`
	// WarningThreshold is the default usage fraction that yields a warning
	// admission instead of a hard denial
	WarningThreshold float64 `yaml:"warning_threshold" env:"WARNING_THRESHOLD"`
	// Timezone anchors period boundaries, e.g. "UTC"
	Timezone string `yaml:"timezone" env:"TIMEZONE"`
	// UserLimitUSD is the default per-user monthly limit
	UserLimitUSD float64 `yaml:"user_limit_usd" env:"USER_LIMIT_USD"`
	// TeamLimitUSD is the default per-team monthly limit
	TeamLimitUSD float64 `yaml:"team_limit_usd" env:"TEAM_LIMIT_USD"`
	// CompanyLimitUSD is the default per-company monthly limit
	CompanyLimitUSD float64 `yaml:"company_limit_usd" env:"COMPANY_LIMIT_USD"`
}

// ProviderConfig describes one registered upstream LLM provider, in the
// shape the YAML config file carries it; toProviderConfig in cmd/gateway converts each
// entry into a types.ProviderConfig at startup.
type ProviderConfig struct {
	ProviderID       string            `yaml:"provider_id"`
	BaseURL          string            `yaml:"base_url"`
	CredentialEnvVar string            `yaml:"credential_env_var"`
	APIVersion       string            `yaml:"api_version,omitempty"`
	Timeout          time.Duration     `yaml:"timeout"`
	InputPricePer1K  float64           `yaml:"input_price_per_1k"`
	OutputPricePer1K float64           `yaml:"output_price_per_1k"`
	Models           []string          `yaml:"models"`
	FailureThreshold int               `yaml:"failure_threshold"`
	OpenTimeout      time.Duration     `yaml:"open_timeout"`
	RequestsPerMinute int              `yaml:"requests_per_minute,omitempty"`
	TokensPerMinute  int               `yaml:"tokens_per_minute,omitempty"`
	IsEnabled        bool              `yaml:"is_enabled"`
	Tags             []string          `yaml:"tags,omitempty"`
}

// JWTConfig configures Bearer-token authentication for protected endpoints.
type JWTConfig struct {
	// Secret is the HMAC (HS256) signing secret
	Secret string `yaml:"secret" env:"SECRET"`
	// PublicKey is a PEM-encoded RSA public key, for RS256 verification
	PublicKey string `yaml:"public_key" env:"PUBLIC_KEY"`
	// Issuer, if set, must match the token's iss claim
	Issuer string `yaml:"issuer" env:"ISSUER"`
	// Audience, if set, must match the token's aud claim
	Audience string `yaml:"audience" env:"AUDIENCE"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// =============================================================================
// 🔧 配置加载器
// =============================================================================

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "GATEWAY",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath 设置配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator 添加配置验证器
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 加载配置
// 优先级: 默认值 → YAML 文件 → 环境变量
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile 从 YAML 文件加载配置
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// loadFromEnv 从环境变量加载配置
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv 递归设置结构体字段
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// =============================================================================
// 🔍 辅助函数
// =============================================================================

// MustLoad 加载配置，失败时 panic
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromEnv 仅从环境变量加载配置
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid HTTP port")
	}

	if c.Budget.WarningThreshold < 0 || c.Budget.WarningThreshold > 1 {
		errs = append(errs, "budget warning_threshold must be between 0 and 1")
	}

	if len(c.Providers) == 0 {
		errs = append(errs, "at least one provider must be configured")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// DSN 返回数据库连接字符串
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
		)
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true",
			d.User, d.Password, d.Host, d.Port, d.Name,
		)
	case "sqlite":
		return d.Name
	default:
		return ""
	}
}
