// Package config 负责加载进程配置：.env -> 环境变量 -> config.yaml -> 默认值
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Addr    string
	BaseURL string // 用于拼接对外短链地址，如 https://s.example.com
}

type DBConfig struct {
	Driver          string // postgres 或 mysql
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr           string
	Password       string
	MaxIdle        int
	MaxActive      int
	IdleTimeout    time.Duration
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type CacheConfig struct {
	LinkTTL     time.Duration // 正向缓存
	NegativeTTL time.Duration // 空值缓存，防穿透
}

type ShortenerConfig struct {
	CodeLength int
	MaxRetries int
}

type ValidationConfig struct {
	CheckReachability bool
	ProbeTimeout      time.Duration
}

type SSOConfig struct {
	Host         string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Timeout      time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Enabled bool
	Rate    string // ulule/limiter 格式，如 "100-M"
}

type SweepConfig struct {
	Schedule string // cron 表达式
	Lookback time.Duration
}

type LogConfig struct {
	Level      string
	Path       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type I18nConfig struct {
	Files           []string
	DefaultLanguage string
}

type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Shortener  ShortenerConfig
	Validation ValidationConfig
	SSO        SSOConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Sweep      SweepConfig
	Log        LogConfig
	I18n       I18nConfig
}

// Load 读取配置。环境变量覆盖 config.yaml，键名规则 db.dsn -> DB_DSN
func Load(paths ...string) (*Config, error) {
	// .env 不存在时静默跳过
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 没有配置文件时仅靠环境变量 + 默认值运行
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:    v.GetString("server.addr"),
			BaseURL: v.GetString("server.base_url"),
		},
		DB: DBConfig{
			Driver:          v.GetString("db.driver"),
			DSN:             v.GetString("db.dsn"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Addr:           v.GetString("redis.addr"),
			Password:       v.GetString("redis.password"),
			MaxIdle:        v.GetInt("redis.max_idle"),
			MaxActive:      v.GetInt("redis.max_active"),
			IdleTimeout:    v.GetDuration("redis.idle_timeout"),
			ConnectTimeout: v.GetDuration("redis.connect_timeout"),
			ReadTimeout:    v.GetDuration("redis.read_timeout"),
			WriteTimeout:   v.GetDuration("redis.write_timeout"),
		},
		Cache: CacheConfig{
			LinkTTL:     v.GetDuration("cache.link_ttl"),
			NegativeTTL: v.GetDuration("cache.negative_ttl"),
		},
		Shortener: ShortenerConfig{
			CodeLength: v.GetInt("shortener.code_length"),
			MaxRetries: v.GetInt("shortener.max_retries"),
		},
		Validation: ValidationConfig{
			CheckReachability: v.GetBool("validation.check_reachability"),
			ProbeTimeout:      v.GetDuration("validation.probe_timeout"),
		},
		SSO: SSOConfig{
			Host:         v.GetString("sso.host"),
			ClientID:     v.GetString("sso.client_id"),
			ClientSecret: v.GetString("sso.client_secret"),
			RedirectURI:  v.GetString("sso.redirect_uri"),
			Timeout:      v.GetDuration("sso.timeout"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("cors.allowed_origins"),
		},
		RateLimit: RateLimitConfig{
			Enabled: v.GetBool("ratelimit.enabled"),
			Rate:    v.GetString("ratelimit.rate"),
		},
		Sweep: SweepConfig{
			Schedule: v.GetString("sweep.schedule"),
			Lookback: v.GetDuration("sweep.lookback"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Path:       v.GetString("log.path"),
			MaxSize:    v.GetInt("log.max_size"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAge:     v.GetInt("log.max_age"),
			Compress:   v.GetBool("log.compress"),
		},
		I18n: I18nConfig{
			Files:           v.GetStringSlice("i18n.files"),
			DefaultLanguage: v.GetString("i18n.default_language"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.max_idle", 10)
	v.SetDefault("redis.max_active", 50)
	v.SetDefault("redis.idle_timeout", 240*time.Second)
	v.SetDefault("redis.connect_timeout", 2*time.Second)
	v.SetDefault("redis.read_timeout", time.Second)
	v.SetDefault("redis.write_timeout", time.Second)

	v.SetDefault("cache.link_ttl", time.Hour)
	v.SetDefault("cache.negative_ttl", 5*time.Minute)

	v.SetDefault("shortener.code_length", 8)
	v.SetDefault("shortener.max_retries", 5)

	v.SetDefault("validation.check_reachability", false)
	v.SetDefault("validation.probe_timeout", 3*time.Second)

	v.SetDefault("sso.timeout", 10*time.Second)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.rate", "100-M")

	v.SetDefault("sweep.schedule", "*/10 * * * *")
	v.SetDefault("sweep.lookback", 2*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "logs/shortlink.log")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.compress", false)

	v.SetDefault("i18n.files", []string{"./i18n/en.toml", "./i18n/zh.toml"})
	v.SetDefault("i18n.default_language", "en")
}
