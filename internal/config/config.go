package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	AccessSecret string
	AccessTTL    time.Duration
}

type PNCPConfig struct {
	BaseURL           string
	AppURL            string
	Timeout           time.Duration
	DefaultModalities []string
}

type CNPJConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type IBGEConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RateLimitConfig struct {
	General       int
	GeneralWindow time.Duration
	Auth          int
	AuthWindow    time.Duration
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Redis       RedisConfig
	Auth        AuthConfig
	PNCP        PNCPConfig
	CNPJ        CNPJConfig
	IBGE        IBGEConfig
	RateLimit   RateLimitConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 3001)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")
	v.SetDefault("JWT_ACCESS_TTL", "24h")
	v.SetDefault("PNCP_BASE_URL", "https://pncp.gov.br/api/consulta")
	v.SetDefault("PNCP_APP_URL", "https://pncp.gov.br")
	v.SetDefault("PNCP_TIMEOUT", "20s")
	v.SetDefault("PNCP_DEFAULT_MODALITIES", "6,5,1,2")
	v.SetDefault("CNPJ_BASE_URL", "https://publica.cnpj.ws")
	v.SetDefault("CNPJ_TIMEOUT", "15s")
	v.SetDefault("CNPJ_CACHE_TTL", "1h")
	v.SetDefault("IBGE_BASE_URL", "https://servicodados.ibge.gov.br")
	v.SetDefault("IBGE_TIMEOUT", "15s")
	v.SetDefault("RATE_LIMIT_GENERAL", 60)
	v.SetDefault("RATE_LIMIT_GENERAL_WINDOW", "1m")
	v.SetDefault("RATE_LIMIT_AUTH", 10)
	v.SetDefault("RATE_LIMIT_AUTH_WINDOW", "5m")

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			AccessTTL:    v.GetDuration("JWT_ACCESS_TTL"),
		},
		PNCP: PNCPConfig{
			BaseURL:           v.GetString("PNCP_BASE_URL"),
			AppURL:            v.GetString("PNCP_APP_URL"),
			Timeout:           v.GetDuration("PNCP_TIMEOUT"),
			DefaultModalities: parseList(v.GetString("PNCP_DEFAULT_MODALITIES")),
		},
		CNPJ: CNPJConfig{
			BaseURL:  v.GetString("CNPJ_BASE_URL"),
			Timeout:  v.GetDuration("CNPJ_TIMEOUT"),
			CacheTTL: v.GetDuration("CNPJ_CACHE_TTL"),
		},
		IBGE: IBGEConfig{
			BaseURL: v.GetString("IBGE_BASE_URL"),
			Timeout: v.GetDuration("IBGE_TIMEOUT"),
		},
		RateLimit: RateLimitConfig{
			General:       v.GetInt("RATE_LIMIT_GENERAL"),
			GeneralWindow: v.GetDuration("RATE_LIMIT_GENERAL_WINDOW"),
			Auth:          v.GetInt("RATE_LIMIT_AUTH"),
			AuthWindow:    v.GetDuration("RATE_LIMIT_AUTH_WINDOW"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.HTTP.Port <= 0 {
		return fmt.Errorf("HTTP_PORT must be positive")
	}
	if cfg.PNCP.Timeout <= 0 || cfg.CNPJ.Timeout <= 0 || cfg.IBGE.Timeout <= 0 {
		return fmt.Errorf("upstream timeouts must be positive")
	}
	if len(cfg.PNCP.DefaultModalities) == 0 {
		return fmt.Errorf("PNCP_DEFAULT_MODALITIES must list at least one code")
	}
	if cfg.RateLimit.General <= 0 || cfg.RateLimit.Auth <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if cfg.RateLimit.GeneralWindow <= 0 || cfg.RateLimit.AuthWindow <= 0 {
		return fmt.Errorf("rate limit windows must be positive")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
