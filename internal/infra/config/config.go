package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env         string
	HTTPAddress string
	LogLevel    string

	DatabaseURL         string
	DBConnectMaxRetries uint64
	DBConnectBaseDelay  time.Duration

	RedisAddress  string
	RedisPassword string
	RedisDB       int
	// SessionCache selects the cache backend: "redis" or "memory".
	SessionCache string

	ActivationSecret   string
	AccessTokenSecret  string
	RefreshTokenSecret string
	ActivationTokenTTL time.Duration
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	PasswordPepper     string

	CookieDomain     string
	AllowedOrigins   []string
	AllowCredentials bool
	RateLimitRPS     int
	RateLimitBurst   int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	GoogleClientID string
}

func (c *Config) UsesRedis() bool {
	return c.SessionCache == "redis"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

var requiredKeys = []string{
	"DATABASE_URL",
	"ACTIVATION_SECRET",
	"ACCESS_TOKEN_SECRET",
	"REFRESH_TOKEN_SECRET",
}

var knownKeys = []string{
	"APP_ENV", "HTTP_ADDRESS", "LOG_LEVEL",
	"DATABASE_URL", "DB_CONNECT_MAX_RETRIES", "DB_CONNECT_BASE_DELAY",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "SESSION_CACHE",
	"ACTIVATION_SECRET", "ACCESS_TOKEN_SECRET", "REFRESH_TOKEN_SECRET",
	"ACTIVATION_TOKEN_TTL", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "PASSWORD_PEPPER",
	"COOKIE_DOMAIN", "ALLOWED_ORIGINS", "ALLOW_CREDENTIALS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM",
	"S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_PUBLIC_BASE_URL",
	"GOOGLE_CLIENT_ID",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDRESS", ":8000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_CONNECT_MAX_RETRIES", 8)
	v.SetDefault("DB_CONNECT_BASE_DELAY", "1s")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_CACHE", "redis")
	v.SetDefault("ACTIVATION_TOKEN_TTL", "5m")
	v.SetDefault("ACCESS_TOKEN_TTL", "5m")
	v.SetDefault("REFRESH_TOKEN_TTL", "72h")
	v.SetDefault("ALLOW_CREDENTIALS", true)
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("S3_REGION", "us-east-1")

	v.AutomaticEnv()
	for _, k := range knownKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	for _, k := range requiredKeys {
		if v.GetString(k) == "" {
			return nil, fmt.Errorf("%s is not set", k)
		}
	}
	// Redis нужен только как кэш сессий
	if v.GetString("SESSION_CACHE") == "redis" && v.GetString("REDIS_ADDRESS") == "" {
		return nil, fmt.Errorf("REDIS_ADDRESS is not set")
	}

	cfg := &Config{
		Env:                 v.GetString("APP_ENV"),
		HTTPAddress:         v.GetString("HTTP_ADDRESS"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		DBConnectMaxRetries: v.GetUint64("DB_CONNECT_MAX_RETRIES"),
		DBConnectBaseDelay:  v.GetDuration("DB_CONNECT_BASE_DELAY"),
		RedisAddress:        v.GetString("REDIS_ADDRESS"),
		RedisPassword:       v.GetString("REDIS_PASSWORD"),
		RedisDB:             v.GetInt("REDIS_DB"),
		SessionCache:        v.GetString("SESSION_CACHE"),
		ActivationSecret:    v.GetString("ACTIVATION_SECRET"),
		AccessTokenSecret:   v.GetString("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret:  v.GetString("REFRESH_TOKEN_SECRET"),
		ActivationTokenTTL:  v.GetDuration("ACTIVATION_TOKEN_TTL"),
		AccessTokenTTL:      v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:     v.GetDuration("REFRESH_TOKEN_TTL"),
		PasswordPepper:      v.GetString("PASSWORD_PEPPER"),
		CookieDomain:        v.GetString("COOKIE_DOMAIN"),
		AllowCredentials:    v.GetBool("ALLOW_CREDENTIALS"),
		RateLimitRPS:        v.GetInt("RATE_LIMIT_RPS"),
		RateLimitBurst:      v.GetInt("RATE_LIMIT_BURST"),
		SMTPHost:            v.GetString("SMTP_HOST"),
		SMTPPort:            v.GetInt("SMTP_PORT"),
		SMTPUsername:        v.GetString("SMTP_USERNAME"),
		SMTPPassword:        v.GetString("SMTP_PASSWORD"),
		SMTPFrom:            v.GetString("SMTP_FROM"),
		S3Bucket:            v.GetString("S3_BUCKET"),
		S3Region:            v.GetString("S3_REGION"),
		S3Endpoint:          v.GetString("S3_ENDPOINT"),
		S3AccessKey:         v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:         v.GetString("S3_SECRET_KEY"),
		S3PublicBaseURL:     v.GetString("S3_PUBLIC_BASE_URL"),
		GoogleClientID:      v.GetString("GOOGLE_CLIENT_ID"),
	}

	origins, err := parseOrigins(v.GetString("ALLOWED_ORIGINS"))
	if err != nil {
		return nil, fmt.Errorf("ALLOWED_ORIGINS: %w", err)
	}
	cfg.AllowedOrigins = origins

	if cfg.SessionCache != "redis" && cfg.SessionCache != "memory" {
		return nil, fmt.Errorf("SESSION_CACHE must be redis or memory, got %q", cfg.SessionCache)
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 || cfg.ActivationTokenTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}

	return cfg, nil
}

// parseOrigins accepts either a JSON array or a comma separated list.
func parseOrigins(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out, nil
}
