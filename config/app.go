package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	GinMode     string `mapstructure:"GIN_MODE"`
	Environment string `mapstructure:"ENVIRONMENT"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBDatabase string `mapstructure:"DB_DATABASE"`
	DBUsername string `mapstructure:"DB_USERNAME"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DebugSQL   bool   `mapstructure:"DEBUG_SQL"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	StatsCacheTTL time.Duration `mapstructure:"STATS_CACHE_TTL"`

	SMTPHost          string `mapstructure:"SMTP_HOST"`
	SMTPPort          int    `mapstructure:"SMTP_PORT"`
	SMTPUser          string `mapstructure:"SMTP_USER"`
	SMTPPass          string `mapstructure:"SMTP_PASS"`
	SMTPFrom          string `mapstructure:"SMTP_FROM"` // e.g. "Research Tracker <no-reply@your.org>"
	SMTPSkipTLSVerify bool   `mapstructure:"SMTP_SKIP_TLS_VERIFY"`

	// bcrypt hash of the token accepted by GET /logs
	LogsTokenHash string `mapstructure:"LOGS_TOKEN_HASH"`

	NotifyPromotions bool `mapstructure:"NOTIFY_PROMOTIONS"`
}

var AppConfig = defaultConfig()

var defaults = map[string]interface{}{
	"SERVER_PORT":          "8080",
	"GIN_MODE":             "debug",
	"ENVIRONMENT":          "development",
	"DB_HOST":              "127.0.0.1",
	"DB_PORT":              "3306",
	"DB_DATABASE":          "research_tracker",
	"DB_USERNAME":          "root",
	"DB_PASSWORD":          "",
	"DEBUG_SQL":            false,
	"JWT_SECRET":           "",
	"FRONTEND_URL":         "http://localhost:3000",
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"STATS_CACHE_TTL":      "60s",
	"SMTP_HOST":            "",
	"SMTP_PORT":            587,
	"SMTP_USER":            "",
	"SMTP_PASS":            "",
	"SMTP_FROM":            "",
	"SMTP_SKIP_TLS_VERIFY": false,
	"LOGS_TOKEN_HASH":      "",
	"NOTIFY_PROMOTIONS":    true,
}

func defaultConfig() *Config {
	return &Config{
		ServerPort:       "8080",
		GinMode:          "debug",
		Environment:      "development",
		FrontendURL:      "http://localhost:3000",
		StatsCacheTTL:    time.Minute,
		SMTPPort:         587,
		NotifyPromotions: true,
	}
}

// LoadConfig reads the process environment into AppConfig. Every key gets a
// default so viper's AutomaticEnv picks it up during Unmarshal.
func LoadConfig() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}
	if cfg.StatsCacheTTL <= 0 {
		cfg.StatsCacheTTL = time.Minute
	}
	AppConfig = cfg
	return cfg
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
