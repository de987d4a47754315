package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	DefaultCurrency   string `mapstructure:"DEFAULT_CURRENCY"`

	// Persistence. DB_DRIVER is one of mongo, postgres or memory.
	DBDriver     string `mapstructure:"DB_DRIVER"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`
	PostgresDSN  string `mapstructure:"POSTGRES_DSN"`

	// Redis configuration.
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB    int           `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB    int           `mapstructure:"REDIS_QUEUE_DB"`
	ServiceCacheTTL time.Duration `mapstructure:"SERVICE_CACHE_TTL"`

	// Payment gateway.
	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	UPIMerchantID       string `mapstructure:"UPI_MERCHANT_ID"`

	// PaymentFallbackEnabled issues synthetic orders when the gateway is
	// unreachable. Development and degraded mode only; refused in production.
	PaymentFallbackEnabled bool          `mapstructure:"PAYMENT_FALLBACK_ENABLED"`
	RefundOnCancel         bool          `mapstructure:"REFUND_ON_CANCEL"`
	PaymentTTL             time.Duration `mapstructure:"PAYMENT_TTL"`
	StalePaymentSweep      string        `mapstructure:"STALE_PAYMENT_SWEEP"`

	// Notifications. NOTIFY_MODE is inline (SMTP from the in-process queue)
	// or asynq (durable Redis-backed tasks).
	NotifyMode      string `mapstructure:"NOTIFY_MODE"`
	NotifyQueueSize int    `mapstructure:"NOTIFY_QUEUE_SIZE"`
	NotifyWorkers   int    `mapstructure:"NOTIFY_WORKERS"`
	NotifyTaskQueue string `mapstructure:"NOTIFY_TASK_QUEUE"`
	SMTPHost        string `mapstructure:"SMTP_HOST"`
	SMTPPort        int    `mapstructure:"SMTP_PORT"`
	SMTPUser        string `mapstructure:"SMTP_USER"`
	SMTPPass        string `mapstructure:"SMTP_PASS"`
}

var AppConfig Config

var ErrFallbackInProduction = errors.New("PAYMENT_FALLBACK_ENABLED must not be set in production")

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("DEFAULT_CURRENCY", "INR")
	v.SetDefault("DB_DRIVER", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "travelgo")
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("SERVICE_CACHE_TTL", "30s")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	v.SetDefault("UPI_MERCHANT_ID", "809674639-2@ybl")
	v.SetDefault("PAYMENT_FALLBACK_ENABLED", false)
	v.SetDefault("REFUND_ON_CANCEL", false)
	v.SetDefault("PAYMENT_TTL", "30m")
	v.SetDefault("STALE_PAYMENT_SWEEP", "@every 5m")
	v.SetDefault("NOTIFY_MODE", "inline")
	v.SetDefault("NOTIFY_QUEUE_SIZE", 256)
	v.SetDefault("NOTIFY_WORKERS", 4)
	v.SetDefault("NOTIFY_TASK_QUEUE", "notifications")
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASS", "")
}

// Load reads configuration from .env, config.yaml and the environment.
func Load(v *viper.Viper) (Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.DBDriver = strings.ToLower(cfg.DBDriver)
	cfg.NotifyMode = strings.ToLower(cfg.NotifyMode)
	cfg.DefaultCurrency = strings.ToUpper(cfg.DefaultCurrency)
	return cfg, cfg.Validate()
}

// LoadConfig populates AppConfig and exits on invalid configuration.
func LoadConfig() {
	cfg, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Validate rejects combinations that are unsafe to run.
func (c Config) Validate() error {
	if c.PaymentFallbackEnabled && c.IsProduction() {
		return ErrFallbackInProduction
	}
	switch c.DBDriver {
	case "mongo", "postgres", "memory":
	default:
		return errors.New("DB_DRIVER must be one of mongo, postgres, memory")
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required when DB_DRIVER=postgres")
	}
	if c.NotifyMode != "inline" && c.NotifyMode != "asynq" {
		return errors.New("NOTIFY_MODE must be inline or asynq")
	}
	if c.StripeSecretKey != "" && c.StripeWebhookSecret == "" {
		return errors.New("STRIPE_WEBHOOK_SECRET is required when STRIPE_SECRET_KEY is set")
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return AppConfig.IsProduction()
}
