package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Stripe    StripeConfig
	Auth      AuthConfig
	Webhook   WebhookConfig
	RateLimit RateLimitConfig
	OTEL      OTELConfig
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	GinMode         string        `env:"GIN_MODE" envDefault:"release"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	BaseURL         string        `env:"APP_BASE_URL" envDefault:"https://katagaki.vercel.app"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName   string `env:"DB_NAME" envDefault:"postgres"`
	SSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
	Migrate  bool   `env:"DB_MIGRATE" envDefault:"true"`
}

// URL 回傳 postgres:// 形式的連線字串，供 migration 使用
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	Currency      string `env:"STRIPE_CURRENCY" envDefault:"jpy"`
}

// AuthConfig 選擇 bearer token 的驗證方式：passthrough | jwt | firebase
type AuthConfig struct {
	Mode                    string `env:"AUTH_MODE" envDefault:"passthrough"`
	JWTSecret               string `env:"AUTH_JWT_SECRET"`
	JWTIssuer               string `env:"AUTH_JWT_ISSUER"`
	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
}

// WebhookConfig 決定付款完成事件是同步處理還是丟進 Redis Stream 由 worker 處理
type WebhookConfig struct {
	Mode             string        `env:"WEBHOOK_MODE" envDefault:"sync"`
	EventLeaseTTL    time.Duration `env:"WEBHOOK_EVENT_LEASE_TTL" envDefault:"30s"`
	EventRetention   time.Duration `env:"WEBHOOK_EVENT_RETENTION" envDefault:"72h"`
	ClaimMinIdleTime time.Duration `env:"WEBHOOK_CLAIM_MIN_IDLE" envDefault:"5s"`
	MaxDeliveries    int           `env:"WEBHOOK_MAX_DELIVERIES" envDefault:"10"`
	RedriveInterval  time.Duration `env:"WEBHOOK_REDRIVE_INTERVAL" envDefault:"1m"`
}

type RateLimitConfig struct {
	CheckoutRPS   float64 `env:"CHECKOUT_RATE_RPS" envDefault:"1"`
	CheckoutBurst int     `env:"CHECKOUT_RATE_BURST" envDefault:"5"`
}

type OTELConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	Insecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	ServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"katagaki"`
	SampleRatio float64 `env:"OTEL_TRACES_SAMPLER_ARG" envDefault:"1"`
}

var AppConfig *Config

func LoadConfig() (*Config, error) {
	// .env 不存在時直接使用環境變數
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return AppConfig, nil
}

func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case "passthrough", "firebase":
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode)
	}

	switch c.Webhook.Mode {
	case "sync", "async":
	default:
		return fmt.Errorf("unknown WEBHOOK_MODE %q", c.Webhook.Mode)
	}

	if c.RateLimit.CheckoutRPS < 0 {
		return fmt.Errorf("CHECKOUT_RATE_RPS must be >= 0")
	}
	if c.RateLimit.CheckoutBurst < 1 {
		return fmt.Errorf("CHECKOUT_RATE_BURST must be >= 1")
	}
	if c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1 {
		return fmt.Errorf("OTEL_TRACES_SAMPLER_ARG must be within [0,1]")
	}
	return nil
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
		Migrate:  true,
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Server: ServerConfig{
			Port:    "0",
			GinMode: "test",
			BaseURL: "http://localhost:3000",
		},
		Database: *testConfig,
		Redis:    testRedisConfig,
		Stripe: StripeConfig{
			SecretKey:     "sk_test_dummy",
			WebhookSecret: "whsec_test_secret",
			Currency:      "jpy",
		},
		Auth:    AuthConfig{Mode: "passthrough"},
		Webhook: WebhookConfig{Mode: "sync", EventLeaseTTL: 30 * time.Second, EventRetention: time.Hour, ClaimMinIdleTime: time.Second, MaxDeliveries: 3, RedriveInterval: time.Minute},
		RateLimit: RateLimitConfig{
			CheckoutRPS:   100,
			CheckoutBurst: 100,
		},
	}
}
