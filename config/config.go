package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Payment  PaymentConfig
}

type ServerConfig struct {
	Port         string        `envconfig:"SERVER_PORT" default:"8080"`
	Env          string        `envconfig:"APP_ENV" default:"development"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
}

type DatabaseConfig struct {
	DSN             string        `envconfig:"DATABASE_DSN" default:"root:@tcp(localhost:3306)/cornerconsole?charset=utf8mb4&parseTime=True&loc=UTC"`
	MaxIdleConns    int           `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"10"`
	MaxOpenConns    int           `envconfig:"DATABASE_MAX_OPEN_CONNS" default:"100"`
	ConnMaxLifetime time.Duration `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"1h"`
	Seed            bool          `envconfig:"DATABASE_SEED" default:"false"`
}

type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" default:"change-me-in-production"`
	Expiry time.Duration `envconfig:"JWT_EXPIRY" default:"24h"`
	Issuer string        `envconfig:"JWT_ISSUER" default:"cornerconsole"`
}

type StripeConfig struct {
	SecretKey     string        `envconfig:"STRIPE_SECRET_KEY"`
	WebhookSecret string        `envconfig:"STRIPE_WEBHOOK_SECRET"`
	Timeout       time.Duration `envconfig:"STRIPE_TIMEOUT" default:"15s"`
}

type PaymentConfig struct {
	Currency       string        `envconfig:"PAYMENT_CURRENCY" default:"inr"`
	FrontendURL    string        `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	CheckoutExpiry time.Duration `envconfig:"CHECKOUT_EXPIRY" default:"30m"`
}

// Load reads .env when present, then the environment. Missing variables fall
// back to development defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("[config] failed to process environment: %v", err)
	}
	return &cfg
}
