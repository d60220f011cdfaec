package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"roombooking/internal/pkg/validator"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev" validate:"required"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8000" validate:"required"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:"file:bookings.db" validate:"required"`

	DailyLimit int           `envconfig:"BOOKING_DAILY_LIMIT" default:"5" validate:"gt=0"`
	Horizon    time.Duration `envconfig:"BOOKING_HORIZON" default:"8760h" validate:"gt=0"`
	LockWait   time.Duration `envconfig:"BOOKING_LOCK_WAIT" default:"5s" validate:"gt=0"`

	// Empty RabbitURL logs booking events instead of publishing them.
	RabbitURL       string `envconfig:"RABBIT_URL"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange" validate:"required"`

	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := validator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}
