// Package config loads service configuration from the environment so main
// stays lean. A local .env file is honored in development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full runtime configuration for the service.
type Config struct {
	Addr        string `envconfig:"ADDR" default:":8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	DatabaseURL   string `envconfig:"DATABASE_URL" required:"true"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"migrations"`
	RedisURL      string `envconfig:"REDIS_URL" default:""`

	JWTSigningKey string        `envconfig:"JWT_SIGNING_KEY" required:"true"`
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"12h"`

	// AdminEmail doubles as the seeded admin login and the recipient of
	// staff notifications. Empty disables both.
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:""`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:""`

	UploadDir string `envconfig:"UPLOAD_DIR" default:"uploads"`

	SMTP       SMTPConfig
	Dispatcher DispatcherConfig
}

// SMTPConfig configures the outbound mail transport.
type SMTPConfig struct {
	Host     string        `envconfig:"SMTP_HOST" default:"localhost"`
	Port     int           `envconfig:"SMTP_PORT" default:"1025"`
	User     string        `envconfig:"SMTP_USER" default:""`
	Password string        `envconfig:"SMTP_PASSWORD" default:""`
	From     string        `envconfig:"SMTP_FROM" default:"noreply@treasurehuntadventures.example"`
	Timeout  time.Duration `envconfig:"SMTP_TIMEOUT" default:"30s"`
	// RatePerSecond caps outbound sends across all workers.
	RatePerSecond int `envconfig:"SMTP_RATE_PER_SECOND" default:"10"`
}

// DispatcherConfig tunes the email queue dispatcher.
type DispatcherConfig struct {
	SweepInterval   time.Duration `envconfig:"DISPATCH_SWEEP_INTERVAL" default:"30s"`
	RetryInterval   time.Duration `envconfig:"DISPATCH_RETRY_INTERVAL" default:"5m"`
	CleanupInterval time.Duration `envconfig:"DISPATCH_CLEANUP_INTERVAL" default:"24h"`
	Retention       time.Duration `envconfig:"DISPATCH_SENT_RETENTION" default:"720h"`
	StaleAfter      time.Duration `envconfig:"DISPATCH_STALE_AFTER" default:"10m"`
	SendTimeout     time.Duration `envconfig:"DISPATCH_SEND_TIMEOUT" default:"30s"`
	BatchSize       int           `envconfig:"DISPATCH_BATCH_SIZE" default:"50"`
	Workers         int           `envconfig:"DISPATCH_WORKERS" default:"5"`
	QueueSize       int           `envconfig:"DISPATCH_QUEUE_SIZE" default:"100"`
}

// Load reads configuration from the environment, after loading .env when
// present. Missing required values fail fast.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Dispatcher.BatchSize <= 0 {
		return nil, fmt.Errorf("load config: dispatch batch size must be positive")
	}
	if cfg.Dispatcher.Workers <= 0 {
		return nil, fmt.Errorf("load config: dispatch workers must be positive")
	}
	return &cfg, nil
}
