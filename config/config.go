package config

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"sales-inventory/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Port      string          `mapstructure:"PORT" validate:"required"`
	Db        DbConfig        `mapstructure:",squash"`
	Jwt       JwtConfig       `mapstructure:",squash"`
	RabbitMQ  RabbitMQConfig  `mapstructure:",squash"`
	Nats      NatsConfig      `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Inventory InventoryConfig `mapstructure:",squash"`
}

type DbConfig struct {
	Host     string `mapstructure:"DB_HOST" validate:"required"`
	Port     string `mapstructure:"DB_PORT" validate:"required"`
	Username string `mapstructure:"DB_USERNAME" validate:"required"`
	Password string `mapstructure:"DB_PASSWORD" validate:"required"`
	DbName   string `mapstructure:"DB_DBNAME" validate:"required"`
	SSLMode  string `mapstructure:"DB_SSLMODE"`
}

// JwtConfig holds the HMAC key shared with the token issuer. Tokens are
// issued elsewhere; these services only validate them.
type JwtConfig struct {
	SecretKey string `mapstructure:"JWT_SECRETKEY" validate:"required,min=32"`
}

type RabbitMQConfig struct {
	Host                 string        `mapstructure:"RABBITMQ_HOST" validate:"required"`
	Port                 int           `mapstructure:"RABBITMQ_PORT" validate:"required,min=1,max=65535"`
	User                 string        `mapstructure:"RABBITMQ_USER" validate:"required"`
	Pass                 string        `mapstructure:"RABBITMQ_PASS"`
	Queue                string        `mapstructure:"RABBITMQ_QUEUE" validate:"required"`
	DeadLetterQueue      string        `mapstructure:"RABBITMQ_DEAD_LETTER_QUEUE" validate:"omitempty,nefield=Queue"`
	PublishAttempts      int           `mapstructure:"RABBITMQ_PUBLISH_ATTEMPTS" validate:"min=1"`
	PublishRetryInterval time.Duration `mapstructure:"RABBITMQ_PUBLISH_RETRY_INTERVAL" validate:"gte=0"`
	ConsumeRetryInterval time.Duration `mapstructure:"RABBITMQ_CONSUME_RETRY_INTERVAL" validate:"gt=0"`
	DialTimeout          time.Duration `mapstructure:"RABBITMQ_DIAL_TIMEOUT" validate:"gt=0"`
}

func (c RabbitMQConfig) Connection() rabbitmq.Config {
	return rabbitmq.Config{
		Host:        c.Host,
		Port:        c.Port,
		Username:    c.User,
		Password:    c.Pass,
		DialTimeout: c.DialTimeout,
	}
}

func (c RabbitMQConfig) QueueSpec() rabbitmq.QueueSpec {
	return rabbitmq.QueueSpec{Name: c.Queue, DeadLetterQueue: c.DeadLetterQueue}
}

func (c RabbitMQConfig) PublishPolicy() rabbitmq.RetryPolicy {
	return rabbitmq.RetryPolicy{MaxAttempts: c.PublishAttempts, Interval: c.PublishRetryInterval}
}

// ConsumePolicy never gives up; the consumer stops only on shutdown.
func (c RabbitMQConfig) ConsumePolicy() rabbitmq.RetryPolicy {
	return rabbitmq.RetryPolicy{MaxAttempts: 0, Interval: c.ConsumeRetryInterval}
}

// NatsConfig is optional. An empty Url disables stock notifications.
type NatsConfig struct {
	Url        string `mapstructure:"NATS_URL"`
	StreamName string `mapstructure:"NATS_STREAMNAME" validate:"required_with=Url"`
}

// RedisConfig is optional. An empty Addr disables the product cache.
type RedisConfig struct {
	Addr     string        `mapstructure:"REDIS_ADDR"`
	Password string        `mapstructure:"REDIS_PASSWORD"`
	DB       int           `mapstructure:"REDIS_DB" validate:"gte=0"`
	TTL      time.Duration `mapstructure:"REDIS_TTL" validate:"gt=0"`
}

type InventoryConfig struct {
	Url     string        `mapstructure:"INVENTORY_URL" validate:"required,url"`
	Timeout time.Duration `mapstructure:"INVENTORY_TIMEOUT" validate:"gt=0"`
}

var defaults = map[string]any{
	"DB_SSLMODE":                      "disable",
	"RABBITMQ_HOST":                   "127.0.0.1",
	"RABBITMQ_PORT":                   5672,
	"RABBITMQ_USER":                   "guest",
	"RABBITMQ_PASS":                   "guest",
	"RABBITMQ_QUEUE":                  "sales.order_confirmed",
	"RABBITMQ_DEAD_LETTER_QUEUE":      "",
	"RABBITMQ_PUBLISH_ATTEMPTS":       rabbitmq.PublishRetry.MaxAttempts,
	"RABBITMQ_PUBLISH_RETRY_INTERVAL": rabbitmq.PublishRetry.Interval.String(),
	"RABBITMQ_CONSUME_RETRY_INTERVAL": rabbitmq.ConsumeRetry.Interval.String(),
	"RABBITMQ_DIAL_TIMEOUT":           rabbitmq.DefaultDialTimeout.String(),
	"NATS_URL":                        "",
	"NATS_STREAMNAME":                 "stock",
	"REDIS_ADDR":                      "",
	"REDIS_PASSWORD":                  "",
	"REDIS_DB":                        0,
	"REDIS_TTL":                       "5m",
	"INVENTORY_URL":                   "http://localhost:8081/inventory-service",
	"INVENTORY_TIMEOUT":               "5s",
}

var required = []string{
	"PORT",
	"DB_HOST",
	"DB_PORT",
	"DB_USERNAME",
	"DB_PASSWORD",
	"DB_DBNAME",
	"JWT_SECRETKEY",
}

func InitConfig(ctx context.Context) (*Config, error) {
	var cfg Config

	// Reset viper to avoid any previous configuration
	viper.Reset()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetConfigType("env")

	// Try to load from .env file if it exists
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}

	_, err := os.Stat(envFile)
	if !os.IsNotExist(err) {
		viper.SetConfigFile(envFile)

		if err := viper.ReadInConfig(); err != nil {
			slog.WarnContext(ctx, "[InitConfig] ReadInConfig warning, continuing with env vars only", "error", err)
		} else {
			slog.InfoContext(ctx, "[InitConfig] Successfully loaded config file", "file", envFile)
		}
	} else {
		slog.InfoContext(ctx, "[InitConfig] No config file found, using environment variables")
	}

	viper.AutomaticEnv()

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
	for _, key := range required {
		_ = viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.ErrorContext(ctx, "[InitConfig] Unmarshal", "failed bind config", err)
		return nil, err
	}

	slog.InfoContext(ctx, "[InitConfig] Configuration after binding",
		"PORT", cfg.Port,
		"DB_HOST", cfg.Db.Host,
		"DB_PORT", cfg.Db.Port,
		"DB_DBNAME", cfg.Db.DbName,
		"RABBITMQ", cfg.RabbitMQ.Connection().Endpoint(),
		"RABBITMQ_QUEUE", cfg.RabbitMQ.Queue,
		"NATS_URL", cfg.Nats.Url,
		"REDIS_ADDR", cfg.Redis.Addr,
		"INVENTORY_URL", cfg.Inventory.Url)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if ok {
			for _, validationErr := range validationErrs {
				slog.ErrorContext(ctx, "[InitConfig] Validation error",
					"field", validationErr.Field(),
					"namespace", validationErr.Namespace(),
					"tag", validationErr.Tag())
			}
		} else {
			slog.ErrorContext(ctx, "[InitConfig] Validation", "error", err)
		}
		return nil, err
	}

	if cfg.RabbitMQ.User == "guest" {
		slog.WarnContext(ctx, "[InitConfig] RabbitMQ is using the development guest account", "endpoint", cfg.RabbitMQ.Connection().Endpoint())
	}

	slog.InfoContext(ctx, "[InitConfig] Config loaded successfully")
	return &cfg, nil
}
