package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"time"

	"bookingsheet/pkg/logger"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const DotEnvFile = ".env"

type Config struct {
	Port      int    `env:"PORT" envDefault:"3000" validate:"min=1,max=65535"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`

	StoreFile string `env:"STORE_FILE" envDefault:"bookings.xlsx" validate:"required,endswith=.xlsx"`
	SheetName string `env:"SHEET_NAME" envDefault:"Bookings" validate:"required,max=31,excludesall=:\\/?*[]"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:"," validate:"min=1,dive,required"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h" validate:"gt=0"`
	MaxRequestSize int64         `env:"MAX_REQUEST_SIZE" envDefault:"1048576" validate:"gt=0"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s" validate:"gt=0"`

	Kafka KafkaConfig `envPrefix:"KAFKA_"`
}

// KafkaConfig configures the booking.saved producer. Events are disabled
// while Brokers is empty.
type KafkaConfig struct {
	Brokers      []string      `env:"BROKERS" envSeparator:"," validate:"dive,hostname_port"`
	Topic        string        `env:"TOPIC" envDefault:"bookings.saved" validate:"required"`
	MaxAttempts  int           `env:"MAX_ATTEMPTS" envDefault:"3" validate:"gt=0"`
	BatchTimeout time.Duration `env:"BATCH_TIMEOUT" envDefault:"10ms" validate:"gt=0"`
	RequireAcks  int           `env:"REQUIRE_ACKS" envDefault:"-1" validate:"oneof=-1 0 1"`
	Compression  string        `env:"COMPRESSION" envDefault:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Load reads an optional .env file, then parses the environment into a
// Config and validates it.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{DotEnvFile}
	}
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validate config: %w", err)
	}

	errMsg := "Configuration validation failed:\n"
	for i, fe := range validationErrors {
		errMsg += fmt.Sprintf("  %d. %s failed '%s' (got: %v)\n", i+1, fe.Namespace(), fe.Tag(), fe.Value())
	}
	return errors.New(errMsg)
}

func (cfg *Config) Addr() string {
	return ":" + strconv.Itoa(cfg.Port)
}

// StoreDir is the directory holding the store file.
func (cfg *Config) StoreDir() string {
	return filepath.Dir(cfg.StoreFile)
}

func (cfg *Config) NewLogger(serviceName string) *logger.Logger {
	return logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
		Service:   serviceName,
	})
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"log_level", cfg.LogLevel,
		"store_file", cfg.StoreFile,
		"sheet_name", cfg.SheetName,
		"cors_allowed_origins", cfg.CORSAllowedOrigins,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"kafka_enabled", cfg.Kafka.Enabled(),
		"kafka_brokers", cfg.Kafka.Brokers,
		"kafka_topic", cfg.Kafka.Topic,
	)
}
