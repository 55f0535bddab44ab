package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Driver          string        `env:"DB_DRIVER" env-default:"postgres"`
	Host            string        `env:"DB_HOST" env-default:"localhost"`
	Port            string        `env:"DB_PORT" env-default:"5432"`
	User            string        `env:"DB_USER" env-default:"postgres"`
	Password        string        `env:"DB_PASSWORD" env-default:"password"`
	DBName          string        `env:"DB_NAME" env-default:"pastelaria"`
	SSLMode         string        `env:"DB_SSL_MODE" env-default:"disable"`
	SQLitePath      string        `env:"DB_SQLITE_PATH" env-default:"pastelaria.db"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	LogLevel        string        `env:"DB_LOG_LEVEL" env-default:"info"`
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GormLogLevel maps DB_LOG_LEVEL onto the gorm logger levels
func (c *DBConfig) GormLogLevel() logger.LogLevel {
	switch c.LogLevel {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	default:
		return logger.Info
	}
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string `env:"SERVER_PORT" env-default:"8080"`
	Env  string `env:"APP_ENV" env-default:"development"`
}

// JWTConfig holds JWT configuration. An empty signing key disables auth.
type JWTConfig struct {
	SigningKey      string `env:"JWT_SIGNING_KEY"`
	ExpirationHours int    `env:"JWT_EXPIRATION_HOURS" env-default:"24"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
	File  string `env:"LOG_FILE"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string `env:"METRICS_PREFIX" env-default:"pastelaria"`
}

// S3Config holds the S3 image backend configuration
type S3Config struct {
	Bucket          string `env:"S3_BUCKET"`
	Region          string `env:"S3_REGION" env-default:"us-east-1"`
	Endpoint        string `env:"S3_ENDPOINT"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	CreateBucket    bool   `env:"S3_CREATE_BUCKET" env-default:"false"`
}

// StorageConfig holds image storage configuration
type StorageConfig struct {
	Backend      string `env:"STORAGE_BACKEND" env-default:"fs"`
	BaseDir      string `env:"STORAGE_BASE_DIR" env-default:"./storage"`
	OrphanPolicy string `env:"IMAGE_ORPHAN_POLICY" env-default:"keep"`
	S3           S3Config
}

// Config holds all configuration
type Config struct {
	ServiceName string `env:"SERVICE_NAME" env-default:"pastelaria-service"`
	DB          DBConfig
	Server      ServerConfig
	JWT         JWTConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Storage     StorageConfig
}

// Load loads configuration from an optional .env file and the process environment
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be 'postgres' or 'sqlite', got %q", c.DB.Driver)
	}

	switch c.Storage.Backend {
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("STORAGE_BASE_DIR is required for the fs backend")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 backend")
		}
	case "memory":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be 'fs', 's3' or 'memory', got %q", c.Storage.Backend)
	}

	switch c.Storage.OrphanPolicy {
	case "keep", "remove":
	default:
		return fmt.Errorf("IMAGE_ORPHAN_POLICY must be 'keep' or 'remove', got %q", c.Storage.OrphanPolicy)
	}

	return nil
}

// AuthEnabled reports whether bearer tokens are required on the API
func (c *Config) AuthEnabled() bool {
	return c.JWT.SigningKey != ""
}

// LogFields returns the configuration as zap fields for the startup log
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_driver", c.DB.Driver),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_user", c.DB.User),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.String("storage_backend", c.Storage.Backend),
		zap.String("image_orphan_policy", c.Storage.OrphanPolicy),
		zap.Bool("auth_enabled", c.AuthEnabled()),
	}
}
