package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	insecureDefaultSecret = "change-me-stateview-jwt-secret"
)

// Config holds all configuration for the service.
type Config struct {
	ServiceName            string        `mapstructure:"SERVICE_NAME"`
	HTTPPort               string        `mapstructure:"HTTP_PORT"`
	GRPCPort               string        `mapstructure:"GRPC_PORT"`
	StorageDriver          string        `mapstructure:"STORAGE_DRIVER"`
	MongoURI               string        `mapstructure:"MONGO_URI"`
	MongoDatabase          string        `mapstructure:"MONGO_DATABASE"`
	NATSURL                string        `mapstructure:"NATS_URL"`
	JWTSecret              string        `mapstructure:"JWT_SECRET"`
	PrometheusMetricsPort  string        `mapstructure:"PROMETHEUS_METRICS_PORT"`
	LogLevel               string        `mapstructure:"LOG_LEVEL"`
	LogFormat              string        `mapstructure:"LOG_FORMAT"`
	OTExporterOTLPEndpoint string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	RequestTimeout         time.Duration `mapstructure:"HTTP_REQUEST_TIMEOUT"`
	AggregateRetryMaxWait  time.Duration `mapstructure:"AGGREGATE_RETRY_MAX_ELAPSED"`
}

// LoadConfig reads configuration from environment variables. main loads .env through godotenv first.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	v := viper.New()
	v.SetDefault("SERVICE_NAME", "stateview-review-service")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("GRPC_PORT", "50053")
	v.SetDefault("STORAGE_DRIVER", StorageMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "stateview")
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("JWT_SECRET", insecureDefaultSecret)
	v.SetDefault("PROMETHEUS_METRICS_PORT", "9093")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("HTTP_REQUEST_TIMEOUT", "15s")
	v.SetDefault("AGGREGATE_RETRY_MAX_ELAPSED", "3s")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == insecureDefaultSecret {
		appLogger.Warn("JWT_SECRET is set to its default insecure value. Please set a strong secret in your environment.")
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("grpc_port", cfg.GRPCPort),
		zap.String("storage_driver", cfg.StorageDriver),
		zap.Bool("mongo_uri_present", cfg.MongoURI != ""),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("nats_url", cfg.NATSURL),
		zap.String("prometheus_port", cfg.PrometheusMetricsPort),
		zap.String("otel_endpoint", cfg.OTExporterOTLPEndpoint),
		zap.Duration("aggregate_retry_max_elapsed", cfg.AggregateRetryMaxWait),
	)
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StorageMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DATABASE are required with STORAGE_DRIVER=%s", StorageMongo)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q, expected %q or %q", c.StorageDriver, StorageMongo, StorageMemory)
	}
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.AggregateRetryMaxWait < 0 {
		return fmt.Errorf("AGGREGATE_RETRY_MAX_ELAPSED cannot be negative")
	}
	return nil
}
