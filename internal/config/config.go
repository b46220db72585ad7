package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/parcelgrid/rateshop/pkg/carrier"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// UPS
	UPSClientID      string        `envconfig:"UPS_CLIENT_ID"`
	UPSClientSecret  string        `envconfig:"UPS_CLIENT_SECRET"`
	UPSAccountNumber string        `envconfig:"UPS_ACCOUNT_NUMBER"`
	UPSBaseURL       string        `envconfig:"UPS_BASE_URL" default:"https://onlinetools.ups.com"`
	UPSAPIVersion    string        `envconfig:"UPS_API_VERSION" default:"v1"`
	UPSTimeout       time.Duration `envconfig:"UPS_HTTP_TIMEOUT" default:"30s"`
	UPSEnabled       bool          `envconfig:"UPS_ENABLED" default:"true"`
	UPSUseMock       bool          `envconfig:"UPS_USE_MOCK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"rateshop"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Validate fails fast on missing required values so that misconfiguration
// never surfaces as a runtime carrier failure.
func (c *Config) Validate() error {
	if c.UPSEnabled && !c.UPSUseMock {
		if c.UPSClientID == "" {
			return carrier.NewError(carrier.KindConfiguration, "ups", "UPS_CLIENT_ID is required")
		}
		if c.UPSClientSecret == "" {
			return carrier.NewError(carrier.KindConfiguration, "ups", "UPS_CLIENT_SECRET is required")
		}
		if c.UPSAccountNumber == "" {
			return carrier.NewError(carrier.KindConfiguration, "ups", "UPS_ACCOUNT_NUMBER is required")
		}
	}
	if c.UPSTimeout <= 0 {
		return carrier.NewError(carrier.KindConfiguration, "ups", "UPS_HTTP_TIMEOUT must be positive")
	}
	return nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("ups.enabled", c.UPSEnabled),
	}
}
