package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/parcelbridge/rating/pkg/carrier"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// UPS
	UPSClientID       string `envconfig:"UPS_CLIENT_ID"`
	UPSClientSecret   string `envconfig:"UPS_CLIENT_SECRET"`
	UPSBaseURL        string `envconfig:"UPS_BASE_URL" default:"https://wwwcie.ups.com"`
	UPSAuthURL        string `envconfig:"UPS_AUTH_URL" default:"https://onlinetools.ups.com/security/v1/oauth/token"`
	UPSVersion        string `envconfig:"UPS_API_VERSION" default:"v2409"`
	UPSRequestOption  string `envconfig:"UPS_REQUEST_OPTION" default:"Rate"`
	UPSTimeoutSeconds int    `envconfig:"UPS_TIMEOUT_SECONDS" default:"30"`
	UPSEnabled        bool   `envconfig:"UPS_ENABLED" default:"true"`
	UPSUseMock        bool   `envconfig:"UPS_USE_MOCK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"parcelbridge-rating"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.UPSEnabled && !c.UPSUseMock {
		if c.UPSClientID == "" || c.UPSClientSecret == "" {
			return carrier.NewCarrierError(carrier.CodeConfigError,
				"UPS_CLIENT_ID and UPS_CLIENT_SECRET are required when UPS is enabled")
		}
	}
	return nil
}

// UPSTimeout returns the per-call timeout for UPS network calls.
func (c *Config) UPSTimeout() time.Duration {
	return time.Duration(c.UPSTimeoutSeconds) * time.Second
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("ups.enabled", c.UPSEnabled),
	}
}
