package config

import (
	"fmt"
	"time"
)

// Config holds the bridge's configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Cloud      CloudConfig      `mapstructure:"cloud"`
	Channel    ChannelConfig    `mapstructure:"channel"`
	Session    SessionConfig    `mapstructure:"session"`
	Log        LogConfig        `mapstructure:"log"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BrandCredential is the per-brand OAuth client id/secret pair embedded in the
// vendor's official apps. These are shared protocol constants, not user secrets.
type BrandCredential struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// CloudConfig describes the vendor cloud endpoints and identification headers.
type CloudConfig struct {
	BaseURL       string                     `mapstructure:"base_url"`
	Region        string                     `mapstructure:"region"`
	IoTEndpoint   string                     `mapstructure:"iot_endpoint"`
	LoginProvider string                     `mapstructure:"login_provider"`
	ExchangeURL   string                     `mapstructure:"exchange_url"`
	Brands        map[string]BrandCredential `mapstructure:"brands"`
	DefaultBrand  string                     `mapstructure:"default_brand"`
	AppHeaders    map[string]string          `mapstructure:"app_headers"`
}

// TokenURL is the OAuth token endpoint.
func (c *CloudConfig) TokenURL() string {
	return c.BaseURL + "/oauth/token"
}

// IdentityURL is the identity-federation endpoint.
func (c *CloudConfig) IdentityURL() string {
	return c.BaseURL + "/api/v1/cognito/identityid"
}

// FavouritesURL is the saved-presets endpoint for one appliance.
func (c *CloudConfig) FavouritesURL(said string) string {
	return fmt.Sprintf("%s/api/v1/account/favorites/%s", c.BaseURL, said)
}

// CredentialExchangeURL is the temporary-credential endpoint. It is derived
// from the region unless overridden (tests point it at a local server).
func (c *CloudConfig) CredentialExchangeURL() string {
	if c.ExchangeURL != "" {
		return c.ExchangeURL
	}
	return fmt.Sprintf("https://cognito-identity.%s.amazonaws.com/", c.Region)
}

// BrandCredential returns the client pair for a brand, falling back to the
// configured default brand for unknown names.
func (c *CloudConfig) BrandCredential(brand string) BrandCredential {
	if cred, ok := c.Brands[brand]; ok {
		return cred
	}
	return c.Brands[c.DefaultBrand]
}

type ChannelConfig struct {
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	KeepAlive         time.Duration `mapstructure:"keep_alive"`
	SubscribeTimeout  time.Duration `mapstructure:"subscribe_timeout"`
	PublishTimeout    time.Duration `mapstructure:"publish_timeout"`
	DisconnectTimeout time.Duration `mapstructure:"disconnect_timeout"`
}

type SessionConfig struct {
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`
	RefreshBuffer       time.Duration `mapstructure:"refresh_buffer"`
	EventQueueSize      int           `mapstructure:"event_queue_size"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

type MonitoringConfig struct {
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.Cloud.BaseURL == "" {
		return fmt.Errorf("cloud.base_url is required")
	}
	if c.Cloud.Region == "" {
		return fmt.Errorf("cloud.region is required")
	}
	if c.Cloud.IoTEndpoint == "" {
		return fmt.Errorf("cloud.iot_endpoint is required")
	}
	if len(c.Cloud.Brands) == 0 {
		return fmt.Errorf("cloud.brands must define at least one brand")
	}
	if _, ok := c.Cloud.Brands[c.Cloud.DefaultBrand]; !ok {
		return fmt.Errorf("cloud.default_brand %q has no credential entry", c.Cloud.DefaultBrand)
	}
	if c.Session.EventQueueSize <= 0 {
		return fmt.Errorf("session.event_queue_size must be positive")
	}
	return nil
}
