package config

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/hearthware/ovenlink/pkg/constants"
	"github.com/hearthware/ovenlink/pkg/errors"
	"github.com/hearthware/ovenlink/pkg/logger"
)

// LoadConfig loads the configuration from file and environment variables.
// A change to the config file is logged but not re-wired into running sessions.
func LoadConfig(log logger.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/ovenlink/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("OVENLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info(context.Background(), "Config file changed; restart to apply",
			logger.Fields{"file": e.Name, "op": e.Op.String()})
	})
	v.WatchConfig()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	// EMEA production endpoints of the vendor cloud.
	v.SetDefault("cloud.base_url", "https://prod-api.whrcloud.eu")
	v.SetDefault("cloud.region", "eu-central-1")
	v.SetDefault("cloud.iot_endpoint", "wt-eu.applianceconnect.net")
	v.SetDefault("cloud.login_provider", "cognito-identity.amazonaws.com")
	v.SetDefault("cloud.default_brand", "whirlpool")

	// Client pairs embedded in the official apps, one per brand.
	v.SetDefault("cloud.brands", map[string]map[string]string{
		"whirlpool": {
			"client_id":     "whirlpool_emea_android_v2",
			"client_secret": "90_3TBRfXfcdCYJj6L5BThEqOBZNkEchrTPT7loqm0gBS_tyeFIIEv47mmYTZkb6",
		},
		"hotpoint": {
			"client_id":     "hotpoint_emea_android_v2",
			"client_secret": "Z55aTMbCvlpjyma4ynW0m16S3ro1IA9cxzRQGf3IHN9mcfKesZyPT6bfnfevPdr1",
		},
		"kitchenaid": {
			"client_id":     "Kitchenaid_iOS",
			"client_secret": "kkdPquOHfNH-iIinccTdhAkJmaIdWBhLehhLrfoXRWbKjEpqpdu92PISF_yJEWQs72D2yeC0PdoEKeWgHR9JRA",
		},
		"maytag": {
			"client_id":     "maytag_ios",
			"client_secret": "OfTy3A3rV4BHuhujkPThVDE9-SFgOymJyUrSbixjViATjCGviXucSKq2OxmPWm8DDj9D1IFno_mZezTYduP-Ig",
		},
	})

	// Headers the official Android app sends on every request.
	v.SetDefault("cloud.app_headers", map[string]string{
		"User-Agent":         "okhttp/3.12.0",
		"wp-client-brand":    "WHIRLPOOL",
		"wp-client-region":   "EMEA",
		"wp-client-country":  "GB",
		"wp-client-language": "en",
		"wp-client-version":  "7.0.5",
		"wp-client-appName":  "com.adbglobal.whirlpool",
		"wp-client-platform": "ANDROID",
	})

	v.SetDefault("channel.connect_timeout", constants.ConnectTimeout)
	v.SetDefault("channel.keep_alive", constants.KeepAliveInterval)
	v.SetDefault("channel.subscribe_timeout", constants.SubscribeTimeout)
	v.SetDefault("channel.publish_timeout", constants.PublishTimeout)
	v.SetDefault("channel.disconnect_timeout", constants.DisconnectTimeout)

	v.SetDefault("session.health_check_interval", constants.DefaultHealthCheckInterval)
	v.SetDefault("session.refresh_buffer", constants.CredentialRefreshBuffer)
	v.SetDefault("session.event_queue_size", constants.DefaultEventQueueSize)

	v.SetDefault("log.level", "info")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", constants.ServiceName)
	v.SetDefault("tracing.sampling_rate", 1.0)

	v.SetDefault("monitoring.pprof_enabled", false)
}
