package config

import (
	"time"
)

const (
	DefaultLocation          = "global"
	DefaultWait              = 10 * time.Second
	DefaultMaxRetries        = 3
	DefaultServeAddr         = ":8080"
	DefaultLiveCheckLocation = "us-central1"
)

// GetDefaultConfig returns the configuration used when no file is present.
func GetDefaultConfig() Config {
	return Config{
		Location: DefaultLocation,
		LogLevel: "info",
		Provision: ProvisionConfig{
			Sample:     SampleWebhook,
			Wait:       DefaultWait,
			MaxRetries: DefaultMaxRetries,
		},
		Serve: ServeConfig{
			Addr: DefaultServeAddr,
		},
		LiveCheck: LiveCheckConfig{
			Location: DefaultLiveCheckLocation,
		},
	}
}
