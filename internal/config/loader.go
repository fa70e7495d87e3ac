package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"cxkit/pkg/logging"
)

const (
	userConfigDir  = ".config/cxkit"
	configFileName = "config.yaml"
)

// Environment variables read by ApplyEnv.
const (
	EnvProjectID      = "PROJECT_ID"
	EnvQuotaProjectID = "QUOTA_PROJECT_ID"
	EnvTestFunction   = "TEST_FUNCTION"
	EnvSvcAccountFile = "SVC_ACCOUNT_FILE"
	EnvLogLevel       = logging.EnvLogLevel
	EnvPort           = "PORT"
)

var osUserHomeDir = os.UserHomeDir

// DefaultConfigPath returns the user configuration directory.
func DefaultConfigPath() string {
	homeDir, err := osUserHomeDir()
	if err != nil {
		logging.Warn("ConfigLoader", "Could not determine home directory: %v", err)
		return userConfigDir
	}
	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads config.yaml from configPath on top of the defaults. A
// missing file is not an error.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return Config{}, &ConfigurationError{
			FilePath:  configFilePath,
			ErrorType: "io",
			Message:   "cannot read file",
			Err:       err,
		}
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, &ConfigurationError{
			FilePath:    configFilePath,
			ErrorType:   "parse",
			Message:     "malformed YAML",
			Err:         err,
			Suggestions: []string{"check indentation", "durations are written like 10s or 1m"},
		}
	}
	logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// ApplyEnv overrides config with the environment variables that are set.
// lookup is usually os.LookupEnv.
func ApplyEnv(config *Config, lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&config.ProjectID, EnvProjectID)
	set(&config.QuotaProjectID, EnvQuotaProjectID)
	set(&config.CredentialsFile, EnvSvcAccountFile)
	set(&config.LogLevel, EnvLogLevel)
	set(&config.LiveCheck.Function, EnvTestFunction)
	if port, ok := lookup(EnvPort); ok && port != "" {
		config.Serve.Addr = ":" + port
	}
}

// Load reads the file under configPath and applies the process environment.
func Load(configPath string) (Config, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return Config{}, err
	}
	ApplyEnv(&config, os.LookupEnv)
	return config, nil
}

// String renders the effective configuration as YAML.
func (c Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("<unprintable config: %v>", err)
	}
	return string(out)
}
