package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"plexlink/pkg/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/plexlink"
	configFileName = "config.yaml"
)

// Environment variables that override file configuration.
const (
	EnvServerURL    = "PLEXLINK_SERVER_URL"
	EnvLogLevel     = "PLEXLINK_LOG_LEVEL"
	EnvLogFormat    = "PLEXLINK_LOG_FORMAT"
	EnvPollInterval = "PLEXLINK_POLL_INTERVAL"
	EnvPollTimeout  = "PLEXLINK_POLL_TIMEOUT"
	EnvNoKeyring    = "PLEXLINK_NO_KEYRING"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadDotEnv loads variables from the given .env files (default ".env" in the
// working directory). Missing files are not an error. Variables already present
// in the process environment, even empty ones, are left alone.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		logging.Debug("ConfigLoader", "No .env file found, using process environment")
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	logging.Debug("ConfigLoader", "Loaded environment from %v", existing)
	return nil
}

// LoadConfig loads configuration from a single specified directory, applies
// environment overrides and validates the result.
func LoadConfig(configPath string) (PlexlinkConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return PlexlinkConfig{}, err
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return PlexlinkConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	if err := ApplyEnvOverrides(&config); err != nil {
		return PlexlinkConfig{}, err
	}

	if err := config.Validate(); err != nil {
		return PlexlinkConfig{}, err
	}

	return config, nil
}

// ApplyEnvOverrides copies PLEXLINK_* environment variables onto cfg.
func ApplyEnvOverrides(cfg *PlexlinkConfig) error {
	if v := os.Getenv(EnvServerURL); v != "" {
		cfg.Server.DefaultURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv(EnvPollInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPollInterval, v, err)
		}
		cfg.Polling.Interval = d
	}
	if v := os.Getenv(EnvPollTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPollTimeout, v, err)
		}
		cfg.Polling.Timeout = d
	}
	if v := os.Getenv(EnvNoKeyring); v != "" {
		disabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvNoKeyring, v, err)
		}
		if disabled {
			cfg.Storage.KeyringEnabled = false
		}
	}
	return nil
}
