package config

import "time"

const (
	// DefaultIdentityBaseURL is the identity service API base.
	DefaultIdentityBaseURL = "https://plex.tv"

	// DefaultAuthAppURL is the page where a user approves a linking code.
	DefaultAuthAppURL = "https://app.plex.tv/auth"

	// DefaultPollInterval is the fixed delay between two linking code polls.
	DefaultPollInterval = 1500 * time.Millisecond

	// DefaultPollTimeout bounds a whole linking attempt.
	DefaultPollTimeout = 2 * time.Minute

	// DefaultSettingsFile is the local settings file inside the config directory.
	DefaultSettingsFile = "settings.yaml"

	// DefaultKeyringService is the OS keyring service name credentials are filed under.
	DefaultKeyringService = "com.ralphie.music"
)

// GetDefaultConfig returns the built-in configuration.
func GetDefaultConfig() PlexlinkConfig {
	return PlexlinkConfig{
		Client: ClientConfig{
			Product:         "Ralphie Music",
			Version:         "0.1.0",
			Platform:        "Tauri",
			PlatformVersion: "2",
			Device:          "Desktop",
			DeviceName:      "Ralphie Music",
		},
		IdentityService: IdentityServiceConfig{
			BaseURL:    DefaultIdentityBaseURL,
			AuthAppURL: DefaultAuthAppURL,
		},
		Polling: PollingConfig{
			Interval: DefaultPollInterval,
			Timeout:  DefaultPollTimeout,
		},
		Server: ServerConfig{
			NativeChannel: true,
		},
		Storage: StorageConfig{
			SettingsFile:   DefaultSettingsFile,
			KeyringService: DefaultKeyringService,
			KeyringEnabled: true,
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}
