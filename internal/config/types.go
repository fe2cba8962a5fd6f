package config

import "time"

// PlexlinkConfig is the top-level configuration structure for plexlink.
type PlexlinkConfig struct {
	Client          ClientConfig          `yaml:"client"`
	IdentityService IdentityServiceConfig `yaml:"identityService"`
	Polling         PollingConfig         `yaml:"polling"`
	Server          ServerConfig          `yaml:"server"`
	Storage         StorageConfig         `yaml:"storage"`
	HTTP            HTTPConfig            `yaml:"http"`
	Log             LogConfig             `yaml:"log"`
	Notifications   NotificationsConfig   `yaml:"notifications"`
}

// ClientConfig describes this client to the identity service and media servers.
// The values end up in the X-Plex-* request headers.
type ClientConfig struct {
	Product         string `yaml:"product,omitempty"`
	Version         string `yaml:"version,omitempty"`
	Platform        string `yaml:"platform,omitempty"`
	PlatformVersion string `yaml:"platformVersion,omitempty"`
	Device          string `yaml:"device,omitempty"`
	DeviceName      string `yaml:"deviceName,omitempty"`
}

// IdentityServiceConfig locates the remote identity service.
type IdentityServiceConfig struct {
	BaseURL    string `yaml:"baseURL,omitempty"`    // API base, PINs live under /api/v2/pins
	AuthAppURL string `yaml:"authAppURL,omitempty"` // Page the user opens to approve a PIN
}

// PollingConfig controls how long and how often a linking code is polled.
type PollingConfig struct {
	Interval time.Duration `yaml:"interval,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	// TransientRetries is how many times a single poll is retried after a
	// 5xx/429 response or a transport error. Zero aborts on the first failure.
	TransientRetries int `yaml:"transientRetries,omitempty"`
}

// ServerConfig holds media server connection settings.
type ServerConfig struct {
	// DefaultURL is used when no server URL has been stored yet.
	DefaultURL string `yaml:"defaultURL,omitempty"`
	// NativeChannel enables the direct identity channel that is tried before
	// the regular header-carrying probes.
	NativeChannel bool `yaml:"nativeChannel"`
}

// StorageConfig controls where local state is kept.
type StorageConfig struct {
	SettingsFile   string `yaml:"settingsFile,omitempty"`
	KeyringService string `yaml:"keyringService,omitempty"`
	KeyringEnabled bool   `yaml:"keyringEnabled"`
}

// HTTPConfig tunes the shared HTTP client.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// LogConfig selects log verbosity and output format.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// NotificationsConfig customizes notification messages.
type NotificationsConfig struct {
	// Templates maps a notification reason (for example "ServerConnected")
	// to its message. {{.Server}}, {{.Error}} and {{if .Field}}...{{end}}
	// are substituted.
	Templates map[string]string `yaml:"templates,omitempty"`
}
