package cmd

import (
	"net/http"
	"os"
	"path/filepath"

	"plexlink/internal/config"
	"plexlink/internal/connection"
	"plexlink/internal/credential"
	"plexlink/internal/events"
	"plexlink/internal/identity"
	"plexlink/internal/native"
	"plexlink/internal/plex"
	"plexlink/internal/session"
	"plexlink/internal/settings"
	"plexlink/pkg/logging"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg      config.PlexlinkConfig
	settings *settings.FileStore
	session  *session.Manager
	conn     *connection.Manager
}

// setupApp loads .env and the configuration, initializes logging and wires
// the components. The stored session is loaded before it returns.
func setupApp() (*app, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	dir := configPath
	if dir == "" {
		dir = config.GetDefaultConfigPathOrPanic()
	}

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logging.Init(level, cfg.Log.Format, os.Stderr)

	a := newApp(cfg, dir)
	a.session.Load()
	return a, nil
}

// newApp wires every component from cfg. Relative settings paths are
// resolved against dir.
func newApp(cfg config.PlexlinkConfig, dir string) *app {
	settingsPath := cfg.Storage.SettingsFile
	if !filepath.IsAbs(settingsPath) {
		settingsPath = filepath.Join(dir, settingsPath)
	}
	fs := settings.NewFileStore(settingsPath)
	ids := identity.NewProvider(fs)

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	opts := []plex.ClientOption{
		plex.WithHTTPClient(httpClient),
		plex.WithClientInfo(plex.ClientInfo{
			Product:         cfg.Client.Product,
			Version:         cfg.Client.Version,
			Platform:        cfg.Client.Platform,
			PlatformVersion: cfg.Client.PlatformVersion,
			Device:          cfg.Client.Device,
			DeviceName:      cfg.Client.DeviceName,
		}),
		plex.WithBaseURL(cfg.IdentityService.BaseURL),
		plex.WithAuthAppURL(cfg.IdentityService.AuthAppURL),
		plex.WithTransientRetries(cfg.Polling.TransientRetries),
	}
	if cfg.Server.NativeChannel {
		opts = append(opts, plex.WithNativeChannel(native.NewChannel(httpClient)))
	}
	client := plex.NewClient(ids, opts...)

	var secure credential.Store
	if cfg.Storage.KeyringEnabled {
		secure = credential.NewKeyringStore(cfg.Storage.KeyringService)
	}
	store := credential.NewFallbackStore(secure, credential.NewSettingsStore(fs))

	bus := events.NewBus()
	applyTemplates(bus, cfg.Notifications.Templates)
	watchEvents(bus)

	return &app{
		cfg:      cfg,
		settings: fs,
		session: session.NewManager(store, client,
			session.WithBus(bus),
			session.WithPollOptions(plex.PollOptions{
				Interval: cfg.Polling.Interval,
				Timeout:  cfg.Polling.Timeout,
			}),
		),
		conn: connection.NewManager(client, fs, connection.WithBus(bus)),
	}
}

// applyTemplates installs the configured notification messages.
func applyTemplates(bus *events.Bus, templates map[string]string) {
	for reason, tmpl := range templates {
		bus.SetTemplate(events.EventReason(reason), tmpl)
		logging.Debug("CLI", "Using custom notification template for %s", reason)
	}
}

// watchEvents sends state changes and notifications to the log.
func watchEvents(bus *events.Bus) {
	_ = bus.Subscribe(events.TopicSessionChanged, func(s session.State) {
		logging.Debug("Session", "State changed: status=%s", s.Status)
	})
	_ = bus.Subscribe(events.TopicConnectionChanged, func(s connection.State) {
		logging.Debug("Connection", "State changed: status=%s, server=%s", s.Status, s.ServerURL)
	})
	_ = bus.Subscribe(events.TopicNotify, func(n events.Notification) {
		if n.Type == events.EventTypeWarning {
			logging.Info("Notify", "[%s] %s", n.Reason, n.Message)
			return
		}
		logging.Debug("Notify", "[%s] %s", n.Reason, n.Message)
	})
}

// storedClientID returns the persisted client identifier without creating one.
func (a *app) storedClientID() string {
	id, ok, err := a.settings.Get(settings.KeyClientID)
	if err != nil || !ok {
		return ""
	}
	return id
}
