// Package connection owns the media server endpoint and whether this client
// is currently connected to it.
package connection

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"plexlink/internal/credential"
	"plexlink/internal/events"
	"plexlink/internal/plex"
	"plexlink/internal/settings"
	"plexlink/pkg/logging"
)

var (
	// ErrNoServerConfigured is returned by Retry when no server URL is stored.
	ErrNoServerConfigured = errors.New("no server URL configured")

	// ErrSuperseded is returned when a newer Connect replaced this one. Its
	// result was discarded.
	ErrSuperseded = errors.New("superseded by a newer connection attempt")
)

// Status is the connection status.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusUnreachable
	StatusAuthInvalid
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusUnreachable:
		return "unreachable"
	case StatusAuthInvalid:
		return "auth_invalid"
	default:
		return "unknown"
	}
}

// State is a snapshot of the connection. ServerName is only set while
// Connected and Error is empty then.
type State struct {
	Status     Status
	ServerURL  string
	ServerName string
	Error      string
}

// Resolver verifies a server endpoint.
type Resolver interface {
	ResolveIdentity(ctx context.Context, serverURL string, cred credential.Credential) (*plex.ServerIdentity, error)
}

// Manager is the connection state machine.
type Manager struct {
	resolver Resolver
	settings settings.Store
	bus      *events.Bus
	yield    func()

	mu    sync.Mutex
	state State
	gen   uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithBus publishes state changes and notifications on bus.
func WithBus(bus *events.Bus) Option {
	return func(m *Manager) {
		m.bus = bus
	}
}

// WithYield replaces the scheduling yield made between publishing the
// Connecting state and starting the probe.
func WithYield(yield func()) Option {
	return func(m *Manager) {
		m.yield = yield
	}
}

// NewManager creates a Disconnected Manager, restoring the stored server URL.
func NewManager(resolver Resolver, store settings.Store, opts ...Option) *Manager {
	m := &Manager{
		resolver: resolver,
		settings: store,
		yield:    runtime.Gosched,
		state:    State{Status: StatusDisconnected},
	}
	for _, opt := range opts {
		opt(m)
	}

	serverURL, ok, err := store.Get(settings.KeyServerURL)
	if err != nil {
		logging.Warn("Connection", "Failed to read stored server URL: %v", err)
	} else if ok {
		m.state.ServerURL = serverURL
	}
	return m
}

// State returns a snapshot of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect stores serverURL and verifies it with cred.
//
// The Connecting state is always published before the probe starts, followed
// by a scheduling yield so observers can show it. Failures are classified:
// a rejected credential becomes AuthInvalid, everything else Unreachable.
func (m *Manager) Connect(ctx context.Context, serverURL string, cred credential.Credential) (State, error) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.state = State{Status: StatusConnecting, ServerURL: serverURL}
	s := m.state
	m.mu.Unlock()

	if err := m.settings.Set(settings.KeyServerURL, serverURL); err != nil {
		logging.Warn("Connection", "Failed to persist server URL: %v", err)
	}

	m.publish(s)
	m.yield()

	id, err := m.resolver.ResolveIdentity(ctx, serverURL, cred)

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return m.State(), ErrSuperseded
	}

	if err != nil {
		status := StatusUnreachable
		reason := events.ReasonServerUnreachable
		if plex.IsAuthInvalid(err) {
			status = StatusAuthInvalid
			reason = events.ReasonServerAuthInvalid
		}
		m.state.Status = status
		m.state.Error = errorMessage(err)
		s = m.state
		m.mu.Unlock()

		logging.Warn("Connection", "Connecting to %s failed (%s): %v", serverURL, status, err)
		m.publish(s)
		m.bus.Notify(reason, events.EventData{Server: serverURL, Error: s.Error})
		return s, err
	}

	m.state.Status = StatusConnected
	m.state.ServerName = id.DisplayName(serverURL)
	m.state.Error = ""
	s = m.state
	m.mu.Unlock()

	logging.Info("Connection", "Connected to %s (%s)", s.ServerName, serverURL)
	m.publish(s)
	m.bus.Notify(events.ReasonServerConnected, events.EventData{Server: s.ServerName})
	return s, nil
}

// Retry connects again to the stored server URL. Without one it fails with
// ErrNoServerConfigured and never enters Connecting.
func (m *Manager) Retry(ctx context.Context, cred credential.Credential) (State, error) {
	m.mu.Lock()
	serverURL := m.state.ServerURL
	if serverURL == "" {
		m.state.Status = StatusDisconnected
		m.state.Error = "No server URL configured"
		s := m.state
		m.mu.Unlock()

		m.publish(s)
		m.bus.Notify(events.ReasonNoServerConfigured, events.EventData{})
		return s, ErrNoServerConfigured
	}
	m.mu.Unlock()

	return m.Connect(ctx, serverURL, cred)
}

// SetServerURL stores serverURL without connecting.
func (m *Manager) SetServerURL(serverURL string) error {
	err := m.settings.Set(settings.KeyServerURL, serverURL)

	m.mu.Lock()
	m.state.ServerURL = serverURL
	s := m.state
	m.mu.Unlock()

	m.publish(s)
	return err
}

// Forget drops the stored server URL and disconnects.
func (m *Manager) Forget() error {
	m.mu.Lock()
	m.gen++
	m.state = State{Status: StatusDisconnected}
	s := m.state
	m.mu.Unlock()

	err := m.settings.Delete(settings.KeyServerURL)
	m.publish(s)
	return err
}

// ClearError drops the error message.
func (m *Manager) ClearError() {
	m.mu.Lock()
	m.state.Error = ""
	s := m.state
	m.mu.Unlock()
	m.publish(s)
}

func (m *Manager) publish(s State) {
	m.bus.Publish(events.TopicConnectionChanged, s)
}

func errorMessage(err error) string {
	var rerr *plex.ResolutionError
	if errors.As(err, &rerr) && rerr.Message != "" {
		return rerr.Message
	}
	return err.Error()
}
