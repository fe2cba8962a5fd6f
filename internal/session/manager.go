// Package session owns the authentication state of this client: whether a
// credential is available, the linking code currently shown to the user and
// the last error.
package session

import (
	"context"
	"errors"
	"sync"

	"plexlink/internal/credential"
	"plexlink/internal/events"
	"plexlink/internal/plex"
	"plexlink/pkg/logging"

	"golang.org/x/oauth2"
)

// Authenticator runs the device-link flow.
type Authenticator interface {
	CreateLinkingCode(ctx context.Context) (*plex.LinkingCode, error)
	PollForCredential(ctx context.Context, code *plex.LinkingCode, opts plex.PollOptions) (credential.Credential, error)
}

// Manager is the session state machine.
//
// Every operation that starts a new flow bumps a generation counter. Results
// of operations started under an older generation are discarded, so a slow
// response can never overwrite newer state.
type Manager struct {
	store    credential.Store
	auth     Authenticator
	bus      *events.Bus
	pollOpts plex.PollOptions

	mu         sync.Mutex
	state      State
	gen        uint64
	pollSeq    uint64
	cancelPoll context.CancelFunc
}

// Option configures a Manager.
type Option func(*Manager)

// WithBus publishes state changes and notifications on bus.
func WithBus(bus *events.Bus) Option {
	return func(m *Manager) {
		m.bus = bus
	}
}

// WithPollOptions sets the interval and timeout used by Poll.
func WithPollOptions(opts plex.PollOptions) Option {
	return func(m *Manager) {
		m.pollOpts = opts
	}
}

// NewManager creates a Manager in the Loading state. Call Load to read the
// stored credential.
func NewManager(store credential.Store, auth Authenticator, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		auth:  auth,
		state: State{Status: StatusLoading},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a snapshot of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Load reads the stored credential and leaves Loading. A storage failure is
// not fatal: the session becomes SignedOut with the error attached.
func (m *Manager) Load() State {
	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	cred, err := m.store.Get()

	m.mu.Lock()
	if gen != m.gen {
		// A sign-in or sign-out already replaced the loading state.
		s := m.state
		m.mu.Unlock()
		return s
	}
	switch {
	case err != nil:
		logging.Warn("Session", "Failed to load stored credential: %v", err)
		m.state = State{Status: StatusSignedOut, Error: "Failed to load saved session: " + err.Error()}
	case cred.IsEmpty():
		m.state = State{Status: StatusSignedOut}
	default:
		m.state = State{Status: StatusSignedIn, Credential: cred}
	}
	s := m.state
	m.mu.Unlock()

	m.publish(s)
	if err != nil {
		m.bus.Notify(events.ReasonCredentialLoadFailed, events.EventData{Error: err.Error()})
	}
	return s
}

// SignIn cancels any running poll and creates a new linking code. On failure
// the session reverts to SignedOut and no code is left visible.
func (m *Manager) SignIn(ctx context.Context) (*plex.LinkingCode, error) {
	m.mu.Lock()
	m.stopPollLocked()
	m.gen++
	gen := m.gen
	m.state.Status = StatusSigningIn
	m.state.LinkingCode = nil
	m.state.Error = ""
	s := m.state
	m.mu.Unlock()
	m.publish(s)

	code, err := m.auth.CreateLinkingCode(ctx)

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return nil, ErrSuperseded
	}
	if err != nil {
		m.state.Status = StatusSignedOut
		m.state.LinkingCode = nil
		if !plex.IsCancelled(err) {
			m.state.Error = err.Error()
		}
		s = m.state
		m.mu.Unlock()

		m.publish(s)
		if !plex.IsCancelled(err) {
			logging.Warn("Session", "Failed to create linking code: %v", err)
			m.bus.Notify(events.ReasonSignInFailed, events.EventData{Error: err.Error()})
		}
		return nil, err
	}
	m.state.LinkingCode = code
	s = m.state
	m.mu.Unlock()

	m.publish(s)
	return code, nil
}

// Poll waits for code to be approved. On success the credential is stored
// and the session becomes SignedIn. On failure the session stays SigningIn
// while the code is still displayed so the user can retry.
//
// Cancel, SignOut or a new SignIn abort the poll; its result is then
// discarded and the status is left as is. The credential is returned even
// when persisting it failed.
func (m *Manager) Poll(ctx context.Context, code *plex.LinkingCode) (credential.Credential, error) {
	m.mu.Lock()
	if code == nil || m.state.Status != StatusSigningIn || m.state.LinkingCode != code {
		m.mu.Unlock()
		return credential.Credential{}, ErrNoActiveCode
	}
	m.stopPollLocked()
	pollCtx, cancel := context.WithCancel(ctx)
	m.cancelPoll = cancel
	gen, seq := m.gen, m.pollSeq
	m.state.Error = ""
	s := m.state
	m.mu.Unlock()
	m.publish(s)

	cred, err := m.auth.PollForCredential(pollCtx, code, m.pollOpts)
	cancel()

	m.mu.Lock()
	if gen != m.gen || seq != m.pollSeq {
		m.mu.Unlock()
		if err != nil {
			return credential.Credential{}, err
		}
		return credential.Credential{}, ErrSuperseded
	}
	m.cancelPoll = nil

	if err != nil {
		if plex.IsCancelled(err) || errors.Is(err, context.Canceled) {
			m.mu.Unlock()
			return credential.Credential{}, err
		}

		if m.state.LinkingCode == nil {
			m.state.Status = StatusSignedOut
		}
		m.state.Error = err.Error()
		s = m.state
		m.mu.Unlock()

		logging.Warn("Session", "Linking failed: %v", err)
		m.publish(s)
		m.bus.Notify(events.ReasonSignInFailed, events.EventData{Error: err.Error()})
		return credential.Credential{}, err
	}
	m.gen++
	gen = m.gen
	m.mu.Unlock()

	return cred, m.storeCredential(gen, cred)
}

// Cancel aborts a running poll without changing the status.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopPollLocked()
}

// SetCredential stores a credential obtained elsewhere and signs in with it.
func (m *Manager) SetCredential(cred credential.Credential) error {
	if cred.IsEmpty() {
		return errors.New("empty credential")
	}

	m.mu.Lock()
	m.stopPollLocked()
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	return m.storeCredential(gen, cred)
}

// storeCredential persists cred and moves to SignedIn. A storage failure
// still signs in for this process and is reported to the caller.
func (m *Manager) storeCredential(gen uint64, cred credential.Credential) error {
	storeErr := m.store.Set(cred)

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return ErrSuperseded
	}
	m.state = State{Status: StatusSignedIn, Credential: cred}
	s := m.state
	m.mu.Unlock()

	m.publish(s)
	if storeErr != nil {
		logging.Warn("Session", "Failed to persist credential: %v", storeErr)
		m.bus.Notify(events.ReasonCredentialStoreFailed, events.EventData{Error: storeErr.Error()})
		return storeErr
	}
	logging.Info("Session", "Signed in")
	m.bus.Notify(events.ReasonSignedIn, events.EventData{})
	return nil
}

// SignOut deletes the stored credential from every tier and moves to
// SignedOut, whatever the previous state. A deletion failure is returned but
// does not keep the session signed in.
func (m *Manager) SignOut() error {
	m.mu.Lock()
	m.stopPollLocked()
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	err := m.store.Delete()
	if err != nil {
		logging.Warn("Session", "Credential deletion incomplete: %v", err)
	}

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return err
	}
	m.state = State{Status: StatusSignedOut}
	s := m.state
	m.mu.Unlock()

	m.publish(s)
	m.bus.Notify(events.ReasonSignedOut, events.EventData{})
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

// Token implements oauth2.TokenSource. The access token belongs in the
// X-Plex-Token header, not in Authorization.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Status != StatusSignedIn || m.state.Credential.IsEmpty() {
		return nil, ErrNotSignedIn
	}
	return &oauth2.Token{AccessToken: m.state.Credential.Value()}, nil
}

// Credential returns the active credential, if any.
func (m *Manager) Credential() (credential.Credential, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Status != StatusSignedIn {
		return credential.Credential{}, false
	}
	return m.state.Credential, !m.state.Credential.IsEmpty()
}

func (m *Manager) stopPollLocked() {
	if m.cancelPoll != nil {
		m.cancelPoll()
		m.cancelPoll = nil
	}
	m.pollSeq++
}

func (m *Manager) publish(s State) {
	m.bus.Publish(events.TopicSessionChanged, s)
}

var _ oauth2.TokenSource = (*Manager)(nil)
