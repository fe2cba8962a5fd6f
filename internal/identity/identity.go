// Package identity provides the stable per-installation client identifier
// sent with every request to the identity service and to media servers.
package identity

import (
	"sync"

	"plexlink/internal/settings"
	"plexlink/pkg/logging"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Provider lazily creates and caches the client identity.
type Provider struct {
	store settings.Store

	mu     sync.RWMutex
	cached string

	group singleflight.Group
	newID func() string
}

// NewProvider returns a Provider that persists the identity in store.
func NewProvider(store settings.Store) *Provider {
	return &Provider{
		store: store,
		newID: func() string { return uuid.NewString() },
	}
}

// GetOrCreate returns the persisted client identity, creating and persisting
// a new one on first use. It never fails: when settings storage cannot be read
// or written, a fresh unpersisted identity is returned for this call only.
func (p *Provider) GetOrCreate() string {
	p.mu.RLock()
	if p.cached != "" {
		id := p.cached
		p.mu.RUnlock()
		return id
	}
	p.mu.RUnlock()

	// Concurrent first callers share one read-or-create round trip.
	result, _, _ := p.group.Do(settings.KeyClientID, func() (interface{}, error) {
		p.mu.RLock()
		if p.cached != "" {
			id := p.cached
			p.mu.RUnlock()
			return id, nil
		}
		p.mu.RUnlock()

		return p.loadOrCreate(), nil
	})
	return result.(string)
}

func (p *Provider) loadOrCreate() string {
	existing, ok, err := p.store.Get(settings.KeyClientID)
	if err != nil {
		logging.Warn("Identity", "Failed to read client identity: %v", err)
	} else if ok && existing != "" {
		p.remember(existing)
		return existing
	}

	id := p.newID()
	if err := p.store.Set(settings.KeyClientID, id); err != nil {
		logging.Warn("Identity", "Failed to persist client identity, using a temporary one: %v", err)
		return id
	}

	logging.Debug("Identity", "Created new client identity")
	p.remember(id)
	return id
}

func (p *Provider) remember(id string) {
	p.mu.Lock()
	p.cached = id
	p.mu.Unlock()
}
