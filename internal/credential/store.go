package credential

import (
	"errors"
	"fmt"

	"plexlink/internal/settings"
)

// ErrStorageUnavailable reports that a storage tier could not be used. It is
// never fatal: callers fall back to the next tier or continue signed out.
var ErrStorageUnavailable = errors.New("credential storage unavailable")

// Store is a single-slot credential store. Get returns an empty Credential
// and a nil error when nothing is stored.
type Store interface {
	Get() (Credential, error)
	Set(Credential) error
	Delete() error
}

// SettingsStore keeps the credential unencrypted in local settings storage.
type SettingsStore struct {
	settings settings.Store
}

// NewSettingsStore returns a Store backed by s under the plex_token key.
func NewSettingsStore(s settings.Store) *SettingsStore {
	return &SettingsStore{settings: s}
}

func (s *SettingsStore) Get() (Credential, error) {
	v, ok, err := s.settings.Get(settings.KeyToken)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if !ok {
		return Credential{}, nil
	}
	return New(v), nil
}

func (s *SettingsStore) Set(c Credential) error {
	if err := s.settings.Set(settings.KeyToken, c.Value()); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SettingsStore) Delete() error {
	if err := s.settings.Delete(settings.KeyToken); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}
