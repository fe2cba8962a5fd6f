package credential

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringAccount is the keyring account name the credential is filed under.
const KeyringAccount = "plex_token"

// KeyringStore keeps the credential in the operating system keyring
// (Keychain, Secret Service or Windows Credential Manager).
type KeyringStore struct {
	service string
	account string
}

// NewKeyringStore returns a keyring-backed Store for the given service name.
func NewKeyringStore(service string) *KeyringStore {
	return &KeyringStore{service: service, account: KeyringAccount}
}

// Get returns the stored credential. A missing entry is not an error.
func (k *KeyringStore) Get() (Credential, error) {
	v, err := keyring.Get(k.service, k.account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Credential{}, nil
		}
		return Credential{}, fmt.Errorf("%w: keyring get: %w", ErrStorageUnavailable, err)
	}
	return New(v), nil
}

func (k *KeyringStore) Set(c Credential) error {
	if err := keyring.Set(k.service, k.account, c.Value()); err != nil {
		return fmt.Errorf("%w: keyring set: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// Delete removes the stored credential. A missing entry is not an error.
func (k *KeyringStore) Delete() error {
	if err := keyring.Delete(k.service, k.account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%w: keyring delete: %w", ErrStorageUnavailable, err)
	}
	return nil
}
