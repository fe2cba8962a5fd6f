package credential

import (
	"errors"

	"plexlink/pkg/logging"
)

// FallbackStore composes a secure tier with an unencrypted fallback tier.
type FallbackStore struct {
	secure   Store
	fallback Store
}

// NewFallbackStore returns a two-tier Store. secure may be nil, in which case
// only the fallback tier is used.
func NewFallbackStore(secure, fallback Store) *FallbackStore {
	return &FallbackStore{secure: secure, fallback: fallback}
}

// Get prefers the secure tier. When it holds a credential, any copy left in
// the fallback tier is deleted so the value does not stay unencrypted.
func (f *FallbackStore) Get() (Credential, error) {
	var secureErr error
	if f.secure != nil {
		c, err := f.secure.Get()
		if err == nil && !c.IsEmpty() {
			f.migrate()
			return c, nil
		}
		if err != nil {
			logging.Debug("Credential", "Secure store read failed, trying fallback: %v", err)
			secureErr = err
		}
	}

	c, err := f.fallback.Get()
	if err != nil {
		return Credential{}, errors.Join(secureErr, err)
	}
	return c, nil
}

func (f *FallbackStore) migrate() {
	stale, err := f.fallback.Get()
	if err != nil || stale.IsEmpty() {
		return
	}
	if err := f.fallback.Delete(); err != nil {
		logging.Warn("Credential", "Failed to remove fallback credential copy: %v", err)
		return
	}
	logging.Audit("Credential", "credential_migrated", "from", "settings", "to", "secure")
}

// Set writes to the secure tier and only uses the fallback tier when that
// fails. The credential never ends up in both tiers.
func (f *FallbackStore) Set(c Credential) error {
	if f.secure != nil {
		err := f.secure.Set(c)
		if err == nil {
			if delErr := f.fallback.Delete(); delErr != nil {
				logging.Warn("Credential", "Failed to remove fallback credential copy: %v", delErr)
			}
			logging.Audit("Credential", "credential_stored", "tier", "secure")
			return nil
		}
		logging.Audit("Credential", "credential_store_fallback", "reason", err.Error())
	}

	if err := f.fallback.Set(c); err != nil {
		return err
	}
	logging.Audit("Credential", "credential_stored", "tier", "settings")
	return nil
}

// Delete clears both tiers regardless of individual failures.
func (f *FallbackStore) Delete() error {
	var secureErr error
	if f.secure != nil {
		secureErr = f.secure.Delete()
	}
	fallbackErr := f.fallback.Delete()

	logging.Audit("Credential", "credential_deleted")
	return errors.Join(secureErr, fallbackErr)
}
