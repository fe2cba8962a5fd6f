// Package logging provides the structured, subsystem-tagged logger used across
// plexlink.
//
// It is a thin layer over log/slog. Every entry carries a subsystem attribute so
// output can be filtered by component:
//
//   - ConfigLoader: configuration and .env loading
//   - Settings: the local settings file
//   - CredentialStore: secure and fallback credential tiers
//   - ClientIdentity: per-installation client identifier
//   - DeviceLink: PIN creation and polling against the identity service
//   - ServerIdentity: media server identity probes
//   - Session / Connection: the two state machines
//
// # Usage
//
//	logging.Init(logging.LevelInfo, logging.FormatText, os.Stderr)
//
//	logging.Info("Session", "Loaded stored credential")
//	logging.Debug("DeviceLink", "Polling linking code %d", id)
//	logging.Error("Connection", err, "Failed to resolve %s", serverURL)
//
// # Audit Logging
//
// Security-relevant credential events go through Audit, which logs at INFO level
// with an event attribute and an [AUDIT] message prefix:
//
//	logging.Audit("CredentialStore", "credential_stored", "tier", "keyring")
//
// Credential values must never be passed to any function of this package.
package logging
