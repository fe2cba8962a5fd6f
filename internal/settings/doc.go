// Package settings provides the local key/value settings storage used for the
// client identity, the media server URL and, when no secure store is
// available, the credential fallback copy.
//
// Values are opaque strings stored under three independent keys; there is no
// schema versioning. FileStore persists them as a small YAML document and
// MemoryStore keeps them in process for tests and for running without a
// writable config directory.
package settings
