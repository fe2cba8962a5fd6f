// Package credential stores the bearer credential issued by the identity
// service.
//
// The Store interface is implemented by two backends and a wrapper:
//
//   - KeyringStore keeps the credential in the operating system keyring.
//   - SettingsStore keeps it in the plain local settings file.
//   - FallbackStore composes a secure and a fallback Store. Reads prefer the
//     secure tier and remove any fallback copy once the secure tier holds a
//     value. Writes go to the secure tier and only fall back when it fails.
//     Deletes always clear both tiers.
//
// Credential values are wrapped in Credential so that they print as
// "[REDACTED]" in logs and error messages.
package credential
