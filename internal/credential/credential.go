package credential

// Credential wraps an opaque bearer token to prevent accidental logging.
//
// String, GoString and the text/JSON marshalers all return "[REDACTED]".
// Use Value only when the token is placed in a request header or handed to
// a store.
type Credential struct {
	value string
}

// New wraps value in a Credential.
func New(value string) Credential {
	return Credential{value: value}
}

// Value returns the actual token value. Never log the result.
func (c Credential) Value() string {
	return c.value
}

func (c Credential) String() string {
	return "[REDACTED]"
}

func (c Credential) GoString() string {
	return "credential.Credential{[REDACTED]}"
}

// IsEmpty reports whether there is no credential.
func (c Credential) IsEmpty() bool {
	return c.value == ""
}

func (c Credential) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

func (c Credential) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}
