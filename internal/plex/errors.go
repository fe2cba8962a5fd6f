package plex

import (
	"errors"
	"fmt"
)

var (
	// ErrPollTimeout is returned when a linking code was not approved in time.
	ErrPollTimeout = errors.New("timed out waiting for authorization")

	// ErrCancelled is returned when a linking attempt was cancelled. It wraps
	// the context error that caused it.
	ErrCancelled = errors.New("linking cancelled")
)

// LinkCreationError is returned when the identity service refuses to create
// a linking code. StatusCode is zero when no response was received.
type LinkCreationError struct {
	StatusCode int
	Err        error
}

func (e *LinkCreationError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("failed to create linking code: %v", e.Err)
	}
	return fmt.Sprintf("failed to create linking code (HTTP %d)", e.StatusCode)
}

func (e *LinkCreationError) Unwrap() error { return e.Err }

// PollError is returned when polling a linking code fails. StatusCode is zero
// for transport failures.
type PollError struct {
	StatusCode int
	Err        error
}

func (e *PollError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("failed to poll linking code: %v", e.Err)
	}
	return fmt.Sprintf("failed to poll linking code (HTTP %d)", e.StatusCode)
}

func (e *PollError) Unwrap() error { return e.Err }

// transient reports whether the failure may go away on its own.
func (e *PollError) transient() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

// ResolutionKind classifies a failed server identity probe.
type ResolutionKind int

const (
	// KindUnknown is an unexpected failure, such as an unparseable response.
	KindUnknown ResolutionKind = iota
	// KindAuthInvalid means the server rejected the credential (401/403).
	KindAuthInvalid
	// KindUnreachable means the server could not be reached or answered with
	// another non-success status.
	KindUnreachable
)

func (k ResolutionKind) String() string {
	switch k {
	case KindAuthInvalid:
		return "auth_invalid"
	case KindUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// ResolutionError is returned by ResolveIdentity. Message is suitable for
// showing to the user.
type ResolutionError struct {
	Kind    ResolutionKind
	Message string
	Err     error
}

func (e *ResolutionError) Error() string {
	return e.Message
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ResolutionKindOf returns the kind of a ResolutionError anywhere in err's
// chain, or KindUnknown.
func ResolutionKindOf(err error) ResolutionKind {
	var rerr *ResolutionError
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return KindUnknown
}

// IsAuthInvalid reports whether err means the credential was rejected.
func IsAuthInvalid(err error) bool {
	var rerr *ResolutionError
	return errors.As(err, &rerr) && rerr.Kind == KindAuthInvalid
}

// IsCancelled reports whether err is a cancellation rather than a failure.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
