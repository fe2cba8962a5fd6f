package session

import (
	"errors"

	"plexlink/internal/credential"
	"plexlink/internal/plex"
)

// ErrNotSignedIn is returned by Token when there is no active credential.
var ErrNotSignedIn = errors.New("not signed in")

// ErrNoActiveCode is returned by Poll when the code is not the one currently
// displayed, for example after a newer sign-in replaced it.
var ErrNoActiveCode = errors.New("linking code is not active")

// ErrSuperseded is returned when an operation finished after a newer one
// replaced it. Its result was discarded.
var ErrSuperseded = errors.New("superseded by a newer operation")

// Status is the authentication status of a session.
type Status int

const (
	StatusLoading Status = iota
	StatusSignedOut
	StatusSigningIn
	StatusSignedIn
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSignedOut:
		return "signed_out"
	case StatusSigningIn:
		return "signing_in"
	case StatusSignedIn:
		return "signed_in"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session. LinkingCode is only set while signing in.
type State struct {
	Status      Status
	Credential  credential.Credential
	LinkingCode *plex.LinkingCode
	Error       string
}
