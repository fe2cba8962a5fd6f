package events

import "time"

// Bus topics.
const (
	TopicSessionChanged    = "session:changed"
	TopicConnectionChanged = "connection:changed"
	TopicNotify            = "notify"
)

// EventType represents the severity of a notification.
type EventType string

const (
	// EventTypeNormal indicates normal, non-problematic events.
	EventTypeNormal EventType = "Normal"

	// EventTypeWarning indicates events the user should act on.
	EventTypeWarning EventType = "Warning"
)

// EventReason represents the reason code for a notification.
type EventReason string

// Session event reasons
const (
	// ReasonSignedIn indicates a credential was obtained and stored.
	ReasonSignedIn EventReason = "SignedIn"

	// ReasonSignedOut indicates the credential was removed.
	ReasonSignedOut EventReason = "SignedOut"

	// ReasonSignInFailed indicates a linking code could not be created or polled.
	ReasonSignInFailed EventReason = "SignInFailed"

	// ReasonCredentialLoadFailed indicates the stored credential could not be read.
	ReasonCredentialLoadFailed EventReason = "CredentialLoadFailed"

	// ReasonCredentialStoreFailed indicates a credential could not be persisted.
	ReasonCredentialStoreFailed EventReason = "CredentialStoreFailed"
)

// Connection event reasons
const (
	// ReasonServerConnected indicates the server identity was resolved.
	ReasonServerConnected EventReason = "ServerConnected"

	// ReasonServerUnreachable indicates the server could not be reached.
	ReasonServerUnreachable EventReason = "ServerUnreachable"

	// ReasonServerAuthInvalid indicates the server rejected the credential.
	ReasonServerAuthInvalid EventReason = "ServerAuthInvalid"

	// ReasonNoServerConfigured indicates a retry without a stored server URL.
	ReasonNoServerConfigured EventReason = "NoServerConfigured"
)

// EventData contains the values substituted into notification templates.
type EventData struct {
	// Server is the server URL or display name the event is about.
	Server string

	// Error contains error information for failure events.
	Error string
}

// Notification is a rendered, user-facing message.
type Notification struct {
	Type    EventType
	Reason  EventReason
	Message string
	Time    time.Time
}

// getEventType returns the appropriate EventType for a given EventReason.
func getEventType(reason EventReason) EventType {
	switch reason {
	case ReasonSignInFailed,
		ReasonCredentialLoadFailed,
		ReasonCredentialStoreFailed,
		ReasonServerUnreachable,
		ReasonServerAuthInvalid,
		ReasonNoServerConfigured:
		return EventTypeWarning
	default:
		return EventTypeNormal
	}
}
