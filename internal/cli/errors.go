package cli

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"plexlink/internal/connection"
	"plexlink/internal/plex"
	"plexlink/internal/session"
)

// ConnectionErrorType categorizes why a media server could not be reached.
type ConnectionErrorType int

const (
	// ConnectionErrorUnknown indicates an unclassified connection error.
	ConnectionErrorUnknown ConnectionErrorType = iota
	// ConnectionErrorTLS indicates a TLS/certificate verification error.
	ConnectionErrorTLS
	// ConnectionErrorNetwork indicates a network connectivity error (e.g., refused, unreachable).
	ConnectionErrorNetwork
	// ConnectionErrorTimeout indicates a connection timeout.
	ConnectionErrorTimeout
	// ConnectionErrorDNS indicates a DNS resolution failure.
	ConnectionErrorDNS
	// ConnectionErrorHTTP indicates the server answered with a non-success status.
	ConnectionErrorHTTP
)

// String returns a human-readable name for the connection error type.
func (t ConnectionErrorType) String() string {
	switch t {
	case ConnectionErrorTLS:
		return "TLS certificate error"
	case ConnectionErrorNetwork:
		return "Network error"
	case ConnectionErrorTimeout:
		return "Connection timeout"
	case ConnectionErrorDNS:
		return "DNS resolution error"
	case ConnectionErrorHTTP:
		return "Unexpected server response"
	default:
		return "Connection error"
	}
}

// hint returns a short suggestion for the user, or "".
func (t ConnectionErrorType) hint() string {
	switch t {
	case ConnectionErrorTLS:
		return "Check the server certificate, or use the http:// address on your local network."
	case ConnectionErrorNetwork:
		return "Check that the media server is running and the address and port are correct."
	case ConnectionErrorTimeout:
		return "The server did not answer in time. Check your network connection."
	case ConnectionErrorDNS:
		return "The host name could not be resolved. Try the server's IP address."
	default:
		return ""
	}
}

// ServerUnreachableError indicates the media server could not be verified.
type ServerUnreachableError struct {
	// ServerURL is the endpoint that was probed.
	ServerURL string
	// Type categorizes the failure.
	Type ConnectionErrorType
	// Reason is the underlying error.
	Reason error
}

// NewServerUnreachableError classifies err for serverURL.
func NewServerUnreachableError(serverURL string, err error) *ServerUnreachableError {
	return &ServerUnreachableError{
		ServerURL: serverURL,
		Type:      classifyConnectionError(err),
		Reason:    err,
	}
}

// Error returns a user-friendly error message with actionable guidance.
func (e *ServerUnreachableError) Error() string {
	msg := fmt.Sprintf("%s: could not reach %s: %v", e.Type, e.ServerURL, e.Reason)
	if h := e.Type.hint(); h != "" {
		msg += "\n\n" + h
	}
	return msg + `

To try again, run:
  plexlink server retry`
}

// Unwrap returns the underlying error.
func (e *ServerUnreachableError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *ServerUnreachableError) Is(target error) bool {
	_, ok := target.(*ServerUnreachableError)
	return ok
}

func classifyConnectionError(err error) ConnectionErrorType {
	if err == nil {
		return ConnectionErrorUnknown
	}

	if isTLSError(err) {
		return ConnectionErrorTLS
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ConnectionErrorDNS
	}

	if isTimeoutError(err) {
		return ConnectionErrorTimeout
	}

	if isNetworkError(chainText(err)) {
		return ConnectionErrorNetwork
	}

	if strings.Contains(err.Error(), "HTTP ") {
		return ConnectionErrorHTTP
	}

	return ConnectionErrorUnknown
}

// isTLSError checks if the error is related to TLS/certificate issues.
func isTLSError(err error) bool {
	var certErr *x509.CertificateInvalidError
	var hostErr *x509.HostnameError
	var unknownAuthErr *x509.UnknownAuthorityError
	var systemRootsErr *x509.SystemRootsError

	if errors.As(err, &certErr) || errors.As(err, &hostErr) ||
		errors.As(err, &unknownAuthErr) || errors.As(err, &systemRootsErr) {
		return true
	}

	errStr := chainText(err)
	for _, keyword := range []string{"x509:", "certificate", "tls:", "TLS handshake"} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// isTimeoutError checks if the error is a timeout.
func isTimeoutError(err error) bool {
	// net.Error is an interface, so walk the chain by hand
	for e := err; e != nil; {
		if ne, ok := e.(net.Error); ok && ne.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := chainText(err)
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

// chainText joins the messages of err and every error it wraps. Resolution
// errors carry a user-facing message that hides the transport detail.
func chainText(err error) string {
	var parts []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, ": ")
}

// isNetworkError checks if the error string indicates a network connectivity issue.
func isNetworkError(errStr string) bool {
	networkKeywords := []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no route to host",
		"dial tcp",
		"connect:",
	}

	for _, keyword := range networkKeywords {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// AuthRequiredError indicates there is no credential to use.
type AuthRequiredError struct{}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthRequiredError) Error() string {
	return `Not signed in

To sign in, run:
  plexlink auth login

To check current authentication status:
  plexlink auth status`
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthRequiredError) Is(target error) bool {
	_, ok := target.(*AuthRequiredError)
	return ok
}

// AuthExpiredError indicates the media server rejected the stored credential.
type AuthExpiredError struct {
	// ServerURL is the server that rejected the credential.
	ServerURL string
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf(`Your session is no longer accepted by %s

To sign in again, run:
  plexlink auth logout
  plexlink auth login`, e.ServerURL)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthExpiredError) Is(target error) bool {
	_, ok := target.(*AuthExpiredError)
	return ok
}

// AuthFailedError indicates the device-link flow did not produce a credential.
type AuthFailedError struct {
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthFailedError) Error() string {
	return fmt.Sprintf(`Sign-in failed: %v

To retry, run:
  plexlink auth login`, e.Reason)
}

// Unwrap returns the underlying error.
func (e *AuthFailedError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthFailedError) Is(target error) bool {
	_, ok := target.(*AuthFailedError)
	return ok
}

// NoServerError indicates no media server has been configured yet.
type NoServerError struct{}

// Error returns a user-friendly error message with actionable guidance.
func (e *NoServerError) Error() string {
	return `No server URL configured

To connect to a media server, run:
  plexlink server connect <url>`
}

// Is allows errors.Is() to work with wrapped errors.
func (e *NoServerError) Is(target error) bool {
	_, ok := target.(*NoServerError)
	return ok
}

// Classify turns an error from the session or connection layer into one of
// the user-facing errors above. Cancellations and unrecognized errors are
// returned unchanged.
func Classify(err error, serverURL string) error {
	if err == nil {
		return nil
	}
	if plex.IsCancelled(err) || errors.Is(err, context.Canceled) {
		return err
	}

	var linkErr *plex.LinkCreationError
	var pollErr *plex.PollError
	switch {
	case errors.Is(err, session.ErrNotSignedIn):
		return &AuthRequiredError{}
	case errors.Is(err, connection.ErrNoServerConfigured):
		return &NoServerError{}
	case errors.As(err, &linkErr), errors.As(err, &pollErr), errors.Is(err, plex.ErrPollTimeout):
		return &AuthFailedError{Reason: err}
	}

	switch plex.ResolutionKindOf(err) {
	case plex.KindAuthInvalid:
		return &AuthExpiredError{ServerURL: serverURL}
	case plex.KindUnreachable:
		return NewServerUnreachableError(serverURL, err)
	}
	return err
}
