package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"plexlink/internal/connection"
	"plexlink/internal/plex"
	"plexlink/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRequiredError(t *testing.T) {
	t.Run("error message includes guidance", func(t *testing.T) {
		msg := (&AuthRequiredError{}).Error()
		assert.Contains(t, msg, "plexlink auth login")
		assert.Contains(t, msg, "plexlink auth status")
	})

	t.Run("errors.Is works with wrapped error", func(t *testing.T) {
		wrapped := fmt.Errorf("wrapped: %w", &AuthRequiredError{})
		assert.True(t, errors.Is(wrapped, &AuthRequiredError{}))
		assert.False(t, errors.Is(wrapped, &AuthFailedError{}))
	})
}

func TestAuthExpiredError(t *testing.T) {
	err := &AuthExpiredError{ServerURL: "http://10.0.0.2:32400"}
	msg := err.Error()

	assert.Contains(t, msg, "http://10.0.0.2:32400")
	assert.Contains(t, msg, "plexlink auth logout")
	assert.Contains(t, msg, "plexlink auth login")
	assert.True(t, errors.Is(fmt.Errorf("x: %w", err), &AuthExpiredError{}))
}

func TestAuthFailedError(t *testing.T) {
	reason := plex.ErrPollTimeout
	err := &AuthFailedError{Reason: reason}

	assert.Contains(t, err.Error(), reason.Error())
	assert.Contains(t, err.Error(), "plexlink auth login")
	assert.ErrorIs(t, err, plex.ErrPollTimeout)
	assert.True(t, errors.Is(err, &AuthFailedError{}))
}

func TestServerUnreachableError(t *testing.T) {
	reason := &plex.ResolutionError{
		Kind:    plex.KindUnreachable,
		Message: "Could not reach server at http://nas:32400",
		Err:     &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")},
	}
	err := NewServerUnreachableError("http://nas:32400", reason)

	assert.Equal(t, ConnectionErrorNetwork, err.Type)
	assert.Contains(t, err.Error(), "http://nas:32400")
	assert.Contains(t, err.Error(), "plexlink server retry")
	assert.Contains(t, err.Error(), ConnectionErrorNetwork.hint())

	var rerr *plex.ResolutionError
	assert.True(t, errors.As(err, &rerr))
	assert.True(t, errors.Is(err, &ServerUnreachableError{}))
}

func TestClassifyConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ConnectionErrorType
	}{
		{
			name: "nil",
			err:  nil,
			want: ConnectionErrorUnknown,
		},
		{
			name: "dns",
			err:  &net.DNSError{Err: "no such host", Name: "nas.invalid"},
			want: ConnectionErrorDNS,
		},
		{
			name: "tls keyword",
			err:  errors.New("tls: failed to verify certificate: x509: certificate signed by unknown authority"),
			want: ConnectionErrorTLS,
		},
		{
			name: "deadline",
			err:  fmt.Errorf("probe: %w", context.DeadlineExceeded),
			want: ConnectionErrorTimeout,
		},
		{
			name: "refused behind resolution message",
			err: &plex.ResolutionError{
				Kind:    plex.KindUnreachable,
				Message: "Could not reach server",
				Err:     errors.New("dial tcp 127.0.0.1:1: connect: connection refused"),
			},
			want: ConnectionErrorNetwork,
		},
		{
			name: "http status",
			err: &plex.ResolutionError{
				Kind:    plex.KindUnreachable,
				Message: "Server responded with HTTP 502 for http://nas:32400/identity (check host/port; usually :32400)",
			},
			want: ConnectionErrorHTTP,
		},
		{
			name: "other",
			err:  errors.New("something odd"),
			want: ConnectionErrorUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyConnectionError(tt.err))
		})
	}
}

func TestConnectionErrorType_String(t *testing.T) {
	assert.Equal(t, "Connection error", ConnectionErrorUnknown.String())
	assert.Equal(t, "DNS resolution error", ConnectionErrorDNS.String())
	assert.Equal(t, "Unexpected server response", ConnectionErrorHTTP.String())
	assert.Empty(t, ConnectionErrorHTTP.hint())
}

func TestClassify(t *testing.T) {
	const server = "http://nas:32400"

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, Classify(nil, server))
	})

	t.Run("cancellation passes through", func(t *testing.T) {
		err := fmt.Errorf("%w: %w", plex.ErrCancelled, context.Canceled)
		assert.Same(t, err, Classify(err, server))
		assert.Equal(t, context.Canceled, Classify(context.Canceled, server))
	})

	t.Run("not signed in", func(t *testing.T) {
		var target *AuthRequiredError
		assert.ErrorAs(t, Classify(session.ErrNotSignedIn, server), &target)
	})

	t.Run("no server", func(t *testing.T) {
		var target *NoServerError
		err := Classify(connection.ErrNoServerConfigured, "")
		require.ErrorAs(t, err, &target)
		assert.True(t, strings.Contains(err.Error(), "plexlink server connect"))
	})

	t.Run("linking failures", func(t *testing.T) {
		for _, err := range []error{
			&plex.LinkCreationError{StatusCode: 503},
			&plex.PollError{StatusCode: 404},
			plex.ErrPollTimeout,
		} {
			var target *AuthFailedError
			require.ErrorAs(t, Classify(err, server), &target)
			assert.Equal(t, err, target.Reason)
		}
	})

	t.Run("auth invalid", func(t *testing.T) {
		err := &plex.ResolutionError{Kind: plex.KindAuthInvalid, Message: "Authorization is invalid or expired"}
		var target *AuthExpiredError
		require.ErrorAs(t, Classify(err, server), &target)
		assert.Equal(t, server, target.ServerURL)
	})

	t.Run("unreachable", func(t *testing.T) {
		err := &plex.ResolutionError{Kind: plex.KindUnreachable, Message: "Server responded with HTTP 500"}
		var target *ServerUnreachableError
		require.ErrorAs(t, Classify(err, server), &target)
		assert.Equal(t, ConnectionErrorHTTP, target.Type)
	})

	t.Run("unknown passes through", func(t *testing.T) {
		err := &plex.ResolutionError{Kind: plex.KindUnknown, Message: "Server returned an unexpected identity response"}
		assert.Same(t, err, Classify(err, server))
	})
}
