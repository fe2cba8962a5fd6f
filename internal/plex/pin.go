package plex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"plexlink/internal/credential"
	"plexlink/pkg/logging"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultPollInterval is the fixed delay between two polls.
	DefaultPollInterval = 1500 * time.Millisecond

	// DefaultPollTimeout bounds a whole polling attempt.
	DefaultPollTimeout = 2 * time.Minute
)

// LinkingCode is a short-lived code the user approves to link this device.
type LinkingCode struct {
	ID          int64
	Code        string
	ExpiresAt   time.Time
	ApprovalURL string

	// ClientID is the identity the code was created with. Polls reuse it so
	// the flow completes even if the stored identity changes meanwhile.
	ClientID string
}

// Expired reports whether the code is past its expiry time.
func (l *LinkingCode) Expired(now time.Time) bool {
	return !l.ExpiresAt.IsZero() && now.After(l.ExpiresAt)
}

// PollOptions tunes PollForCredential. Zero values use the defaults.
type PollOptions struct {
	Interval time.Duration
	Timeout  time.Duration
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = DefaultPollInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultPollTimeout
	}
	return o
}

type pinResponse struct {
	ID        int64   `json:"id"`
	Code      string  `json:"code"`
	ExpiresAt string  `json:"expiresAt"`
	AuthToken *string `json:"authToken"`
}

// CreateLinkingCode asks the identity service for a new linking code.
//
// The short code is requested deliberately: device linking pages expect it,
// and strong codes are too long to type.
func (c *Client) CreateLinkingCode(ctx context.Context) (*LinkingCode, error) {
	clientID := c.ids.GetOrCreate()

	status, body, err := c.do(ctx, http.MethodPost, c.baseURL+"/api/v2/pins", clientID, credential.Credential{}, acceptJSON)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
		}
		return nil, &LinkCreationError{StatusCode: status, Err: err}
	}
	if !isSuccess(status) {
		return nil, &LinkCreationError{StatusCode: status}
	}

	var pin pinResponse
	if err := json.Unmarshal(body, &pin); err != nil {
		return nil, &LinkCreationError{StatusCode: status, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if pin.Code == "" {
		return nil, &LinkCreationError{StatusCode: status, Err: errors.New("response carried no code")}
	}

	code := &LinkingCode{
		ID:          pin.ID,
		Code:        pin.Code,
		ApprovalURL: c.BuildApprovalURL(clientID, pin.Code),
		ClientID:    clientID,
	}
	if t, err := time.Parse(time.RFC3339, pin.ExpiresAt); err == nil {
		code.ExpiresAt = t
	}

	logging.Debug("Linking", "Created linking code id=%d expires=%s", code.ID, pin.ExpiresAt)
	return code, nil
}

// BuildApprovalURL returns the page the user opens to approve code.
//
// The parameters go after the "#!?" fragment marker. The approval page only
// reads them from there; in the regular query string they are ignored and
// the user lands on a generic page.
func (c *Client) BuildApprovalURL(clientID, code string) string {
	params := []struct{ key, value string }{
		{"clientID", clientID},
		{"code", code},
		{"context[device][product]", c.info.Product},
		{"context[device][platform]", c.info.Platform},
	}

	var b strings.Builder
	b.WriteString(c.authAppURL)
	b.WriteString("#!?")
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

// PollForCredential polls the identity service at a fixed interval until the
// code is approved, the timeout elapses or ctx is cancelled.
//
// Cancellation is observed during the wait between polls as well as during a
// request. A non-success poll fails the whole attempt with a PollError unless
// transient retries are configured.
func (c *Client) PollForCredential(ctx context.Context, code *LinkingCode, opts PollOptions) (credential.Credential, error) {
	opts = opts.withDefaults()
	startedAt := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return credential.Credential{}, fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		if time.Since(startedAt) > opts.Timeout {
			return credential.Credential{}, ErrPollTimeout
		}

		token, err := c.pollOnce(ctx, code, opts.Interval, opts.Timeout-time.Since(startedAt))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return credential.Credential{}, fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
			}
			return credential.Credential{}, err
		}
		if token != "" {
			logging.Debug("Linking", "Linking code id=%d approved", code.ID)
			return credential.New(token), nil
		}

		timer := time.NewTimer(opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return credential.Credential{}, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		case <-timer.C:
		}
	}
}

// pollOnce performs a single poll, retrying transient failures when
// configured. Retries stop once remaining would be exceeded. It returns an
// empty token while the code is not yet approved.
func (c *Client) pollOnce(ctx context.Context, code *LinkingCode, interval, remaining time.Duration) (string, error) {
	clientID := code.ClientID
	if clientID == "" {
		clientID = c.ids.GetOrCreate()
	}

	u, err := url.Parse(c.baseURL + "/api/v2/pins/" + strconv.FormatInt(code.ID, 10))
	if err != nil {
		return "", &PollError{Err: err}
	}
	q := u.Query()
	q.Set("code", code.Code)
	u.RawQuery = q.Encode()
	pollURL := u.String()

	operation := func() (string, error) {
		status, body, err := c.do(ctx, http.MethodGet, pollURL, clientID, credential.Credential{}, acceptJSON)
		if err != nil {
			if ctx.Err() != nil {
				return "", backoff.Permanent(err)
			}
			return "", &PollError{StatusCode: status, Err: err}
		}

		if !isSuccess(status) {
			perr := &PollError{StatusCode: status}
			if perr.transient() {
				return "", perr
			}
			return "", backoff.Permanent(perr)
		}

		var pin pinResponse
		if err := json.Unmarshal(body, &pin); err != nil {
			return "", backoff.Permanent(&PollError{StatusCode: status, Err: fmt.Errorf("failed to parse response: %w", err)})
		}
		if pin.AuthToken == nil {
			return "", nil
		}
		return *pin.AuthToken, nil
	}

	// A zero MaxElapsedTime means no limit to backoff.
	if remaining <= 0 {
		remaining = time.Nanosecond
	}

	token, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(interval)),
		backoff.WithMaxTries(uint(c.transientRetries)+1),
		backoff.WithMaxElapsedTime(remaining),
		backoff.WithNotify(func(err error, next time.Duration) {
			logging.Debug("Linking", "Transient poll failure, retrying in %s: %v", next, err)
		}),
	)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}
		return "", err
	}
	return token, nil
}
