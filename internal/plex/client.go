package plex

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"plexlink/internal/credential"
)

const (
	// DefaultBaseURL is the identity service API base.
	DefaultBaseURL = "https://plex.tv"

	// DefaultAuthAppURL is the page where a linking code is approved.
	DefaultAuthAppURL = "https://app.plex.tv/auth"

	// DefaultHTTPTimeout bounds a single request.
	DefaultHTTPTimeout = 30 * time.Second
)

// IDSource provides the client identity sent with every request.
type IDSource interface {
	GetOrCreate() string
}

// NativeChannel fetches the raw identity document of a server through a
// privileged path that is not subject to the regular request restrictions.
// Any error makes ResolveIdentity fall back to the regular probes.
type NativeChannel interface {
	IdentityXML(ctx context.Context, serverURL string, cred credential.Credential) (string, error)
}

// Client handles the identity service and media server requests.
type Client struct {
	httpClient *http.Client
	ids        IDSource
	info       ClientInfo

	baseURL    string
	authAppURL string

	transientRetries int
	native           NativeChannel
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClientInfo overrides the X-Plex-* client description.
func WithClientInfo(info ClientInfo) ClientOption {
	return func(c *Client) {
		c.info = info
	}
}

// WithBaseURL points the client at another identity service API base.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithAuthAppURL sets the page linking codes are approved on.
func WithAuthAppURL(authAppURL string) ClientOption {
	return func(c *Client) {
		c.authAppURL = authAppURL
	}
}

// WithTransientRetries retries a single poll up to n times after a 5xx, 429
// or transport failure. Zero, the default, aborts on the first failure.
func WithTransientRetries(n int) ClientOption {
	return func(c *Client) {
		if n < 0 {
			n = 0
		}
		c.transientRetries = n
	}
}

// WithNativeChannel enables the privileged identity channel.
func WithNativeChannel(ch NativeChannel) ClientOption {
	return func(c *Client) {
		c.native = ch
	}
}

// NewClient creates a Client that identifies itself with ids.
func NewClient(ids IDSource, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		ids:        ids,
		info:       DefaultClientInfo(),
		baseURL:    DefaultBaseURL,
		authAppURL: DefaultAuthAppURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Info returns the client description used for request headers.
func (c *Client) Info() ClientInfo {
	return c.info
}

// do sends a request with the client headers and returns the status and body.
func (c *Client) do(ctx context.Context, method, rawURL, clientID string, cred credential.Credential, accept string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header = Headers(c.info, clientID, cred, accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
