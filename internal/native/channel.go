// Package native provides the privileged identity channel used before the
// regular server probes.
//
// The channel issues a bare request that carries only the Accept and
// credential headers, the same request the desktop shell's backend makes.
// Servers that reject the regular client headers (for example behind strict
// proxies) still answer it.
package native

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"plexlink/internal/credential"
)

// Channel fetches raw server identity documents.
type Channel struct {
	httpClient *http.Client
}

// NewChannel returns a Channel using httpClient, or a client with a 30s
// timeout when nil.
func NewChannel(httpClient *http.Client) *Channel {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Channel{httpClient: httpClient}
}

// IdentityXML returns the body of <serverURL>/:/identity. Any non-success
// status is an error.
func (c *Channel) IdentityXML(ctx context.Context, serverURL string, cred credential.Credential) (string, error) {
	target := strings.TrimRight(serverURL, "/") + "/:/identity"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("X-Plex-Token", cred.Value())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("HTTP %d from server", resp.StatusCode)
	}
	return string(body), nil
}
