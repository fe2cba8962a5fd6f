package plex

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"plexlink/internal/credential"
	"plexlink/pkg/logging"
)

// identityPaths are probed in order. The legacy path is only tried when the
// primary one answers 404, which happens behind some reverse proxies.
var identityPaths = []string{"/:/identity", "/identity"}

// ServerIdentity is the basic metadata a media server reports about itself.
// Every field may be empty.
type ServerIdentity struct {
	MachineIdentifier string `xml:"machineIdentifier,attr"`
	FriendlyName      string `xml:"friendlyName,attr"`
	Version           string `xml:"version,attr"`
}

// DisplayName returns the friendly name, falling back to the machine
// identifier and then to fallback.
func (s *ServerIdentity) DisplayName(fallback string) string {
	if s == nil {
		return fallback
	}
	if s.FriendlyName != "" {
		return s.FriendlyName
	}
	if s.MachineIdentifier != "" {
		return s.MachineIdentifier
	}
	return fallback
}

// ParseIdentity reads the attributes of the root element of an identity
// document such as
//
//	<MediaContainer size="0" machineIdentifier="..." friendlyName="..." version="..."/>
//
// An empty document has every field absent.
func ParseIdentity(data []byte) (*ServerIdentity, error) {
	var id ServerIdentity
	if len(bytes.TrimSpace(data)) == 0 {
		return &id, nil
	}
	if err := xml.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("failed to parse identity document: %w", err)
	}
	return &id, nil
}

// ResolveIdentity verifies that the server at serverURL is reachable and
// accepts cred. Failures are returned as *ResolutionError.
func (c *Client) ResolveIdentity(ctx context.Context, serverURL string, cred credential.Credential) (*ServerIdentity, error) {
	if c.native != nil {
		id, err := c.resolveNative(ctx, serverURL, cred)
		if err == nil {
			return id, nil
		}
		logging.Debug("ServerIdentity", "Native identity channel failed, probing directly: %v", err)
	}

	u, err := url.Parse(serverURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		if err == nil {
			err = errors.New("missing scheme or host")
		}
		return nil, &ResolutionError{
			Kind:    KindUnreachable,
			Message: fmt.Sprintf("Invalid server URL %q", serverURL),
			Err:     err,
		}
	}

	clientID := c.ids.GetOrCreate()

	var (
		status  int
		body    []byte
		lastURL string
	)
	for _, path := range identityPaths {
		u.Path = path
		u.RawPath = ""
		lastURL = u.String()

		status, body, err = c.do(ctx, http.MethodGet, lastURL, clientID, cred, acceptXML)
		if err != nil {
			return nil, &ResolutionError{
				Kind:    KindUnreachable,
				Message: fmt.Sprintf("Could not reach server at %s", serverURL),
				Err:     err,
			}
		}
		if status != http.StatusNotFound {
			break
		}
		logging.Debug("ServerIdentity", "%s answered 404", lastURL)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, &ResolutionError{
			Kind:    KindAuthInvalid,
			Message: "Authorization is invalid or expired",
		}
	case !isSuccess(status):
		return nil, &ResolutionError{
			Kind:    KindUnreachable,
			Message: fmt.Sprintf("Server responded with HTTP %d for %s (check host/port; usually :32400)", status, lastURL),
		}
	}

	id, err := ParseIdentity(body)
	if err != nil {
		return nil, &ResolutionError{
			Kind:    KindUnknown,
			Message: "Server returned an unexpected identity response",
			Err:     err,
		}
	}
	return id, nil
}

func (c *Client) resolveNative(ctx context.Context, serverURL string, cred credential.Credential) (*ServerIdentity, error) {
	text, err := c.native.IdentityXML(ctx, serverURL, cred)
	if err != nil {
		return nil, err
	}
	return ParseIdentity([]byte(text))
}
