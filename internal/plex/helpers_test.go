package plex

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// staticID is an IDSource that always returns the same identity.
type staticID string

func (s staticID) GetOrCreate() string { return string(s) }

func newTestClient(t *testing.T, handler http.Handler, opts ...ClientOption) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]ClientOption{WithBaseURL(server.URL)}, opts...)
	return NewClient(staticID("test-client"), opts...), server
}
