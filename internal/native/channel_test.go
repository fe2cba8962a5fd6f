package native

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"plexlink/internal/credential"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityXML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/:/identity", r.URL.Path)
		assert.Equal(t, "application/xml", r.Header.Get("Accept"))
		assert.Equal(t, "tok", r.Header.Get("X-Plex-Token"))
		fmt.Fprint(w, `<MediaContainer friendlyName="Den"/>`)
	}))
	defer server.Close()

	body, err := NewChannel(nil).IdentityXML(context.Background(), server.URL+"//", credential.New("tok"))
	require.NoError(t, err)
	assert.Equal(t, `<MediaContainer friendlyName="Den"/>`, body)
}

func TestIdentityXML_NonSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewChannel(server.Client()).IdentityXML(context.Background(), server.URL, credential.New("tok"))
	assert.ErrorContains(t, err, "HTTP 401")
}

func TestIdentityXML_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	serverURL := server.URL
	server.Close()

	_, err := NewChannel(nil).IdentityXML(context.Background(), serverURL, credential.New("tok"))
	assert.Error(t, err)
}
