package plex

import (
	"testing"

	"plexlink/internal/credential"

	"github.com/stretchr/testify/assert"
)

func TestHeaders(t *testing.T) {
	h := Headers(DefaultClientInfo(), "client-1", credential.Credential{}, "")

	assert.Equal(t, "application/json", h.Get("Accept"))
	assert.Equal(t, "Ralphie Music", h.Get(HeaderProduct))
	assert.Equal(t, "0.1.0", h.Get(HeaderVersion))
	assert.Equal(t, "client-1", h.Get(HeaderClientID))
	assert.Equal(t, "Tauri", h.Get(HeaderPlatform))
	assert.Equal(t, "2", h.Get(HeaderPlatformVersion))
	assert.Equal(t, "Desktop", h.Get(HeaderDevice))
	assert.Equal(t, "Ralphie Music", h.Get(HeaderDeviceName))
	_, hasToken := h[HeaderToken]
	assert.False(t, hasToken, "no credential header without a credential")
}

func TestHeaders_WithCredential(t *testing.T) {
	h := Headers(DefaultClientInfo(), "client-1", credential.New("secret"), "application/xml")

	assert.Equal(t, "application/xml", h.Get("Accept"))
	assert.Equal(t, "secret", h.Get(HeaderToken))
	assert.Empty(t, h.Get("Authorization"))
}
