package plex

import (
	"net/http"

	"plexlink/internal/credential"
)

// Header names sent with every identity service and media server request.
const (
	HeaderProduct         = "X-Plex-Product"
	HeaderVersion         = "X-Plex-Version"
	HeaderClientID        = "X-Plex-Client-Identifier"
	HeaderPlatform        = "X-Plex-Platform"
	HeaderPlatformVersion = "X-Plex-Platform-Version"
	HeaderDevice          = "X-Plex-Device"
	HeaderDeviceName      = "X-Plex-Device-Name"
	HeaderToken           = "X-Plex-Token"
)

const (
	acceptJSON = "application/json"
	acceptXML  = "application/xml"
)

// ClientInfo describes this client to the identity service and servers.
type ClientInfo struct {
	Product         string
	Version         string
	Platform        string
	PlatformVersion string
	Device          string
	DeviceName      string
}

// DefaultClientInfo returns the built-in client description.
func DefaultClientInfo() ClientInfo {
	return ClientInfo{
		Product:         "Ralphie Music",
		Version:         "0.1.0",
		Platform:        "Tauri",
		PlatformVersion: "2",
		Device:          "Desktop",
		DeviceName:      "Ralphie Music",
	}
}

// Headers builds the request headers for clientID. The credential header is
// only set when cred is not empty; accept defaults to application/json.
func Headers(info ClientInfo, clientID string, cred credential.Credential, accept string) http.Header {
	if accept == "" {
		accept = acceptJSON
	}

	h := make(http.Header)
	h.Set("Accept", accept)
	h.Set(HeaderProduct, info.Product)
	h.Set(HeaderVersion, info.Version)
	h.Set(HeaderClientID, clientID)
	h.Set(HeaderPlatform, info.Platform)
	h.Set(HeaderPlatformVersion, info.PlatformVersion)
	h.Set(HeaderDevice, info.Device)
	h.Set(HeaderDeviceName, info.DeviceName)

	if !cred.IsEmpty() {
		h.Set(HeaderToken, cred.Value())
	}
	return h
}
