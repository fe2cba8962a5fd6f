package plex

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

// DefaultServerPort is assumed when a server address has neither a scheme
// nor a port.
const DefaultServerPort = "32400"

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z\d+\-.]*://`)

// NormalizeServerURL turns user input into a server URL.
//
// Input without a scheme is assumed to be plain http and, unless a port is
// given, to use the default server port. Input with an explicit scheme keeps
// its port (or lack of one), so a server behind a TLS proxy stays on 443.
// Trailing slashes are removed. Input that cannot be parsed is returned
// trimmed so that a later probe reports it.
func NormalizeServerURL(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	hadScheme := schemePattern.MatchString(trimmed)
	withScheme := trimmed
	if !hadScheme {
		withScheme = "http://" + trimmed
	}

	u, err := url.Parse(withScheme)
	if err != nil || u.Host == "" {
		return strings.TrimRight(trimmed, "/")
	}

	if !hadScheme && u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), DefaultServerPort)
	}

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return strings.TrimRight(u.String(), "/")
}
