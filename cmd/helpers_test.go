package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"plexlink/internal/config"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args and returns stdout and stderr.
// Package-level flag variables are reset first so runs do not leak into each
// other.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), args...)
}

// runCLIContext is runCLI with a caller-controlled context.
func runCLIContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()

	configPath, logLevel, quiet = "", "", false
	loginNoBrowser, loginQR, loginForce = false, false, false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	// Cobra keeps the first context it hands to a subcommand.
	resetContexts(rootCmd)

	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func resetContexts(c *cobra.Command) {
	c.SetContext(nil)
	for _, sub := range c.Commands() {
		resetContexts(sub)
	}
}

// newConfigDir writes a config.yaml pointing the identity service at
// identityURL, with fast polling and the keyring disabled.
func newConfigDir(t *testing.T, identityURL string) string {
	t.Helper()

	for _, env := range []string{
		config.EnvServerURL, config.EnvLogLevel, config.EnvLogFormat,
		config.EnvPollInterval, config.EnvPollTimeout,
	} {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
	t.Setenv(config.EnvNoKeyring, "true")

	dir := t.TempDir()
	content := fmt.Sprintf(`identityService:
  baseURL: %s
polling:
  interval: 10ms
  timeout: 2s
server:
  nativeChannel: false
storage:
  keyringEnabled: false
log:
  level: error
`, identityURL)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	return dir
}

// seedToken stores a credential in the settings file, as a previous sign-in
// without a keyring would have.
func seedToken(t *testing.T, dir, token string) {
	t.Helper()
	content := fmt.Sprintf("values:\n  plex_token: %s\n", token)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte(content), 0o600))
}

const identityXML = `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="0" machineIdentifier="abc123" friendlyName="Basement" version="1.40.0.7998"/>`

// newMediaServer answers identity requests that carry token with the
// Basement identity document and rejects others with 401.
func newMediaServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/:/identity" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Plex-Token") != token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, identityXML)
	}))
	t.Cleanup(srv.Close)
	return srv
}
