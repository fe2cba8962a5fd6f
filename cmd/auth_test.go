package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"plexlink/internal/cli"
	"plexlink/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// newIdentityService fakes the PIN endpoints. The PIN is approved with token
// after approveAfter polls.
func newIdentityService(t *testing.T, token string, approveAfter int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/pins":
			fmt.Fprint(w, `{"id":42,"code":"WXYZ","expiresAt":"2030-01-01T00:15:00Z"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/v2/pins/42":
			if polls.Add(1) <= approveAfter {
				fmt.Fprint(w, `{"id":42,"code":"WXYZ","authToken":null}`)
				return
			}
			fmt.Fprintf(w, `{"id":42,"code":"WXYZ","authToken":%q}`, token)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &polls
}

func stubBrowser(t *testing.T) *[]string {
	t.Helper()
	var opened []string
	original := openBrowser
	openBrowser = func(url string) error {
		opened = append(opened, url)
		return nil
	}
	t.Cleanup(func() { openBrowser = original })
	return &opened
}

func TestAuthLogin_Flow(t *testing.T) {
	idp, polls := newIdentityService(t, "tok-1", 2)
	dir := newConfigDir(t, idp.URL)
	opened := stubBrowser(t)

	stdout, stderr, err := runCLI(t, "auth", "login", "--config-path", dir, "--qr")
	require.NoError(t, err)

	assert.Contains(t, stdout, "WXYZ")
	assert.Contains(t, stdout, "https://app.plex.tv/auth#!?clientID=")
	assert.Contains(t, stderr, "Signed in")
	assert.GreaterOrEqual(t, polls.Load(), int32(3))

	require.Len(t, *opened, 1)
	assert.True(t, strings.HasPrefix((*opened)[0], "https://app.plex.tv/auth#!?clientID="))
	assert.Contains(t, (*opened)[0], "code=WXYZ")

	// The credential survives into the next invocation.
	stdout, _, err = runCLI(t, "auth", "token", "--config-path", dir)
	require.NoError(t, err)
	assert.Equal(t, "tok-1\n", stdout)

	stdout, _, err = runCLI(t, "auth", "status", "--config-path", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Signed in")
	assert.Contains(t, stdout, "Client ID")
}

func TestAuthLogin_AlreadySignedIn(t *testing.T) {
	idp, polls := newIdentityService(t, "tok-2", 0)
	dir := newConfigDir(t, idp.URL)
	seedToken(t, dir, "tok-1")
	opened := stubBrowser(t)

	stdout, _, err := runCLI(t, "auth", "login", "--config-path", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Already signed in")
	assert.Zero(t, polls.Load())
	assert.Empty(t, *opened)

	_, _, err = runCLI(t, "auth", "login", "--config-path", dir, "--force", "--no-browser")
	require.NoError(t, err)
	stdout, _, err = runCLI(t, "auth", "token", "--config-path", dir)
	require.NoError(t, err)
	assert.Equal(t, "tok-2\n", stdout)
	assert.Empty(t, *opened, "--no-browser keeps the browser closed")
}

func TestAuthLogin_CreationFails(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(idp.Close)
	dir := newConfigDir(t, idp.URL)

	_, _, err := runCLI(t, "auth", "login", "--config-path", dir, "--no-browser")
	require.Error(t, err)

	var failed *cli.AuthFailedError
	require.ErrorAs(t, err, &failed)
	assert.Contains(t, err.Error(), "HTTP 503")
	assert.Equal(t, ExitCodeAuthFailed, getExitCode(err))
}

func TestAuthLogin_PollFails(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"id":42,"code":"WXYZ"}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(idp.Close)
	dir := newConfigDir(t, idp.URL)

	_, stderr, err := runCLI(t, "auth", "login", "--config-path", dir, "--no-browser")
	require.Error(t, err)
	assert.Equal(t, ExitCodeAuthFailed, getExitCode(err))
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Contains(t, stderr, "Sign-in failed")

	_, _, err = runCLI(t, "auth", "token", "--config-path", dir)
	assert.Equal(t, ExitCodeAuthRequired, getExitCode(err))
}

func TestAuthLogin_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"id":42,"code":"WXYZ"}`)
			return
		}
		cancel()
		fmt.Fprint(w, `{"id":42,"code":"WXYZ","authToken":null}`)
	}))
	t.Cleanup(idp.Close)
	dir := newConfigDir(t, idp.URL)

	stdout, stderr, err := runCLIContext(t, ctx, "auth", "login", "--config-path", dir, "--no-browser")
	require.NoError(t, err)
	assert.Contains(t, stdout, "WXYZ")
	assert.Contains(t, stderr, "Sign-in cancelled")
	assert.NotContains(t, stderr, "Error:")

	_, _, err = runCLI(t, "auth", "token", "--config-path", dir)
	assert.Equal(t, ExitCodeAuthRequired, getExitCode(err))
}

func TestAuthLogin_CancelledBeforeCode(t *testing.T) {
	idp, polls := newIdentityService(t, "tok-1", 0)
	dir := newConfigDir(t, idp.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stdout, stderr, err := runCLIContext(t, ctx, "auth", "login", "--config-path", dir, "--no-browser")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sign-in cancelled")
	assert.NotContains(t, stdout, "WXYZ")
	assert.NotContains(t, stderr, "Error:")
	assert.Zero(t, polls.Load())
}

func TestAuthLogout(t *testing.T) {
	dir := newConfigDir(t, "http://127.0.0.1:1")
	seedToken(t, dir, "tok-1")

	stdout, _, err := runCLI(t, "auth", "logout", "--config-path", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Signed out")

	_, _, err = runCLI(t, "auth", "token", "--config-path", dir)
	require.Error(t, err)
	var required *cli.AuthRequiredError
	assert.ErrorAs(t, err, &required)
	assert.Equal(t, ExitCodeAuthRequired, getExitCode(err))

	stdout, _, err = runCLI(t, "auth", "status", "--config-path", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Signed out")
}

func TestAuthLogout_Quiet(t *testing.T) {
	dir := newConfigDir(t, "http://127.0.0.1:1")

	stdout, _, err := runCLI(t, "auth", "logout", "--config-path", dir, "--quiet")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestAuthLogin_KeyringTier(t *testing.T) {
	keyring.MockInit()

	idp, _ := newIdentityService(t, "tok-new", 0)
	dir := newConfigDir(t, idp.URL)
	t.Setenv(config.EnvNoKeyring, "false")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(fmt.Sprintf(`identityService:
  baseURL: %s
polling:
  interval: 10ms
  timeout: 2s
storage:
  keyringService: plexlink.test
  keyringEnabled: true
log:
  level: error
`, idp.URL)), 0o600))
	seedToken(t, dir, "tok-old")

	// A credential left in the settings file is still found.
	stdout, _, err := runCLI(t, "auth", "token", "--config-path", dir)
	require.NoError(t, err)
	assert.Equal(t, "tok-old\n", stdout)

	_, _, err = runCLI(t, "auth", "login", "--config-path", dir, "--force", "--no-browser")
	require.NoError(t, err)

	stored, err := keyring.Get("plexlink.test", "plex_token")
	require.NoError(t, err)
	assert.Equal(t, "tok-new", stored)

	settingsFile, err := os.ReadFile(filepath.Join(dir, "settings.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(settingsFile), "plex_token")
	assert.NotContains(t, string(settingsFile), "tok-")

	_, _, err = runCLI(t, "auth", "logout", "--config-path", dir)
	require.NoError(t, err)
	_, err = keyring.Get("plexlink.test", "plex_token")
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}
