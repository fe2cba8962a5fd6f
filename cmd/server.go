package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"plexlink/internal/cli"
	"plexlink/internal/connection"
	"plexlink/internal/credential"
	"plexlink/internal/plex"
	"plexlink/internal/session"

	"github.com/spf13/cobra"
)

// promptServerURL asks for a server address when none was given. Tests
// replace it.
var promptServerURL = func(cmd *cobra.Command) (string, error) {
	return cli.PromptLine("Server URL: ", cli.PromptConfig{})
}

// serverCmd represents the server command group
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage the Plex Media Server connection",
	Long: `Manage the Plex Media Server connection.

The server address is verified with the stored credential by reading the
server's identity document, and remembered for later runs.

Examples:
  plexlink server connect 192.168.1.20         # Port 32400 and http:// are assumed
  plexlink server connect https://nas.example:443
  plexlink server retry                        # Verify the remembered server again
  plexlink server forget                       # Drop the remembered server`,
}

// serverConnectCmd represents the server connect command
var serverConnectCmd = &cobra.Command{
	Use:   "connect [url]",
	Short: "Verify and remember a media server",
	Long: `Verify and remember a media server.

Without an argument the remembered server is used, then the configured
default server, and otherwise you are prompted for an address. Addresses without a scheme get http:// and, when
no port is given, the default port 32400.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServerConnect,
}

// serverRetryCmd represents the server retry command
var serverRetryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Verify the remembered media server again",
	Args:  cobra.NoArgs,
	RunE:  runServerRetry,
}

// serverStatusCmd represents the server status command
var serverStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sign-in and server status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

// serverForgetCmd represents the server forget command
var serverForgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Drop the remembered media server",
	Args:  cobra.NoArgs,
	RunE:  runServerForget,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.AddCommand(serverConnectCmd)
	serverCmd.AddCommand(serverRetryCmd)
	serverCmd.AddCommand(serverStatusCmd)
	serverCmd.AddCommand(serverForgetCmd)
}

func runServerConnect(cmd *cobra.Command, args []string) error {
	a, err := setupApp()
	if err != nil {
		return err
	}

	cred, err := requireCredential(a.session)
	if err != nil {
		return err
	}

	raw := a.conn.State().ServerURL
	if raw == "" {
		raw = a.cfg.Server.DefaultURL
	}
	if len(args) == 1 {
		raw = args[0]
	}
	if raw == "" {
		raw, err = promptServerURL(cmd)
		if err != nil {
			return err
		}
	}

	serverURL := plex.NormalizeServerURL(raw)
	if serverURL == "" {
		return fmt.Errorf("server URL must not be empty")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return connect(ctx, cmd, serverURL, func(ctx context.Context) (connection.State, error) {
		return a.conn.Connect(ctx, serverURL, cred)
	})
}

func runServerRetry(cmd *cobra.Command, args []string) error {
	a, err := setupApp()
	if err != nil {
		return err
	}

	cred, err := requireCredential(a.session)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverURL := a.conn.State().ServerURL
	return connect(ctx, cmd, serverURL, func(ctx context.Context) (connection.State, error) {
		return a.conn.Retry(ctx, cred)
	})
}

// connect runs attempt behind a spinner and reports the outcome.
func connect(ctx context.Context, cmd *cobra.Command, serverURL string, attempt func(context.Context) (connection.State, error)) error {
	suffix := "Connecting..."
	if serverURL != "" {
		suffix = fmt.Sprintf("Connecting to %s...", serverURL)
	}
	p := cli.StartProgress(cmd.ErrOrStderr(), suffix, quiet)

	st, err := attempt(ctx)
	if err != nil {
		msg := st.Error
		if msg == "" {
			msg = "Connection failed"
		}
		p.Fail(msg)
		return cli.Classify(err, serverURL)
	}

	p.Succeed(fmt.Sprintf("Connected to %s", st.ServerName))
	if quiet {
		fmt.Fprintln(cmd.OutOrStdout(), st.ServerName)
	}
	return nil
}

func runServerForget(cmd *cobra.Command, args []string) error {
	a, err := setupApp()
	if err != nil {
		return err
	}
	out := &cli.Printer{Out: cmd.OutOrStdout(), Quiet: quiet}

	if err := a.conn.Forget(); err != nil {
		return fmt.Errorf("failed to forget server: %w", err)
	}
	out.Println(cli.FormatSuccess("Server forgotten"))
	return nil
}

// requireCredential returns the active credential or an AuthRequiredError.
func requireCredential(s *session.Manager) (credential.Credential, error) {
	cred, ok := s.Credential()
	if !ok {
		return credential.Credential{}, cli.Classify(session.ErrNotSignedIn, "")
	}
	return cred, nil
}
