package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"plexlink/internal/browser"
	"plexlink/internal/cli"
	"plexlink/internal/plex"
	"plexlink/internal/session"
	"plexlink/pkg/logging"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// Login-specific flags
var (
	loginNoBrowser bool
	loginQR        bool
	loginForce     bool
)

// openBrowser is replaced in tests.
var openBrowser = browser.Open

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Plex sign-in of this device",
	Long: `Manage the Plex sign-in of this device.

Signing in uses a short linking code: plexlink shows the code and an
approval URL, you approve it in a browser where you are signed in to Plex,
and the issued credential is stored in the system keyring.

Examples:
  plexlink auth login                  # Sign in with a linking code
  plexlink auth login --qr             # Also show the approval URL as a QR code
  plexlink auth status                 # Show sign-in and server status
  plexlink auth logout                 # Remove the stored credential`,
}

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Plex with a linking code",
	Long: `Sign in to Plex with a linking code.

A new linking code is requested and the approval page is opened in your
browser. plexlink then waits until the code is approved, expires, or the
configured polling timeout passes. Press Ctrl-C to cancel.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

// authLogoutCmd represents the auth logout command
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored credential",
	Long: `Remove the stored credential from the keyring and the settings file.

The session is signed out even if one of the stores could not be cleared.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogout,
}

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sign-in and server status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

// authTokenCmd represents the auth token command
var authTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print the stored credential",
	Long: `Print the stored credential to standard output, for use in scripts
that call the Plex API directly. Treat the output like a password.`,
	Args: cobra.NoArgs,
	RunE: runAuthToken,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authTokenCmd)

	authLoginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "Do not open the approval page automatically")
	authLoginCmd.Flags().BoolVar(&loginQR, "qr", false, "Show the approval URL as a QR code")
	authLoginCmd.Flags().BoolVar(&loginForce, "force", false, "Sign in again even if a credential is stored")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	a, err := setupApp()
	if err != nil {
		return err
	}
	out := &cli.Printer{Out: cmd.OutOrStdout(), Quiet: quiet}

	if st := a.session.State(); st.Status == session.StatusSignedIn && !loginForce {
		out.Println(cli.FormatSuccess("Already signed in (use --force to sign in again)"))
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code, err := a.session.SignIn(ctx)
	if err != nil {
		if isCancelled(err) {
			out.Println(cli.FormatWarning("Sign-in cancelled"))
			return nil
		}
		return cli.Classify(err, "")
	}

	printLinkingCode(out, code)

	if !loginNoBrowser {
		if err := openBrowser(code.ApprovalURL); err != nil {
			logging.Debug("CLI", "Could not open browser: %v", err)
			out.Println(cli.FormatWarning("Could not open a browser. Open the URL above manually."))
		}
	}

	p := cli.StartProgress(cmd.ErrOrStderr(), "Waiting for approval...", quiet)
	cred, err := a.session.Poll(ctx, code)
	switch {
	case err == nil:
		p.Succeed("Signed in")
		return nil
	case !cred.IsEmpty():
		// Approved, but the credential could not be stored.
		p.Fail("Signed in for this run only")
		return fmt.Errorf("failed to store credential: %w", err)
	case isCancelled(err):
		p.Fail("Sign-in cancelled")
		return nil
	default:
		p.Fail("Sign-in failed")
		return cli.Classify(err, "")
	}
}

// isCancelled reports whether err only means the user gave up. Cancellation
// is not a failure and exits with code 0.
func isCancelled(err error) bool {
	return plex.IsCancelled(err) || errors.Is(err, context.Canceled)
}

func printLinkingCode(out *cli.Printer, code *plex.LinkingCode) {
	out.Printf("\nTo link this device, open:\n\n  %s\n\n", code.ApprovalURL)
	out.Printf("Linking code: %s\n", text.Bold.Sprint(code.Code))
	if !code.ExpiresAt.IsZero() {
		out.Printf("Expires:      %s\n", code.ExpiresAt.Local().Format("15:04:05"))
	}
	out.Println()

	if loginQR {
		qr, err := cli.QRCode(code.ApprovalURL)
		if err != nil {
			logging.Warn("CLI", "Could not render QR code: %v", err)
			return
		}
		out.Println(cli.Indent(qr, "  "))
	}
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	a, err := setupApp()
	if err != nil {
		return err
	}
	out := &cli.Printer{Out: cmd.OutOrStdout(), Quiet: quiet}

	if err := a.session.SignOut(); err != nil {
		out.Println(cli.FormatWarning("Signed out, but the stored credential could not be removed everywhere"))
		return fmt.Errorf("failed to remove credential: %w", err)
	}
	out.Println(cli.FormatSuccess("Signed out"))
	return nil
}

func runAuthToken(cmd *cobra.Command, args []string) error {
	a, err := setupApp()
	if err != nil {
		return err
	}

	tok, err := a.session.Token()
	if err != nil {
		return cli.Classify(err, "")
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
	return nil
}

// runStatus prints the combined session and connection state. It is shared
// by auth status and server status.
func runStatus(cmd *cobra.Command, args []string) error {
	a, err := setupApp()
	if err != nil {
		return err
	}

	cli.RenderStatus(cmd.OutOrStdout(), cli.StatusReport{
		Session:    a.session.State(),
		Connection: a.conn.State(),
		ClientID:   a.storedClientID(),
	})
	return nil
}
