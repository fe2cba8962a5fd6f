// Package cli holds the terminal-facing helpers shared by plexlink commands.
//
// # Errors
//
// Classify maps errors from the session and connection layers to error types
// that carry guidance for the user:
//   - AuthRequiredError: no credential is stored
//   - AuthExpiredError: the media server rejected the credential
//   - AuthFailedError: the device-link flow failed or timed out
//   - ServerUnreachableError: the media server could not be verified, with a
//     ConnectionErrorType (TLS, DNS, timeout, network, HTTP status)
//   - NoServerError: nothing to retry
//
// The root command turns these into exit codes.
//
// # Output
//
// Printer gates progress output behind --quiet. StartProgress shows a spinner
// while waiting on the network, and RenderStatus prints the combined session
// and connection state as a table. PromptLine reads a line with readline and
// QRCode renders the approval URL for scanning.
package cli
