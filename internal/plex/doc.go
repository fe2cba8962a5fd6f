// Package plex talks to the remote identity service and to media servers.
//
// It covers three concerns:
//
//   - Device linking: CreateLinkingCode asks the identity service for a short
//     code the user approves in a browser, and PollForCredential waits for the
//     credential issued once the code is approved.
//   - Server identity: ResolveIdentity verifies that a media server is
//     reachable and accepts the credential, classifying failures into
//     AuthInvalid, Unreachable and Unknown.
//   - Request shaping: every request carries the X-Plex-* client headers and,
//     when available, the credential in X-Plex-Token.
//
// NormalizeServerURL turns user input such as "192.168.1.10" into a usable
// server URL.
package plex
