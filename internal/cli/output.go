package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"plexlink/internal/connection"
	"plexlink/internal/session"
	pkgstrings "plexlink/pkg/strings"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// FormatError formats an error message for CLI output
func FormatError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// FormatSuccess formats a success message for CLI output
func FormatSuccess(msg string) string {
	return fmt.Sprintf("✓ %s", msg)
}

// FormatWarning formats a warning message for CLI output
func FormatWarning(msg string) string {
	return fmt.Sprintf("⚠ %s", msg)
}

// Printer writes progress output unless quiet mode is enabled. Results that
// a script may depend on go through Result and are always written.
type Printer struct {
	Out   io.Writer
	Quiet bool
}

// Printf writes formatted progress output.
func (p *Printer) Printf(format string, args ...interface{}) {
	if !p.Quiet {
		fmt.Fprintf(p.Out, format, args...)
	}
}

// Println writes a line of progress output.
func (p *Printer) Println(a ...interface{}) {
	if !p.Quiet {
		fmt.Fprintln(p.Out, a...)
	}
}

// Result writes a line regardless of quiet mode.
func (p *Printer) Result(a ...interface{}) {
	fmt.Fprintln(p.Out, a...)
}

// Progress is a spinner shown while waiting on the network. A nil *Progress
// is valid and does nothing.
type Progress struct {
	s *spinner.Spinner
	w io.Writer
}

// StartProgress starts a spinner on w with the given suffix. In quiet mode it
// returns nil. The spinner only animates on a terminal; final messages are
// written either way.
func StartProgress(w io.Writer, suffix string, quiet bool) *Progress {
	if quiet {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	s.Start()
	return &Progress{s: s, w: w}
}

// Succeed stops the spinner, leaving msg in green.
func (p *Progress) Succeed(msg string) {
	p.stop(text.FgGreen.Sprint(FormatSuccess(msg)))
}

// Fail stops the spinner, leaving msg in red.
func (p *Progress) Fail(msg string) {
	p.stop(text.FgRed.Sprint(msg))
}

// Stop stops the spinner without a final message.
func (p *Progress) Stop() {
	p.stop("")
}

func (p *Progress) stop(final string) {
	if p == nil {
		return
	}
	p.s.Stop()
	if final != "" {
		fmt.Fprintln(p.w, final)
	}
}

// SessionStatusText renders a session status with a colour per state.
func SessionStatusText(s session.Status) string {
	switch s {
	case session.StatusSignedIn:
		return text.FgGreen.Sprint("Signed in")
	case session.StatusSigningIn:
		return text.FgYellow.Sprint("Signing in")
	case session.StatusLoading:
		return text.FgHiBlack.Sprint("Loading")
	default:
		return text.FgRed.Sprint("Signed out")
	}
}

// ConnectionStatusText renders a connection status with a colour per state.
func ConnectionStatusText(s connection.Status) string {
	switch s {
	case connection.StatusConnected:
		return text.FgGreen.Sprint("Connected")
	case connection.StatusConnecting:
		return text.FgYellow.Sprint("Connecting")
	case connection.StatusAuthInvalid:
		return text.FgRed.Sprint("Authorization invalid")
	case connection.StatusUnreachable:
		return text.FgRed.Sprint("Unreachable")
	default:
		return text.FgHiBlack.Sprint("Disconnected")
	}
}

// StatusReport is the combined view printed by the status commands.
type StatusReport struct {
	Session    session.State
	Connection connection.State
	ClientID   string
}

// RenderStatus writes report as a key/value table.
func RenderStatus(w io.Writer, report StatusReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("KEY"),
		text.FgHiCyan.Sprint("VALUE"),
	})

	t.AppendRow(table.Row{"Session", SessionStatusText(report.Session.Status)})
	if code := report.Session.LinkingCode; code != nil {
		t.AppendRow(table.Row{"Linking code", code.Code})
	}
	if report.Session.Error != "" {
		t.AppendRow(table.Row{"Session error", text.FgRed.Sprint(pkgstrings.Ellipsize(report.Session.Error, pkgstrings.DefaultCellMaxLen))})
	}
	if report.ClientID != "" {
		t.AppendRow(table.Row{"Client ID", report.ClientID})
	}

	t.AppendSeparator()
	t.AppendRow(table.Row{"Server", ConnectionStatusText(report.Connection.Status)})
	if report.Connection.ServerURL != "" {
		t.AppendRow(table.Row{"Server URL", pkgstrings.Ellipsize(report.Connection.ServerURL, pkgstrings.DefaultCellMaxLen)})
	}
	if report.Connection.ServerName != "" {
		t.AppendRow(table.Row{"Server name", report.Connection.ServerName})
	}
	if report.Connection.Error != "" {
		t.AppendRow(table.Row{"Server error", text.FgRed.Sprint(pkgstrings.Ellipsize(report.Connection.Error, pkgstrings.DefaultCellMaxLen))})
	}

	t.Render()
}

// Indent prefixes every non-empty line of s with prefix.
func Indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
