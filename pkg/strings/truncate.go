// Package strings holds small text helpers for terminal output.
package strings

import (
	"strings"
)

// DefaultCellMaxLen is the widest value the status table prints before
// shortening it.
const DefaultCellMaxLen = 72

// MinTruncateLen is the smallest maxLen Ellipsize honours. Shorter limits
// would leave no room for text around the marker.
const MinTruncateLen = 5

const ellipsis = "..."

// SingleLine collapses every run of whitespace, newlines included, into one
// space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Ellipsize returns s on a single line, shortened to at most maxLen runes by
// replacing its middle with "...".
func Ellipsize(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = SingleLine(s)
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	keep := maxLen - len(ellipsis)
	head := (keep + 1) / 2
	tail := keep - head
	return string(runes[:head]) + ellipsis + string(runes[len(runes)-tail:])
}
