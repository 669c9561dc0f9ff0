// Package shell turns raw input lines into argument vectors.
//
// The grammar is intentionally small:
//
//  1. Lines starting with '#' are comments and are skipped entirely.
//  2. Every "$$" is replaced by the shell's PID before anything else.
//  3. The line is broken into tokens on spaces. There is no quoting, escaping,
//     globbing, piping or command chaining.
//  4. "< file" and "> file" are removed from the token list and turned into
//     redirections of standard input and output.
//  5. A trailing "&" requests background execution.
package shell

import (
	"strconv"
	"strings"
)

const (
	// BackgroundMarker is the trailing token that requests background
	// execution.
	BackgroundMarker = "&"
	// PIDToken is replaced by the shell's PID during expansion.
	PIDToken = "$$"
	// CommentPrefix starts a line that is ignored.
	CommentPrefix = "#"
)

// Argv is an ordered command line: the program name followed by its
// arguments.
type Argv []string

// Name returns the program name or "" if the vector is empty.
func (a Argv) Name() string {
	if len(a) == 0 {
		return ""
	}
	return a[0]
}

// Background reports whether the last token is the background marker.
func (a Argv) Background() bool {
	return len(a) > 0 && a[len(a)-1] == BackgroundMarker
}

// WithoutBackground returns the vector with a trailing background marker
// removed, if there is one.
func (a Argv) WithoutBackground() Argv {
	if a.Background() {
		return a[:len(a)-1]
	}
	return a
}

// Index returns the position of the first token equal to tok, or -1.
func (a Argv) Index(tok string) int {
	for i, v := range a {
		if v == tok {
			return i
		}
	}
	return -1
}

// IsComment reports whether line is a comment.
func IsComment(line string) bool {
	return strings.HasPrefix(line, CommentPrefix)
}

// ExpandPID replaces every non-overlapping "$$", scanning left to right, with
// the decimal form of pid. Lone '$' characters are left untouched.
func ExpandPID(line string, pid int) string {
	return strings.ReplaceAll(line, PIDToken, strconv.Itoa(pid))
}

// Tokenize splits an expanded line into tokens separated by spaces.
//
// The line terminator is dropped and runs of spaces never produce empty
// tokens. A line holding only whitespace yields an empty vector. If
// backgroundEnabled is false a trailing background marker is removed so the
// command runs in the foreground.
func Tokenize(line string, backgroundEnabled bool) Argv {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil
	}

	argv := Argv(strings.FieldsFunc(line, func(r rune) bool {
		return r == ' '
	}))

	if !backgroundEnabled {
		argv = argv.WithoutBackground()
	}

	return argv
}
