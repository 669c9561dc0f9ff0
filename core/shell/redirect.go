package shell

import (
	"errors"
	"fmt"
	"os"
)

// Stream identifies which standard stream a redirection replaces.
type Stream int

const (
	Stdin Stream = iota
	Stdout
)

const (
	// RedirectIn rebinds standard input to the following file.
	RedirectIn = "<"
	// RedirectOut rebinds standard output to the following file.
	RedirectOut = ">"
)

// ErrMissingRedirectTarget is returned when a redirection operator is the
// last token on the line.
var ErrMissingRedirectTarget = errors.New("missing redirection target")

// Operator returns the token that produces a redirection of the stream.
func (s Stream) Operator() string {
	if s == Stdout {
		return RedirectOut
	}
	return RedirectIn
}

func (s Stream) String() string {
	if s == Stdout {
		return "stdout"
	}
	return "stdin"
}

// Redirect rebinds one standard stream of a command to a file.
type Redirect struct {
	Stream Stream
	Path   string
}

// Open opens the target file: read-only for input, write/create/truncate for
// output.
func (r Redirect) Open() (*os.File, error) {
	if r.Stream == Stdout {
		return os.OpenFile(r.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	}
	return os.Open(r.Path)
}

// ExtractRedirects removes the first input and then the first output
// redirection (operator and filename) from argv.
//
// The remaining tokens keep their relative order. The returned directives are
// ordered input first. argv's backing array is reused.
func ExtractRedirects(argv Argv) (Argv, []Redirect, error) {
	var redirects []Redirect

	for _, stream := range []Stream{Stdin, Stdout} {
		idx := argv.Index(stream.Operator())
		if idx < 0 {
			continue
		}
		if idx+1 >= len(argv) {
			return argv, redirects, fmt.Errorf("%s: %w", stream.Operator(), ErrMissingRedirectTarget)
		}

		redirects = append(redirects, Redirect{Stream: stream, Path: argv[idx+1]})
		argv = append(argv[:idx], argv[idx+2:]...)
	}

	return argv, redirects, nil
}
