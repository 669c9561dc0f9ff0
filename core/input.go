package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// LineReader reads one line of input per call, without the line terminator.
// It returns io.EOF once input is exhausted.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	io.Closer
}

// NewLineReader picks the line editor when stdin is a terminal and line
// editing is wanted, otherwise a plain buffered reader.
func NewLineReader(stdin *os.File, stdout io.Writer, historyFile string, lineEditing bool) (LineReader, error) {
	if !lineEditing || !term.IsTerminal(int(stdin.Fd())) {
		return NewPlainLineReader(stdin, stdout), nil
	}

	return NewEditingLineReader(stdin, stdout, historyFile)
}

type plainLineReader struct {
	in  *bufio.Reader
	out io.Writer
}

var _ LineReader = (*plainLineReader)(nil)

// NewPlainLineReader writes the prompt to out and reads lines from in.
func NewPlainLineReader(in io.Reader, out io.Writer) LineReader {
	return &plainLineReader{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (p *plainLineReader) ReadLine(prompt string) (string, error) {
	if _, err := io.WriteString(p.out, prompt); err != nil {
		return "", err
	}

	line, err := p.in.ReadString('\n')
	switch {
	case err == io.EOF && line != "":
		// Unterminated last line, EOF is reported on the next call.
		return line, nil
	case err != nil:
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}

func (p *plainLineReader) Close() error {
	return nil
}

type editingLineReader struct {
	rl *readline.Instance
}

var _ LineReader = (*editingLineReader)(nil)

// NewEditingLineReader provides line editing and history on a terminal.
//
// Ctrl-Z at the prompt raises SIGTSTP on the shell instead of suspending it,
// so it toggles foreground-only mode like a terminal generated stop does
// while a child runs.
func NewEditingLineReader(stdin *os.File, stdout io.Writer, historyFile string) (LineReader, error) {
	cfg := &readline.Config{
		Stdin:       stdin,
		Stdout:      stdout,
		Stderr:      stdout,
		HistoryFile: historyFile,
		FuncFilterInputRune: func(r rune) (rune, bool) {
			if r == readline.CharCtrlZ {
				if err := unix.Kill(os.Getpid(), unix.SIGTSTP); err != nil {
					log.Printf("raising SIGTSTP: %v", err)
				}
				return r, false
			}
			return r, true
		},
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, fmt.Errorf("starting line editor: %w", err)
	}

	return &editingLineReader{rl: rl}, nil
}

func (e *editingLineReader) ReadLine(prompt string) (string, error) {
	e.rl.SetPrompt(prompt)
	line, err := e.rl.Readline()

	if errors.Is(err, readline.ErrInterrupt) {
		// Ctrl-C discards the line being edited.
		return "", nil
	}
	return line, err
}

func (e *editingLineReader) Close() error {
	return e.rl.Close()
}

type lineResult struct {
	line string
	err  error
}

// readLine reads a line from r, giving up when ctx is cancelled. An
// abandoned read keeps blocking in the background; the reader must not be
// used afterwards.
func readLine(ctx context.Context, r LineReader, prompt string) (string, error) {
	results := make(chan lineResult, 1)
	go func() {
		line, err := r.ReadLine(prompt)
		results <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-results:
		return res.line, res.err
	}
}
