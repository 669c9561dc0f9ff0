package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/josephlewis42/smallsh/core/config"
	"github.com/josephlewis42/smallsh/core/job"
	"github.com/josephlewis42/smallsh/core/logger"
	"github.com/josephlewis42/smallsh/core/mode"
	"github.com/josephlewis42/smallsh/core/shell"
)

// Options configures a Shell.
type Options struct {
	Config *config.Configuration
	Input  LineReader

	// Streams inherited by foreground children.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Mode   *mode.Controller
	Events *logger.SessionLogger

	// PID substituted for "$$". Defaults to the current process.
	PID int
}

// Shell is the read-eval loop.
type Shell struct {
	config *config.Configuration
	input  LineReader
	stdout io.Writer
	stderr io.Writer

	jobs     *job.Table
	status   *job.Tracker
	mode     *mode.Controller
	launcher *job.Launcher
	events   *eventRecorder

	pid            int
	foregroundOnly bool
	exiting        bool
}

func NewShell(opts Options) *Shell {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	pid := opts.PID
	if pid == 0 {
		pid = os.Getpid()
	}
	modeCtl := opts.Mode
	if modeCtl == nil {
		modeCtl = mode.NewController(opts.Stdout)
	}
	session := opts.Events
	if session == nil {
		session = logger.NewDiscardLogger().NewSession()
	}

	s := &Shell{
		config: cfg,
		input:  opts.Input,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
		jobs:   &job.Table{},
		status: &job.Tracker{},
		mode:   modeCtl,
		events: &eventRecorder{session: session},
		pid:    pid,
	}

	s.launcher = &job.Launcher{
		Stdin:      opts.Stdin,
		Stdout:     opts.Stdout,
		Stderr:     opts.Stderr,
		NullDevice: cfg.NullDevice,
		Mode:       modeCtl,
		Jobs:       s.jobs,
		Status:     s.status,
		Observer:   s.events,
	}

	return s
}

// Jobs returns the table of outstanding background jobs.
func (s *Shell) Jobs() *job.Table {
	return s.jobs
}

// Status returns the tracker of the last foreground job.
func (s *Shell) Status() *job.Tracker {
	return s.status
}

// Run reads and evaluates lines until exit, end of input or ctx is done.
// Outstanding background jobs are sent SIGTERM before it returns. The
// returned error is non-nil only if the shell couldn't continue.
func (s *Shell) Run(ctx context.Context) error {
	s.events.sessionEvent(logger.SessionStart, s.pid)
	defer s.events.sessionEvent(logger.SessionEnd, s.pid)
	defer s.shutdown()

	for !s.exiting {
		s.reap()
		s.checkMode()

		line, err := readLine(ctx, s.input, s.config.Prompt)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case ctx.Err() != nil:
			return nil
		case err != nil:
			return fmt.Errorf("reading input: %w", err)
		}

		if err := s.Eval(line); err != nil {
			return err
		}
	}

	return nil
}

// Eval runs a single line of input. The returned error is non-nil only if
// the shell can't continue.
func (s *Shell) Eval(line string) error {
	if shell.IsComment(line) {
		return nil
	}

	if len(line) > s.config.MaxLineLength {
		s.printLimits()
		return nil
	}

	expanded := shell.ExpandPID(line, s.pid)
	argv := shell.Tokenize(expanded, s.mode.BackgroundEnabled())
	switch {
	case len(argv) == 0:
		return nil
	case len(argv) > s.config.MaxArgs:
		s.printLimits()
		return nil
	}

	if builtin, ok := AllBuiltins[argv.Name()]; ok {
		args, _, err := shell.ExtractRedirects(argv.WithoutBackground())
		s.events.command(args, true)
		if err != nil {
			fmt.Fprintf(s.stderr, "%s: %v\n", args.Name(), err)
			return nil
		}
		builtin.Main(s, args)
		return nil
	}

	s.events.command(argv, false)
	_, err := s.launcher.Launch(argv)
	return err
}

// Exit ends the loop after the current line.
func (s *Shell) Exit() {
	s.exiting = true
}

func (s *Shell) printLimits() {
	fmt.Fprintf(s.stderr, "Error, commands should be a max of %d characters and a max of %d arguments\n",
		s.config.MaxLineLength, s.config.MaxArgs)
}

// reap reports background jobs that finished since the last prompt.
func (s *Shell) reap() {
	s.jobs.Reap(func(r *job.Record) {
		fmt.Fprintln(s.stdout, r.DoneMessage())
		s.events.JobFinished(r)
	})
}

// checkMode records mode changes made by the signal watcher.
func (s *Shell) checkMode() {
	if now := s.mode.ForegroundOnly(); now != s.foregroundOnly {
		s.foregroundOnly = now
		s.events.modeChanged(now)
	}
}

func (s *Shell) shutdown() {
	if err := s.jobs.TerminateAll(); err != nil {
		log.Printf("terminating background jobs: %v", err)
	}
}

// Close releases the input.
func (s *Shell) Close() error {
	if s.input == nil {
		return nil
	}
	return s.input.Close()
}
