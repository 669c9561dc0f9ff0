package job

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"

	"github.com/josephlewis42/smallsh/core/shell"
	"golang.org/x/sys/unix"
)

// ErrSpawn is returned by Launch when the OS refuses to create a process.
// Unlike other launch failures it is fatal to the shell.
var ErrSpawn = errors.New("unable to create process")

// errMissingCommand is reported when only operators were left on the line.
var errMissingCommand = errors.New("missing command")

// ModeReader reports whether background execution is currently allowed.
type ModeReader interface {
	BackgroundEnabled() bool
}

// Observer is notified about job lifecycle changes.
type Observer interface {
	JobStarted(r *Record)
	JobFinished(r *Record)
}

type nopObserver struct{}

func (nopObserver) JobStarted(*Record)  {}
func (nopObserver) JobFinished(*Record) {}

// Launcher starts commands as child processes.
type Launcher struct {
	// Standard streams inherited by children that don't redirect them.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// NullDevice replaces stdin and stdout of background jobs that don't
	// redirect either one. Defaults to os.DevNull.
	NullDevice string

	// Mode gates background execution, nil always allows it.
	Mode ModeReader
	// Jobs receives background jobs.
	Jobs *Table
	// Status receives foreground results.
	Status *Tracker
	// Observer is optional.
	Observer Observer
}

func (l *Launcher) backgroundEnabled() bool {
	return l.Mode == nil || l.Mode.BackgroundEnabled()
}

func (l *Launcher) nullDevice() string {
	if l.NullDevice == "" {
		return os.DevNull
	}
	return l.NullDevice
}

func (l *Launcher) observer() Observer {
	if l.Observer == nil {
		return nopObserver{}
	}
	return l.Observer
}

// Launch runs argv as a child process.
//
// A trailing background marker runs the job in the background if the mode
// allows it; otherwise Launch blocks until the child exits and records the
// result in the Tracker. Failures that only concern this command (bad
// redirection, program not found) are reported on Stderr and recorded as
// exit value 1. The returned error is non-nil only for ErrSpawn.
func (l *Launcher) Launch(argv shell.Argv) (*Record, error) {
	background := argv.Background() && l.backgroundEnabled()

	argv, redirects, err := shell.ExtractRedirects(argv)
	argv = argv.WithoutBackground()
	rec := &Record{Command: argv, Background: background}

	switch {
	case err != nil:
		return l.fail(rec, err), nil
	case len(argv) == 0:
		return l.fail(rec, errMissingCommand), nil
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	cmd.SysProcAttr = sysProcAttr(background)

	var toClose closers
	defer toClose.Close()

	for _, redirect := range redirects {
		fd, err := redirect.Open()
		if err != nil {
			return l.fail(rec, err), nil
		}
		toClose = append(toClose, fd)

		switch redirect.Stream {
		case shell.Stdin:
			cmd.Stdin = fd
		case shell.Stdout:
			cmd.Stdout = fd
		}
	}

	if background && len(redirects) == 0 {
		null, err := os.OpenFile(l.nullDevice(), os.O_RDWR, 0)
		if err != nil {
			return l.fail(rec, err), nil
		}
		toClose = append(toClose, null)
		cmd.Stdin = null
		cmd.Stdout = null
	}

	if err := cmd.Start(); err != nil {
		if isSpawnFailure(err) {
			return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
		}
		return l.fail(rec, describeStartError(err)), nil
	}
	// The child holds its own copies of the descriptors.
	toClose.Close()

	rec = newRecord(cmd, argv, background)
	if background {
		go rec.wait()
		l.Jobs.Add(rec)
		fmt.Fprintf(l.Stdout, "Background pid is %d\n", rec.PID)
		l.observer().JobStarted(rec)
		return rec, nil
	}

	l.observer().JobStarted(rec)
	rec.wait()
	l.Status.Set(rec.PID, rec.Status)
	if rec.Status.Disposition == Signaled {
		fmt.Fprintln(l.Stdout, rec.Status)
	}
	l.observer().JobFinished(rec)

	return rec, nil
}

// fail reports a command that couldn't be started as if the child had
// exited with status 1. Background failures go into the table already
// finished so the next reap announces them like any other job.
func (l *Launcher) fail(rec *Record, err error) *Record {
	name := "smallsh"
	if len(rec.Command) > 0 {
		name = rec.Command[0]
	}
	fmt.Fprintf(l.Stderr, "%s: %v\n", name, err)

	rec.Status = ExitedWith(1)
	rec.done = make(chan struct{})
	close(rec.done)

	if rec.Background {
		l.Jobs.Add(rec)
		return rec
	}

	l.Status.Set(0, rec.Status)
	l.observer().JobFinished(rec)
	return rec
}

func isSpawnFailure(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.ENOMEM)
}

// describeStartError strips the "fork/exec path:" decoration from exec
// failures.
func describeStartError(err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return errors.New("command not found")
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}

type closers []io.Closer

// Close closes everything in the list once, returning the last error.
func (c *closers) Close() error {
	var lastErr error
	for _, v := range *c {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}
	*c = nil
	return lastErr
}
