package job

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// Record tracks one launched process.
type Record struct {
	// PID of the process, 0 if it never started.
	PID int
	// Command holds the program and arguments that were executed.
	Command []string
	// Background is set for jobs the shell didn't wait on.
	Background bool
	// Status is Unset until the job finishes. For background jobs it's only
	// safe to read after Poll returns true.
	Status ExitStatus

	cmd  *exec.Cmd
	done chan struct{}
}

func newRecord(cmd *exec.Cmd, argv []string, background bool) *Record {
	return &Record{
		PID:        cmd.Process.Pid,
		Command:    argv,
		Background: background,
		cmd:        cmd,
		done:       make(chan struct{}),
	}
}

// NewFinishedRecord creates a record for a process that already terminated
// with the given status.
func NewFinishedRecord(pid int, argv []string, status ExitStatus) *Record {
	done := make(chan struct{})
	close(done)

	return &Record{
		PID:     pid,
		Command: argv,
		Status:  status,
		done:    done,
	}
}

// wait blocks until the process exits, then publishes its status.
func (r *Record) wait() {
	// A non-nil error is either the exit status or a copy error on a
	// non-file stream, the process state is set in both cases.
	_ = r.cmd.Wait()
	r.Status = Classify(r.cmd.ProcessState)
	close(r.done)
}

// Poll reports whether the job has finished without blocking.
func (r *Record) Poll() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that's closed once the job finishes.
func (r *Record) Done() <-chan struct{} {
	return r.done
}

// Terminate sends SIGTERM to the job's process group, or to the process
// itself if it doesn't lead a group. It does not wait for the job to exit.
func (r *Record) Terminate() error {
	if r.PID <= 0 || r.Poll() {
		return nil
	}

	err := unix.Kill(-r.PID, unix.SIGTERM)
	if errors.Is(err, unix.ESRCH) {
		err = unix.Kill(r.PID, unix.SIGTERM)
	}
	if err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("terminate pid %d: %w", r.PID, err)
	}
	return nil
}

// DoneMessage is the notice printed when a background job is reaped. Jobs
// that never started are named by their command.
func (r *Record) DoneMessage() string {
	if r.PID <= 0 {
		return fmt.Sprintf("background job %q is done: %s", strings.Join(r.Command, " "), r.Status)
	}
	return fmt.Sprintf("background pid %d is done: %s", r.PID, r.Status)
}

func (r *Record) String() string {
	return fmt.Sprintf("%d %s", r.PID, strings.Join(r.Command, " "))
}

// sysProcAttr puts background jobs in their own process group so terminal
// generated interrupts only reach the foreground.
func sysProcAttr(background bool) *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: background}
}
