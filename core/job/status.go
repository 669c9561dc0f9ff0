// Package job launches commands and keeps track of the ones still running.
package job

import (
	"fmt"
	"os"
	"syscall"
)

// Disposition is the way a job finished.
type Disposition int

const (
	// Unset means the job hasn't finished.
	Unset Disposition = iota
	// Exited means the job called exit.
	Exited
	// Signaled means the job was killed by a signal.
	Signaled
)

// ExitStatus is the terminal disposition of a job. Code is meaningful only
// for Exited and Signal only for Signaled.
type ExitStatus struct {
	Disposition Disposition
	Code        int
	Signal      syscall.Signal
}

// ExitedWith creates a status for a process that exited normally.
func ExitedWith(code int) ExitStatus {
	return ExitStatus{Disposition: Exited, Code: code}
}

// SignaledWith creates a status for a process killed by sig.
func SignaledWith(sig syscall.Signal) ExitStatus {
	return ExitStatus{Disposition: Signaled, Signal: sig}
}

// Done reports whether the status holds a terminal disposition.
func (s ExitStatus) Done() bool {
	return s.Disposition != Unset
}

// String formats the status the way status and the reaper report it.
func (s ExitStatus) String() string {
	switch s.Disposition {
	case Exited:
		return fmt.Sprintf("exit value %d", s.Code)
	case Signaled:
		return fmt.Sprintf("terminated by signal %d", int(s.Signal))
	default:
		return "running"
	}
}

// Classify converts a finished process's state into an ExitStatus.
//
// Background and foreground jobs share this so they always report the same
// way.
func Classify(state *os.ProcessState) ExitStatus {
	if state == nil {
		return ExitStatus{}
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok {
		switch {
		case ws.Signaled():
			return SignaledWith(ws.Signal())
		case ws.Exited():
			return ExitedWith(ws.ExitStatus())
		}
	}

	return ExitedWith(state.ExitCode())
}
