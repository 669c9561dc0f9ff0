package job

// Tracker remembers how the most recent foreground job finished.
type Tracker struct {
	pid    int
	status ExitStatus
}

// Set overwrites the last foreground result.
func (t *Tracker) Set(pid int, status ExitStatus) {
	t.pid = pid
	t.status = status
}

// Last returns the most recent foreground PID and status. The status is
// Unset if no foreground job has run.
func (t *Tracker) Last() (int, ExitStatus) {
	return t.pid, t.status
}

// Report describes the last foreground result, "exit value 0" if there is
// none yet.
func (t *Tracker) Report() string {
	if !t.status.Done() {
		return ExitedWith(0).String()
	}
	return t.status.String()
}
