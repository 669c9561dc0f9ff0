package core

import (
	"log"

	"github.com/josephlewis42/smallsh/core/job"
	"github.com/josephlewis42/smallsh/core/logger"
)

// eventRecorder forwards shell and job events to the session log. Failing
// writes are reported but never interrupt the shell.
type eventRecorder struct {
	session *logger.SessionLogger
}

var _ job.Observer = (*eventRecorder)(nil)

func (e *eventRecorder) record(le *logger.LogEntry) {
	if err := e.session.Record(le); err != nil {
		log.Printf("recording %s event: %v", le.Type, err)
	}
}

func (e *eventRecorder) JobStarted(r *job.Record) {
	e.record(&logger.LogEntry{
		Type:       logger.JobStarted,
		Command:    r.Command,
		PID:        r.PID,
		Background: r.Background,
	})
}

func (e *eventRecorder) JobFinished(r *job.Record) {
	e.record(&logger.LogEntry{
		Type:       logger.JobFinished,
		Command:    r.Command,
		PID:        r.PID,
		Background: r.Background,
		Status:     r.Status.String(),
	})
}

func (e *eventRecorder) command(argv []string, builtin bool) {
	e.record(&logger.LogEntry{
		Type:    logger.Command,
		Command: argv,
		Builtin: builtin,
	})
}

func (e *eventRecorder) modeChanged(foregroundOnly bool) {
	e.record(&logger.LogEntry{
		Type:           logger.ModeChanged,
		ForegroundOnly: foregroundOnly,
	})
}

func (e *eventRecorder) sessionEvent(eventType logger.EventType, pid int) {
	e.record(&logger.LogEntry{
		Type:     eventType,
		ShellPID: pid,
	})
}
