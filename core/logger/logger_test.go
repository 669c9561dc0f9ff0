package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonLinesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	session := NewJsonLinesLogRecorder(&buf).NewSession()

	_, err := uuid.Parse(session.SessionID())
	require.NoError(t, err)

	require.NoError(t, session.Record(&LogEntry{Type: SessionStart, ShellPID: 10}))
	require.NoError(t, session.Record(&LogEntry{Type: Command, Command: []string{"ls", "-l"}}))
	require.NoError(t, session.Record(&LogEntry{Type: SessionEnd, ShellPID: 10}))

	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))

	var got []*LogEntry
	require.NoError(t, ReadJSONLinesLog(&buf, func(le *LogEntry) {
		got = append(got, le)
	}))

	require.Len(t, got, 3)
	for _, le := range got {
		assert.Equal(t, session.SessionID(), le.SessionID)
		assert.NotZero(t, le.TimestampMicros)
	}
	assert.Equal(t, SessionStart, got[0].Type)
	assert.Equal(t, []string{"ls", "-l"}, got[1].Command)
	assert.Equal(t, 10, got[2].ShellPID)
}

func TestSessionsAreDistinct(t *testing.T) {
	logger := NewDiscardLogger()
	assert.NotEqual(t, logger.NewSession().SessionID(), logger.NewSession().SessionID())
	assert.NoError(t, logger.NewSession().Record(&LogEntry{Type: Command}))
}

func TestReadJSONLinesLogInvalid(t *testing.T) {
	err := ReadJSONLinesLog(strings.NewReader(`{"type":"command"}{not json`), func(*LogEntry) {})
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRecordError(t *testing.T) {
	session := NewJsonLinesLogRecorder(failingWriter{}).NewSession()
	assert.EqualError(t, session.Record(&LogEntry{Type: Command}), "disk full")
}

func TestReport(t *testing.T) {
	entries := []*LogEntry{
		{Type: SessionStart},
		{Type: Command, Command: []string{"cd", "/tmp"}, Builtin: true},
		{Type: Command, Command: []string{"sleep", "5", "&"}},
		{Type: JobStarted, Command: []string{"sleep", "5"}, Background: true},
		{Type: Command, Command: []string{"false"}},
		{Type: JobStarted, Command: []string{"false"}},
		{Type: JobFinished, Command: []string{"false"}, Status: "exit value 1"},
		{Type: ModeChanged, ForegroundOnly: true},
		{Type: JobFinished, Command: []string{"sleep", "5"}, Background: true, Status: "exit value 0"},
		{Type: ModeChanged, ForegroundOnly: false},
		{Type: "bogus"},
		{Type: SessionEnd},
	}

	report := NewReport()
	for _, le := range entries {
		report.Update(le)
	}

	assert.Equal(t, len(entries), report.LogEntries)
	assert.Equal(t, 1, report.InvalidEntries.Get(`"bogus"`))
	assert.Equal(t, SessionReport{Started: 1, Finished: 1}, report.Sessions)
	assert.Equal(t, 1, report.Commands.BuiltinNames.Get("cd"))
	assert.Equal(t, 1, report.Commands.CommandNames.Get("sleep"))
	assert.Equal(t, 1, report.Commands.CommandNames.Get("false"))
	assert.Equal(t, 1, report.Jobs.Background)
	assert.Equal(t, 1, report.Jobs.Foreground)
	assert.Equal(t, 1, report.Jobs.Statuses.Get("exit value 0"))
	assert.Equal(t, 1, report.Jobs.Statuses.Get("exit value 1"))
	assert.Equal(t, ModeReport{Entered: 1, Exited: 1}, report.Mode)

	failures, err := json.Marshal(report.Jobs.Failures)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"count":1,"event":{"command":"false","status":"exit value 1"}}]`, string(failures))
}

func TestPathCounterOrder(t *testing.T) {
	ctr := NewPathCounter("command")
	ctr.Increment("b")
	ctr.Increment("a")
	ctr.Increment("c")
	ctr.Increment("c")

	out, err := json.Marshal(ctr)
	require.NoError(t, err)
	assert.Equal(t, `[{"count":2,"event":{"command":"c"}},{"count":1,"event":{"command":"a"}},{"count":1,"event":{"command":"b"}}]`, string(out))

	assert.Panics(t, func() { ctr.Increment("a", "b") })
}

func TestEmptyPathCounter(t *testing.T) {
	out, err := json.Marshal(NewPathCounter("x"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}
