package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/josephlewis42/smallsh/core/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		cfgPath = ""
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestBuiltinsCommand(t *testing.T) {
	out, err := execute(t, "builtins")
	require.NoError(t, err)
	assert.Equal(t, "cd\nexit\nhelp\njobs\nstatus\n", out)
}

func TestInitAndReport(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "init", dir)
	require.NoError(t, err)

	configPath := filepath.Join(dir, "config.yaml")
	_, err = os.Stat(configPath)
	require.NoError(t, err)

	t.Run("no-event-log", func(t *testing.T) {
		_, err := execute(t, "events", "report", "--config", dir)
		assert.ErrorIs(t, err, errNoEventLog)
	})

	contents, err := os.ReadFile(configPath)
	require.NoError(t, err)
	contents = bytes.Replace(contents, []byte(`event_log: ""`), []byte(`event_log: events.jsonl`), 1)
	require.NoError(t, os.WriteFile(configPath, contents, 0600))

	var events bytes.Buffer
	session := logger.NewJsonLinesLogRecorder(&events).NewSession()
	require.NoError(t, session.Record(&logger.LogEntry{Type: logger.SessionStart}))
	require.NoError(t, session.Record(&logger.LogEntry{Type: logger.Command, Command: []string{"ls"}}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.jsonl"), events.Bytes(), 0600))

	t.Run("report", func(t *testing.T) {
		out, err := execute(t, "events", "report", "--config", configPath)
		require.NoError(t, err)
		assert.Contains(t, out, "log_entries: 2")
		assert.Contains(t, out, "started: 1")
		assert.True(t, strings.Contains(out, "ls: 1"), out)
	})
}

func TestLoadConfigMissing(t *testing.T) {
	cfgPath = filepath.Join(t.TempDir(), "nope")
	t.Cleanup(func() { cfgPath = "" })

	_, err := loadConfig()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigDefault(t *testing.T) {
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, ": ", cfg.Prompt)
}
