package config

import (
	"bytes"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	memFs := afero.NewMemMapFs()
	var logs bytes.Buffer

	cfg, err := Initialize(memFs, "/cfg", log.New(&logs, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	assert.Contains(t, logs.String(), "writing default configuration")

	contents, err := afero.ReadFile(memFs, "/cfg/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, defaultConfigData, contents)
	assert.Equal(t, defaultConfig().MaxArgs, cfg.MaxArgs)

	// Existing files are left alone.
	require.NoError(t, afero.WriteFile(memFs, "/cfg/config.yaml", bytes.ReplaceAll(contents, []byte("max_args: 512"), []byte("max_args: 8")), 0600))
	logs.Reset()

	cfg, err = Initialize(memFs, "/cfg", log.New(&logs, "", 0))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "already exists")
	assert.Equal(t, 8, cfg.MaxArgs)
}

func TestLoad(t *testing.T) {
	memFs := afero.NewMemMapFs()
	_, err := Initialize(memFs, "/cfg", log.New(io.Discard, "", 0))
	require.NoError(t, err)

	t.Run("directory", func(t *testing.T) {
		_, err := LoadFs(memFs, "/cfg")
		assert.NoError(t, err)
	})

	t.Run("config-file", func(t *testing.T) {
		_, err := LoadFs(memFs, filepath.Join("/cfg", ConfigurationName))
		assert.NoError(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadFs(memFs, "/nope")
		assert.Error(t, err)
	})

	t.Run("unknown-field", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(memFs, "/bad/config.yaml", append(append([]byte{}, defaultConfigData...), []byte("\nmotd: hi\n")...), 0600))
		_, err := LoadFs(memFs, "/bad")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing config.yaml")
	})

	t.Run("invalid-value", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(memFs, "/invalid/config.yaml", bytes.ReplaceAll(defaultConfigData, []byte("color: auto"), []byte("color: rainbow")), 0600))
		_, err := LoadFs(memFs, "/invalid")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config.yaml")
	})
}

func TestEventLog(t *testing.T) {
	memFs := afero.NewMemMapFs()
	cfg, err := Initialize(memFs, "/cfg", log.New(io.Discard, "", 0))
	require.NoError(t, err)

	cfg.EventLog = "events.jsonl"
	assert.True(t, cfg.EventLogEnabled())

	for _, line := range []string{"one\n", "two\n"} {
		fd, err := cfg.OpenEventLog()
		require.NoError(t, err)
		_, err = io.WriteString(fd, line)
		require.NoError(t, err)
		require.NoError(t, fd.Close())
	}

	fd, err := cfg.ReadEventLog()
	require.NoError(t, err)
	defer fd.Close()

	contents, err := io.ReadAll(fd)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(contents))

	exists, err := afero.Exists(memFs, "/cfg/events.jsonl")
	require.NoError(t, err)
	assert.True(t, exists)
}
