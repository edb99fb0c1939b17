package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Init(Options{Console: &buf, NoColor: true})
	require.NoError(t, err)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	logger.Info().Int("tasks", 3).Msg("normalized")
	logger.Debug().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, "normalized")
	assert.Contains(t, out, "tasks=3")
	assert.NotContains(t, out, "hidden")
}

func TestInit_VerboseAndFile(t *testing.T) {
	var buf bytes.Buffer
	dir := filepath.Join(t.TempDir(), "logs")

	_, err := Init(Options{Console: &buf, NoColor: true, Verbose: true, Dir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log.Debug().Msg("grouped")

	assert.Contains(t, buf.String(), "grouped")
	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"grouped"`)
}

func TestInit_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err := Init(Options{Console: &bytes.Buffer{}, Dir: filepath.Join(file, "logs")})
	assert.Error(t, err)
}
