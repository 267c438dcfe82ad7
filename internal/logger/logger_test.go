package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/nfe-converter/internal/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, logger.ParseLevel(tt.in))
		})
	}
}

func TestSetup_JSONFile(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	path := filepath.Join(t.TempDir(), "app.log")

	zl, closer, err := logger.Setup(logger.LogConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	zl.Debug().Str("file", "nota.xml").Msg("parsed")
	sl := logger.WithComponent("session")
	sl.Info().Msg("loaded")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"file":"nota.xml"`)
	assert.Contains(t, lines[0], `"level":"debug"`)
	assert.Contains(t, lines[1], `"component":"session"`)
}

func TestSetup_LevelFilters(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	path := filepath.Join(t.TempDir(), "app.log")

	zl, closer, err := logger.Setup(logger.LogConfig{Level: "error", Format: "json", Output: path})
	require.NoError(t, err)

	zl.Info().Msg("hidden")
	zl.Error().Msg("shown")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestSetup_BadPath(t *testing.T) {
	_, _, err := logger.Setup(logger.LogConfig{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
	require.Error(t, err)
}
