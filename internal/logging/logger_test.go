package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"chatty":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLoggerFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.log")
	log, closer := NewLoggerFromConfig(&Config{Level: "warn", Format: "json", Output: path})

	log.Info().Msg("hidden")
	log.Warn().Str("backend", "csv").Msg("Import failed")

	require.NoError(t, closer.Close())
	assert.Error(t, closer.Close(), "the file handle is released")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"backend":"csv"`)
	assert.Contains(t, string(data), `"message":"Import failed"`)
}

func TestNewLoggerFromConfigDefaults(t *testing.T) {
	log, closer := NewLoggerFromConfig(nil)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
	assert.NoError(t, closer.Close(), "stderr is left open")

	log, closer = NewLoggerFromConfig(&Config{Level: "debug", Output: "discard"})
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
	assert.NoError(t, closer.Close())
}
