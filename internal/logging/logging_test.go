package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		command string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "logs",
			command: "watch",
			want:    filepath.Join("logs", "elmarec.watch.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./logs",
			command: "collect",
			want:    filepath.Join(".", "logs", "elmarec.collect.20260212_213836.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "elma"),
			command: "merge",
			want:    filepath.Join("/var", "log", "elma", "elmarec.merge.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.command, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	f, err := OpenLogFile(dir, "watch", start)
	require.NoError(t, err)
	_, err = f.WriteString("line\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	b, err := os.ReadFile(LogFilePath(dir, "watch", start))
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(b))
}

func TestNewZerolog(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, "warn")
	log.Info().Msg("hidden")
	log.Warn().Str("bucket", "rides").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"bucket":"rides"`)
	assert.Contains(t, buf.String(), `"service":"elmarec"`)

	buf.Reset()
	NewZerolog(&buf, "nonsense").Debug().Msg("filtered")
	assert.Empty(t, buf.String())
}
