package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{" WARN ", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"loud", zerolog.InfoLevel, true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if tc.wantErr {
			require.Error(t, err, "in=%q", tc.in)
			continue
		}
		require.NoError(t, err, "in=%q", tc.in)
		require.Equal(t, tc.want, got, "in=%q", tc.in)
	}
}

func TestNewWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zerolog.InfoLevel)

	logger.Debug().Msg("hidden")
	logger.Error().Str("request_id", "abc").Msg("dispatch failed")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1, "debug entry must be filtered at info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	require.Equal(t, "error", entry["level"])
	require.Equal(t, "abc", entry["request_id"])
	require.Equal(t, "aichat", entry["app"])
	require.Equal(t, "dispatch failed", entry["message"])
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "aichat.log")

	logger, closer, err := New(Options{Path: path, Level: "info"})
	require.NoError(t, err)
	logger.Info().Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"message":"hello"`)
}

func TestNew_Disabled(t *testing.T) {
	logger, closer, err := New(Options{})
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	require.Equal(t, zerolog.Disabled, logger.GetLevel())
}

func TestNew_BadLevel(t *testing.T) {
	_, _, err := New(Options{Path: "-", Level: "loud"})
	require.Error(t, err)
}
