package infra

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		env, level string
		want       zerolog.Level
	}{
		{"development", "", zerolog.DebugLevel},
		{"production", "", zerolog.InfoLevel},
		{"production", "warn", zerolog.WarnLevel},
		{"production", "bogus", zerolog.InfoLevel},
	}
	for _, tc := range tests {
		logger := newLogger(&bytes.Buffer{}, tc.env, tc.level)
		if got := logger.GetLevel(); got != tc.want {
			t.Fatalf("newLogger(%q, %q) level = %v, want %v", tc.env, tc.level, got, tc.want)
		}
	}
}

func TestNewLoggerWritesJSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "")
	logger.Info().Str("batch_id", "b1").Msg("settled")

	out := buf.String()
	if !strings.Contains(out, `"batch_id":"b1"`) || !strings.Contains(out, `"message":"settled"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}
