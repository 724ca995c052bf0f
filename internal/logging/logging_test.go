package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/foodbridge/foodbridge/internal/config"
)

func TestNew_WritesJSONLinesToLogPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := config.Config{LogDir: dir, LogLevel: "warn"}

	log, closer, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	child := Package(log, "thunks")
	child.Info().Msg("dropped")
	child.Warn().Str(KIND, "listings").Msg("kept")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(cfg.LogPath())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %q, want one warn entry", lines)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("entry is not JSON: %v", err)
	}
	if entry["pkg"] != "thunks" || entry["kind"] != "listings" || entry["message"] != "kept" {
		t.Fatalf("entry = %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Fatalf("entry = %v, want a time field", entry)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := Level(tt.in); got != tt.want {
			t.Fatalf("Level(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "error")
	log.Warn().Msg("quiet")
	if buf.Len() != 0 {
		t.Fatalf("buffer = %q, want empty", buf.String())
	}
	log.Error().Msg("loud")
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("buffer = %q, want an error entry", buf.String())
	}
}
