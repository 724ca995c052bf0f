// Package logging builds the client's zerolog logger. The terminal belongs to
// the UI, so every entry goes to a JSON-lines file that the Logs view tails.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/foodbridge/foodbridge/internal/config"
)

// logger fields
const (
	PACKAGE   = "pkg"
	FUNC      = "func"
	EVENT     = "event"
	KIND      = "kind"
	OP        = "op"
	REQUESTID = "request_id"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// New opens cfg.LogPath() for appending and returns a logger writing to it at
// the configured level. The returned closer releases the file.
func New(cfg config.Config) (zerolog.Logger, io.Closer, error) {
	path := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log: %w", err)
	}
	return NewWriter(file, cfg.LogLevel), file, nil
}

// NewWriter returns a timestamped logger writing JSON lines to w.
func NewWriter(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger().Level(Level(level))
}

// Level maps a config level name to a zerolog level. Unknown names are info.
func Level(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Package returns a child of root tagged with pkg={name}.
func Package(root zerolog.Logger, name string) zerolog.Logger {
	return root.With().Str(PACKAGE, name).Logger()
}
