package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != defaultAPIBase {
		t.Fatalf("APIBase = %q, want %q", cfg.APIBase, defaultAPIBase)
	}

	wantLogDir, err := expandPath(defaultLogDir)
	if err != nil {
		t.Fatalf("expandPath(defaultLogDir) returned error: %v", err)
	}
	if cfg.LogDir != wantLogDir {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, wantLogDir)
	}
	if cfg.RequestTimeout != defaultRequestTimeout || cfg.PollInterval != defaultPollInterval {
		t.Fatalf("timeouts = %v/%v, want defaults", cfg.RequestTimeout, cfg.PollInterval)
	}
	if cfg.Breaker.ConsecutiveFailures != 3 || cfg.Breaker.Timeout != 30*time.Second {
		t.Fatalf("Breaker = %+v, want defaults", cfg.Breaker)
	}
	if cfg.MetricsAddr != "" {
		t.Fatalf("MetricsAddr = %q, want disabled", cfg.MetricsAddr)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_base = "  https://food.example.org/  "
log_dir = "  ~/.foodbridge/logs  "
log_level = " DEBUG "
request_timeout = "5s"
poll_interval = "1m"
metrics_addr = " 127.0.0.1:9464 "

[breaker]
max_requests = 1
timeout = "45s"
consecutive_failures = 5
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != "https://food.example.org" {
		t.Fatalf("APIBase = %q, want %q", cfg.APIBase, "https://food.example.org")
	}
	if !strings.HasPrefix(cfg.LogDir, home) {
		t.Fatalf("LogDir = %q, want it under HOME %q", cfg.LogDir, home)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.RequestTimeout != 5*time.Second || cfg.PollInterval != time.Minute {
		t.Fatalf("RequestTimeout = %v PollInterval = %v", cfg.RequestTimeout, cfg.PollInterval)
	}
	if cfg.MetricsAddr != "127.0.0.1:9464" {
		t.Fatalf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	want := Breaker{MaxRequests: 1, Interval: 10 * time.Second, Timeout: 45 * time.Second, ConsecutiveFailures: 5}
	if cfg.Breaker != want {
		t.Fatalf("Breaker = %+v, want %+v", cfg.Breaker, want)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_base = "   "
log_dir = ""
request_timeout = " "
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != defaultAPIBase {
		t.Fatalf("APIBase = %q, want %q", cfg.APIBase, defaultAPIBase)
	}
	wantLogDir, err := expandPath(defaultLogDir)
	if err != nil {
		t.Fatalf("expandPath(defaultLogDir) returned error: %v", err)
	}
	if cfg.LogDir != wantLogDir {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, wantLogDir)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("RequestTimeout = %v, want %v", cfg.RequestTimeout, defaultRequestTimeout)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	cases := map[string]string{
		"toml":     `api_base = [`,
		"duration": `poll_interval = "soon"`,
		"negative": `request_timeout = "-1s"`,
		"level":    `log_level = "loud"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatalf("Load returned nil error, want parse error")
			}
			if !strings.Contains(err.Error(), "parse config") {
				t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestLogPath_DefaultsWhenLogDirEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.LogPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/foodbridge.log")) {
		t.Fatalf("LogPath = %q, want it to end with /foodbridge.log", got)
	}
}

func TestNewCircuitBreaker_TripsOnUnavailableOnly(t *testing.T) {
	var changes []gobreaker.State
	b := Breaker{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, ConsecutiveFailures: 2}
	cb := b.NewCircuitBreaker("api", zerolog.Nop(), func(_ string, to gobreaker.State) {
		changes = append(changes, to)
	})

	rejected := &foodbridge.StatusError{StatusCode: 400}
	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, rejected })
	}
	if cb.State() != gobreaker.StateClosed {
		t.Fatalf("State = %v after 4xx responses, want closed", cb.State())
	}

	down := &foodbridge.StatusError{StatusCode: 502}
	for i := 0; i < 2; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, down })
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("State = %v after 2 failures, want open", cb.State())
	}
	_, err := cb.Execute(func() (interface{}, error) { return nil, nil })
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("Execute while open = %v, want ErrOpenState", err)
	}
	if len(changes) != 1 || changes[0] != gobreaker.StateOpen {
		t.Fatalf("changes = %v, want [open]", changes)
	}
}
