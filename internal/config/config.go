package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything the client reads from config.toml.
type Config struct {
	APIBase        string
	LogDir         string
	LogLevel       string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	MetricsAddr    string
	Breaker        Breaker
}

// Breaker tunes the gateway circuit breaker.
type Breaker struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

const (
	defaultConfigPath     = "~/.config/foodbridge/config.toml"
	defaultLogDir         = "~/.local/share/foodbridge"
	defaultAPIBase        = "http://127.0.0.1:5000"
	defaultLogLevel       = "info"
	defaultRequestTimeout = 10 * time.Second
	defaultPollInterval   = 15 * time.Second
	logFileName           = "foodbridge.log"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBase:        defaultAPIBase,
		LogDir:         mustExpand(defaultLogDir),
		LogLevel:       defaultLogLevel,
		RequestTimeout: defaultRequestTimeout,
		PollInterval:   defaultPollInterval,
		Breaker: Breaker{
			MaxRequests:         3,
			Interval:            10 * time.Second,
			Timeout:             30 * time.Second,
			ConsecutiveFailures: 3,
		},
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase        string `toml:"api_base"`
		LogDir         string `toml:"log_dir"`
		LogLevel       string `toml:"log_level"`
		RequestTimeout string `toml:"request_timeout"`
		PollInterval   string `toml:"poll_interval"`
		MetricsAddr    string `toml:"metrics_addr"`
		Breaker        struct {
			MaxRequests         uint32 `toml:"max_requests"`
			Interval            string `toml:"interval"`
			Timeout             string `toml:"timeout"`
			ConsecutiveFailures uint32 `toml:"consecutive_failures"`
		} `toml:"breaker"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		switch v {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = v
		default:
			return Config{}, fmt.Errorf("parse config: log_level %q: want debug, info, warn or error", raw.LogLevel)
		}
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	durations := []struct {
		key  string
		raw  string
		dest *time.Duration
	}{
		{"request_timeout", raw.RequestTimeout, &cfg.RequestTimeout},
		{"poll_interval", raw.PollInterval, &cfg.PollInterval},
		{"breaker.interval", raw.Breaker.Interval, &cfg.Breaker.Interval},
		{"breaker.timeout", raw.Breaker.Timeout, &cfg.Breaker.Timeout},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.raw, d.dest); err != nil {
			return Config{}, err
		}
	}
	if raw.Breaker.MaxRequests > 0 {
		cfg.Breaker.MaxRequests = raw.Breaker.MaxRequests
	}
	if raw.Breaker.ConsecutiveFailures > 0 {
		cfg.Breaker.ConsecutiveFailures = raw.Breaker.ConsecutiveFailures
	}

	return cfg, nil
}

// LogPath returns the path of the client's own log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/" + logFileName)
	}
	return filepath.Join(c.LogDir, logFileName)
}

func parseDuration(key, raw string, dest *time.Duration) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("parse config: %s must be positive", key)
	}
	*dest = d
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
