// Package config loads the foodbridge client configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/foodbridge/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - API base: http://127.0.0.1:5000
//   - Log directory: ~/.local/share/foodbridge
//   - Client log: <log_dir>/foodbridge.log
//   - Log level: info
//   - Request timeout: 10s, poll interval: 15s
//   - Metrics listener: disabled
//   - Breaker: 3 probe requests, 10s interval, 30s open timeout, trips after 3
//     consecutive failures
//
// # TOML Format
//
//	api_base = "https://foodbridge.example.org"
//	log_dir = "~/.local/share/foodbridge"
//	log_level = "debug"
//	request_timeout = "5s"
//	poll_interval = "30s"
//	metrics_addr = "127.0.0.1:9464"
//
//	[breaker]
//	max_requests = 3
//	interval = "10s"
//	timeout = "30s"
//	consecutive_failures = 3
//
// Durations use Go syntax ("500ms", "2m"). A duration that does not parse, or
// is not positive, is an error rather than a silent default. String fields are
// trimmed and paths starting with ~ are expanded against the home directory.
package config
