package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which secondary columns are hidden.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width to show address and contact columns.
	LayoutWideWidth = 140
)

// Log display limits.
const (
	// LogTailLines is the number of log lines read from the end of the file.
	LogTailLines = 500
)

// Timing constants.
const (
	// ThunkTimeout bounds every request started from the UI.
	ThunkTimeout = 15 * time.Second

	// LogRefreshInterval is how often the Logs tab rereads the file while following.
	LogRefreshInterval = 2 * time.Second

	// StatusTTL is how long a success message stays in the status line.
	StatusTTL = 5 * time.Second
)
