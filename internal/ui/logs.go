package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/foodbridge/foodbridge/internal/logtail"
)

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

func readLogsCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		if err != nil {
			return logsMsg{err: err}
		}
		return logsMsg{entries: logtail.ParseLines(lines)}
	}
}

func (m *Model) handleLogs(msg logsMsg) {
	if msg.err != nil {
		m.setStatus("read logs: "+msg.err.Error(), true)
		return
	}
	m.logEntries = msg.entries
	m.updateLogViewport()
}

func (m *Model) resizeLogViewport() {
	m.logViewport.Width = maxInt(20, m.width-2)
	m.logViewport.Height = maxInt(3, m.height-5)
	m.updateLogViewport()
}

func (m *Model) updateLogViewport() {
	m.logViewport.SetContent(m.renderLogLines())
	if m.logFollow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogLines() string {
	if len(m.logEntries) == 0 {
		return m.theme.Styles().MutedText.Render("No log entries yet.")
	}
	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		lines = append(lines, m.renderLogEntry(e))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLogEntry(e logtail.Entry) string {
	styles := m.theme.Styles()
	if e.Level == "" && e.Time.IsZero() {
		return styles.Text.Render(e.Message)
	}

	var level lipgloss.Style
	switch e.Level {
	case "error", "fatal", "panic":
		level = styles.DangerText
	case "warn":
		level = styles.WarningText.Bold(true)
	case "debug", "trace":
		level = styles.InfoText
	default:
		level = styles.SuccessText
	}

	parts := make([]string, 0, 4+len(e.Fields))
	if !e.Time.IsZero() {
		parts = append(parts, styles.FaintText.Render(e.Time.Local().Format("15:04:05")))
	}
	parts = append(parts, level.Render(padRight(strings.ToUpper(e.Level), 5)))
	if pkg := e.Fields["pkg"]; pkg != "" {
		parts = append(parts, styles.AccentText.Render("["+pkg+"]"))
	}
	parts = append(parts, styles.Text.Render(e.Message))
	for _, k := range e.FieldKeys() {
		if k == "pkg" {
			continue
		}
		parts = append(parts, styles.MutedText.Render(k+"=")+styles.Text.Render(e.Fields[k]))
	}
	if e.Error != "" {
		parts = append(parts, styles.DangerText.Render("error="+e.Error))
	}
	return strings.Join(parts, " ")
}
