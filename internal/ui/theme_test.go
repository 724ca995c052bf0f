package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Kanagawa" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Nightfox Kanagawa Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want Nightfox", got)
	}
	if got := NextTheme("Unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(Unknown) = %q, want Nightfox", got)
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got)
	}
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Nightfox (fallback)", got)
	}
}

func TestStatusStyle_IgnoresCaseAndFallsBack(t *testing.T) {
	th := GetTheme("Kanagawa")
	styles := th.Styles()

	if got := styles.StatusStyle(" OPEN ").GetBackground(); got != lipgloss.Color(th.Success) {
		t.Fatalf("StatusStyle(OPEN) background = %v, want %v", got, th.Success)
	}
	if got := styles.StatusStyle("CANCELLED").GetBackground(); got != lipgloss.Color(th.Danger) {
		t.Fatalf("StatusStyle(CANCELLED) background = %v, want %v", got, th.Danger)
	}
	if got := styles.StatusStyle("mystery").GetBackground(); got != lipgloss.Color(th.Muted) {
		t.Fatalf("StatusStyle(mystery) background = %v, want muted %v", got, th.Muted)
	}
}

func TestThemesCoverEveryStatus(t *testing.T) {
	statuses := []string{
		"open", "closed", "maintenance", "high_demand", "limited", "available",
		"pending", "claimed", "completed", "expired", "confirmed", "cancelled",
		"active", "inactive",
	}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, s := range statuses {
			if th.StatusColors[s] == "" {
				t.Fatalf("theme %s has no color for %q", name, s)
			}
		}
	}
}
