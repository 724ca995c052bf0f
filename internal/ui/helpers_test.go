package ui

import (
	"testing"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
	"github.com/foodbridge/foodbridge/internal/state"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"  Rise Bakery  ", 20, "Rise Bakery"},
		{"Community Fridge North", 10, "Communi..."},
		{"abcd", 2, "ab"},
		{"anything", 0, "anything"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.limit); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	if got := titleCase("HIGH_DEMAND"); got != "High Demand" {
		t.Fatalf("titleCase = %q, want High Demand", got)
	}
	if got := titleCase("  "); got != "" {
		t.Fatalf("titleCase blank = %q, want empty", got)
	}
}

func TestFormatQuantity(t *testing.T) {
	if got := formatQuantity(12, ""); got != "12" {
		t.Fatalf("formatQuantity(12) = %q, want 12", got)
	}
	if got := formatQuantity(2.5, " kg "); got != "2.5 kg" {
		t.Fatalf("formatQuantity(2.5, kg) = %q, want 2.5 kg", got)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[float64]string{
		0:         "$0.00",
		999:       "$999.00",
		1234.5:    "$1,234.50",
		1000000:   "$1,000,000.00",
		-3:        "-$3.00",
		12.345678: "$12.35",
	}
	for in, want := range cases {
		if got := formatMoney(in); got != want {
			t.Fatalf("formatMoney(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q, want %q", got, "ab  ")
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight long = %q, want unchanged", got)
	}
}

func TestParseTab(t *testing.T) {
	for tab := Tab(0); tab < tabCount; tab++ {
		got, ok := parseTab(" " + tab.String() + " ")
		if !ok || got != tab {
			t.Fatalf("parseTab(%q) = %v, %v", tab.String(), got, ok)
		}
	}
	if _, ok := parseTab("queue"); ok {
		t.Fatalf("parseTab(queue) ok = true, want false")
	}
}

func sessionFor(role foodbridge.Role) state.Session {
	s := state.Reduce(state.State{}, state.SetSessionUser(foodbridge.User{ID: 1, UserType: role}))
	return s.Session
}

func TestTabsFor(t *testing.T) {
	cases := []struct {
		role foodbridge.Role
		want []Tab
	}{
		{foodbridge.RoleAdmin, []Tab{TabCenters, TabListings, TabProviders, TabLogs}},
		{foodbridge.RoleProvider, []Tab{TabListings, TabCenters, TabTax, TabLogs}},
		{foodbridge.RoleRecipient, []Tab{TabListings, TabReservations, TabAlerts, TabCenters, TabLogs}},
	}
	for _, tc := range cases {
		got := tabsFor(sessionFor(tc.role))
		if len(got) != len(tc.want) {
			t.Fatalf("tabsFor(%s) = %v, want %v", tc.role, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("tabsFor(%s) = %v, want %v", tc.role, got, tc.want)
			}
		}
	}
	if got := tabsFor(state.Session{}); len(got) != 3 {
		t.Fatalf("tabsFor(anonymous) = %v, want 3 tabs", got)
	}
}

func TestCanDelete(t *testing.T) {
	cases := []struct {
		role foodbridge.Role
		tab  Tab
		want bool
	}{
		{foodbridge.RoleAdmin, TabCenters, true},
		{foodbridge.RoleAdmin, TabListings, false},
		{foodbridge.RoleProvider, TabListings, true},
		{foodbridge.RoleProvider, TabCenters, false},
		{foodbridge.RoleRecipient, TabReservations, false},
	}
	for _, tc := range cases {
		if got := canDelete(sessionFor(tc.role), tc.tab); got != tc.want {
			t.Fatalf("canDelete(%s, %s) = %v, want %v", tc.role, tc.tab, got, tc.want)
		}
	}
}
