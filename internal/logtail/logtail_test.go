package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_KeepsNewestAcrossWrap(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "foodbridge.log")
	long := `{"level":"warn","message":"` + strings.Repeat("x", 100<<10) + `"}`
	body := "a\nb\nc\nd\ne\nf\n" + long + "\n"
	if err := os.WriteFile(logPath, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := Read(logPath, 5)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := []string{"c", "d", "e", "f", long}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Read() returned %d lines, want c..f plus the long entry", len(got))
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || lines != nil {
		t.Fatalf("Read = %v, %v, want nil, nil", lines, err)
	}
}

func TestParse_ZerologLine(t *testing.T) {
	line := `{"level":"warn","pkg":"thunks","kind":"centers","op":"list","status":503,"error":"server unavailable","time":"2026-03-01T10:04:05.5Z","message":"server unavailable"}`

	e := Parse(line)
	if e.Level != "warn" || e.Message != "server unavailable" || e.Error != "server unavailable" {
		t.Fatalf("Parse = %+v", e)
	}
	want := time.Date(2026, 3, 1, 10, 4, 5, 500_000_000, time.UTC)
	if !e.Time.Equal(want) {
		t.Fatalf("Time = %v, want %v", e.Time, want)
	}
	if got := e.FieldKeys(); !reflect.DeepEqual(got, []string{"kind", "op", "pkg", "status"}) {
		t.Fatalf("FieldKeys = %v", got)
	}
	if e.Fields["status"] != "503" {
		t.Fatalf("status = %q, want 503", e.Fields["status"])
	}
	if e.Raw != line {
		t.Fatalf("Raw not preserved")
	}
}

func TestParse_PlainTextLine(t *testing.T) {
	e := Parse("  panic: boom  ")
	if e.Message != "panic: boom" || e.Level != "" {
		t.Fatalf("Parse = %+v", e)
	}
	if e.String() != "panic: boom" {
		t.Fatalf("String = %q", e.String())
	}
	if !e.AtLeast("error") {
		t.Fatalf("levelless entries should pass every filter")
	}
}

func TestEntry_String(t *testing.T) {
	e := Entry{
		Level:   "error",
		Message: "circuit breaker state changed",
		Error:   "boom",
		Fields:  map[string]string{"to": "open", "from": "closed"},
	}
	want := "ERROR circuit breaker state changed from=closed to=open error=boom"
	if got := e.String(); got != want {
		t.Fatalf("String = %q, want %q", got, want)
	}
}

func TestEntry_AtLeast(t *testing.T) {
	tests := []struct {
		level, min string
		want       bool
	}{
		{"debug", "info", false},
		{"info", "info", true},
		{"error", "warn", true},
		{"warn", "ERROR", false},
	}
	for _, tt := range tests {
		if got := (Entry{Level: tt.level}).AtLeast(tt.min); got != tt.want {
			t.Fatalf("Entry{%s}.AtLeast(%s) = %v, want %v", tt.level, tt.min, got, tt.want)
		}
	}
}

func TestParseLines_SkipsBlank(t *testing.T) {
	got := ParseLines([]string{`{"level":"info","message":"a"}`, "   ", `{"level":"debug","message":"b"}`})
	if len(got) != 2 || got[0].Message != "a" || got[1].Message != "b" {
		t.Fatalf("ParseLines = %+v", got)
	}
}
