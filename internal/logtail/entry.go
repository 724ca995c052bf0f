package logtail

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Entry is one parsed zerolog line.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Error   string
	Fields  map[string]string
	Raw     string
}

// Parse decodes a JSON log line. Lines that are not JSON objects come back as
// an Entry whose Message is the raw text, so nothing in the file is hidden.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		entry.Message = strings.TrimSpace(line)
		return entry
	}
	for key, value := range raw {
		switch key {
		case "time":
			if s, ok := value.(string); ok {
				if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
					entry.Time = ts
				}
			}
		case "level":
			entry.Level, _ = value.(string)
		case "message":
			entry.Message, _ = value.(string)
		case "error":
			entry.Error = stringify(value)
		default:
			if entry.Fields == nil {
				entry.Fields = make(map[string]string, len(raw))
			}
			entry.Fields[key] = stringify(value)
		}
	}
	return entry
}

// ParseLines parses every line, keeping order.
func ParseLines(lines []string) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, Parse(line))
	}
	return out
}

// AtLeast reports whether the entry's level is min or more severe. Entries
// without a level always pass.
func (e Entry) AtLeast(min string) bool {
	rank := map[string]int{"trace": 0, "debug": 1, "info": 2, "warn": 3, "error": 4, "fatal": 5, "panic": 6}
	have, ok := rank[e.Level]
	if !ok {
		return true
	}
	return have >= rank[strings.ToLower(min)]
}

// FieldKeys returns the entry's extra field names in sorted order.
func (e Entry) FieldKeys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the entry as a single plain line:
// "15:04:05 LEVEL message key=value ... error=...".
func (e Entry) String() string {
	if e.Level == "" && e.Time.IsZero() {
		return e.Message
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	if e.Level != "" {
		b.WriteString(strings.ToUpper(e.Level))
		b.WriteByte(' ')
	}
	b.WriteString(e.Message)
	for _, k := range e.FieldKeys() {
		fmt.Fprintf(&b, " %s=%s", k, e.Fields[k])
	}
	if e.Error != "" {
		fmt.Fprintf(&b, " error=%s", e.Error)
	}
	return b.String()
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
