package foodbridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrUnavailable marks transport failures and requests refused while the
// circuit breaker is open.
var ErrUnavailable = errors.New("server unavailable")

// FieldErrors maps a field name to a human-readable message.
type FieldErrors map[string]string

// Add records msg for field, appending to any message already present.
func (e FieldErrors) Add(field, msg string) {
	if prev, ok := e[field]; ok && prev != "" {
		e[field] = prev + "; " + msg
		return
	}
	e[field] = msg
}

// Fields returns the field names in sorted order.
func (e FieldErrors) Fields() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e FieldErrors) String() string {
	parts := make([]string, 0, len(e))
	for _, k := range e.Fields() {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, ", ")
}

// Problem is the parsed form of an error response body.
type Problem struct {
	Fields   FieldErrors
	Messages []string
}

// Empty reports whether the body carried nothing usable.
func (p Problem) Empty() bool {
	return len(p.Fields) == 0 && len(p.Messages) == 0
}

func (p Problem) String() string {
	var parts []string
	parts = append(parts, p.Messages...)
	if len(p.Fields) > 0 {
		parts = append(parts, p.Fields.String())
	}
	return strings.Join(parts, "; ")
}

// ParseProblem decodes the error shapes the API emits:
//
//	{"errors": {"field": "msg"}}   {"errors": ["msg"]}   {"errors": "msg"}
//	{"message": "msg"}             {"field": "msg"}      {"field": ["msg"]}
//
// Unknown or non-JSON bodies yield an empty Problem.
func ParseProblem(body []byte) Problem {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		var list []string
		if json.Unmarshal(body, &list) == nil {
			return Problem{Messages: list}
		}
		return Problem{}
	}

	if raw, ok := root["errors"]; ok {
		return parseErrorsValue(raw)
	}

	var p Problem
	for _, key := range []string{"message", "error"} {
		if raw, ok := root[key]; ok {
			if msg, ok := decodeMessage(raw); ok {
				p.Messages = append(p.Messages, msg)
			}
			delete(root, key)
		}
	}
	fields := FieldErrors{}
	for k, raw := range root {
		if msg, ok := decodeMessage(raw); ok {
			fields[k] = msg
		}
	}
	if len(fields) > 0 {
		p.Fields = fields
	}
	return p
}

func parseErrorsValue(raw json.RawMessage) Problem {
	var asMap map[string]json.RawMessage
	if json.Unmarshal(raw, &asMap) == nil {
		fields := FieldErrors{}
		for k, v := range asMap {
			if msg, ok := decodeMessage(v); ok {
				fields[k] = msg
			}
		}
		if len(fields) == 0 {
			return Problem{}
		}
		return Problem{Fields: fields}
	}
	var asList []string
	if json.Unmarshal(raw, &asList) == nil {
		return Problem{Messages: compactMessages(asList)}
	}
	if msg, ok := decodeMessage(raw); ok {
		return Problem{Messages: []string{msg}}
	}
	return Problem{}
}

// compactMessages drops blank entries from a message list.
func compactMessages(list []string) []string {
	out := make([]string, 0, len(list))
	for _, m := range list {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

func decodeMessage(raw json.RawMessage) (string, bool) {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, true
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		return strings.Join(list, "; "), true
	}
	return "", false
}

// StatusError is returned for every non-2xx response. It keeps the raw body so
// callers can interpret payloads beyond the parsed Problem.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	Problem    Problem
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.StatusCode)
	if !e.Problem.Empty() {
		msg += ": " + e.Problem.String()
	}
	return msg
}

// Is lets errors.Is match ErrUnavailable for server-side failures.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnavailable && e.ServerSide()
}

// ServerSide reports a 5xx status.
func (e *StatusError) ServerSide() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// NotFound reports a 404 status.
func (e *StatusError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}
