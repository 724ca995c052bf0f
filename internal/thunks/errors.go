package thunks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
)

// ErrServerUnavailable is returned for 5xx responses, transport failures and
// requests refused by an open breaker. The kind's error slot is set as well.
var ErrServerUnavailable = errors.New("server unavailable")

// ValidationError is returned before any request is sent.
type ValidationError struct {
	Fields foodbridge.FieldErrors
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Fields.String()
}

// RejectedError carries a 4xx response. The store is left untouched.
type RejectedError struct {
	StatusCode int
	Fields     foodbridge.FieldErrors
	Messages   []string
}

func (e *RejectedError) Error() string {
	var parts []string
	if len(e.Fields) > 0 {
		parts = append(parts, e.Fields.String())
	}
	parts = append(parts, e.Messages...)
	if len(parts) == 0 {
		return fmt.Sprintf("request rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request rejected with status %d: %s", e.StatusCode, strings.Join(parts, "; "))
}

// Message returns the first general message, or the first field message when
// the server sent only field errors.
func (e *RejectedError) Message() string {
	if len(e.Messages) > 0 {
		return e.Messages[0]
	}
	for _, f := range e.Fields.Fields() {
		return e.Fields[f]
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

// FieldErrors extracts field-keyed messages from a validation or rejection
// error. It returns nil for any other error.
func FieldErrors(err error) foodbridge.FieldErrors {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	var rerr *RejectedError
	if errors.As(err, &rerr) {
		return rerr.Fields
	}
	return nil
}
