// Package errortrack captures client errors. Identical errors are debounced in
// memory and open errors with the same signature are coalesced into one row.
package errortrack

import (
	"errors"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Severity of a captured error.
type Severity string

// Severities.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ErrInvalidEvent is returned for events without type or message.
var ErrInvalidEvent = errors.New("error event needs a type and a message")

// Event is one captured error.
type Event struct {
	ErrorType  string         `json:"errorType"  validate:"required,max=100"`
	Severity   Severity       `json:"severity"   validate:"omitempty,oneof=low medium high critical"`
	Message    string         `json:"message"    validate:"required,max=1000"`
	StackTrace string         `json:"stackTrace"`
	Component  string         `json:"component"  validate:"max=200"`
	Module     string         `json:"module"     validate:"max=50"`
	Context    map[string]any `json:"context"`
	UserID     string         `json:"-"`
}

// ValidSeverity reports whether s is a known severity.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// normalize trims the signature fields and defaults the severity to medium.
func (e Event) normalize() (Event, error) {
	e.ErrorType = strings.TrimSpace(e.ErrorType)
	e.Message = strings.TrimSpace(e.Message)
	e.Component = strings.TrimSpace(e.Component)

	if e.ErrorType == "" || e.Message == "" {
		return e, ErrInvalidEvent
	}

	if !ValidSeverity(e.Severity) {
		e.Severity = SeverityMedium
	}

	return e, nil
}

// Signature hashes (error type, message, component).
func (e Event) Signature() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(e.ErrorType)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(e.Message)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(e.Component)

	return d.Sum64()
}
