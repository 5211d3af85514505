package diagnostics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Severity is the three-level severity scale from spec §4.1.
type Severity int

const (
	Info Severity = iota
	Warn
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warn:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Warning is a single structured diagnostic raised by any parsing stage.
type Warning struct {
	Code      Code
	Severity  Severity
	Message   string
	RecordID  string // empty when not applicable
	FeatureID string // empty when not applicable
	SessionID uuid.UUID
	Timestamp time.Time
}

func (w Warning) String() string {
	ctx := ""
	if w.RecordID != "" {
		ctx += fmt.Sprintf(" record=%s", w.RecordID)
	}
	if w.FeatureID != "" {
		ctx += fmt.Sprintf(" feature=%s", w.FeatureID)
	}
	return fmt.Sprintf("[%s] %s: %s%s", w.Severity, w.Code, w.Message, ctx)
}

// dedupKey is the (code, message) pair that defines duplicate warnings.
type dedupKey struct {
	code    Code
	message string
}

// StrictFailure is returned by Collector.Warn when strict mode escalates a
// warning (or a budget overflow) to a terminal parse failure, and in any
// mode once the runaway warning cap is crossed. It carries the
// triggering warning plus every warning accumulated up to that point.
type StrictFailure struct {
	Trigger  Warning
	Warnings []Warning
}

func (f *StrictFailure) Error() string {
	return fmt.Sprintf("strict mode: parse terminated by %s (total warnings: %d)", f.Trigger, len(f.Warnings))
}
