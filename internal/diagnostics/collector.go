package diagnostics

import (
	"time"

	"github.com/google/uuid"
)

// runawayCap is the absolute, always-enforced ceiling on accumulated
// warnings (spec §7 "1000-warning runaway cap"), independent of strict mode
// or the caller-configured MaxWarnings budget. It exists so a corrupt input
// cannot make a Collector accumulate unbounded memory.
const runawayCap = 1000

// Options configures a Collector.
type Options struct {
	// Strict arms strict-mode escalation: any error-severity warning, or an
	// overflow of MaxWarnings, becomes a terminal *StrictFailure.
	Strict bool

	// MaxWarnings is the warning budget enforced only when Strict is set.
	// Zero means "no warning may be raised at all" once Strict is on (the
	// first Warn call already exceeds a zero budget).
	MaxWarnings int

	// Logger receives every diagnostics event. Defaults to SilentLogger().
	Logger Logger

	// SessionID correlates this collector's warnings across concurrent parse
	// sessions (spec §5). A random UUID is generated if the zero value is
	// passed.
	SessionID uuid.UUID
}

// Collector accumulates, deduplicates, and (in strict mode) escalates
// warnings for one parse session. It is not safe for concurrent use by
// multiple goroutines — spec §5 scopes one Collector to one session.
type Collector struct {
	strict      bool
	maxWarnings int
	logger      Logger
	sessionID   uuid.UUID

	warnings []Warning
	seen     map[dedupKey]struct{}
	counts   [3]int // indexed by Severity

	raisedRunaway bool
}

// NewCollector creates a Collector per Options.
func NewCollector(opts Options) *Collector {
	logger := opts.Logger
	if logger == nil {
		logger = SilentLogger()
	}
	sessionID := opts.SessionID
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}
	return &Collector{
		strict:      opts.Strict,
		maxWarnings: opts.MaxWarnings,
		logger:      logger,
		sessionID:   sessionID,
		seen:        make(map[dedupKey]struct{}),
	}
}

// SessionID returns the session-correlation id for this collector.
func (c *Collector) SessionID() uuid.UUID { return c.sessionID }

// Logger returns the configured Logger, for stages that need to drive
// OnStartFile/OnFinishFile directly.
func (c *Collector) Logger() Logger { return c.logger }

// Warn records a warning. It returns nil unless strict mode escalates this
// warning (or the accumulated count) to a terminal failure, or the warning
// pushes the total past runawayCap (in any mode); in either case it returns
// a *StrictFailure carrying the triggering warning and the full warning list
// so far. Duplicate (code, message) pairs are silently dropped and never
// count toward any budget.
func (c *Collector) Warn(code Code, severity Severity, message string, recordID, featureID string) error {
	key := dedupKey{code: code, message: message}
	if _, dup := c.seen[key]; dup {
		return nil
	}
	c.seen[key] = struct{}{}

	w := Warning{
		Code:      code,
		Severity:  severity,
		Message:   message,
		RecordID:  recordID,
		FeatureID: featureID,
		SessionID: c.sessionID,
		Timestamp: time.Now(),
	}
	c.record(w)

	if len(c.warnings) > runawayCap {
		return c.raiseRunaway()
	}

	if c.strict {
		overBudget := c.maxWarnings >= 0 && len(c.warnings) > c.maxWarnings
		if severity == Error || overBudget {
			return &StrictFailure{Trigger: w, Warnings: c.Warnings()}
		}
	}
	return nil
}

// record appends w to the history, bumps counters, and drives the logger.
// Does not apply dedup (caller already checked) or budget logic.
func (c *Collector) record(w Warning) {
	c.warnings = append(c.warnings, w)
	c.counts[w.Severity]++
	c.logger.OnWarning(w)
}

func (c *Collector) raiseRunaway() error {
	if c.raisedRunaway {
		return &StrictFailure{Trigger: c.warnings[len(c.warnings)-1], Warnings: c.Warnings()}
	}
	c.raisedRunaway = true
	w := Warning{
		Code:      MaxWarningsExceeded,
		Severity:  Error,
		Message:   "warning budget exhausted; aborting to avoid unbounded accumulation",
		SessionID: c.sessionID,
		Timestamp: time.Now(),
	}
	c.warnings = append(c.warnings, w)
	c.counts[Error]++
	c.logger.OnWarning(w)
	return &StrictFailure{Trigger: w, Warnings: c.Warnings()}
}

// Count returns the number of (deduplicated) warnings at the given severity.
func (c *Collector) Count(s Severity) int { return c.counts[s] }

// Total returns the total number of deduplicated warnings across all
// severities.
func (c *Collector) Total() int { return len(c.warnings) }

// Warnings returns a copy of the accumulated warning list, in the order
// they were raised.
func (c *Collector) Warnings() []Warning {
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// StartFile drives the logger's onStartFile hook.
func (c *Collector) StartFile(path string) { c.logger.OnStartFile(path) }

// FinishFile drives the logger's onFinishFile hook with the warnings
// accumulated so far.
func (c *Collector) FinishFile(path string) { c.logger.OnFinishFile(path, c.Warnings()) }
