package diagnostics

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_DedupDropsRepeatedCodeMessage(t *testing.T) {
	c := NewCollector(Options{})

	require.NoError(t, c.Warn(DanglingPointer, Warn, "edge 42 missing", "42", ""))
	require.NoError(t, c.Warn(DanglingPointer, Warn, "edge 42 missing", "42", ""))
	require.NoError(t, c.Warn(DanglingPointer, Warn, "edge 43 missing", "43", ""))

	assert.Equal(t, 2, c.Total())
	assert.Equal(t, 2, c.Count(Warn))
}

func TestCollector_NonStrictNeverFails(t *testing.T) {
	c := NewCollector(Options{Strict: false})

	err := c.Warn(UnknownObjCode, Error, "OBJL 9999 unknown", "", "feat-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, c.Count(Error))
}

func TestCollector_StrictEscalatesOnError(t *testing.T) {
	c := NewCollector(Options{Strict: true, MaxWarnings: 100})

	require.NoError(t, c.Warn(PolygonClosedAuto, Info, "ring auto-closed", "7", ""))

	err := c.Warn(MissingRequiredAttr, Error, "DEPARE missing DRVAL1", "", "feat-9")
	require.Error(t, err)

	var failure *StrictFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, MissingRequiredAttr, failure.Trigger.Code)
	assert.Len(t, failure.Warnings, 2)
}

func TestCollector_StrictWithZeroMaxWarningsFailsOnFirstWarning(t *testing.T) {
	c := NewCollector(Options{Strict: true, MaxWarnings: 0})

	err := c.Warn(DegenerateEdge, Info, "edge 1 has zero length", "1", "")
	require.Error(t, err)

	var failure *StrictFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, DegenerateEdge, failure.Trigger.Code)
}

func TestCollector_StrictBudgetAllowsExactlyMaxWarnings(t *testing.T) {
	c := NewCollector(Options{Strict: true, MaxWarnings: 2})

	require.NoError(t, c.Warn(DanglingPointer, Warn, "a", "1", ""))
	require.NoError(t, c.Warn(DanglingPointer, Warn, "b", "2", ""))

	err := c.Warn(DanglingPointer, Warn, "c", "3", "")
	require.Error(t, err)
	var failure *StrictFailure
	require.True(t, errors.As(err, &failure))
}

func TestCollector_RunawayCapAlwaysTerminates(t *testing.T) {
	c := NewCollector(Options{Strict: false})

	var lastErr error
	for i := 0; i < runawayCap+5; i++ {
		lastErr = c.Warn(DanglingPointer, Info, uniqueMessage(i), "", "")
		if lastErr != nil {
			break
		}
	}

	require.Error(t, lastErr)
	var failure *StrictFailure
	require.True(t, errors.As(lastErr, &failure))
	assert.Equal(t, MaxWarningsExceeded, failure.Trigger.Code)
}

func TestCollector_AssignsSessionIDWhenNotProvided(t *testing.T) {
	c := NewCollector(Options{})
	assert.NotEqual(t, uuid.Nil, c.SessionID())
}

func TestCollector_PreservesProvidedSessionID(t *testing.T) {
	id := uuid.New()
	c := NewCollector(Options{SessionID: id})
	assert.Equal(t, id, c.SessionID())
}

func uniqueMessage(i int) string {
	return "distinct warning message " + strconv.Itoa(i)
}

// recordingLogger captures the hooks a Collector drives, for tests that care
// about StartFile/FinishFile wiring rather than just warning counts.
type recordingLogger struct {
	started  []string
	finished []string
	warnings []Warning
}

func (r *recordingLogger) OnStartFile(path string) { r.started = append(r.started, path) }
func (r *recordingLogger) OnWarning(w Warning)      { r.warnings = append(r.warnings, w) }
func (r *recordingLogger) OnFinishFile(path string, warnings []Warning) {
	r.finished = append(r.finished, path)
}

func TestCollector_StartFileAndFinishFileDriveLogger(t *testing.T) {
	logger := &recordingLogger{}
	c := NewCollector(Options{Logger: logger})

	c.StartFile("US5WA50M.000")
	require.NoError(t, c.Warn(DanglingPointer, Warn, "edge 1 missing", "1", ""))
	c.FinishFile("US5WA50M.000")

	assert.Equal(t, []string{"US5WA50M.000"}, logger.started)
	assert.Equal(t, []string{"US5WA50M.000"}, logger.finished)
	assert.Len(t, logger.warnings, 1)
}

func TestCollector_WarningCarriesNonZeroTimestamp(t *testing.T) {
	c := NewCollector(Options{})
	require.NoError(t, c.Warn(DanglingPointer, Warn, "edge 1 missing", "1", ""))

	warnings := c.Warnings()
	require.Len(t, warnings, 1)
	assert.False(t, warnings[0].Timestamp.IsZero())
}
