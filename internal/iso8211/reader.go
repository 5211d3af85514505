// Package iso8211 implements a tolerant reader for ISO/IEC 8211 interchange
// records — the container format S-57 ENC data is wrapped in. It has no
// awareness of S-57 field semantics; it only knows leaders, directories,
// and field extraction. The field decoder in pkg/s57 interprets the raw
// field bytes this package hands back.
package iso8211

import (
	"fmt"

	"github.com/frye/s57enc/internal/diagnostics"
)

const (
	minRecordLength = 24
	maxRecordLength = 100000
)

// Record is one decoded ISO 8211 record: its declared length, base address,
// and the raw bytes of every field keyed by tag, with terminators stripped.
type Record struct {
	IsDDR        bool
	RecordLength int
	BaseAddress  int
	Tags         []string // directory order, including duplicate tags if present
	Fields       map[string][]byte
}

// Field returns the raw bytes of the first field with the given tag, and
// whether it was present.
func (r *Record) Field(tag string) ([]byte, bool) {
	b, ok := r.Fields[tag]
	return b, ok
}

// Reader scans a byte buffer for ISO 8211 records, recovering from
// corruption in data records (never in the DDR, which fails fatally) by
// fast-forwarding or skip-scanning to the next plausible record start.
type Reader struct {
	data   []byte
	cursor int
	coll   *diagnostics.Collector
	ddrSeen bool
}

// NewReader creates a Reader over data, reporting recoverable corruption to
// coll. coll must not be nil.
func NewReader(data []byte, coll *diagnostics.Collector) *Reader {
	return &Reader{data: data, coll: coll}
}

// Next decodes the next record. ok is false at end of input. err is
// non-nil only for a fatal failure (an invalid DDR, a strict-mode
// escalation, or the diagnostics Collector's runaway warning cap) — all
// other corruption is reported as a warning and recovered from.
func (r *Reader) Next() (rec *Record, ok bool, err error) {
	for {
		if r.cursor >= len(r.data) {
			return nil, false, nil
		}
		remaining := len(r.data) - r.cursor
		isDDR := !r.ddrSeen

		if remaining < leaderSize {
			if isDDR {
				return nil, false, fmt.Errorf("iso8211: input shorter than one leader (%d bytes)", remaining)
			}
			if werr := r.warn(diagnostics.LeaderTruncated, diagnostics.Warn,
				"fewer than 24 bytes remain for a new record leader"); werr != nil {
				return nil, false, werr
			}
			return nil, false, nil
		}

		l, perr := parseLeader(r.data[r.cursor:])
		if perr != nil {
			if isDDR {
				return nil, false, fmt.Errorf("iso8211: invalid DDR leader: %w", perr)
			}
			if werr := r.warn(diagnostics.LeaderLenMismatch, diagnostics.Warn, perr.Error()); werr != nil {
				return nil, false, werr
			}
			if !r.skipScan() {
				return nil, false, nil
			}
			continue
		}

		start := r.cursor
		validLen := l.recordLength > leaderSize && l.recordLength <= remaining
		validBase := l.baseAddress >= leaderSize && l.baseAddress < l.recordLength
		validSizes := l.sizesValid()

		if !validLen || !validBase || !validSizes {
			if isDDR {
				return nil, false, fmt.Errorf(
					"iso8211: invalid DDR leader (recordLength=%d baseAddress=%d remaining=%d)",
					l.recordLength, l.baseAddress, remaining)
			}
			code := diagnostics.LeaderLenMismatch
			if validLen && !validBase {
				code = diagnostics.BadBaseAddr
			}
			if werr := r.warn(code, diagnostics.Warn, fmt.Sprintf(
				"record at offset %d has inconsistent leader (recordLength=%d baseAddress=%d)",
				start, l.recordLength, l.baseAddress)); werr != nil {
				return nil, false, werr
			}
			if validLen && start+l.recordLength <= len(r.data) {
				r.cursor = start + l.recordLength
				continue
			}
			if !r.skipScan() {
				return nil, false, nil
			}
			continue
		}

		dirBuf := r.data[start+leaderSize : start+l.baseAddress]
		entries, direrr := parseDirectory(dirBuf, l)
		if direrr != nil {
			if isDDR {
				return nil, false, fmt.Errorf("iso8211: DDR directory: %w", direrr)
			}
			if werr := r.warn(diagnostics.DirTruncated, diagnostics.Warn,
				fmt.Sprintf("record at offset %d: %s", start, direrr)); werr != nil {
				return nil, false, werr
			}
			r.advance(start, l.recordLength)
			continue
		}

		fields := make(map[string][]byte, len(entries))
		tags := make([]string, 0, len(entries))
		for _, e := range entries {
			fieldStart := start + l.baseAddress + e.position
			fieldEnd := fieldStart + e.length
			if fieldStart < 0 || fieldEnd > len(r.data) || fieldStart > fieldEnd {
				if werr := r.warn(diagnostics.FieldBounds, diagnostics.Warn, fmt.Sprintf(
					"field %q at record offset %d extends past buffer end", e.tag, start)); werr != nil {
					return nil, false, werr
				}
				continue
			}
			raw := r.data[fieldStart:fieldEnd]
			if len(raw) > 0 && raw[len(raw)-1] == fieldTerminator {
				raw = raw[:len(raw)-1]
			}
			if _, dup := fields[e.tag]; !dup {
				fields[e.tag] = raw
			}
			tags = append(tags, e.tag)
		}

		rec = &Record{
			IsDDR:        isDDR,
			RecordLength: l.recordLength,
			BaseAddress:  l.baseAddress,
			Tags:         tags,
			Fields:       fields,
		}
		r.ddrSeen = true
		r.advance(start, l.recordLength)
		return rec, true, nil
	}
}

// advance moves the cursor past this record, guaranteeing forward progress
// even if recordLength was somehow zero.
func (r *Reader) advance(start, recordLength int) {
	next := start + recordLength
	if next <= r.cursor {
		next = r.cursor + 1
	}
	r.cursor = next
}

// skipScan looks for the next plausible record start by reading 5 ASCII
// digits at successive offsets and accepting the first one whose decoded
// length is in (24, 100000) and fits the remaining buffer. Returns false
// when no candidate is found before the buffer ends.
func (r *Reader) skipScan() bool {
	for offset := r.cursor + 1; offset+5 <= len(r.data); offset++ {
		n, err := atoiField(r.data[offset : offset+5])
		if err != nil {
			continue
		}
		if n > minRecordLength && n < maxRecordLength && offset+n <= len(r.data) {
			r.cursor = offset
			return true
		}
	}
	r.cursor = len(r.data)
	return false
}

// warn raises a diagnostic through the Collector, returning a non-nil error
// only when strict mode escalates it to a terminal failure.
func (r *Reader) warn(code diagnostics.Code, sev diagnostics.Severity, msg string) error {
	return r.coll.Warn(code, sev, msg, "", "")
}

// ReadAll drains the Reader, collecting every record. It stops at the first
// fatal error (invalid DDR, a strict-mode escalation, or the runaway
// warning cap).
func (r *Reader) ReadAll() ([]*Record, error) {
	var records []*Record
	for {
		rec, ok, err := r.Next()
		if err != nil {
			return records, err
		}
		if !ok {
			return records, nil
		}
		records = append(records, rec)
	}
}
