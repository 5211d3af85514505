package iso8211

import (
	"fmt"
	"strconv"
)

const (
	leaderSize = 24

	fieldTerminator    byte = 0x1E
	subfieldDelimiter  byte = 0x1F
	recordTerminator   byte = 0x1D
)

// leaderIdentifier distinguishes a data descriptive record (DDR) from a
// regular data record.
type leaderIdentifier byte

const (
	ddrLeader  leaderIdentifier = 'L'
	dataLeader leaderIdentifier = 'D'
)

// leader is the fixed 24-byte header at the start of every ISO 8211 record.
type leader struct {
	recordLength       int
	interchangeLevel   byte
	identifier         leaderIdentifier
	fieldControlLength int
	baseAddress        int
	extendedCharSet    string
	sizeOfFieldLength  int
	sizeOfFieldPos     int
	sizeOfFieldTag     int
}

// parseLeader decodes the fixed-width leader fields. It only checks that
// the numeric subfields are decimal digits; range/consistency validation
// (recordLength bounds, baseAddress bounds, size-of-* bounds) is the
// caller's responsibility since the correct response (fatal vs. recoverable
// warning) depends on whether this is the DDR or a later record.
func parseLeader(buf []byte) (leader, error) {
	if len(buf) < leaderSize {
		return leader{}, fmt.Errorf("iso8211: leader needs %d bytes, got %d", leaderSize, len(buf))
	}
	recordLength, err := atoiField(buf[0:5])
	if err != nil {
		return leader{}, fmt.Errorf("iso8211: record length: %w", err)
	}
	fieldControlLength, err := atoiField(buf[7:8])
	if err != nil {
		return leader{}, fmt.Errorf("iso8211: field control length: %w", err)
	}
	baseAddress, err := atoiField(buf[8:13])
	if err != nil {
		return leader{}, fmt.Errorf("iso8211: base address: %w", err)
	}
	sizeOfFieldLength, err := atoiField(buf[16:17])
	if err != nil {
		return leader{}, fmt.Errorf("iso8211: size-of-field-length: %w", err)
	}
	sizeOfFieldPos, err := atoiField(buf[17:18])
	if err != nil {
		return leader{}, fmt.Errorf("iso8211: size-of-field-position: %w", err)
	}
	sizeOfFieldTag, err := atoiField(buf[19:20])
	if err != nil {
		return leader{}, fmt.Errorf("iso8211: size-of-field-tag: %w", err)
	}

	return leader{
		recordLength:       recordLength,
		interchangeLevel:   buf[5],
		identifier:         leaderIdentifier(buf[6]),
		fieldControlLength: fieldControlLength,
		baseAddress:        baseAddress,
		extendedCharSet:    string(buf[13:16]),
		sizeOfFieldLength:  sizeOfFieldLength,
		sizeOfFieldPos:     sizeOfFieldPos,
		sizeOfFieldTag:     sizeOfFieldTag,
	}, nil
}

// atoiField trims trailing spaces (some writers pad numeric subfields) and
// parses the remainder as a decimal integer.
func atoiField(b []byte) (int, error) {
	s := string(b)
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// sizesValid reports whether the three size-of-field-* leader fields
// fall in the spec-mandated [1, 9] range.
func (l leader) sizesValid() bool {
	return inRange(l.sizeOfFieldTag, 1, 9) &&
		inRange(l.sizeOfFieldLength, 1, 9) &&
		inRange(l.sizeOfFieldPos, 1, 9)
}

func inRange(v, lo, hi int) bool { return v >= lo && v <= hi }
