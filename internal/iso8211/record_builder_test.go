package iso8211

import "fmt"

// testField is a (tag, value) pair used to build a synthetic record.
type testField struct {
	tag   string
	value []byte
}

// buildRecord assembles a well-formed ISO 8211 record (leader + directory +
// field area) from a leader identifier and a list of fields, using 1-byte
// tags, 3-digit lengths, and 4-digit positions (a common interchange
// profile, matching what the parser.go teacher reference assumes).
func buildRecord(id leaderIdentifier, fields []testField) []byte {
	const (
		tagW = 1
		lenW = 3
		posW = 4
	)
	dirEntryWidth := tagW + lenW + posW
	dirSize := len(fields)*dirEntryWidth + 1 // +1 field terminator
	baseAddress := leaderSize + dirSize

	var fieldArea []byte
	positions := make([]int, len(fields))
	for i, f := range fields {
		positions[i] = len(fieldArea)
		fieldArea = append(fieldArea, f.value...)
		fieldArea = append(fieldArea, fieldTerminator)
	}

	recordLength := baseAddress + len(fieldArea)

	buf := make([]byte, 0, recordLength)
	buf = append(buf, []byte(fmt.Sprintf("%05d", recordLength))...)
	buf = append(buf, '3')          // interchange level
	buf = append(buf, byte(id))     // leader identifier
	buf = append(buf, '1')          // field control length
	buf = append(buf, []byte(fmt.Sprintf("%05d", baseAddress))...)
	buf = append(buf, []byte("   ")...) // extended char set
	buf = append(buf, []byte(fmt.Sprintf("%d", lenW))...)
	buf = append(buf, []byte(fmt.Sprintf("%d", posW))...)
	buf = append(buf, '0') // reserved
	buf = append(buf, []byte(fmt.Sprintf("%d", tagW))...)
	buf = append(buf, []byte("    ")...) // remaining leader bytes

	for i, f := range fields {
		buf = append(buf, []byte(f.tag)...)
		buf = append(buf, []byte(fmt.Sprintf("%0*d", lenW, len(f.value)+1))...)
		buf = append(buf, []byte(fmt.Sprintf("%0*d", posW, positions[i]))...)
	}
	buf = append(buf, fieldTerminator)

	buf = append(buf, fieldArea...)
	return buf
}
