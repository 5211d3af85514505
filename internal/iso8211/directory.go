package iso8211

import "fmt"

// dirEntry is one (tag, length, position) triple from a record's directory.
type dirEntry struct {
	tag      string
	length   int
	position int
}

// parseDirectory reads directory entries from buf (the slice between the
// leader and the base address) using the leader's declared field widths.
// It stops at the first field-terminator byte, as the spec requires, and
// returns errDirTruncated if an entry would run past the end of buf.
func parseDirectory(buf []byte, l leader) ([]dirEntry, error) {
	entryWidth := l.sizeOfFieldTag + l.sizeOfFieldLength + l.sizeOfFieldPos
	if entryWidth <= 0 {
		return nil, fmt.Errorf("iso8211: non-positive directory entry width")
	}

	var entries []dirEntry
	i := 0
	for i < len(buf) {
		if buf[i] == fieldTerminator {
			return entries, nil
		}
		if i+entryWidth > len(buf) {
			return entries, errDirTruncated
		}
		tag := string(buf[i : i+l.sizeOfFieldTag])
		i += l.sizeOfFieldTag

		length, err := atoiField(buf[i : i+l.sizeOfFieldLength])
		if err != nil {
			return entries, fmt.Errorf("iso8211: directory length field: %w", err)
		}
		i += l.sizeOfFieldLength

		position, err := atoiField(buf[i : i+l.sizeOfFieldPos])
		if err != nil {
			return entries, fmt.Errorf("iso8211: directory position field: %w", err)
		}
		i += l.sizeOfFieldPos

		entries = append(entries, dirEntry{tag: tag, length: length, position: position})
	}
	return entries, errDirTruncated
}

// errDirTruncated signals the directory ran past its declared area without
// hitting a field terminator.
var errDirTruncated = fmt.Errorf("iso8211: directory truncated")
