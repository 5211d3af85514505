package s57

import "strconv"

// parseInt parses a decimal integer, accepting a leading sign. Returns
// false rather than an error so callers can fall through to the next
// coercion attempt.
func parseInt(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

// parseFloat parses a decimal float. Returns false on failure.
func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// trimASCII strips leading and trailing NUL and space bytes, the padding
// commonly used to fill fixed-width ASCII subfields. Other whitespace
// (tabs, newlines) is kept.
func trimASCII(b []byte) string {
	i := len(b)
	for i > 0 && (b[i-1] == 0 || b[i-1] == ' ') {
		i--
	}
	j := 0
	for j < i && (b[j] == 0 || b[j] == ' ') {
		j++
	}
	return string(b[j:i])
}
