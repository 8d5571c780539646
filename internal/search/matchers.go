package search

// NoMatch is the sentinel offset returned by every leaf matcher when the
// query is not found.
const NoMatch = -1

func matchesByteClass(c byte, valid []byte) bool {
	for _, v := range valid {
		if c == v {
			return true
		}
	}
	return false
}

// matchesPrefixAt reports whether qd's query matches line starting at
// offset off. Callers must ensure off+qd.QLen <= len(line).
func matchesPrefixAt(line string, off int, qd *QueryData) bool {
	for j := 0; j < qd.QLen; j++ {
		if !matchesByteClass(line[off+j], qd.QQ[j]) {
			return false
		}
	}
	return true
}

// Prefix implements the leaf matcher "prefix": the line's first QLen bytes
// must match the query byte-for-byte (respecting case folding). Returns 0
// on match, NoMatch otherwise.
func Prefix(line string, qd *QueryData) int {
	if len(line) < qd.QLen {
		return NoMatch
	}
	if matchesPrefixAt(line, 0, qd) {
		return 0
	}
	return NoMatch
}

// Suffix implements the leaf matcher "suffix": the line's last QLen bytes
// must match the query. Returns the start offset len(line)-QLen on match,
// NoMatch otherwise.
func Suffix(line string, qd *QueryData) int {
	if len(line) < qd.QLen {
		return NoMatch
	}
	off := len(line) - qd.QLen
	if matchesPrefixAt(line, off, qd) {
		return off
	}
	return NoMatch
}

// Substring implements the leaf matcher "exact substring": scan for the
// first byte in the line matching qd.QQ[0]; if the byte QLen-1 positions
// later also matches qd's last class, re-check the whole window. This
// mirrors the original's two-anchor-then-verify scan, which is
// meaningfully faster than a naive O(n*m) scan for most queries.
func Substring(line string, qd *QueryData) int {
	if qd.QLen == 0 {
		return 0
	}
	if len(line) < qd.QLen {
		return NoMatch
	}
	lastIdx := qd.QLen - 1
	first := qd.QQ[0]
	last := qd.QQ[lastIdx]

	limit := len(line) - qd.QLen
	for start := 0; start <= limit; start++ {
		if !matchesByteClass(line[start], first) {
			continue
		}
		if !matchesByteClass(line[start+lastIdx], last) {
			continue
		}
		if matchesPrefixAt(line, start, qd) {
			return start
		}
	}
	return NoMatch
}

// SubsequenceRange implements the leaf matcher "subsequence": walk the
// query byte by byte, each time advancing to the first remaining line byte
// in that position's accepted class. Returns the index of the first
// matched character and the index of the last, or (NoMatch, NoMatch) if
// the query is not a subsequence of line[searchFrom:].
func SubsequenceRange(line string, searchFrom int, qd *QueryData) (start, end int) {
	pos := searchFrom
	start = NoMatch
	for j := 0; j < qd.QLen; j++ {
		idx := indexAnyFrom(line, pos, qd.QQ[j])
		if idx == NoMatch {
			return NoMatch, NoMatch
		}
		if start == NoMatch {
			start = idx
		}
		pos = idx + 1
	}
	return start, pos - 1
}

// Subsequence implements the leaf matcher "subsequence": true iff the
// query occurs as a (not necessarily contiguous) subsequence of line.
// Returns the position of the first matched character, or NoMatch.
func Subsequence(line string, qd *QueryData) int {
	start, _ := SubsequenceRange(line, 0, qd)
	return start
}

// indexAnyFrom returns the index of the first byte at or after from in s
// that belongs to class, or NoMatch.
func indexAnyFrom(s string, from int, class []byte) int {
	for i := from; i < len(s); i++ {
		if matchesByteClass(s[i], class) {
			return i
		}
	}
	return NoMatch
}
