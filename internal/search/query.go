package search

import "strings"

// QueryData holds one fuzzy or leaf query plus the per-character case
// alphabet precomputed for fast scanning (spec "Query Data").
//
// QQ[j] holds the byte(s) that count as a match for Q[j]: just Q[j] when
// case is significant, or both cases when IgnoreCase is set. IncludeSet is
// the concatenation of every QQ[j], used as a fast byte-class for
// strings.IndexAny-style scans.
type QueryData struct {
	Q    string
	QLen int
	QQ   [][]byte

	IncludeSet []byte

	IgnoreCase    bool
	PreserveOrder bool
	MaxSymbolGap  int
	WordDelims    string
}

// NewQueryData builds a QueryData for q under cfg. cfg must already have
// smart case resolved (see ResolveSmartCase) and Validate()d defaults
// filled in.
func NewQueryData(q string, cfg Config) QueryData {
	if cfg.IgnoreCase {
		q = strings.ToLower(q)
	}

	qd := QueryData{
		Q:             q,
		QLen:          len(q),
		QQ:            make([][]byte, len(q)),
		IgnoreCase:    cfg.IgnoreCase,
		PreserveOrder: cfg.PreserveOrder,
		MaxSymbolGap:  cfg.MaxSymbolGap,
		WordDelims:    cfg.WordDelims,
	}

	var include []byte
	for j := 0; j < len(q); j++ {
		c := q[j]
		var cases []byte
		if cfg.IgnoreCase {
			cases = []byte{c, toUpperASCII(c)}
		} else {
			cases = []byte{c}
		}
		qd.QQ[j] = cases
		include = append(include, cases...)
	}
	qd.IncludeSet = include

	return qd
}

func toUpperASCII(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

func toLowerASCII(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func isLowerASCII(b byte) bool {
	return b >= 'a' && b <= 'z'
}

