package search

import (
	"log/slog"
	"sort"

	"github.com/subseqio/lz/internal/logging"
)

var fuzzyLog = logging.ForComponent(logging.CompFuzzy)

// Fuzzy is a pipeline of one or more fuzzy terms evaluated against a
// haystack: subsequence containment first (IsMatch), then — only once a
// haystack is known to match — minimum-cost embedding scoring (Score).
// Calling Score on a haystack IsMatch has not confirmed is a programming
// error, not a recoverable one: the source treats it as undefined
// behaviour, and a re-implementation must fail loudly instead.
type Fuzzy struct {
	Queries []QueryData

	offsets []int
	hd      *haystackData
}

// NewFuzzy builds a Fuzzy pipeline for queries, scoring with scorer.
func NewFuzzy(queries []QueryData, scorer Scorer) *Fuzzy {
	return &Fuzzy{
		Queries: queries,
		offsets: make([]int, len(queries)),
		hd:      newHaystackData(scorer),
	}
}

// IsMatch reports whether every query in the pipeline occurs in haystack
// as a subsequence, in order if PreserveOrder is set. On success it
// records each query's match start in f.offsets for Score to reuse.
func (f *Fuzzy) IsMatch(haystack string) bool {
	prevEnd := 0
	for j := range f.Queries {
		qd := &f.Queries[j]

		start, end := SubsequenceRange(haystack, prevEnd, qd)
		if start == NoMatch {
			return false
		}
		if j > 0 && qd.PreserveOrder && start < f.offsets[j-1] {
			return false
		}

		f.offsets[j] = start
		if qd.PreserveOrder {
			prevEnd = end + 1
		} else {
			prevEnd = 0
		}
	}
	return true
}

// Score computes the minimum-cost embedding for every query in the
// pipeline and returns their summed score (with the per-query tie-break
// from §4.5.5 applied) and the merged, sorted set of matched positions.
// haystack must be a string IsMatch has already returned true for.
func (f *Fuzzy) Score(haystack string) (float64, []int) {
	if len(f.Queries) == 0 {
		return 0, nil
	}

	f.hd.delimIndices = findDelims(haystack, f.Queries[0].WordDelims)

	totalScore := 0.0
	allPath := make([]int, 0, len(haystack))

	for j := range f.Queries {
		qd := &f.Queries[j]

		if !f.hd.buildGraph(haystack, f.offsets[j], qd) {
			fuzzyLog.Error("invariant_violation", slog.String("reason", "buildGraph failed on a haystack IsMatch accepted"))
			panic("search: Score called on a haystack that does not match its fuzzy pipeline")
		}
		s, path, ok := GetScore(qd, f.hd)
		if !ok {
			fuzzyLog.Error("invariant_violation", slog.String("reason", "GetScore found no path on a haystack IsMatch accepted"))
			panic("search: Score called on a haystack that does not match its fuzzy pipeline")
		}

		ceil := float64(int(s)) + 1.0
		s += (ceil - s) * (1.0 - 1.0/float64(len(haystack)))

		totalScore += s
		allPath = append(allPath, path...)
	}

	if len(f.Queries) > 1 {
		sort.Ints(allPath)
	}
	return totalScore, allPath
}
