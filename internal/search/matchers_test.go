package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func qd(t *testing.T, q string, cfg Config) *QueryData {
	t.Helper()
	d := NewQueryData(q, cfg)
	return &d
}

func TestPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		q    string
		cfg  Config
		want int
	}{
		{"matches at start", "hello world", "hello", Config{}, 0},
		{"too short", "hi", "hello", Config{}, NoMatch},
		{"mismatch", "world hello", "hello", Config{}, NoMatch},
		{"ignore case", "HELLO world", "hello", Config{IgnoreCase: true}, 0},
		{"case sensitive mismatch", "HELLO world", "hello", Config{}, NoMatch},
		{"empty query matches empty prefix", "anything", "", Config{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Prefix(tt.line, qd(t, tt.q, tt.cfg))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSuffix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		q    string
		cfg  Config
		want int
	}{
		{"matches at end", "hello world", "world", Config{}, 6},
		{"too short", "hi", "hello", Config{}, NoMatch},
		{"mismatch", "world hello", "world", Config{}, NoMatch},
		{"ignore case", "hello WORLD", "world", Config{IgnoreCase: true}, 6},
		{"whole string", "exact", "exact", Config{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Suffix(tt.line, qd(t, tt.q, tt.cfg))
			require.Equal(t, tt.want, got)
		})
	}
}

// Testable Property 4: suffix(head+q) == |head| for any head, q.
func TestSuffixOffsetProperty(t *testing.T) {
	t.Parallel()

	heads := []string{"", "x", "hello ", "a long head of text "}
	for _, head := range heads {
		q := "needle"
		line := head + q
		got := Suffix(line, qd(t, q, Config{}))
		require.Equal(t, len(head), got, "head %q", head)
	}
}

func TestSubstring(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		q    string
		cfg  Config
		want int
	}{
		{"found in middle", "the quick brown fox", "quick", Config{}, 4},
		{"not found", "the quick brown fox", "slow", Config{}, NoMatch},
		{"found at start", "quick fox", "quick", Config{}, 0},
		{"found at end", "the fox", "fox", Config{}, 4},
		{"ignore case", "The Quick Fox", "quick", Config{IgnoreCase: true}, 4},
		{"empty query", "anything", "", Config{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Substring(tt.line, qd(t, tt.q, tt.cfg))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSubsequence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		q    string
		cfg  Config
		want bool
	}{
		{"ordered subsequence", "hello world", "hlowrd", Config{}, true},
		{"exact substring", "hello world", "world", Config{}, true},
		{"out of order", "hello world", "wh", Config{}, false},
		{"missing char", "hello", "hz", Config{}, false},
		{"ignore case", "Hello World", "HWD", Config{IgnoreCase: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Subsequence(tt.line, qd(t, tt.q, tt.cfg))
			require.Equal(t, tt.want, got != NoMatch)
		})
	}
}

func TestSubsequenceRangeRespectsSearchFrom(t *testing.T) {
	t.Parallel()

	q := qd(t, "ab", Config{})
	line := "ab cd ab"

	start, end := SubsequenceRange(line, 0, q)
	require.Equal(t, 0, start)
	require.Equal(t, 1, end)

	start, end = SubsequenceRange(line, 2, q)
	require.Equal(t, 6, start)
	require.Equal(t, 7, end)

	_, end2 := SubsequenceRange(line, 8, q)
	require.Equal(t, NoMatch, end2)
}
