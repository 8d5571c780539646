package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/subseqio/lz/internal/search"
)

func withHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	ClearCache()
	t.Cleanup(ClearCache)
	return dir
}

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	dir := filepath.Join(home, ".config", "lazyline")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o600))
}

func TestLoadMissingFileReturnsZeroValue(t *testing.T) {
	withHome(t)

	f, err := Load()
	require.NoError(t, err)
	require.Equal(t, 0, f.TopK)
	require.Equal(t, "", f.GapPenalty)
}

func TestLoadParsesKnownFields(t *testing.T) {
	home := withHome(t)
	writeConfig(t, home, `
top_k = 20
batch_size = 500
max_symbol_gap = 4
word_delims = "_-"
gap_penalty = "log"
preserve_order = true
ignore_case = true
smart_case = false
parallel = true
`)

	f, err := Load()
	require.NoError(t, err)
	require.Equal(t, 20, f.TopK)
	require.Equal(t, 500, f.BatchSize)
	require.Equal(t, 4, f.MaxSymbolGap)
	require.Equal(t, "_-", f.WordDelims)
	require.Equal(t, "log", f.GapPenalty)
	require.True(t, f.PreserveOrder)
	require.True(t, f.IgnoreCase)
	require.True(t, f.Parallel)
}

func TestLoadCachesAcrossCalls(t *testing.T) {
	home := withHome(t)
	writeConfig(t, home, "top_k = 3\n")

	first, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3, first.TopK)

	writeConfig(t, home, "top_k = 99\n")
	second, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3, second.TopK, "cached value must not change until Reload")

	third, err := Reload()
	require.NoError(t, err)
	require.Equal(t, 99, third.TopK)
}

func TestLoadReturnsErrorOnMalformedTOML(t *testing.T) {
	home := withHome(t)
	writeConfig(t, home, "top_k = [this is not valid\n")

	f, err := Load()
	require.Error(t, err)
	require.NotNil(t, f)
}

func TestToSearchConfigOverridesOnlySetFields(t *testing.T) {
	f := &File{TopK: 25, GapPenalty: "log"}
	base := search.Config{Query: "needle", TopK: 10, GapPenalty: search.GapPenaltyLinear}

	merged := f.ToSearchConfig(base)
	require.Equal(t, "needle", merged.Query)
	require.Equal(t, 25, merged.TopK)
	require.Equal(t, search.GapPenaltyLog, merged.GapPenalty)
}

func TestToSearchConfigLeavesBaseAloneWhenFileEmpty(t *testing.T) {
	f := &File{}
	base := search.Config{Query: "needle", TopK: 10, BatchSize: 200}

	merged := f.ToSearchConfig(base)
	require.Equal(t, 10, merged.TopK)
	require.Equal(t, 200, merged.BatchSize)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	withHome(t)

	f := &File{TopK: 15, WordDelims: "_", Parallel: true}
	require.NoError(t, Save(f))

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, 15, loaded.TopK)
	require.Equal(t, "_", loaded.WordDelims)
	require.True(t, loaded.Parallel)
}
