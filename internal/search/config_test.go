package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigValidateFillsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Config{TopK: 10}.Validate()
	require.NoError(t, err)
	require.Equal(t, DefaultBatchSize, cfg.BatchSize)
	require.Equal(t, DefaultMaxSymbolGap, cfg.MaxSymbolGap)
	require.Equal(t, DefaultWordDelims, cfg.WordDelims)
	require.Equal(t, GapPenaltyLinear, cfg.GapPenalty)
}

func TestConfigValidateRejectsNonPositiveTopK(t *testing.T) {
	t.Parallel()

	_, err := Config{TopK: 0}.Validate()
	require.Error(t, err)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "top_k", ce.Field)
}

func TestConfigValidateRejectsBadGapPenalty(t *testing.T) {
	t.Parallel()

	_, err := Config{TopK: 1, GapPenalty: "quadratic"}.Validate()
	require.Error(t, err)
}

func TestConfigValidatePreservesExplicitValues(t *testing.T) {
	t.Parallel()

	cfg, err := Config{
		TopK:         5,
		BatchSize:    100,
		MaxSymbolGap: 3,
		WordDelims:   "_",
		GapPenalty:   GapPenaltyLog,
	}.Validate()
	require.NoError(t, err)
	require.Equal(t, 100, cfg.BatchSize)
	require.Equal(t, 3, cfg.MaxSymbolGap)
	require.Equal(t, "_", cfg.WordDelims)
	require.Equal(t, GapPenaltyLog, cfg.GapPenalty)
}
