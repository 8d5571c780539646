// Package config loads the user-facing TOML settings file that seeds a
// search.Config before a query ever runs.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/subseqio/lz/internal/search"
)

// FileName is the TOML config file loaded from the config directory.
const FileName = "config.toml"

// File represents the on-disk configuration in TOML format. Field names
// mirror search.Config's knobs exactly; see spec.md §6.
type File struct {
	TopK          int    `toml:"top_k"`
	BatchSize     int    `toml:"batch_size"`
	MaxSymbolGap  int    `toml:"max_symbol_gap"`
	WordDelims    string `toml:"word_delims"`
	GapPenalty    string `toml:"gap_penalty"`
	PreserveOrder bool   `toml:"preserve_order"`
	IgnoreCase    bool   `toml:"ignore_case"`
	SmartCase     bool   `toml:"smart_case"`
	Parallel      bool   `toml:"parallel"`
}

var (
	cache   *File
	cacheMu sync.RWMutex
)

// ConfigDir returns ~/.config/lazyline, creating no directories.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "lazyline"), nil
}

// Path returns the full path to config.toml.
func Path() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the config file, caching the result after the first call.
// A missing file is not an error: it yields a zero-value File, which
// search.Config.Validate fills with its own defaults.
func Load() (*File, error) {
	cacheMu.RLock()
	if cache != nil {
		defer cacheMu.RUnlock()
		return cache, nil
	}
	cacheMu.RUnlock()

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cache != nil {
		return cache, nil
	}

	path, err := Path()
	if err != nil {
		cache = &File{}
		return cache, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cache = &File{}
		return cache, nil
	}

	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		cache = &File{}
		return cache, fmt.Errorf("%s: %w", FileName, err)
	}
	cache = &f
	return cache, nil
}

// Reload discards the cache and reads the file again.
func Reload() (*File, error) {
	cacheMu.Lock()
	cache = nil
	cacheMu.Unlock()
	return Load()
}

// ClearCache drops the cached File so the next Load rereads from disk.
// Exists for tests.
func ClearCache() {
	cacheMu.Lock()
	cache = nil
	cacheMu.Unlock()
}

// ToSearchConfig merges the file's knobs onto a base search.Config. The
// query string and input files are caller-supplied; the file only ever
// supplies the tuning knobs.
func (f *File) ToSearchConfig(base search.Config) search.Config {
	if f.TopK > 0 {
		base.TopK = f.TopK
	}
	if f.BatchSize > 0 {
		base.BatchSize = f.BatchSize
	}
	if f.MaxSymbolGap > 0 {
		base.MaxSymbolGap = f.MaxSymbolGap
	}
	if f.WordDelims != "" {
		base.WordDelims = f.WordDelims
	}
	if f.GapPenalty != "" {
		base.GapPenalty = search.GapPenalty(f.GapPenalty)
	}
	base.PreserveOrder = base.PreserveOrder || f.PreserveOrder
	base.IgnoreCase = base.IgnoreCase || f.IgnoreCase
	base.SmartCase = base.SmartCase || f.SmartCase
	base.Parallel = base.Parallel || f.Parallel
	return base
}

// Save writes f to disk using the same write-temp-then-rename pattern as
// other atomic config writers in this codebase: write 0600, fsync, rename.
func Save(f *File) error {
	path, err := Path()
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# lazyline configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if tf, err := os.Open(tmpPath); err == nil {
		_ = tf.Sync()
		_ = tf.Close()
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalize config save: %w", err)
	}

	ClearCache()
	return nil
}
