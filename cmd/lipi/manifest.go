package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"lipi/internal/script"
)

// lipi.toml is discovered upward from the working directory and carries
// deployment defaults: detector tuning, cache location, the columns a
// roll usually needs, and extra script ranges.
type manifest struct {
	Path   string
	Root   string
	Config manifestConfig
}

type manifestConfig struct {
	Detector detectorConfig       `toml:"detector"`
	Cache    cacheConfig          `toml:"cache"`
	Annotate annotateConfig       `toml:"annotate"`
	Ranges   map[string][][]int64 `toml:"ranges"`
}

type detectorConfig struct {
	SampleChars int    `toml:"sample_chars"`
	DefaultCode string `toml:"default_code"`
}

type cacheConfig struct {
	Path     string  `toml:"path"`
	MinScore float64 `toml:"min_score"`
}

type annotateConfig struct {
	Columns   []string `toml:"columns"`
	ChunkSize int      `toml:"chunk_size"`
}

func findLipiToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "lipi.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadManifest returns (nil, false, nil) when no lipi.toml exists;
// flags then run against builtin defaults.
func loadManifest(startDir string) (*manifest, bool, error) {
	path, ok, err := findLipiToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg manifestConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, true, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return &manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// rangeTable builds the detector table: the builtin scripts plus any
// [ranges] extensions, registered in sorted code order so precedence
// does not depend on TOML map iteration.
func (m *manifest) rangeTable() (*script.Table, error) {
	table := script.DefaultTable()
	if m == nil || len(m.Config.Ranges) == 0 {
		return table, nil
	}
	codes := make([]string, 0, len(m.Config.Ranges))
	for code := range m.Config.Ranges {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		spans, err := parseSpans(m.Path, code, m.Config.Ranges[code])
		if err != nil {
			return nil, err
		}
		table.Register(script.Code(code), spans...)
	}
	return table, nil
}

func parseSpans(path, code string, pairs [][]int64) ([]script.Span, error) {
	spans := make([]script.Span, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%s: [ranges].%s: want [lo, hi) pairs, got %v", path, code, pair)
		}
		lo, err := safecast.Conv[int32](pair[0])
		if err != nil {
			return nil, fmt.Errorf("%s: [ranges].%s: lo out of range: %w", path, code, err)
		}
		hi, err := safecast.Conv[int32](pair[1])
		if err != nil {
			return nil, fmt.Errorf("%s: [ranges].%s: hi out of range: %w", path, code, err)
		}
		if lo < 0 || hi <= lo {
			return nil, fmt.Errorf("%s: [ranges].%s: invalid interval [%#x, %#x)", path, code, lo, hi)
		}
		spans = append(spans, script.Span{Lo: rune(lo), Hi: rune(hi)})
	}
	return spans, nil
}
