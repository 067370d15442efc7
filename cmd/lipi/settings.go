package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lipi/internal/script"
	"lipi/internal/wordcache"
)

// Builtin defaults, kept identical to the historical tool so existing
// deployments keep their behavior without a manifest.
const (
	defaultCachePath = "lang_cache.json"
	defaultMinScore  = 0.95
)

var defaultColumns = []string{"Name", "Relative_Name", "lastname", "rel_lastname"}

// settings is the effective configuration for one invocation:
// builtin defaults, overlaid by lipi.toml, then LIPI_CACHE, then flags.
type settings struct {
	manifest    *manifest
	sampleChars int
	defaultCode string
	cachePath   string
	minScore    float64
	columns     []string
	chunkSize   int
}

func resolveSettings() (*settings, error) {
	s := &settings{
		sampleChars: script.DefaultSampleChars,
		defaultCode: string(script.DefaultCode),
		cachePath:   defaultCachePath,
		minScore:    defaultMinScore,
		columns:     defaultColumns,
	}
	m, ok, err := loadManifest(".")
	if err != nil {
		return nil, err
	}
	if ok {
		s.manifest = m
		cfg := m.Config
		if cfg.Detector.SampleChars > 0 {
			s.sampleChars = cfg.Detector.SampleChars
		}
		if cfg.Detector.DefaultCode != "" {
			s.defaultCode = cfg.Detector.DefaultCode
		}
		if cfg.Cache.Path != "" {
			s.cachePath = cfg.Cache.Path
		}
		if cfg.Cache.MinScore > 0 {
			s.minScore = cfg.Cache.MinScore
		}
		if len(cfg.Annotate.Columns) > 0 {
			s.columns = cfg.Annotate.Columns
		}
		if cfg.Annotate.ChunkSize > 0 {
			s.chunkSize = cfg.Annotate.ChunkSize
		}
	}
	if env := os.Getenv("LIPI_CACHE"); env != "" {
		s.cachePath = env
	}
	return s, nil
}

// detector builds the frozen detector for this invocation.
func (s *settings) detector() (*script.Detector, error) {
	table, err := s.manifest.rangeTable()
	if err != nil {
		return nil, err
	}
	return script.NewDetector(table, script.Options{
		SampleChars: s.sampleChars,
		DefaultCode: script.Code(s.defaultCode),
	}), nil
}

// loadCache opens the configured cache; corruption degrades to an
// empty cache with a stderr warning (never a failed run).
func (s *settings) loadCache(cmd *cobra.Command) *wordcache.Cache {
	cache, err := wordcache.Load(s.cachePath)
	if err != nil && !quiet(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v (starting with an empty cache)\n", err)
	}
	return cache
}
