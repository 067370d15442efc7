// Package annotate applies script classification across tabular data.
//
// The work loop exploits how repetitive name columns are: per batch it
// classifies each distinct cell value once and broadcasts the result to
// every row holding that value, with a shared word cache carrying
// results across batches, files and runs.
package annotate

import (
	"context"
	"io"
	"strconv"

	"lipi/internal/dataset"
	"lipi/internal/script"
	"lipi/internal/wordcache"
)

// LangSuffix and ScoreSuffix name the companion columns added next to
// every annotated field.
const (
	LangSuffix  = "_lang"
	ScoreSuffix = "_score"
)

// Options tunes one annotation call.
type Options struct {
	// AutoCache flushes the word cache to its configured path at the
	// end of the call.
	AutoCache bool
	// MinCacheScore is the acceptance threshold below which results
	// stay session-only and never reach the cache file.
	MinCacheScore float64
	// ChunkSize bounds rows per batch for sources that honor it;
	// the Annotator itself works batch by batch either way.
	ChunkSize int
	// Scores additionally emits <field>_score columns.
	Scores bool
}

// Stats counts the work one call actually did.
type Stats struct {
	Rows      int64 // rows seen
	Distinct  int64 // distinct values across fields and batches
	Detected  int64 // classifier invocations (cache misses)
	CacheHits int64
}

// Add folds other into s (folder mode sums per-file stats).
func (s *Stats) Add(other Stats) {
	s.Rows += other.Rows
	s.Distinct += other.Distinct
	s.Detected += other.Detected
	s.CacheHits += other.CacheHits
}

// Annotator ties a frozen detector to a word cache.
type Annotator struct {
	det       *script.Detector
	cache     *wordcache.Cache
	cachePath string
}

// New builds an Annotator. cachePath may be empty (no persistence).
func New(det *script.Detector, cache *wordcache.Cache, cachePath string) *Annotator {
	if cache == nil {
		cache = wordcache.New()
	}
	return &Annotator{det: det, cache: cache, cachePath: cachePath}
}

// Cache exposes the session cache (folder mode shares it across files).
func (a *Annotator) Cache() *wordcache.Cache { return a.cache }

// FlushCache persists the cache now, regardless of Options.AutoCache.
// Without a configured path it is a no-op.
func (a *Annotator) FlushCache() error {
	if a.cachePath == "" {
		return nil
	}
	return a.cache.Flush(a.cachePath)
}

// Table annotates an in-memory batch in place: each target field gains
// a <field>_lang column (and <field>_score with Options.Scores).
func (a *Annotator) Table(b *dataset.Batch, fields []string, opts Options) (Stats, error) {
	var stats Stats
	a.annotateBatch(b, fields, opts, &stats)
	if opts.AutoCache {
		if err := a.FlushCache(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// Record returns an annotated copy of rec; the input is not touched.
func (a *Annotator) Record(rec dataset.Row, keys []string, opts Options) (dataset.Row, error) {
	out := rec.Clone()
	for _, key := range keys {
		e := a.classify(rec.Get(key), opts, nil)
		out[key+LangSuffix] = string(e.Code)
		if opts.Scores {
			out[key+ScoreSuffix] = formatScore(e.Score)
		}
	}
	if opts.AutoCache {
		if err := a.FlushCache(); err != nil {
			return out, err
		}
	}
	return out, nil
}

// Stream annotates src into sink batch by batch, preserving order.
// The distinct-value index is rebuilt per batch; cache hits persist
// across batches through the shared word cache. label names the input
// in progress events.
func (a *Annotator) Stream(ctx context.Context, label string, src dataset.Source, sink dataset.Sink, fields []string, opts Options, events EventSink) (Stats, error) {
	if events == nil {
		events = nopSink{}
	}
	var stats Stats
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		events.Publish(Event{File: label, Stage: StageRead, Status: StatusWorking, Rows: stats.Rows})
		b, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			events.Publish(Event{File: label, Stage: StageRead, Status: StatusError, Rows: stats.Rows})
			return stats, err
		}

		events.Publish(Event{File: label, Stage: StageDetect, Status: StatusWorking, Rows: stats.Rows})
		a.annotateBatch(b, fields, opts, &stats)

		events.Publish(Event{File: label, Stage: StageWrite, Status: StatusWorking, Rows: stats.Rows})
		if err := sink.Write(b); err != nil {
			events.Publish(Event{File: label, Stage: StageWrite, Status: StatusError, Rows: stats.Rows})
			return stats, err
		}
	}
	if opts.AutoCache {
		events.Publish(Event{File: label, Stage: StageFlush, Status: StatusWorking, Rows: stats.Rows})
		if err := a.FlushCache(); err != nil {
			events.Publish(Event{File: label, Stage: StageFlush, Status: StatusError, Rows: stats.Rows})
			return stats, err
		}
	}
	events.Publish(Event{File: label, Stage: StageWrite, Status: StatusDone, Rows: stats.Rows})
	return stats, nil
}

// annotateBatch is the core loop: distinct index, classify once,
// broadcast everywhere.
func (a *Annotator) annotateBatch(b *dataset.Batch, fields []string, opts Options, stats *Stats) {
	stats.Rows += int64(len(b.Rows))
	for _, field := range fields {
		langCol := field + LangSuffix
		scoreCol := field + ScoreSuffix

		// distinct values in first-seen order, with their row positions
		index := make(map[string][]int)
		order := make([]string, 0, 64)
		for i, row := range b.Rows {
			v := row.Get(field)
			if _, seen := index[v]; !seen {
				order = append(order, v)
			}
			index[v] = append(index[v], i)
		}
		stats.Distinct += int64(len(order))

		for _, v := range order {
			e := a.classify(v, opts, stats)
			for _, i := range index[v] {
				b.Rows[i][langCol] = string(e.Code)
				if opts.Scores {
					b.Rows[i][scoreCol] = formatScore(e.Score)
				}
			}
		}

		b.Columns = appendColumn(b.Columns, langCol)
		if opts.Scores {
			b.Columns = appendColumn(b.Columns, scoreCol)
		}
	}
}

// classify consults the cache before paying for a Detect call. Results
// always enter the session view; MinCacheScore only gates what Flush
// later persists.
func (a *Annotator) classify(v string, opts Options, stats *Stats) wordcache.Entry {
	if e, ok := a.cache.Get(v); ok {
		if stats != nil {
			stats.CacheHits++
		}
		return e
	}
	r := a.det.Detect(v)
	e := wordcache.Entry{Code: r.Code, Score: r.Score}
	a.cache.Put(v, e, opts.MinCacheScore)
	if stats != nil {
		stats.Detected++
	}
	return e
}

func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

func appendColumn(columns []string, col string) []string {
	for _, c := range columns {
		if c == col {
			return columns
		}
	}
	return append(columns, col)
}
