package annotate

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"lipi/internal/dataset"
	"lipi/internal/script"
	"lipi/internal/wordcache"
)

func newAnnotator(cachePath string) *Annotator {
	det := script.NewDetector(nil, script.Options{})
	return New(det, wordcache.New(), cachePath)
}

func namesBatch(values ...string) *dataset.Batch {
	rows := make([]dataset.Row, len(values))
	for i, v := range values {
		rows[i] = dataset.Row{"Name": v}
	}
	return &dataset.Batch{Columns: []string{"Name"}, Rows: rows}
}

func langColumn(b *dataset.Batch, col string) []string {
	out := make([]string, len(b.Rows))
	for i, row := range b.Rows {
		out[i] = row.Get(col)
	}
	return out
}

func TestTableBroadcastsDistinctResults(t *testing.T) {
	a := newAnnotator("")
	b := namesBatch("राम", "Ravi", "राम")
	stats, err := a.Table(b, []string{"Name"}, Options{})
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	want := []string{"hi", "en", "hi"}
	if got := langColumn(b, "Name_lang"); !reflect.DeepEqual(got, want) {
		t.Fatalf("Name_lang = %v, want %v", got, want)
	}
	if stats.Detected != 2 {
		t.Fatalf("Detected = %d, want 2 (one per distinct value)", stats.Detected)
	}
	if stats.Distinct != 2 || stats.Rows != 3 {
		t.Fatalf("stats = %+v", stats)
	}
	if got := b.Columns[len(b.Columns)-1]; got != "Name_lang" {
		t.Fatalf("companion column missing, columns = %v", b.Columns)
	}
}

func TestTableEmptyAndAbsentValues(t *testing.T) {
	a := newAnnotator("")
	b := &dataset.Batch{
		Columns: []string{"Name"},
		Rows:    []dataset.Row{{"Name": ""}, {}, {"Name": "•••"}},
	}
	if _, err := a.Table(b, []string{"Name", "Missing"}, Options{}); err != nil {
		t.Fatalf("Table: %v", err)
	}
	for i, row := range b.Rows {
		if got := row.Get("Name_lang"); got != "en" {
			t.Fatalf("row %d: Name_lang = %q, want default en", i, got)
		}
		if got := row.Get("Missing_lang"); got != "en" {
			t.Fatalf("row %d: Missing_lang = %q, want default en", i, got)
		}
	}
}

func TestTableScoresColumn(t *testing.T) {
	a := newAnnotator("")
	b := namesBatch("राम")
	if _, err := a.Table(b, []string{"Name"}, Options{Scores: true}); err != nil {
		t.Fatalf("Table: %v", err)
	}
	if got := b.Rows[0].Get("Name_score"); got != "1" {
		t.Fatalf("Name_score = %q, want 1", got)
	}
}

func TestStreamChunkedMatchesWholeTable(t *testing.T) {
	values := []string{"राम", "Ravi", "राम", "سعید", "Ravi", "ராமன்", "", "राम"}

	whole := namesBatch(values...)
	a1 := newAnnotator("")
	if _, err := a1.Table(whole, []string{"Name"}, Options{}); err != nil {
		t.Fatalf("Table: %v", err)
	}

	for _, chunk := range []int{1, 2, 3, 5, 100} {
		src := dataset.NewMemorySource([]string{"Name"}, namesBatch(values...).Rows, chunk)
		sink := &dataset.MemorySink{}
		a2 := newAnnotator("")
		if _, err := a2.Stream(context.Background(), "mem", src, sink, []string{"Name"}, Options{}, nil); err != nil {
			t.Fatalf("chunk %d: Stream: %v", chunk, err)
		}
		if len(sink.Rows) != len(whole.Rows) {
			t.Fatalf("chunk %d: %d rows out, want %d", chunk, len(sink.Rows), len(whole.Rows))
		}
		for i := range sink.Rows {
			want := whole.Rows[i].Get("Name_lang")
			if got := sink.Rows[i].Get("Name_lang"); got != want {
				t.Fatalf("chunk %d, row %d: %q != %q", chunk, i, got, want)
			}
		}
	}
}

func TestStreamCacheCarriesAcrossBatches(t *testing.T) {
	// the same value in every batch must be detected exactly once
	values := []string{"राम", "राम", "राम", "राम"}
	src := dataset.NewMemorySource([]string{"Name"}, namesBatch(values...).Rows, 1)
	a := newAnnotator("")
	stats, err := a.Stream(context.Background(), "mem", src, &dataset.MemorySink{}, []string{"Name"}, Options{}, nil)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if stats.Detected != 1 {
		t.Fatalf("Detected = %d, want 1", stats.Detected)
	}
	if stats.CacheHits != 3 {
		t.Fatalf("CacheHits = %d, want 3", stats.CacheHits)
	}
}

func TestAutoCacheIdempotence(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	opts := Options{AutoCache: true, MinCacheScore: 0.95}

	first := namesBatch("राम", "Ravi", "राम")
	a1 := newAnnotator(cachePath)
	s1, err := a1.Table(first, []string{"Name"}, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if s1.Detected != 2 {
		t.Fatalf("first run Detected = %d, want 2", s1.Detected)
	}

	// fresh annotator over the flushed cache: zero classifier calls
	cache, err := wordcache.Load(cachePath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second := namesBatch("राम", "Ravi", "राम")
	a2 := New(script.NewDetector(nil, script.Options{}), cache, cachePath)
	s2, err := a2.Table(second, []string{"Name"}, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if s2.Detected != 0 {
		t.Fatalf("second run Detected = %d, want 0", s2.Detected)
	}
	if !reflect.DeepEqual(langColumn(first, "Name_lang"), langColumn(second, "Name_lang")) {
		t.Fatalf("outputs differ between runs")
	}
}

func TestRecordDoesNotMutateInput(t *testing.T) {
	a := newAnnotator("")
	rec := dataset.Row{"Name": "راوی", "Ward": "7"}
	out, err := a.Record(rec, []string{"Name"}, Options{})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if out.Get("Name_lang") != "ur" {
		t.Fatalf("Name_lang = %q, want ur", out.Get("Name_lang"))
	}
	if _, ok := rec["Name_lang"]; ok {
		t.Fatalf("input record was mutated")
	}
	if out.Get("Ward") != "7" {
		t.Fatalf("unrelated field lost")
	}
}

func TestStreamPublishesEvents(t *testing.T) {
	ch := make(chan Event, 64)
	src := dataset.NewMemorySource([]string{"Name"}, namesBatch("राम", "Ravi").Rows, 1)
	a := newAnnotator("")
	_, err := a.Stream(context.Background(), "mem.csv", src, &dataset.MemorySink{}, []string{"Name"}, Options{}, ChannelSink{Ch: ch})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	close(ch)
	var last Event
	n := 0
	for ev := range ch {
		if ev.File != "mem.csv" {
			t.Fatalf("event for wrong file: %+v", ev)
		}
		last = ev
		n++
	}
	if n == 0 {
		t.Fatalf("no events published")
	}
	if last.Status != StatusDone {
		t.Fatalf("final event = %+v, want StatusDone", last)
	}
}
