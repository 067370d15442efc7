package dataset

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func drain(t *testing.T, src Source) []*Batch {
	t.Helper()
	var batches []*Batch
	for {
		b, err := src.Next()
		if err == io.EOF {
			return batches
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		batches = append(batches, b)
	}
}

func TestCSVRoundTripChunked(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	writeFile(t, in, "Name,Ward\nराम,7\nRavi,7\nराम,9\n")

	src, err := OpenCSV(in, 2)
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	defer src.Close()

	batches := drain(t, src)
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if len(batches[0].Rows) != 2 || len(batches[1].Rows) != 1 {
		t.Fatalf("bad chunking: %d + %d rows", len(batches[0].Rows), len(batches[1].Rows))
	}
	if got := batches[0].Rows[0].Get("Name"); got != "राम" {
		t.Fatalf("row value = %q, want राम", got)
	}

	out := filepath.Join(dir, "out.csv")
	sink, err := CreateCSV(out)
	if err != nil {
		t.Fatalf("CreateCSV: %v", err)
	}
	for _, b := range batches {
		if err := sink.Write(b); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, _ := os.ReadFile(out)
	if string(data) != "Name,Ward\nराम,7\nRavi,7\nराम,9\n" {
		t.Fatalf("round trip mismatch:\n%s", data)
	}
}

func TestCSVShortRecordReadsAsEmpty(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.csv")
	writeFile(t, in, "Name,Relative_Name\nराम\n")
	src, err := OpenCSV(in, 0)
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	defer src.Close()
	batches := drain(t, src)
	if len(batches) != 1 || len(batches[0].Rows) != 1 {
		t.Fatalf("unexpected shape")
	}
	if got := batches[0].Rows[0].Get("Relative_Name"); got != "" {
		t.Fatalf("missing field = %q, want empty", got)
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jsonl")
	writeFile(t, in, `{"Name":"راوی","age":42}`+"\n"+`{"Name":"Ravi"}`+"\n")

	src, err := OpenJSONL(in, 0)
	if err != nil {
		t.Fatalf("OpenJSONL: %v", err)
	}
	defer src.Close()
	batches := drain(t, src)
	if len(batches) != 1 || len(batches[0].Rows) != 2 {
		t.Fatalf("unexpected shape")
	}
	if got := batches[0].Rows[0].Get("age"); got != "42" {
		t.Fatalf("age = %q, want 42 (stringified)", got)
	}

	out := filepath.Join(dir, "out.jsonl")
	sink, err := CreateJSONL(out)
	if err != nil {
		t.Fatalf("CreateJSONL: %v", err)
	}
	if err := sink.Write(batches[0]); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, _ := os.ReadFile(out)
	want := `{"Name":"راوی","age":"42"}` + "\n" + `{"Name":"Ravi"}` + "\n"
	if string(data) != want {
		t.Fatalf("jsonl output:\n%s\nwant:\n%s", data, want)
	}
}

func TestMemorySourceChunks(t *testing.T) {
	rows := []Row{{"a": "1"}, {"a": "2"}, {"a": "3"}}
	src := NewMemorySource([]string{"a"}, rows, 2)
	batches := drain(t, src)
	if len(batches) != 2 || len(batches[0].Rows) != 2 || len(batches[1].Rows) != 1 {
		t.Fatalf("bad memory chunking")
	}
}

func TestListFilesAndOutputPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.csv"), "Name\n")
	writeFile(t, filepath.Join(dir, "a.jsonl"), "")
	writeFile(t, filepath.Join(dir, "skip.txt"), "")
	writeFile(t, filepath.Join(dir, "b_lang.csv"), "Name,Name_lang\n") // прошлый выход, не вход

	files, err := ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v, want 2 entries", files)
	}
	if filepath.Base(files[0]) != "a.jsonl" || filepath.Base(files[1]) != "b.csv" {
		t.Fatalf("files not sorted: %v", files)
	}

	if got := OutputPath("rolls/ward7.csv"); got != "rolls/ward7_lang.csv" {
		t.Fatalf("OutputPath = %q", got)
	}
}
