package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// JSONLSource streams a JSON-lines file, one object per line. Values
// are coerced to strings the way the classifier expects them.
type JSONLSource struct {
	f     *os.File
	sc    *bufio.Scanner
	chunk int
	line  int
}

// OpenJSONL opens path. chunk <= 0 reads everything as one batch.
func OpenJSONL(path string, chunk int) (*JSONLSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &JSONLSource{f: f, sc: sc, chunk: chunk}, nil
}

func (s *JSONLSource) Next() (*Batch, error) {
	b := &Batch{}
	seen := make(map[string]bool)
	for s.sc.Scan() {
		s.line++
		line := s.sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw map[string]any
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", s.line, err)
		}
		row := RowFromObject(raw)
		for k := range row {
			if !seen[k] {
				seen[k] = true
				b.Columns = append(b.Columns, k)
			}
		}
		b.Rows = append(b.Rows, row)
		if s.chunk > 0 && len(b.Rows) >= s.chunk {
			break
		}
	}
	if err := s.sc.Err(); err != nil {
		return nil, err
	}
	if len(b.Rows) == 0 {
		return nil, io.EOF
	}
	sort.Strings(b.Columns) // порядок колонок не зависит от порядка ключей во входе
	return b, nil
}

func (s *JSONLSource) Close() error { return s.f.Close() }

// RowFromObject converts a decoded JSON object into a Row, flattening
// scalars the way the classifier expects them.
func RowFromObject(raw map[string]any) Row {
	row := make(Row, len(raw))
	for k, v := range raw {
		row[k] = stringify(v)
	}
	return row
}

// stringify flattens scalar JSON values into the string form the
// detector sees; composites fall back to their JSON encoding.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		enc, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(enc)
	}
}

// JSONLSink writes one JSON object per row. Map marshaling sorts keys,
// so output is deterministic.
type JSONLSink struct {
	f *os.File
	w *bufio.Writer
}

// CreateJSONL creates (or truncates) the output file.
func CreateJSONL(path string) (*JSONLSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &JSONLSink{f: f, w: bufio.NewWriter(f)}, nil
}

func (s *JSONLSink) Write(b *Batch) error {
	for _, row := range b.Rows {
		enc, err := json.Marshal(row)
		if err != nil {
			return err
		}
		if _, err := s.w.Write(enc); err != nil {
			return err
		}
		if err := s.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

func (s *JSONLSink) Close() error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
