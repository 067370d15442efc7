package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVSource streams a CSV file whose first record is the header.
type CSVSource struct {
	f     *os.File
	r     *csv.Reader
	cols  []string
	chunk int
	done  bool
}

// OpenCSV opens path and consumes the header. chunk <= 0 reads the
// whole file as a single batch.
func OpenCSV(path string, chunk int) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ряды с недостающими полями дополняем пустыми
	header, err := r.Read()
	if err != nil {
		f.Close()
		if err == io.EOF {
			return nil, fmt.Errorf("%s: empty csv, no header", path)
		}
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}
	return &CSVSource{f: f, r: r, cols: append([]string(nil), header...), chunk: chunk}, nil
}

// Columns returns the header fields in file order.
func (s *CSVSource) Columns() []string { return s.cols }

func (s *CSVSource) Next() (*Batch, error) {
	if s.done {
		return nil, io.EOF
	}
	b := &Batch{Columns: s.cols}
	for {
		rec, err := s.r.Read()
		if err == io.EOF {
			s.done = true
			if len(b.Rows) == 0 {
				return nil, io.EOF
			}
			return b, nil
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(s.cols))
		for i, col := range s.cols {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		b.Rows = append(b.Rows, row)
		if s.chunk > 0 && len(b.Rows) >= s.chunk {
			return b, nil
		}
	}
}

func (s *CSVSource) Close() error { return s.f.Close() }

// CSVSink writes annotated batches; the header comes from the first
// batch's Columns and is written exactly once.
type CSVSink struct {
	f      *os.File
	w      *csv.Writer
	cols   []string
	opened bool
}

// CreateCSV creates (or truncates) the output file.
func CreateCSV(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &CSVSink{f: f, w: csv.NewWriter(f)}, nil
}

func (s *CSVSink) Write(b *Batch) error {
	if !s.opened {
		s.cols = append([]string(nil), b.Columns...)
		if err := s.w.Write(s.cols); err != nil {
			return err
		}
		s.opened = true
	}
	rec := make([]string, len(s.cols))
	for _, row := range b.Rows {
		for i, col := range s.cols {
			rec[i] = row[col]
		}
		if err := s.w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *CSVSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
