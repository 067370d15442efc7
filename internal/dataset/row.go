// Package dataset adapts tabular inputs (CSV, JSON-lines, folders of
// either, in-memory tables) to ordered row sources and sinks. The
// annotation core only ever sees this shape.
package dataset

import "io"

// Row maps field names to string values; absent fields read as "".
type Row map[string]string

// Get returns the field value, "" when absent.
func (r Row) Get(field string) string { return r[field] }

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Batch is one chunk of rows, in input order. Columns carries the
// output column order for sinks that need one (CSV).
type Batch struct {
	Columns []string
	Rows    []Row
}

// Source yields batches in input order; io.EOF terminates the stream.
type Source interface {
	Next() (*Batch, error)
	Close() error
}

// Sink accepts annotated batches in the order they were read.
type Sink interface {
	Write(*Batch) error
	Close() error
}

// MemorySource serves an in-memory table in fixed-size chunks
// (chunk <= 0 means one batch with everything).
type MemorySource struct {
	batch Batch
	chunk int
	off   int
}

// NewMemorySource wraps a table.
func NewMemorySource(columns []string, rows []Row, chunk int) *MemorySource {
	return &MemorySource{batch: Batch{Columns: columns, Rows: rows}, chunk: chunk}
}

func (s *MemorySource) Next() (*Batch, error) {
	if s.off >= len(s.batch.Rows) {
		return nil, io.EOF
	}
	end := len(s.batch.Rows)
	if s.chunk > 0 && s.off+s.chunk < end {
		end = s.off + s.chunk
	}
	b := &Batch{Columns: s.batch.Columns, Rows: s.batch.Rows[s.off:end]}
	s.off = end
	return b, nil
}

func (s *MemorySource) Close() error { return nil }

// MemorySink collects annotated batches back into one table.
type MemorySink struct {
	Columns []string
	Rows    []Row
}

func (s *MemorySink) Write(b *Batch) error {
	s.Columns = b.Columns
	s.Rows = append(s.Rows, b.Rows...)
	return nil
}

func (s *MemorySink) Close() error { return nil }
