package script

// Code identifies a writing script / language (ISO-639-ish short codes).
type Code string

// Span is a half-open code-point interval [Lo, Hi).
type Span struct {
	Lo rune
	Hi rune
}

// Contains reports whether cp falls inside the interval.
func (s Span) Contains(cp rune) bool { return cp >= s.Lo && cp < s.Hi }

type rangeEntry struct {
	code  Code
	spans []Span
}

// Table maps codes to ordered sets of code-point intervals.
// Registration order matters: when intervals overlap or tallies tie,
// the first-registered code wins. Overlaps across codes are a
// configuration liability, not a validated error.
type Table struct {
	entries []rangeEntry
	index   map[Code]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[Code]int)}
}

// DefaultTable returns the builtin table covering eleven Indian scripts
// plus Latin/ASCII, registered in the canonical precedence order.
func DefaultTable() *Table {
	t := NewTable()
	t.Register("hi", Span{0x0900, 0x0980})                      // Devanagari
	t.Register("gu", Span{0x0A80, 0x0B00})                      // Gujarati
	t.Register("pa", Span{0x0A00, 0x0A80})                      // Gurmukhi
	t.Register("bn", Span{0x0980, 0x0A00})                      // Bengali / Assamese
	t.Register("or", Span{0x0B00, 0x0B80})                      // Odia
	t.Register("tam", Span{0x0B80, 0x0C00})                     // Tamil
	t.Register("te", Span{0x0C00, 0x0C80})                      // Telugu
	t.Register("kn", Span{0x0C80, 0x0D00})                      // Kannada
	t.Register("ml", Span{0x0D00, 0x0D80})                      // Malayalam
	t.Register("ur", Span{0x0600, 0x0700}, Span{0x0750, 0x0780}) // Urdu / Arabic
	t.Register("en", Span{0x0000, 0x0080}, Span{0x0080, 0x0100}) // ASCII + Latin-1
	return t
}

// Register appends spans for code. Registering an already known code
// extends its span list instead of creating a second entry.
func (t *Table) Register(code Code, spans ...Span) {
	if i, ok := t.index[code]; ok {
		t.entries[i].spans = append(t.entries[i].spans, spans...)
		return
	}
	t.index[code] = len(t.entries)
	t.entries = append(t.entries, rangeEntry{code: code, spans: spans})
}

// Codes returns the registered codes in precedence order.
func (t *Table) Codes() []Code {
	out := make([]Code, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.code
	}
	return out
}

// Has reports whether code is registered.
func (t *Table) Has(code Code) bool {
	_, ok := t.index[code]
	return ok
}

// clone produces a deep copy so a Detector can freeze the table state
// it was constructed with.
func (t *Table) clone() *Table {
	c := NewTable()
	for _, e := range t.entries {
		c.Register(e.code, append([]Span(nil), e.spans...)...)
	}
	return c
}
