package script

import "unicode"

// Default detector parameters, matching the historical tool defaults.
const (
	DefaultSampleChars = 6
	DefaultCode        = Code("en")
)

// Result is a classification outcome: the winning code and the share of
// informative sample characters that agreed with it.
type Result struct {
	Code  Code
	Score float64
}

// Options configures a Detector. Zero values fall back to the defaults.
type Options struct {
	// SampleChars caps how many informative code points are inspected
	// per string. More chars, more accuracy; fewer, more speed.
	SampleChars int
	// DefaultCode is returned (with score 0) when nothing is recognized.
	DefaultCode Code
}

// Detector classifies strings against a frozen range table.
//
// The table is copied at construction: registering additional codes on
// the source table afterwards never changes an existing Detector, so
// Detect stays a pure function of its input. Safe for concurrent use.
type Detector struct {
	table  *Table
	sample int
	def    Code
	// ascii[cp] holds entry index + 1 for single-byte code points,
	// 0 when no entry claims them. Names are overwhelmingly either
	// pure ASCII or pure Indic, so this path carries most traffic.
	ascii [0x100]int16
}

// NewDetector freezes a copy of table and returns a ready Detector.
// A nil table means DefaultTable().
func NewDetector(table *Table, opts Options) *Detector {
	if table == nil {
		table = DefaultTable()
	}
	d := &Detector{
		table:  table.clone(),
		sample: opts.SampleChars,
		def:    opts.DefaultCode,
	}
	if d.sample <= 0 {
		d.sample = DefaultSampleChars
	}
	if d.def == "" {
		d.def = DefaultCode
	}
	for cp := rune(0); cp < 0x100; cp++ {
		if i, ok := d.match(cp); ok {
			d.ascii[cp] = int16(i) + 1
		}
	}
	return d
}

// SampleChars returns the configured sampling cap.
func (d *Detector) SampleChars() int { return d.sample }

// DefaultCode returns the fallback code.
func (d *Detector) DefaultCode() Code { return d.def }

// Codes returns the frozen precedence order.
func (d *Detector) Codes() []Code { return d.table.Codes() }

// Detect classifies text.
//
// Runes are scanned in order; whitespace, controls and zero-width
// formatting are skipped outright, and a rune counts toward the sample
// only when some registered interval claims it. Scanning stops once
// SampleChars informative runes were seen. The winner is the code with
// the highest tally, ties resolved toward the first-registered code.
// Score is the winner's share of informative runes; a string with no
// informative runes yields (DefaultCode, 0).
func (d *Detector) Detect(text string) Result {
	if text == "" {
		return Result{Code: d.def}
	}

	var countsBuf [16]int
	counts := countsBuf[:]
	if n := len(d.table.entries); n > len(counts) {
		counts = make([]int, n)
	}

	informative := 0
	for _, cp := range text {
		if cp <= 0x20 || unicode.IsSpace(cp) || unicode.IsControl(cp) ||
			(cp >= 0x2000 && cp <= 0x200F) {
			continue
		}
		i, ok := d.lookup(cp)
		if !ok {
			continue
		}
		counts[i]++
		informative++
		if informative >= d.sample {
			break
		}
	}
	if informative == 0 {
		return Result{Code: d.def}
	}

	best := 0
	for i := range d.table.entries {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return Result{
		Code:  d.table.entries[best].code,
		Score: float64(counts[best]) / float64(informative),
	}
}

// lookup resolves cp to an entry index via the ASCII table when it can.
func (d *Detector) lookup(cp rune) (int, bool) {
	if cp < 0x100 {
		if v := d.ascii[cp]; v != 0 {
			return int(v) - 1, true
		}
		return 0, false
	}
	return d.match(cp)
}

// match scans entries in registration order; the first containing span
// wins, which is also how overlapping configurations are resolved.
func (d *Detector) match(cp rune) (int, bool) {
	for i, e := range d.table.entries {
		for _, s := range e.spans {
			if s.Contains(cp) {
				return i, true
			}
		}
	}
	return 0, false
}
