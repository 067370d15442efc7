package script

import "testing"

func TestDefaultTableOrder(t *testing.T) {
	want := []Code{"hi", "gu", "pa", "bn", "or", "tam", "te", "kn", "ml", "ur", "en"}
	got := DefaultTable().Codes()
	if len(got) != len(want) {
		t.Fatalf("Codes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Codes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegisterExtendsExistingCode(t *testing.T) {
	tab := NewTable()
	tab.Register("ur", Span{0x0600, 0x0700})
	tab.Register("ur", Span{0x0750, 0x0780})
	if n := len(tab.Codes()); n != 1 {
		t.Fatalf("expected one entry, got %d", n)
	}
	d := NewDetector(tab, Options{DefaultCode: "und"})
	if got := d.Detect("ݐ"); got.Code != "ur" { // U+0750, second span
		t.Fatalf("extended span not matched: %+v", got)
	}
}

func TestOverlapResolvesToFirstRegistered(t *testing.T) {
	tab := NewTable()
	tab.Register("first", Span{0x0400, 0x0500})
	tab.Register("second", Span{0x0400, 0x0500}) // overlapping misconfiguration
	d := NewDetector(tab, Options{})
	if got := d.Detect("Ж"); got.Code != "first" {
		t.Fatalf("overlap: code = %q, want first", got.Code)
	}
}
