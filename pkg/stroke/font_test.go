package stroke

import "testing"

func TestLookup(t *testing.T) {
	if _, ok := Lookup('A'); !ok {
		t.Error("Lookup('A') missing")
	}
	if _, ok := Lookup('7'); !ok {
		t.Error("Lookup('7') missing")
	}
	// Lowercase falls back to the uppercase outline.
	lower, ok := Lookup('k')
	if !ok {
		t.Fatal("Lookup('k') missing")
	}
	upper, _ := Lookup('K')
	if lower.W != upper.W {
		t.Error("lowercase glyph does not reuse the uppercase outline")
	}
	if _, ok := Lookup('Ω'); ok {
		t.Error("Lookup('Ω') = true, want replacement fallback")
	}
}

func TestSubset(t *testing.T) {
	used := make(Used)
	used.Mark("R1 R10")
	subset := used.Subset()

	for _, ch := range []string{"R", "1", "0"} {
		if _, ok := subset[ch]; !ok {
			t.Errorf("subset missing %q", ch)
		}
	}
	if _, ok := subset[" "]; ok {
		t.Error("subset contains the space character")
	}
	if len(subset) != 3 {
		t.Errorf("len(subset) = %d, want 3", len(subset))
	}

	if empty := (Used{}).Subset(); empty != nil {
		t.Errorf("empty subset = %v, want nil", empty)
	}
}

func TestSubsetUnknownGlyph(t *testing.T) {
	used := make(Used)
	used.Mark("Ω")
	subset := used.Subset()
	glyph, ok := subset["Ω"]
	if !ok {
		t.Fatal("subset missing replacement for unknown glyph")
	}
	if len(glyph.L) == 0 {
		t.Error("replacement glyph has no strokes")
	}
}

func TestMeasure(t *testing.T) {
	if got := Measure(""); got != 0 {
		t.Errorf("Measure(\"\") = %v, want 0", got)
	}
	if got := Measure("A"); got <= 0 {
		t.Errorf("Measure(A) = %v, want > 0", got)
	}
	if Measure("AA") <= Measure("A") {
		t.Error("Measure is not additive")
	}
	if got := Measure(" "); got != SpaceAdvance {
		t.Errorf("Measure(space) = %v, want %v", got, SpaceAdvance)
	}
}

func TestGlyphGeometryWithinBounds(t *testing.T) {
	for r, glyph := range glyphs {
		if glyph.W <= 0 {
			t.Errorf("glyph %q has non-positive advance", r)
		}
		for _, line := range glyph.L {
			if len(line) < 2 {
				t.Errorf("glyph %q has a degenerate stroke", r)
			}
			for _, pt := range line {
				if pt[0] < -0.1 || pt[0] > glyph.W+0.1 || pt[1] < -0.3 || pt[1] > 1.3 {
					t.Errorf("glyph %q point %v outside the em box", r, pt)
				}
			}
		}
	}
}
