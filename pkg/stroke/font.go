// Package stroke bundles a Hershey-derived vector font used to render
// KiCad text drawings. Glyphs are polyline outlines normalized to a cap
// height of 1.0 with Y pointing down and the baseline at y=1; the W field
// is the horizontal advance. The table is immutable read-only data.
package stroke

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// Lookup returns the glyph for a rune. Lowercase letters reuse the
// uppercase outlines at full height, matching how the source font falls
// back. The second result is false when the table has no outline and the
// caller should substitute the replacement box.
func Lookup(r rune) (pcb.Glyph, bool) {
	if g, ok := glyphs[r]; ok {
		return g, true
	}
	if r >= 'a' && r <= 'z' {
		if g, ok := glyphs[r-'a'+'A']; ok {
			return g, true
		}
	}
	return pcb.Glyph{}, false
}

// Replacement is the box drawn for characters missing from the table.
var Replacement = pcb.Glyph{
	W: 0.8,
	L: []pcb.Polyline{{{0.1, 0}, {0.7, 0}, {0.7, 1}, {0.1, 1}, {0.1, 0}}},
}

// Space advance; spaces contribute no strokes.
const SpaceAdvance = 0.76

// Used tracks which characters a document references, so the emitted
// font_data section can be subset to the glyphs actually needed.
type Used map[rune]struct{}

// Mark records every rune of s.
func (u Used) Mark(s string) {
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' {
			continue
		}
		u[r] = struct{}{}
	}
}

// Subset returns font data for exactly the referenced characters, keyed by
// the character itself. Missing characters map to the replacement box so
// the viewer can still lay text out.
func (u Used) Subset() map[string]pcb.Glyph {
	if len(u) == 0 {
		return nil
	}
	out := make(map[string]pcb.Glyph, len(u))
	runes := maps.Keys(u)
	slices.Sort(runes)
	for _, r := range runes {
		g, ok := Lookup(r)
		if !ok {
			g = Replacement
		}
		out[string(r)] = g
	}
	return out
}

// Advance returns the horizontal advance of one character.
func Advance(r rune) float64 {
	if r == ' ' {
		return SpaceAdvance
	}
	if g, ok := Lookup(r); ok {
		return g.W
	}
	return Replacement.W
}

// Measure returns the width of a string in glyph units.
func Measure(s string) float64 {
	w := 0.0
	for _, r := range s {
		w += Advance(r)
	}
	return w
}
