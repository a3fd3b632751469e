package stroke

import "github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"

// glyphs is the bundled glyph table, derived from the Hershey simplex
// stroke set and normalized to a cap height of 1.0 (baseline at y=1,
// Y down). Only the printable subset that appears on boards is carried;
// lowercase letters reuse the uppercase outlines and anything else renders
// as the replacement box.
var glyphs = map[rune]pcb.Glyph{
	'0': {W: 0.8, L: []pcb.Polyline{
		{{0.25, 0}, {0.55, 0}, {0.7, 0.2}, {0.7, 0.8}, {0.55, 1}, {0.25, 1}, {0.1, 0.8}, {0.1, 0.2}, {0.25, 0}},
		{{0.1, 0.8}, {0.7, 0.2}},
	}},
	'1': {W: 0.8, L: []pcb.Polyline{
		{{0.2, 0.2}, {0.4, 0}, {0.4, 1}},
		{{0.2, 1}, {0.6, 1}},
	}},
	'2': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 0.25}, {0.2, 0.05}, {0.5, 0}, {0.7, 0.2}, {0.7, 0.4}, {0.1, 1}, {0.7, 1}},
	}},
	'3': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 0.05}, {0.6, 0}, {0.7, 0.2}, {0.6, 0.45}, {0.3, 0.5}},
		{{0.3, 0.5}, {0.6, 0.55}, {0.7, 0.8}, {0.6, 1}, {0.1, 0.95}},
	}},
	'4': {W: 0.8, L: []pcb.Polyline{
		{{0.55, 1}, {0.55, 0}, {0.1, 0.7}, {0.7, 0.7}},
	}},
	'5': {W: 0.8, L: []pcb.Polyline{
		{{0.65, 0}, {0.15, 0}, {0.1, 0.45}, {0.5, 0.4}, {0.7, 0.6}, {0.7, 0.85}, {0.5, 1}, {0.1, 0.95}},
	}},
	'6': {W: 0.8, L: []pcb.Polyline{
		{{0.6, 0}, {0.25, 0.1}, {0.1, 0.5}, {0.1, 0.85}, {0.3, 1}, {0.55, 1}, {0.7, 0.8}, {0.7, 0.6}, {0.5, 0.45}, {0.1, 0.55}},
	}},
	'7': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 0}, {0.7, 0}, {0.3, 1}},
	}},
	'8': {W: 0.8, L: []pcb.Polyline{
		{{0.4, 0}, {0.15, 0.1}, {0.15, 0.4}, {0.4, 0.5}, {0.65, 0.6}, {0.65, 0.9}, {0.4, 1}, {0.15, 0.9}, {0.15, 0.6}, {0.4, 0.5}, {0.65, 0.4}, {0.65, 0.1}, {0.4, 0}},
	}},
	'9': {W: 0.8, L: []pcb.Polyline{
		{{0.2, 1}, {0.55, 0.9}, {0.7, 0.5}, {0.7, 0.15}, {0.5, 0}, {0.25, 0}, {0.1, 0.2}, {0.1, 0.4}, {0.3, 0.55}, {0.7, 0.45}},
	}},
	'A': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 1}, {0.4, 0}, {0.7, 1}},
		{{0.2, 0.65}, {0.6, 0.65}},
	}},
	'B': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 0}, {0.1, 1}, {0.55, 1}, {0.7, 0.85}, {0.7, 0.65}, {0.55, 0.5}, {0.1, 0.5}},
		{{0.1, 0}, {0.55, 0}, {0.65, 0.1}, {0.65, 0.4}, {0.55, 0.5}},
	}},
	'C': {W: 0.8, L: []pcb.Polyline{
		{{0.7, 0.15}, {0.55, 0}, {0.25, 0}, {0.1, 0.15}, {0.1, 0.85}, {0.25, 1}, {0.55, 1}, {0.7, 0.85}},
	}},
	'D': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 0}, {0.1, 1}, {0.5, 1}, {0.7, 0.8}, {0.7, 0.2}, {0.5, 0}, {0.1, 0}},
	}},
	'E': {W: 0.75, L: []pcb.Polyline{
		{{0.65, 0}, {0.1, 0}, {0.1, 1}, {0.65, 1}},
		{{0.1, 0.5}, {0.5, 0.5}},
	}},
	'F': {W: 0.75, L: []pcb.Polyline{
		{{0.65, 0}, {0.1, 0}, {0.1, 1}},
		{{0.1, 0.5}, {0.5, 0.5}},
	}},
	'G': {W: 0.8, L: []pcb.Polyline{
		{{0.7, 0.15}, {0.55, 0}, {0.25, 0}, {0.1, 0.15}, {0.1, 0.85}, {0.25, 1}, {0.55, 1}, {0.7, 0.85}, {0.7, 0.55}, {0.45, 0.55}},
	}},
	'H': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 0}, {0.1, 1}},
		{{0.7, 0}, {0.7, 1}},
		{{0.1, 0.5}, {0.7, 0.5}},
	}},
	'I': {W: 0.5, L: []pcb.Polyline{
		{{0.25, 0}, {0.25, 1}},
	}},
	'J': {W: 0.7, L: []pcb.Polyline{
		{{0.6, 0}, {0.6, 0.85}, {0.45, 1}, {0.25, 1}, {0.1, 0.85}},
	}},
	'K': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 0}, {0.1, 1}},
		{{0.7, 0}, {0.1, 0.6}},
		{{0.35, 0.45}, {0.7, 1}},
	}},
	'L': {W: 0.7, L: []pcb.Polyline{
		{{0.1, 0}, {0.1, 1}, {0.65, 1}},
	}},
	'M': {W: 0.9, L: []pcb.Polyline{
		{{0.1, 1}, {0.1, 0}, {0.45, 0.6}, {0.8, 0}, {0.8, 1}},
	}},
	'N': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 1}, {0.1, 0}, {0.7, 1}, {0.7, 0}},
	}},
	'O': {W: 0.8, L: []pcb.Polyline{
		{{0.25, 0}, {0.55, 0}, {0.7, 0.15}, {0.7, 0.85}, {0.55, 1}, {0.25, 1}, {0.1, 0.85}, {0.1, 0.15}, {0.25, 0}},
	}},
	'P': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 1}, {0.1, 0}, {0.55, 0}, {0.7, 0.12}, {0.7, 0.4}, {0.55, 0.52}, {0.1, 0.52}},
	}},
	'Q': {W: 0.8, L: []pcb.Polyline{
		{{0.25, 0}, {0.55, 0}, {0.7, 0.15}, {0.7, 0.85}, {0.55, 1}, {0.25, 1}, {0.1, 0.85}, {0.1, 0.15}, {0.25, 0}},
		{{0.45, 0.7}, {0.75, 1.05}},
	}},
	'R': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 1}, {0.1, 0}, {0.55, 0}, {0.7, 0.12}, {0.7, 0.4}, {0.55, 0.52}, {0.1, 0.52}},
		{{0.4, 0.52}, {0.7, 1}},
	}},
	'S': {W: 0.8, L: []pcb.Polyline{
		{{0.7, 0.12}, {0.55, 0}, {0.25, 0}, {0.1, 0.12}, {0.1, 0.38}, {0.25, 0.5}, {0.55, 0.5}, {0.7, 0.62}, {0.7, 0.88}, {0.55, 1}, {0.25, 1}, {0.1, 0.88}},
	}},
	'T': {W: 0.7, L: []pcb.Polyline{
		{{0.05, 0}, {0.65, 0}},
		{{0.35, 0}, {0.35, 1}},
	}},
	'U': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 0}, {0.1, 0.85}, {0.25, 1}, {0.55, 1}, {0.7, 0.85}, {0.7, 0}},
	}},
	'V': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 0}, {0.4, 1}, {0.7, 0}},
	}},
	'W': {W: 0.95, L: []pcb.Polyline{
		{{0.05, 0}, {0.25, 1}, {0.5, 0.3}, {0.75, 1}, {0.95, 0}},
	}},
	'X': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 0}, {0.7, 1}},
		{{0.7, 0}, {0.1, 1}},
	}},
	'Y': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 0}, {0.4, 0.5}, {0.7, 0}},
		{{0.4, 0.5}, {0.4, 1}},
	}},
	'Z': {W: 0.8, L: []pcb.Polyline{
		{{0.1, 0}, {0.7, 0}, {0.1, 1}, {0.7, 1}},
	}},
	'-': {W: 0.7, L: []pcb.Polyline{
		{{0.15, 0.55}, {0.55, 0.55}},
	}},
	'+': {W: 0.8, L: []pcb.Polyline{
		{{0.15, 0.55}, {0.65, 0.55}},
		{{0.4, 0.3}, {0.4, 0.8}},
	}},
	'.': {W: 0.4, L: []pcb.Polyline{
		{{0.15, 0.92}, {0.22, 0.92}, {0.22, 1}, {0.15, 1}, {0.15, 0.92}},
	}},
	',': {W: 0.4, L: []pcb.Polyline{
		{{0.22, 0.9}, {0.22, 1}, {0.1, 1.15}},
	}},
	'/': {W: 0.7, L: []pcb.Polyline{
		{{0.6, 0}, {0.1, 1}},
	}},
	':': {W: 0.4, L: []pcb.Polyline{
		{{0.18, 0.3}, {0.18, 0.38}},
		{{0.18, 0.82}, {0.18, 0.9}},
	}},
	'(': {W: 0.5, L: []pcb.Polyline{
		{{0.4, -0.05}, {0.25, 0.15}, {0.2, 0.5}, {0.25, 0.85}, {0.4, 1.05}},
	}},
	')': {W: 0.5, L: []pcb.Polyline{
		{{0.1, -0.05}, {0.25, 0.15}, {0.3, 0.5}, {0.25, 0.85}, {0.1, 1.05}},
	}},
	'_': {W: 0.8, L: []pcb.Polyline{
		{{0.05, 1.1}, {0.75, 1.1}},
	}},
	'%': {W: 0.9, L: []pcb.Polyline{
		{{0.75, 0}, {0.15, 1}},
		{{0.15, 0}, {0.3, 0}, {0.3, 0.25}, {0.15, 0.25}, {0.15, 0}},
		{{0.6, 0.75}, {0.75, 0.75}, {0.75, 1}, {0.6, 1}, {0.6, 0.75}},
	}},
	'*': {W: 0.7, L: []pcb.Polyline{
		{{0.35, 0.1}, {0.35, 0.6}},
		{{0.12, 0.22}, {0.58, 0.48}},
		{{0.58, 0.22}, {0.12, 0.48}},
	}},
}
