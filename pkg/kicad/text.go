package kicad

import (
	"github.com/OpenTraceLab/OpenTracePCB/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// parseText converts fp_text, property and gr_text nodes into stroke-font
// text drawings. Justification, mirroring, italic/bold and angle propagate
// verbatim; referenced characters are recorded for the font_data subset.
func (d *document) parseText(node *sexp.Node, tag string, tf transform) (*pcb.Text, string) {
	var textType, content string
	switch tag {
	case "fp_text":
		textType = node.AtomAt(0)
		content = node.AtomAt(1)
	case "property":
		switch node.AtomAt(0) {
		case "Reference":
			textType = "reference"
		case "Value":
			textType = "value"
		default:
			textType = "user"
		}
		content = node.AtomAt(1)
	case "gr_text":
		textType = "user"
		content = node.AtomAt(0)
	default:
		return nil, ""
	}

	if isHidden(node) {
		return nil, ""
	}

	var localX, localY, textAngle float64
	if at := node.Find("at"); at != nil {
		localX, _ = at.FloatAt(0)
		localY, _ = at.FloatAt(1)
		textAngle, _ = at.FloatAt(2)
	}
	absX, absY := tf.apply(localX, localY)

	height, width := 1.0, 1.0
	thickness := 0.15
	var italic, bold bool
	effects := node.Find("effects")
	var font *sexp.Node
	if effects != nil {
		font = effects.Find("font")
	}
	if font != nil {
		if size := font.Find("size"); size != nil {
			if h, ok := size.FloatAt(0); ok {
				height = h
			}
			if w, ok := size.FloatAt(1); ok {
				width = w
			}
		}
		if th, ok := font.FloatOf("thickness"); ok {
			thickness = th
		}
		italic = flagSet(font, "italic")
		bold = flagSet(font, "bold")
	}

	justify := [2]int{0, 0}
	mirrored := false
	if effects != nil {
		if j := effects.Find("justify"); j != nil {
			for _, item := range j.Children() {
				switch item.Atom() {
				case "left":
					justify[0] = -1
				case "right":
					justify[0] = 1
				case "top":
					justify[1] = -1
				case "bottom":
					justify[1] = 1
				case "mirror":
					mirrored = true
				}
			}
		}
	}

	var attr []string
	if mirrored {
		attr = append(attr, "mirrored")
	}
	if italic {
		attr = append(attr, "italic")
	}
	if bold {
		attr = append(attr, "bold")
	}

	d.used.Mark(content)

	text := &pcb.Text{
		Thickness: thickness,
		Pos:       &pcb.Point{absX, absY},
		Text:      content,
		Height:    height,
		Width:     width,
		Justify:   &justify,
		Angle:     textAngle + tf.Angle,
		Attr:      attr,
	}
	switch textType {
	case "reference":
		text.Ref = 1
	case "value":
		text.Val = 1
	}
	return text, layerNameOf(node)
}

// isHidden handles the bare hide symbol of old files (nested under
// effects), the top-level form, and the (hide yes) form of KiCad 8+.
func isHidden(node *sexp.Node) bool {
	candidates := []*sexp.Node{node}
	if effects := node.Find("effects"); effects != nil {
		candidates = append(candidates, effects)
	}
	for _, n := range candidates {
		if n.HasSymbol("hide") {
			return true
		}
		if hide := n.Find("hide"); hide != nil {
			return hide.AtomAt(0) != "no"
		}
	}
	return false
}

// flagSet handles both the bare symbol form (font ... italic) and the
// (italic yes) form.
func flagSet(node *sexp.Node, flag string) bool {
	if node.HasSymbol(flag) {
		return true
	}
	if f := node.Find(flag); f != nil {
		return f.AtomAt(0) != "no"
	}
	return false
}
