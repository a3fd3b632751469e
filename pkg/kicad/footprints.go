package kicad

import (
	"strings"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/bom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// parseFootprint converts one (footprint ...) or legacy (module ...) node
// into an IR footprint plus the component record used for BOM grouping.
func (d *document) parseFootprint(node *sexp.Node, index int) (*pcb.Footprint, bom.Component) {
	tf := transform{}
	if at := node.Find("at"); at != nil {
		tf.X, _ = at.FloatAt(0)
		tf.Y, _ = at.FloatAt(1)
		tf.Angle, _ = at.FloatAt(2)
	}

	layerName := layerNameOf(node)
	side := "F"
	if strings.HasPrefix(layerName, "B.") {
		side = "B"
	}

	libName := node.AtomAt(0)

	var ref, value string
	extra := make(map[string]string)
	virtual := false

	for _, child := range node.Children() {
		switch child.Tag() {
		case "fp_text":
			switch child.AtomAt(0) {
			case "reference":
				ref = child.AtomAt(1)
			case "value":
				value = child.AtomAt(1)
			}
		case "property":
			name := child.AtomAt(0)
			switch name {
			case "Reference":
				ref = child.AtomAt(1)
			case "Value":
				value = child.AtomAt(1)
			case "Footprint", "Datasheet", "ki_fp_filters", "ki_description":
				// library bookkeeping, not a BOM field
			default:
				if name != "" {
					extra[name] = child.AtomAt(1)
				}
			}
		case "attr":
			for _, a := range child.Children() {
				switch a.Atom() {
				case "virtual", "exclude_from_bom":
					virtual = true
				case "dnp":
					extra["DNP"] = "DNP"
				}
			}
		}
	}

	pads := make([]*pcb.Pad, 0, 4)
	for _, padNode := range node.FindAll("pad") {
		pads = append(pads, d.parsePad(padNode, tf))
	}

	var drawings []pcb.LayerDrawing
	for _, child := range node.Children() {
		tag := child.Tag()
		switch tag {
		case "fp_line", "fp_rect", "fp_circle", "fp_arc", "fp_poly", "fp_curve":
			drawing, drawingLayer := d.parseGraphicItem(child, tf)
			if drawing == nil {
				continue
			}
			s, ok := layerSide(drawingLayer)
			if !ok {
				continue
			}
			class := classifyLayer(drawingLayer)
			if isCopperLayer(drawingLayer) || class == layerSilkF || class == layerSilkB ||
				class == layerFabF || class == layerFabB {
				drawings = append(drawings, pcb.LayerDrawing{Layer: s, Drawing: drawing})
			}
		case "fp_text", "property":
			text, textLayer := d.parseText(child, tag, tf)
			if text == nil {
				continue
			}
			s, ok := layerSide(textLayer)
			if !ok {
				continue
			}
			class := classifyLayer(textLayer)
			if class == layerSilkF || class == layerSilkB || class == layerFabF || class == layerFabB {
				drawings = append(drawings, pcb.LayerDrawing{Layer: s, Drawing: text})
			}
		}
	}

	// Tight bounding box around the pads, rotated with the footprint.
	bbox := pcb.EmptyBBox()
	for _, pad := range pads {
		bbox.Expand(pad.Pos[0]-pad.Size[0]/2, pad.Pos[1]-pad.Size[1]/2)
		bbox.Expand(pad.Pos[0]+pad.Size[0]/2, pad.Pos[1]+pad.Size[1]/2)
	}
	if bbox.IsEmpty() {
		bbox = pcb.BBox{MinX: tf.X - 0.5, MinY: tf.Y - 0.5, MaxX: tf.X + 0.5, MaxY: tf.Y + 0.5}
	}

	fp := &pcb.Footprint{
		Ref:    ref,
		Center: pcb.Point{tf.X, tf.Y},
		BBox: pcb.FootprintBBox{
			Pos:    pcb.Point{tf.X, tf.Y},
			Relpos: pcb.Point{bbox.MinX - tf.X, bbox.MinY - tf.Y},
			Size:   pcb.Point{bbox.MaxX - bbox.MinX, bbox.MaxY - bbox.MinY},
			Angle:  tf.Angle,
		},
		Pads:     pads,
		Drawings: drawings,
		Layer:    side,
	}

	comp := bom.Component{
		Ref:       ref,
		Value:     value,
		Footprint: libName,
		Layer:     pcb.Side(side),
		Index:     index,
		Fields:    extra,
		Virtual:   virtual,
	}
	return fp, comp
}

// parsePad converts one (pad ...) node. Pad-local coordinates become board
// coordinates through the footprint transform; custom-pad primitive shapes
// stay pad-local as the viewer expects.
func (d *document) parsePad(node *sexp.Node, tf transform) *pcb.Pad {
	name := node.AtomAt(0)
	typeStr := node.AtomAt(1)
	shapeStr := node.AtomAt(2)

	var localX, localY, padAngle float64
	if at := node.Find("at"); at != nil {
		localX, _ = at.FloatAt(0)
		localY, _ = at.FloatAt(1)
		padAngle, _ = at.FloatAt(2)
	}
	absX, absY := tf.apply(localX, localY)

	var sizeW, sizeH float64
	if size := node.Find("size"); size != nil {
		sizeW, _ = size.FloatAt(0)
		sizeH, _ = size.FloatAt(1)
	}

	padType := "smd"
	if typeStr == "thru_hole" || typeStr == "np_thru_hole" {
		padType = "th"
	}

	shape := "rect"
	switch shapeStr {
	case "circle", "oval", "rect", "roundrect", "custom":
		shape = shapeStr
	case "chamfrect", "chamfered_rect":
		shape = "chamfrect"
	default:
		if shapeStr != "" && shapeStr != "trapezoid" {
			d.unmapped.warn("pad:"+shapeStr, "pad shape fallback to rect")
		}
	}
	if shape == "roundrect" && node.Find("chamfer") != nil {
		shape = "chamfrect"
	}

	pad := &pcb.Pad{
		Pos:   pcb.Point{absX, absY},
		Size:  pcb.Point{sizeW, sizeH},
		Shape: shape,
		Type:  padType,
	}

	// Layers: copper entries map to sides, *.Cu means every copper layer
	// and marks a through-hole pad.
	if layersNode := node.Find("layers"); layersNode != nil {
		allCu := false
		for _, item := range layersNode.Children() {
			layerName := item.Atom()
			if layerName == "*.Cu" {
				allCu = true
				continue
			}
			if !strings.Contains(layerName, "Cu") {
				continue
			}
			if s, ok := layerSide(layerName); ok {
				pad.Layers = append(pad.Layers, s)
			}
		}
		if len(pad.Layers) == 0 {
			if allCu {
				pad.Layers = []string{"F", "B"}
			} else {
				pad.Layers = []string{"F"}
			}
		}
	} else {
		pad.Layers = []string{"F"}
	}
	if padType == "th" && len(pad.Layers) == 1 {
		pad.Layers = []string{"F", "B"}
	}

	if netNode := node.Find("net"); netNode != nil {
		if id, ok := netNode.IntAt(0); ok {
			pad.Net = d.netName(id)
		}
	}

	if name == "1" || name == "A1" {
		pad.Pin1 = 1
	}

	if padAngle != 0 {
		a := padAngle + tf.Angle
		pad.Angle = &a
	} else if tf.Angle != 0 {
		a := tf.Angle
		pad.Angle = &a
	}

	drillNode := node.Find("drill")
	if padType == "th" && drillNode != nil {
		if drillNode.AtomAt(0) == "oval" {
			dw, _ := drillNode.FloatAt(1)
			dh, ok := drillNode.FloatAt(2)
			if !ok {
				dh = dw
			}
			pad.Drillshape = "oblong"
			pad.Drillsize = &pcb.Point{dw, dh}
		} else if dd, ok := drillNode.FloatAt(0); ok {
			pad.Drillshape = "circle"
			pad.Drillsize = &pcb.Point{dd, dd}
		}
	}

	// Shape offset relative to the drill.
	offsetNode := node.Find("offset")
	if offsetNode == nil && drillNode != nil {
		offsetNode = drillNode.Find("offset")
	}
	if offsetNode != nil {
		ox, _ := offsetNode.FloatAt(0)
		oy, _ := offsetNode.FloatAt(1)
		pad.Offset = &pcb.Point{ox, oy}
	}

	if shape == "roundrect" || shape == "chamfrect" {
		if ratio, ok := node.FloatOf("roundrect_rratio"); ok {
			r := ratio * min2(sizeW, sizeH)
			pad.Radius = &r
		}
	}

	if shape == "chamfrect" {
		ratio, _ := node.FloatOf("chamfer_ratio")
		pad.Chamfratio = &ratio
		pos := 0
		if chamfer := node.Find("chamfer"); chamfer != nil {
			for _, corner := range chamfer.Children() {
				switch corner.Atom() {
				case "top_left":
					pos |= 1
				case "top_right":
					pos |= 2
				case "bottom_right":
					pos |= 4
				case "bottom_left":
					pos |= 8
				}
			}
		}
		pad.Chamfpos = &pos
	}

	if shape == "custom" {
		d.parseCustomPad(node, pad)
	}

	return pad
}

// parseCustomPad reads the (primitives ...) list. When every primitive is
// polygonal the union is emitted as polygons; otherwise the outline is
// rendered to an SVG path.
func (d *document) parseCustomPad(node *sexp.Node, pad *pcb.Pad) {
	primitives := node.Find("primitives")
	if primitives == nil {
		return
	}
	var contours []pcb.Contour
	allPoly := true
	for _, prim := range primitives.Children() {
		switch prim.Tag() {
		case "gr_poly", "fp_poly":
			points := ptsOf(prim, transform{})
			if len(points) > 0 {
				contours = append(contours, pcb.Contour(points))
			}
		case "gr_line", "gr_arc", "gr_circle", "gr_rect", "gr_curve":
			allPoly = false
		}
	}
	if allPoly && len(contours) > 0 {
		pad.Polygons = contours
		return
	}
	pad.Svgpath = svgPathFromPrimitives(primitives)
}

func min2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
