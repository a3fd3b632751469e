package easyeda

import (
	"math"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/bom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// placement is the transform from component-local coordinates to canvas
// coordinates: optional X mirror (back-side placement), rotation around the
// component origin, then translation.
type placement struct {
	X, Y     float64 // component origin, canvas mils
	Angle    float64 // degrees
	Mirrored bool
	active   bool
}

func identityPlacement() placement {
	return placement{}
}

// apply maps a local point (canvas mils) into placed canvas mils.
func (p placement) apply(lx, ly float64) (float64, float64) {
	if !p.active {
		return lx, ly
	}
	lx -= p.X
	ly -= p.Y
	if p.Mirrored {
		lx = -lx
	}
	if p.Angle != 0 {
		rad := -p.Angle * math.Pi / 180
		cos, sin := math.Cos(rad), math.Sin(rad)
		lx, ly = lx*cos-ly*sin, lx*sin+ly*cos
	}
	return lx + p.X, ly + p.Y
}

// mirrorLayer flips a layer id to the other board side for mirrored
// placements.
func (p placement) mirrorLayer(layer int) int {
	if !p.Mirrored {
		return layer
	}
	switch layer {
	case 1:
		return 2
	case 2:
		return 1
	case 3:
		return 4
	case 4:
		return 3
	case 13:
		return 14
	case 14:
		return 13
	}
	return layer
}

// toMM converts placed canvas mils into IR millimetres.
func (b *builder) toMM(x, y float64) pcb.Point {
	return pcb.Point{(x - b.originX) * milToMM, (y - b.originY) * milToMM}
}

// collect is the per-component sink; when nil, primitives go to the board
// buckets.
type collect struct {
	pads     []*pcb.Pad
	drawings []pcb.LayerDrawing
	bbox     pcb.BBox
}

// parsePrimitive parses one ~-separated primitive string.
func (b *builder) parsePrimitive(shape string, place placement) {
	b.parsePrimitiveInto(shape, place, nil)
}

func (b *builder) parsePrimitiveInto(shape string, place placement, sink *collect) {
	parts := strings.Split(shape, "~")
	if len(parts) == 0 || parts[0] == "" {
		return
	}
	switch parts[0] {
	case "TRACK":
		b.parseTrack(parts, place, sink)
	case "PAD":
		b.parsePad(parts, place, sink)
	case "CIRCLE":
		b.parseCircle(parts, place, sink)
	case "RECT":
		b.parseRect(parts, place, sink)
	case "ARC":
		b.parseArc(parts, place, sink)
	case "SOLIDREGION":
		b.parseSolidRegion(parts, place, sink)
	case "COPPERAREA":
		b.parseCopperArea(parts, place)
	default:
		unknownPrimitive(parts[0])
	}
}

// TRACK~width~layer~points...: polyline of space-separated coordinate
// pairs. Copper layers become track segments, silk/fab/edge layers become
// segment drawings.
func (b *builder) parseTrack(parts []string, place placement, sink *collect) {
	if len(parts) < 4 {
		return
	}
	width := floatAt(parts, 1) * milToMM
	layer := place.mirrorLayer(int(floatAt(parts, 2)))
	coords := splitFloats(parts[3])
	cat := categorize(layer)

	for i := 0; i+3 < len(coords); i += 2 {
		sx, sy := place.apply(coords[i], coords[i+1])
		ex, ey := place.apply(coords[i+2], coords[i+3])
		start := b.toMM(sx, sy)
		end := b.toMM(ex, ey)
		seg := &pcb.Segment{Start: start, End: end, Width: width}
		switch cat {
		case layerCopperF:
			b.trackF = append(b.trackF, &pcb.TrackSegment{Start: start, End: end, Width: width})
		case layerCopperB:
			b.trackB = append(b.trackB, &pcb.TrackSegment{Start: start, End: end, Width: width})
		default:
			if sink != nil {
				if side, ok := sideOf(cat); ok {
					sink.drawings = append(sink.drawings, pcb.LayerDrawing{Layer: side, Drawing: seg})
					sink.bbox.Expand(start[0], start[1])
					sink.bbox.Expand(end[0], end[1])
				}
				continue
			}
			b.pushDrawing(cat, seg)
		}
	}
}

// PAD~shape~x~y~w~h~layer~net~number~holeRadius~points~rotation~id~
// holeLength~holePoints~plated
func (b *builder) parsePad(parts []string, place placement, sink *collect) {
	if len(parts) < 9 {
		return
	}
	shapeName := parts[1]
	px, py := place.apply(floatAt(parts, 2), floatAt(parts, 3))
	w := floatAt(parts, 4) * milToMM
	h := floatAt(parts, 5) * milToMM
	layer := place.mirrorLayer(int(floatAt(parts, 6)))
	net := strings.TrimSpace(parts[7])
	number := strings.TrimSpace(parts[8])
	holeRadius := floatAt(parts, 9) * milToMM
	rotation := floatAt(parts, 11)
	holeLength := floatAt(parts, 13) * milToMM

	pad := &pcb.Pad{
		Pos:  b.toMM(px, py),
		Size: pcb.Point{w, h},
		Net:  net,
	}
	b.noteNet(net)

	switch shapeName {
	case "ELLIPSE":
		if w == h {
			pad.Shape = "circle"
		} else {
			pad.Shape = "oval"
		}
	case "OVAL":
		pad.Shape = "oval"
	case "RECT":
		pad.Shape = "rect"
	case "POLYGON":
		pad.Shape = "custom"
		coords := splitFloats(stringAt(parts, 10))
		var contour pcb.Contour
		for i := 0; i+1 < len(coords); i += 2 {
			gx, gy := place.apply(coords[i], coords[i+1])
			pt := b.toMM(gx, gy)
			contour = append(contour, pcb.Point{pt[0] - pad.Pos[0], pt[1] - pad.Pos[1]})
		}
		if len(contour) > 0 {
			pad.Polygons = []pcb.Contour{contour}
		}
	default:
		pad.Shape = "rect"
	}

	angle := rotation
	if place.active {
		angle += place.Angle
	}
	if angle != 0 {
		pad.Angle = &angle
	}

	if number == "1" || number == "A1" {
		pad.Pin1 = 1
	}

	isTH := layer == 11 || holeRadius > 0
	if isTH {
		pad.Type = "th"
		pad.Layers = []string{"F", "B"}
		if holeRadius > 0 {
			d := holeRadius * 2
			if holeLength > 0 {
				pad.Drillshape = "oblong"
				pad.Drillsize = &pcb.Point{d, holeLength}
			} else {
				pad.Drillshape = "circle"
				pad.Drillsize = &pcb.Point{d, d}
			}
		}
	} else {
		pad.Type = "smd"
		switch categorize(layer) {
		case layerCopperB:
			pad.Layers = []string{"B"}
		default:
			pad.Layers = []string{"F"}
		}
	}

	if sink != nil {
		sink.pads = append(sink.pads, pad)
		sink.bbox.Expand(pad.Pos[0]-w/2, pad.Pos[1]-h/2)
		sink.bbox.Expand(pad.Pos[0]+w/2, pad.Pos[1]+h/2)
		return
	}
	// A pad outside any LIB block still belongs to the board: wrap it in a
	// one-pad anonymous footprint so the viewer can render it.
	fp := &pcb.Footprint{
		Ref:    "",
		Center: pad.Pos,
		BBox: pcb.FootprintBBox{
			Pos:    pad.Pos,
			Relpos: pcb.Point{-w / 2, -h / 2},
			Size:   pcb.Point{w, h},
		},
		Pads:  []*pcb.Pad{pad},
		Layer: pad.Layers[0],
	}
	b.components = append(b.components, bom.Component{
		Layer:   pcb.Side(fp.Layer),
		Index:   len(b.footprints),
		Virtual: true,
	})
	b.footprints = append(b.footprints, fp)
}

// CIRCLE~cx~cy~r~strokeWidth~layer~...
func (b *builder) parseCircle(parts []string, place placement, sink *collect) {
	if len(parts) < 6 {
		return
	}
	cx, cy := place.apply(floatAt(parts, 1), floatAt(parts, 2))
	center := b.toMM(cx, cy)
	radius := floatAt(parts, 3) * milToMM
	width := floatAt(parts, 4) * milToMM
	layer := place.mirrorLayer(int(floatAt(parts, 5)))
	circle := &pcb.Circle{Start: center, Radius: radius, Width: width}
	cat := categorize(layer)
	if sink != nil {
		if side, ok := sideOf(cat); ok {
			sink.drawings = append(sink.drawings, pcb.LayerDrawing{Layer: side, Drawing: circle})
			sink.bbox.Expand(center[0]-radius, center[1]-radius)
			sink.bbox.Expand(center[0]+radius, center[1]+radius)
		}
		return
	}
	b.pushDrawing(cat, circle)
}

// RECT~x~y~w~h~layer~...
func (b *builder) parseRect(parts []string, place placement, sink *collect) {
	if len(parts) < 6 {
		return
	}
	x1, y1 := place.apply(floatAt(parts, 1), floatAt(parts, 2))
	x2, y2 := place.apply(floatAt(parts, 1)+floatAt(parts, 3), floatAt(parts, 2)+floatAt(parts, 4))
	layer := place.mirrorLayer(int(floatAt(parts, 5)))
	rect := &pcb.Rect{Start: b.toMM(x1, y1), End: b.toMM(x2, y2)}
	cat := categorize(layer)
	if sink != nil {
		if side, ok := sideOf(cat); ok {
			sink.drawings = append(sink.drawings, pcb.LayerDrawing{Layer: side, Drawing: rect})
			sink.bbox.Expand(rect.Start[0], rect.Start[1])
			sink.bbox.Expand(rect.End[0], rect.End[1])
		}
		return
	}
	b.pushDrawing(cat, rect)
}

// ARC~width~layer~net~path~...: the arc geometry comes as an SVG path in
// canvas mils; coordinates are rewritten to millimetres.
func (b *builder) parseArc(parts []string, place placement, sink *collect) {
	if len(parts) < 5 {
		return
	}
	width := floatAt(parts, 1) * milToMM
	layer := place.mirrorLayer(int(floatAt(parts, 2)))
	path := b.convertPath(stringAt(parts, 4), place)
	if path == "" {
		path = b.convertPath(stringAt(parts, 3), place)
	}
	if path == "" {
		return
	}
	arc := &pcb.SvgArc{Svgpath: path, Width: width}
	cat := categorize(layer)
	if sink != nil {
		if side, ok := sideOf(cat); ok {
			sink.drawings = append(sink.drawings, pcb.LayerDrawing{Layer: side, Drawing: arc})
		}
		return
	}
	b.pushDrawing(cat, arc)
}

// SOLIDREGION~layer~net~path~type~...
func (b *builder) parseSolidRegion(parts []string, place placement, sink *collect) {
	if len(parts) < 4 {
		return
	}
	layer := place.mirrorLayer(int(floatAt(parts, 1)))
	net := strings.TrimSpace(parts[2])
	path := b.convertPath(parts[3], place)
	if path == "" {
		return
	}
	cat := categorize(layer)
	switch cat {
	case layerCopperF:
		b.noteNet(net)
		b.zonesF = append(b.zonesF, &pcb.Zone{Svgpath: path, Net: net, Fillrule: "evenodd"})
	case layerCopperB:
		b.noteNet(net)
		b.zonesB = append(b.zonesB, &pcb.Zone{Svgpath: path, Net: net, Fillrule: "evenodd"})
	default:
		one := 1
		poly := &pcb.SvgPolygon{Svgpath: path, Filled: &one}
		if sink != nil {
			if side, ok := sideOf(cat); ok {
				sink.drawings = append(sink.drawings, pcb.LayerDrawing{Layer: side, Drawing: poly})
			}
			return
		}
		b.pushDrawing(cat, poly)
	}
}

// COPPERAREA~strokeWidth~layer~net~path~...
func (b *builder) parseCopperArea(parts []string, place placement) {
	if len(parts) < 5 {
		return
	}
	layer := place.mirrorLayer(int(floatAt(parts, 2)))
	net := strings.TrimSpace(parts[3])
	path := b.convertPath(parts[4], place)
	if path == "" {
		return
	}
	zone := &pcb.Zone{Svgpath: path, Net: net, Fillrule: "evenodd"}
	b.noteNet(net)
	switch categorize(layer) {
	case layerCopperF:
		b.zonesF = append(b.zonesF, zone)
	case layerCopperB:
		b.zonesB = append(b.zonesB, zone)
	}
}

func sideOf(cat layerCat) (string, bool) {
	switch cat {
	case layerCopperF, layerSilkF, layerFabF:
		return "F", true
	case layerCopperB, layerSilkB, layerFabB:
		return "B", true
	}
	return "", false
}

// splitFloats parses a space-separated coordinate list.
func splitFloats(s string) []float64 {
	fields := strings.Fields(s)
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return out
		}
		out = append(out, v)
	}
	return out
}

func stringAt(parts []string, index int) string {
	if index < 0 || index >= len(parts) {
		return ""
	}
	return parts[index]
}
