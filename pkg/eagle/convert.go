package eagle

import (
	"math"
	"strings"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/bom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// convertElements places every library package at its element position and
// produces footprints plus BOM components.
func (c *converter) convertElements(elements []element) ([]*pcb.Footprint, []bom.Component) {
	footprints := make([]*pcb.Footprint, 0, len(elements))
	components := make([]bom.Component, 0, len(elements))

	for _, elem := range elements {
		angle, mirrored := parseRotation(elem.Rot)
		position := c.pt(elem.X, elem.Y)
		side := "F"
		if mirrored {
			side = "B"
		}

		var pads []*pcb.Pad
		var drawings []pcb.LayerDrawing

		p := c.packages[elem.Library+"/"+elem.Package]
		if p == nil {
			// Fusion exports occasionally reference packages by name only.
			for key, candidate := range c.packages {
				if strings.HasSuffix(key, "/"+elem.Package) {
					p = candidate
					break
				}
			}
		}

		if p != nil {
			pads = c.convertPackagePads(p, &elem, angle, mirrored)
			drawings = c.convertPackageDrawings(p, &elem, angle, mirrored)
		}

		bbox := pcb.EmptyBBox()
		for _, pad := range pads {
			bbox.Expand(pad.Pos[0]-pad.Size[0]/2, pad.Pos[1]-pad.Size[1]/2)
			bbox.Expand(pad.Pos[0]+pad.Size[0]/2, pad.Pos[1]+pad.Size[1]/2)
		}
		if bbox.IsEmpty() {
			bbox = pcb.BBox{
				MinX: position[0] - 0.5, MinY: position[1] - 0.5,
				MaxX: position[0] + 0.5, MaxY: position[1] + 0.5,
			}
		}

		fields := make(map[string]string, len(elem.Attributes))
		for _, attr := range elem.Attributes {
			if attr.Name != "" && attr.Value != "" {
				fields[attr.Name] = attr.Value
			}
		}

		idx := len(footprints)
		footprints = append(footprints, &pcb.Footprint{
			Ref:    elem.Name,
			Center: position,
			BBox: pcb.FootprintBBox{
				Pos:    position,
				Relpos: pcb.Point{bbox.MinX - position[0], bbox.MinY - position[1]},
				Size:   pcb.Point{bbox.MaxX - bbox.MinX, bbox.MaxY - bbox.MinY},
				Angle:  angle,
			},
			Pads:     pads,
			Drawings: drawings,
			Layer:    side,
		})
		components = append(components, bom.Component{
			Ref:       elem.Name,
			Value:     elem.Value,
			Footprint: elem.Package,
			Layer:     pcb.Side(side),
			Index:     idx,
			Fields:    fields,
		})
	}
	return footprints, components
}

func (c *converter) convertPackagePads(p *pkg, elem *element, angle float64, mirrored bool) []*pcb.Pad {
	var pads []*pcb.Pad

	for _, pd := range p.Pads {
		px, py := rotatePoint(pd.X, pd.Y, angle, mirrored)
		diameter := pd.Diameter
		if diameter <= 0 {
			diameter = pd.Drill * 2
		}
		shape := "circle"
		switch pd.Shape {
		case "square":
			shape = "rect"
		case "long", "offset":
			shape = "oval"
		case "octagon":
			shape = "rect"
		}
		net := c.padNets[elem.Name+"\x00"+pd.Name]
		if net != "" {
			c.nets[net] = struct{}{}
		}
		pad := &pcb.Pad{
			Layers:     []string{"F", "B"},
			Pos:        c.pt(elem.X+px, elem.Y+py),
			Size:       pcb.Point{c.mm(diameter), c.mm(diameter)},
			Shape:      shape,
			Type:       "th",
			Net:        net,
			Drillshape: "circle",
			Drillsize:  &pcb.Point{c.mm(pd.Drill), c.mm(pd.Drill)},
		}
		if angle != 0 {
			a := angle
			pad.Angle = &a
		}
		if pd.Name == "1" || pd.Name == "A1" {
			pad.Pin1 = 1
		}
		pads = append(pads, pad)
	}

	for _, sm := range p.SMDs {
		px, py := rotatePoint(sm.X, sm.Y, angle, mirrored)
		side, _ := layerSide(mirrorLayer(sm.Layer, mirrored))
		if side == "" {
			side = "F"
		}
		shape := "rect"
		var radius *float64
		if sm.Roundness > 0 {
			shape = "roundrect"
			r := sm.Roundness / 100 * math.Min(c.mm(sm.DX), c.mm(sm.DY)) / 2
			radius = &r
		}
		net := c.padNets[elem.Name+"\x00"+sm.Name]
		if net != "" {
			c.nets[net] = struct{}{}
		}
		smdAngle, _ := parseRotation(sm.Rot)
		pad := &pcb.Pad{
			Layers: []string{side},
			Pos:    c.pt(elem.X+px, elem.Y+py),
			Size:   pcb.Point{c.mm(sm.DX), c.mm(sm.DY)},
			Shape:  shape,
			Type:   "smd",
			Net:    net,
			Radius: radius,
		}
		if total := angle + smdAngle; total != 0 {
			pad.Angle = &total
		}
		if sm.Name == "1" || sm.Name == "A1" {
			pad.Pin1 = 1
		}
		pads = append(pads, pad)
	}
	return pads
}

func (c *converter) convertPackageDrawings(p *pkg, elem *element, angle float64, mirrored bool) []pcb.LayerDrawing {
	var drawings []pcb.LayerDrawing
	push := func(layer int, d pcb.Drawing) {
		effective := mirrorLayer(layer, mirrored)
		if !isSilkOrFab(effective) {
			return
		}
		side, ok := layerSide(effective)
		if !ok {
			return
		}
		drawings = append(drawings, pcb.LayerDrawing{Layer: side, Drawing: d})
	}

	for _, w := range p.Wires {
		sx, sy := rotatePoint(w.X1, w.Y1, angle, mirrored)
		ex, ey := rotatePoint(w.X2, w.Y2, angle, mirrored)
		start := c.pt(elem.X+sx, elem.Y+sy)
		end := c.pt(elem.X+ex, elem.Y+ey)
		if w.Curve != 0 {
			curve := w.Curve
			if mirrored {
				curve = -curve
			}
			if arc := arcFromChord(start, end, curve, c.mm(w.Width)); arc != nil {
				push(w.Layer, arc)
				continue
			}
		}
		push(w.Layer, &pcb.Segment{Start: start, End: end, Width: c.mm(w.Width)})
	}

	for _, circ := range p.Circles {
		cx, cy := rotatePoint(circ.X, circ.Y, angle, mirrored)
		push(circ.Layer, &pcb.Circle{
			Start:  c.pt(elem.X+cx, elem.Y+cy),
			Radius: c.mm(circ.Radius),
			Width:  c.mm(circ.Width),
		})
	}

	for _, rect := range p.Rectangles {
		sx, sy := rotatePoint(rect.X1, rect.Y1, angle, mirrored)
		ex, ey := rotatePoint(rect.X2, rect.Y2, angle, mirrored)
		push(rect.Layer, &pcb.Rect{
			Start: c.pt(elem.X+sx, elem.Y+sy),
			End:   c.pt(elem.X+ex, elem.Y+ey),
		})
	}

	for _, poly := range p.Polygons {
		contour := make(pcb.Contour, 0, len(poly.Vertices))
		for _, v := range poly.Vertices {
			vx, vy := rotatePoint(v.X, v.Y, angle, mirrored)
			contour = append(contour, c.pt(elem.X+vx, elem.Y+vy))
		}
		if len(contour) == 0 {
			continue
		}
		one := 1
		push(poly.Layer, &pcb.Polygon{
			Polygons: []pcb.Contour{contour},
			Filled:   &one,
			Width:    c.mm(poly.Width),
		})
	}

	for _, txt := range p.Texts {
		tx, ty := rotatePoint(txt.X, txt.Y, angle, mirrored)
		content := strings.TrimSpace(txt.Value)
		isRef := strings.EqualFold(content, ">NAME")
		isVal := strings.EqualFold(content, ">VALUE")
		if isRef {
			content = elem.Name
		}
		if isVal {
			content = elem.Value
		}
		textAngle, _ := parseRotation(txt.Rot)
		pos := c.pt(elem.X+tx, elem.Y+ty)
		justify := [2]int{-1, 1}
		thickness := c.mm(txt.Size) * 0.15
		if txt.Ratio > 0 {
			thickness = c.mm(txt.Size) * txt.Ratio / 100
		}
		text := &pcb.Text{
			Thickness: thickness,
			Pos:       &pos,
			Text:      content,
			Height:    c.mm(txt.Size),
			Width:     c.mm(txt.Size),
			Justify:   &justify,
			Angle:     textAngle + angle,
		}
		if isRef {
			text.Ref = 1
		}
		if isVal {
			text.Val = 1
		}
		if mirrored {
			text.Attr = []string{"mirrored"}
		}
		push(txt.Layer, text)
	}

	return drawings
}

// convertPlain routes board-level graphics: layer 20 fills edges, the rest
// go to the silkscreen and fabrication buckets.
func (c *converter) convertPlain(pl *plain) ([]pcb.Drawing, pcb.Drawings) {
	var edges []pcb.Drawing
	var silkF, silkB, fabF, fabB []pcb.Drawing

	route := func(layer int, d pcb.Drawing) {
		switch layer {
		case layerEdgeCuts:
			edges = append(edges, d)
		case layerTopSilk, layerTopNames:
			silkF = append(silkF, d)
		case layerBotSilk, layerBotNames:
			silkB = append(silkB, d)
		case layerTopFab, layerTopVals:
			fabF = append(fabF, d)
		case layerBotFab, layerBotVals:
			fabB = append(fabB, d)
		}
	}

	for i := range pl.Wires {
		route(pl.Wires[i].Layer, c.wireDrawing(&pl.Wires[i]))
	}
	for _, circ := range pl.Circles {
		route(circ.Layer, &pcb.Circle{
			Start:  c.pt(circ.X, circ.Y),
			Radius: c.mm(circ.Radius),
			Width:  c.mm(circ.Width),
		})
	}
	for _, rect := range pl.Rectangles {
		route(rect.Layer, &pcb.Rect{
			Start: c.pt(rect.X1, rect.Y1),
			End:   c.pt(rect.X2, rect.Y2),
		})
	}
	for _, poly := range pl.Polygons {
		contour := make(pcb.Contour, 0, len(poly.Vertices))
		for _, v := range poly.Vertices {
			contour = append(contour, c.pt(v.X, v.Y))
		}
		if len(contour) == 0 {
			continue
		}
		one := 1
		route(poly.Layer, &pcb.Polygon{
			Polygons: []pcb.Contour{contour},
			Filled:   &one,
			Width:    c.mm(poly.Width),
		})
	}
	for _, txt := range pl.Texts {
		pos := c.pt(txt.X, txt.Y)
		textAngle, _ := parseRotation(txt.Rot)
		justify := [2]int{-1, 1}
		route(txt.Layer, &pcb.Text{
			Thickness: c.mm(txt.Size) * 0.15,
			Pos:       &pos,
			Text:      strings.TrimSpace(txt.Value),
			Height:    c.mm(txt.Size),
			Width:     c.mm(txt.Size),
			Justify:   &justify,
			Angle:     textAngle,
		})
	}

	return edges, pcb.Drawings{
		Silkscreen:  pcb.SideDrawings{F: silkF, B: silkB},
		Fabrication: pcb.SideDrawings{F: fabF, B: fabB},
	}
}

// wireDrawing converts a wire, honouring the chord+angle curve attribute.
func (c *converter) wireDrawing(w *wire) pcb.Drawing {
	start := c.pt(w.X1, w.Y1)
	end := c.pt(w.X2, w.Y2)
	if w.Curve != 0 {
		if arc := arcFromChord(start, end, w.Curve, c.mm(w.Width)); arc != nil {
			return arc
		}
	}
	return &pcb.Segment{Start: start, End: end, Width: c.mm(w.Width)}
}

// convertSignals builds the per-side track lists and copper zones.
func (c *converter) convertSignals(signals []signal, edges *[]pcb.Drawing) (*pcb.TrackMap, *pcb.ZoneMap) {
	tracks := &pcb.TrackMap{}
	zones := &pcb.ZoneMap{}
	haveZones := false

	for _, sig := range signals {
		net := sig.Name
		if net != "" {
			c.nets[net] = struct{}{}
		}

		for i := range sig.Wires {
			w := &sig.Wires[i]
			if w.Layer == layerEdgeCuts {
				*edges = append(*edges, c.wireDrawing(w))
				continue
			}
			side, ok := layerSide(w.Layer)
			if !ok || (w.Layer != layerTopCu && w.Layer != layerBotCu) {
				continue
			}
			start := c.pt(w.X1, w.Y1)
			end := c.pt(w.X2, w.Y2)
			var track pcb.Track
			if w.Curve != 0 {
				if arc := arcFromChord(start, end, w.Curve, c.mm(w.Width)); arc != nil {
					track = &pcb.TrackArc{
						Center:     arc.Start,
						Startangle: arc.Startangle,
						Endangle:   arc.Endangle,
						Radius:     arc.Radius,
						Width:      arc.Width,
						Net:        net,
					}
				}
			}
			if track == nil {
				track = &pcb.TrackSegment{Start: start, End: end, Width: c.mm(w.Width), Net: net}
			}
			if side == "F" {
				tracks.F = append(tracks.F, track)
			} else {
				tracks.B = append(tracks.B, track)
			}
		}

		for _, v := range sig.Vias {
			pos := c.pt(v.X, v.Y)
			diameter := v.Diameter
			if diameter <= 0 {
				diameter = v.Drill * 2
			}
			mkVia := func() pcb.Track {
				drill := c.mm(v.Drill)
				return &pcb.TrackSegment{
					Start: pos, End: pos,
					Width:     c.mm(diameter),
					Net:       net,
					Drillsize: &drill,
				}
			}
			tracks.F = append(tracks.F, mkVia())
			tracks.B = append(tracks.B, mkVia())
		}

		for _, poly := range sig.Polygons {
			side, ok := layerSide(poly.Layer)
			if !ok || (poly.Layer != layerTopCu && poly.Layer != layerBotCu) {
				continue
			}
			contour := make(pcb.Contour, 0, len(poly.Vertices))
			for _, v := range poly.Vertices {
				contour = append(contour, c.pt(v.X, v.Y))
			}
			if len(contour) == 0 {
				continue
			}
			width := c.mm(poly.Width)
			zone := &pcb.Zone{
				Polygons: []pcb.Contour{contour},
				Width:    &width,
				Net:      net,
			}
			haveZones = true
			if side == "F" {
				zones.F = append(zones.F, zone)
			} else {
				zones.B = append(zones.B, zone)
			}
		}
	}

	if !haveZones {
		zones = nil
	}
	return tracks, zones
}

// arcFromChord converts an Eagle chord+included-angle curve into a
// center/radius/sweep arc. The curve sign flips when mapped into Y-down IR
// coordinates; a nil result means the chord is degenerate.
func arcFromChord(start, end pcb.Point, curveDeg, width float64) *pcb.Arc {
	theta := -curveDeg * math.Pi / 180 // Y flip reverses sweep direction
	dx := end[0] - start[0]
	dy := end[1] - start[1]
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 || theta == 0 {
		return nil
	}

	radius := chord / (2 * math.Sin(math.Abs(theta)/2))
	mx := (start[0] + end[0]) / 2
	my := (start[1] + end[1]) / 2
	// Distance from chord midpoint to the center.
	h := radius * math.Cos(math.Abs(theta)/2)
	// Unit normal to the chord; the side depends on the sweep sign.
	nx := -dy / chord
	ny := dx / chord
	if theta > 0 {
		nx, ny = -nx, -ny
	}
	cx := mx + nx*h
	cy := my + ny*h

	sa := math.Atan2(start[1]-cy, start[0]-cx) * 180 / math.Pi
	ea := math.Atan2(end[1]-cy, end[0]-cx) * 180 / math.Pi
	if theta > 0 {
		sa, ea = pcb.NormalizeArcAngles(sa, ea)
	} else {
		ea, sa = sa, ea
		sa, ea = pcb.NormalizeArcAngles(sa, ea)
	}
	return &pcb.Arc{
		Start:      pcb.Point{cx, cy},
		Radius:     radius,
		Startangle: sa,
		Endangle:   ea,
		Width:      width,
	}
}
