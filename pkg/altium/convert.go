package altium

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// converter turns decoded Altium records into IR entities.
type converter struct {
	layers *layerTable
	nets   []string
	wide   map[uint32]string
}

// point converts integer internal units to IR millimetres. Altium Y points
// up, so Y is negated.
func point(x, y int32) pcb.Point {
	return pcb.Point{float64(x) * unitToMM, -float64(y) * unitToMM}
}

func mm(v int32) float64 {
	return float64(v) * unitToMM
}

// irAngle converts a source rotation (counter-clockwise from +X) into IR
// screen space, where the Y flip makes it clockwise: the sign inverts.
func irAngle(deg float64) float64 {
	if deg == 0 {
		return 0
	}
	return -deg
}

// irArcAngles maps a source arc sweep across the Y flip: angles negate and
// the sweep direction reverses.
func irArcAngles(start, end float64) (float64, float64) {
	return pcb.NormalizeArcAngles(-end, -start)
}

func (c *converter) netName(id uint16) string {
	// Object records store the net index offset by one; 0xFFFF marks "no
	// net".
	if id == 0xFFFF {
		return ""
	}
	idx := int(id) + 1
	if idx < 0 || idx >= len(c.nets) {
		return ""
	}
	return c.nets[idx]
}

// ─── Board outline ───────────────────────────────────────────────────

// boardEdges reads KIND=0 outline vertices from Board6. Non-zero SA/EA
// mark arc segments; everything else is a straight edge to the next
// vertex. A VCOUNT that is not an integer is a schema violation.
func (c *converter) boardEdges(records []propertyRecord) ([]pcb.Drawing, error) {
	var edges []pcb.Drawing
	for _, rec := range records {
		if rec.str("KIND") != "0" {
			continue
		}
		raw, ok := rec["VCOUNT"]
		if !ok {
			continue
		}
		vcount, err := atoiSafe(raw)
		if err != nil {
			return nil, &pcb.SchemaError{Key: "VCOUNT", Value: raw, Want: "integer"}
		}
		if vcount <= 0 {
			continue
		}
		for i := 0; i < vcount; i++ {
			x0 := rec.coord(fmt.Sprintf("VX%d", i))
			y0 := rec.coord(fmt.Sprintf("VY%d", i))
			next := (i + 1) % vcount
			x1 := rec.coord(fmt.Sprintf("VX%d", next))
			y1 := rec.coord(fmt.Sprintf("VY%d", next))

			sa := rec.float(fmt.Sprintf("SA%d", i))
			ea := rec.float(fmt.Sprintf("EA%d", i))
			if sa != 0 || ea != 0 {
				center := point(rec.coord(fmt.Sprintf("CX%d", i)), rec.coord(fmt.Sprintf("CY%d", i)))
				radius := mm(rec.coord(fmt.Sprintf("R%d", i)))
				if radius == 0 {
					start := point(x0, y0)
					radius = math.Hypot(start[0]-center[0], start[1]-center[1])
				}
				startangle, endangle := irArcAngles(sa, ea)
				edges = append(edges, &pcb.Arc{
					Start:      center,
					Radius:     radius,
					Startangle: startangle,
					Endangle:   endangle,
					Width:      0.05,
				})
				continue
			}
			edges = append(edges, &pcb.Segment{
				Start: point(x0, y0),
				End:   point(x1, y1),
				Width: 0.05,
			})
		}
	}
	return edges, nil
}

// ─── Footprint assembly ──────────────────────────────────────────────

// buildFootprints groups every object by component id, producing one IR
// footprint per Components6 record. Pads keep absolute coordinates; the
// bounding box uses them directly.
func (c *converter) buildFootprints(
	components []componentRecord,
	pads []padRecord,
	tracks []trackRecord,
	arcs []arcRecord,
	fills []fillRecord,
	texts []textRecord,
) []*pcb.Footprint {
	footprints := make([]*pcb.Footprint, 0, len(components))

	for idx, comp := range components {
		compID := uint16(idx)
		center := point(comp.X, comp.Y)

		var fpPads []*pcb.Pad
		for i := range pads {
			if pads[i].ComponentID == compID {
				fpPads = append(fpPads, c.convertPad(&pads[i])...)
			}
		}

		var drawings []pcb.LayerDrawing
		for i := range tracks {
			if tracks[i].ComponentID == compID {
				if d := c.trackDrawing(&tracks[i]); d != nil {
					drawings = append(drawings, *d)
				}
			}
		}
		for i := range arcs {
			if arcs[i].ComponentID == compID {
				if d := c.arcDrawing(&arcs[i]); d != nil {
					drawings = append(drawings, *d)
				}
			}
		}
		for i := range fills {
			if fills[i].ComponentID == compID {
				if d := c.fillDrawing(&fills[i]); d != nil {
					drawings = append(drawings, *d)
				}
			}
		}
		for i := range texts {
			if texts[i].ComponentID == compID {
				if d := c.textDrawing(&texts[i], &comp); d != nil {
					drawings = append(drawings, *d)
				}
			}
		}

		bbox := pcb.EmptyBBox()
		for _, pad := range fpPads {
			bbox.Expand(pad.Pos[0]-pad.Size[0]/2, pad.Pos[1]-pad.Size[1]/2)
			bbox.Expand(pad.Pos[0]+pad.Size[0]/2, pad.Pos[1]+pad.Size[1]/2)
		}
		if bbox.IsEmpty() {
			bbox = pcb.BBox{
				MinX: center[0] - 0.5, MinY: center[1] - 0.5,
				MaxX: center[0] + 0.5, MaxY: center[1] + 0.5,
			}
		}

		footprints = append(footprints, &pcb.Footprint{
			Ref:    comp.Designator,
			Center: center,
			BBox: pcb.FootprintBBox{
				Pos:    center,
				Relpos: pcb.Point{bbox.MinX - center[0], bbox.MinY - center[1]},
				Size:   pcb.Point{bbox.MaxX - bbox.MinX, bbox.MaxY - bbox.MinY},
				Angle:  irAngle(comp.Rotation),
			},
			Pads:     fpPads,
			Drawings: drawings,
			Layer:    c.layers.side(comp.Layer),
		})
	}
	return footprints
}

// convertPad maps one pad record to IR pads. A pad whose bottom size
// differs from its top becomes one entry per side.
func (c *converter) convertPad(pad *padRecord) []*pcb.Pad {
	isTH := pad.Layer == idMultiLayer || pad.HoleSize > 0

	base := &pcb.Pad{
		Pos: point(pad.X, pad.Y),
		Net: c.netName(pad.NetID),
	}
	if pad.Name == "1" || pad.Name == "A1" {
		base.Pin1 = 1
	}
	if angle := irAngle(pad.Rotation); angle != 0 {
		base.Angle = &angle
	}
	if isTH {
		base.Type = "th"
		base.Layers = []string{"F", "B"}
		if pad.HoleSize > 0 {
			d := mm(pad.HoleSize)
			base.Drillshape = "circle"
			base.Drillsize = &pcb.Point{d, d}
		}
	} else {
		base.Type = "smd"
		base.Layers = []string{c.layers.side(pad.Layer)}
	}

	apply := func(p *pcb.Pad, sizeX, sizeY int32, shape uint8) {
		p.Size = pcb.Point{mm(sizeX), mm(sizeY)}
		switch shape {
		case 1:
			p.Shape = "circle"
		case 2:
			p.Shape = "rect"
		case 3:
			// Octagonal pads become an explicit 8-vertex polygon with a
			// 45 degree chamfer derived from the pad size.
			p.Shape = "custom"
			sx := mm(sizeX) / 2
			sy := mm(sizeY) / 2
			ch := min2(sx, sy) * 0.3
			p.Polygons = []pcb.Contour{{
				{sx, sy - ch}, {sx - ch, sy}, {-(sx - ch), sy}, {-sx, sy - ch},
				{-sx, -(sy - ch)}, {-(sx - ch), -sy}, {sx - ch, -sy}, {sx, -(sy - ch)},
			}}
		case 9:
			p.Shape = "roundrect"
			pct := pad.RadiusPct
			if pct <= 0 {
				pct = 25
			}
			r := pct / 100 * min2(mm(sizeX), mm(sizeY))
			p.Radius = &r
		default:
			log.Warn().Uint8("shape", shape).Msg("unknown pad shape, falling back to rect")
			p.Shape = "rect"
		}
	}

	// Independent bottom geometry splits the pad into per-side entries.
	splitSides := isTH &&
		(pad.BotSizeX != pad.TopSizeX || pad.BotSizeY != pad.TopSizeY || pad.BotShape != pad.TopShape) &&
		(pad.BotSizeX != 0 || pad.BotSizeY != 0)

	if !splitSides {
		apply(base, pad.TopSizeX, pad.TopSizeY, pad.TopShape)
		return []*pcb.Pad{base}
	}

	top := clonePad(base)
	top.Layers = []string{"F"}
	apply(top, pad.TopSizeX, pad.TopSizeY, pad.TopShape)

	bottom := clonePad(base)
	bottom.Layers = []string{"B"}
	apply(bottom, pad.BotSizeX, pad.BotSizeY, pad.BotShape)

	return []*pcb.Pad{top, bottom}
}

func clonePad(p *pcb.Pad) *pcb.Pad {
	clone := *p
	if p.Angle != nil {
		a := *p.Angle
		clone.Angle = &a
	}
	if p.Drillsize != nil {
		d := *p.Drillsize
		clone.Drillsize = &d
	}
	clone.Layers = append([]string(nil), p.Layers...)
	return &clone
}

// ─── Drawings ────────────────────────────────────────────────────────

func (c *converter) sideFor(cat layerCat) (string, bool) {
	switch cat {
	case layerSilkF, layerFabF:
		return "F", true
	case layerSilkB, layerFabB:
		return "B", true
	}
	return "", false
}

func (c *converter) trackDrawing(t *trackRecord) *pcb.LayerDrawing {
	side, ok := c.sideFor(c.layers.category(t.Layer))
	if !ok {
		return nil
	}
	return &pcb.LayerDrawing{Layer: side, Drawing: &pcb.Segment{
		Start: point(t.StartX, t.StartY),
		End:   point(t.EndX, t.EndY),
		Width: mm(t.Width),
	}}
}

func (c *converter) arcDrawing(a *arcRecord) *pcb.LayerDrawing {
	side, ok := c.sideFor(c.layers.category(a.Layer))
	if !ok {
		return nil
	}
	startangle, endangle := irArcAngles(a.StartAngle, a.EndAngle)
	return &pcb.LayerDrawing{Layer: side, Drawing: &pcb.Arc{
		Start:      point(a.CenterX, a.CenterY),
		Radius:     mm(a.Radius),
		Startangle: startangle,
		Endangle:   endangle,
		Width:      mm(a.Width),
	}}
}

func (c *converter) fillDrawing(f *fillRecord) *pcb.LayerDrawing {
	side, ok := c.sideFor(c.layers.category(f.Layer))
	if !ok {
		return nil
	}
	return &pcb.LayerDrawing{Layer: side, Drawing: &pcb.Rect{
		Start: point(f.X1, f.Y1),
		End:   point(f.X2, f.Y2),
	}}
}

// textDrawing emits text in the stroke form. The special strings
// .Designator and .Comment resolve against the owning component and mark
// the drawing as reference or value text.
func (c *converter) textDrawing(t *textRecord, comp *componentRecord) *pcb.LayerDrawing {
	side, ok := c.sideFor(c.layers.category(t.Layer))
	if !ok {
		return nil
	}

	content := t.Text
	if t.HasWide {
		if wide, found := c.wide[t.WideIndex]; found {
			content = wide
		}
	}

	var isRef, isVal bool
	switch strings.ToLower(content) {
	case ".designator":
		content = comp.Designator
		isRef = true
	case ".comment":
		content = comp.Comment
		isVal = true
	}

	pos := point(t.X, t.Y)
	justify := [2]int{-1, 1}
	text := &pcb.Text{
		Thickness: mm(t.Thickness),
		Pos:       &pos,
		Text:      content,
		Height:    mm(t.Height),
		Width:     mm(t.Height),
		Justify:   &justify,
		Angle:     irAngle(t.Rotation),
	}
	if isRef {
		text.Ref = 1
	}
	if isVal {
		text.Val = 1
	}
	if t.Mirrored {
		text.Attr = []string{"mirrored"}
	}
	return &pcb.LayerDrawing{Layer: side, Drawing: text}
}

// boardDrawings routes unattached objects (component id 0xFFFF) into the
// silkscreen and fabrication buckets.
func (c *converter) boardDrawings(tracks []trackRecord, arcs []arcRecord, fills []fillRecord, texts []textRecord) pcb.Drawings {
	var silkF, silkB, fabF, fabB []pcb.Drawing
	route := func(layer uint8, d pcb.Drawing) {
		switch c.layers.category(layer) {
		case layerSilkF:
			silkF = append(silkF, d)
		case layerSilkB:
			silkB = append(silkB, d)
		case layerFabF:
			fabF = append(fabF, d)
		case layerFabB:
			fabB = append(fabB, d)
		}
	}

	for i := range tracks {
		t := &tracks[i]
		if t.ComponentID != boardLevel {
			continue
		}
		route(t.Layer, &pcb.Segment{
			Start: point(t.StartX, t.StartY),
			End:   point(t.EndX, t.EndY),
			Width: mm(t.Width),
		})
	}
	for i := range arcs {
		a := &arcs[i]
		if a.ComponentID != boardLevel {
			continue
		}
		startangle, endangle := irArcAngles(a.StartAngle, a.EndAngle)
		route(a.Layer, &pcb.Arc{
			Start:      point(a.CenterX, a.CenterY),
			Radius:     mm(a.Radius),
			Startangle: startangle,
			Endangle:   endangle,
			Width:      mm(a.Width),
		})
	}
	for i := range fills {
		f := &fills[i]
		if f.ComponentID != boardLevel {
			continue
		}
		route(f.Layer, &pcb.Rect{Start: point(f.X1, f.Y1), End: point(f.X2, f.Y2)})
	}
	for i := range texts {
		t := &texts[i]
		if t.ComponentID != boardLevel {
			continue
		}
		if d := c.textDrawing(t, &componentRecord{}); d != nil {
			switch c.layers.category(t.Layer) {
			case layerSilkF:
				silkF = append(silkF, d.Drawing)
			case layerSilkB:
				silkB = append(silkB, d.Drawing)
			case layerFabF:
				fabF = append(fabF, d.Drawing)
			case layerFabB:
				fabB = append(fabB, d.Drawing)
			}
		}
	}

	return pcb.Drawings{
		Silkscreen:  pcb.SideDrawings{F: silkF, B: silkB},
		Fabrication: pcb.SideDrawings{F: fabF, B: fabB},
	}
}

// ─── Tracks and zones ────────────────────────────────────────────────

func (c *converter) buildTracks(tracks []trackRecord, arcs []arcRecord, vias []viaRecord) *pcb.TrackMap {
	out := &pcb.TrackMap{Inner: make(map[string][]pcb.Track)}
	push := func(layer uint8, t pcb.Track) {
		switch c.layers.category(layer) {
		case layerCopperF:
			out.F = append(out.F, t)
		case layerCopperB:
			out.B = append(out.B, t)
		case layerCopperInner:
			name := c.layers.innerName(layer)
			out.Inner[name] = append(out.Inner[name], t)
		}
	}

	for i := range tracks {
		t := &tracks[i]
		if t.ComponentID != boardLevel {
			continue
		}
		push(t.Layer, &pcb.TrackSegment{
			Start: point(t.StartX, t.StartY),
			End:   point(t.EndX, t.EndY),
			Width: mm(t.Width),
			Net:   c.netName(t.NetID),
		})
	}
	for i := range arcs {
		a := &arcs[i]
		if a.ComponentID != boardLevel {
			continue
		}
		startangle, endangle := irArcAngles(a.StartAngle, a.EndAngle)
		push(a.Layer, &pcb.TrackArc{
			Center:     point(a.CenterX, a.CenterY),
			Startangle: startangle,
			Endangle:   endangle,
			Radius:     mm(a.Radius),
			Width:      mm(a.Width),
			Net:        c.netName(a.NetID),
		})
	}
	for i := range vias {
		v := &vias[i]
		pos := point(v.X, v.Y)
		mk := func() pcb.Track {
			drill := mm(v.HoleSize)
			return &pcb.TrackSegment{
				Start: pos, End: pos,
				Width:     mm(v.Diameter),
				Net:       c.netName(v.NetID),
				Drillsize: &drill,
			}
		}
		out.F = append(out.F, mk())
		out.B = append(out.B, mk())
	}
	return out
}

// buildZones emits cached region fills plus Polygons6 outlines when the
// file carries them.
func (c *converter) buildZones(regions []regionRecord, polygons []propertyRecord) *pcb.ZoneMap {
	zones := &pcb.ZoneMap{Inner: make(map[string][]*pcb.Zone)}
	push := func(layer uint8, z *pcb.Zone) {
		switch c.layers.category(layer) {
		case layerCopperF:
			zones.F = append(zones.F, z)
		case layerCopperB:
			zones.B = append(zones.B, z)
		case layerCopperInner:
			name := c.layers.innerName(layer)
			zones.Inner[name] = append(zones.Inner[name], z)
		}
	}

	for i := range regions {
		r := &regions[i]
		if strings.EqualFold(r.Props.str("ISBOARDCUTOUT"), "TRUE") ||
			strings.EqualFold(r.Props.str("KEEPOUT"), "TRUE") {
			continue
		}
		if len(r.Outline) < 3 {
			continue
		}
		contour := make(pcb.Contour, len(r.Outline))
		for v, pt := range r.Outline {
			contour[v] = pcb.Point{pt[0] * unitToMM, -pt[1] * unitToMM}
		}
		width := 0.0
		push(r.Layer, &pcb.Zone{
			Polygons: []pcb.Contour{contour},
			Width:    &width,
			Net:      c.netName(r.NetID),
		})
	}

	for _, rec := range polygons {
		vcount, err := atoiSafe(rec.str("VCOUNT"))
		if err != nil || vcount < 3 {
			continue
		}
		contour := make(pcb.Contour, 0, vcount)
		for i := 0; i < vcount; i++ {
			x := rec.coord(fmt.Sprintf("VX%d", i))
			y := rec.coord(fmt.Sprintf("VY%d", i))
			contour = append(contour, point(x, y))
		}
		layer := layerFromProps(rec)
		net := ""
		if id, errNet := atoiSafe(rec.str("NET")); errNet == nil {
			net = c.netName(uint16(id))
		}
		width := 0.0
		push(layer, &pcb.Zone{
			Polygons: []pcb.Contour{contour},
			Width:    &width,
			Net:      net,
		})
	}
	return zones
}

// ─── Small helpers ───────────────────────────────────────────────────

func atoiSafe(s string) (int, error) {
	return strconv.Atoi(s)
}

func min2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
