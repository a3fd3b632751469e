package kicad

import (
	"github.com/OpenTraceLab/OpenTracePCB/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// parseTracks collects (segment ...), top-level (arc ...) and (via ...)
// nodes into per-layer track lists. Vias are listed on every copper layer,
// including inner layers the board declares.
func (d *document) parseTracks() *pcb.TrackMap {
	tracks := &pcb.TrackMap{Inner: make(map[string][]pcb.Track)}
	innerNames := d.layers.innerCopperNames()

	push := func(layerName string, t pcb.Track) {
		switch classifyLayer(layerName) {
		case layerCopperF:
			tracks.F = append(tracks.F, t)
		case layerCopperB:
			tracks.B = append(tracks.B, t)
		case layerCopperInner:
			tracks.Inner[layerName] = append(tracks.Inner[layerName], t)
		default:
			d.unmapped.warn(layerName, "track")
		}
	}

	for _, child := range d.root.Children() {
		switch child.Tag() {
		case "segment":
			start, okS := xyOf(child, "start")
			end, okE := xyOf(child, "end")
			if !okS || !okE {
				continue
			}
			width, ok := child.FloatOf("width")
			if !ok {
				width = 0.25
			}
			seg := &pcb.TrackSegment{Start: start, End: end, Width: width, Net: d.trackNet(child)}
			push(layerNameOf(child), seg)

		case "arc":
			start, okS := xyOf(child, "start")
			mid, okM := xyOf(child, "mid")
			end, okE := xyOf(child, "end")
			if !okS || !okM || !okE {
				continue
			}
			width, ok := child.FloatOf("width")
			if !ok {
				width = 0.25
			}
			center, radius, sa, ea, ok := arcFromThreePoints(start, mid, end)
			if !ok {
				continue
			}
			sa, ea = pcb.NormalizeArcAngles(sa, ea)
			arc := &pcb.TrackArc{
				Center:     center,
				Startangle: sa,
				Endangle:   ea,
				Radius:     radius,
				Width:      width,
				Net:        d.trackNet(child),
			}
			push(layerNameOf(child), arc)

		case "via":
			at, ok := xyOf(child, "at")
			if !ok {
				continue
			}
			size, ok := child.FloatOf("size")
			if !ok {
				size = 0.6
			}
			drill, ok := child.FloatOf("drill")
			if !ok {
				drill = 0.3
			}
			net := d.trackNet(child)
			via := func() pcb.Track {
				dr := drill
				return &pcb.TrackSegment{Start: at, End: at, Width: size, Net: net, Drillsize: &dr}
			}
			tracks.F = append(tracks.F, via())
			tracks.B = append(tracks.B, via())
			for _, name := range innerNames {
				tracks.Inner[name] = append(tracks.Inner[name], via())
			}
		}
	}
	return tracks
}

// trackNet resolves the (net id) child of a copper item.
func (d *document) trackNet(node *sexp.Node) string {
	netNode := node.Find("net")
	if netNode == nil {
		return ""
	}
	id, ok := netNode.IntAt(0)
	if !ok {
		return ""
	}
	return d.netName(id)
}
