package kicad

import (
	"math"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// fmtCoord renders a coordinate for an SVG path with at most 6 decimals.
func fmtCoord(v float64) string {
	return strconv.FormatFloat(pcb.Round6(v), 'f', -1, 64)
}

// svgPathFromPrimitives renders a custom-pad primitive list to a single
// SVG path in pad-local coordinates. Only the outline geometry is kept;
// stroke widths of the individual primitives are folded into the pad.
func svgPathFromPrimitives(primitives *sexp.Node) string {
	var sb strings.Builder
	emit := func(parts ...string) {
		for _, p := range parts {
			if sb.Len() > 0 || p != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(p)
			}
		}
	}

	for _, prim := range primitives.Children() {
		switch prim.Tag() {
		case "gr_line":
			start, okS := xyOf(prim, "start")
			end, okE := xyOf(prim, "end")
			if !okS || !okE {
				continue
			}
			emit("M", fmtCoord(start[0]), fmtCoord(start[1]), "L", fmtCoord(end[0]), fmtCoord(end[1]))

		case "gr_rect":
			start, okS := xyOf(prim, "start")
			end, okE := xyOf(prim, "end")
			if !okS || !okE {
				continue
			}
			emit("M", fmtCoord(start[0]), fmtCoord(start[1]),
				"L", fmtCoord(end[0]), fmtCoord(start[1]),
				"L", fmtCoord(end[0]), fmtCoord(end[1]),
				"L", fmtCoord(start[0]), fmtCoord(end[1]), "Z")

		case "gr_circle":
			center, okC := xyOf(prim, "center")
			end, okE := xyOf(prim, "end")
			if !okC || !okE {
				continue
			}
			r := math.Hypot(end[0]-center[0], end[1]-center[1])
			// Two half-circle arcs approximate the full circle.
			emit("M", fmtCoord(center[0]-r), fmtCoord(center[1]),
				"A", fmtCoord(r), fmtCoord(r), "0 1 0", fmtCoord(center[0]+r), fmtCoord(center[1]),
				"A", fmtCoord(r), fmtCoord(r), "0 1 0", fmtCoord(center[0]-r), fmtCoord(center[1]), "Z")

		case "gr_arc":
			drawing, _ := parseArc(prim, transform{})
			arc, ok := drawing.(*pcb.Arc)
			if !ok {
				continue
			}
			sa := arc.Startangle * math.Pi / 180
			ea := arc.Endangle * math.Pi / 180
			sx := arc.Start[0] + arc.Radius*math.Cos(sa)
			sy := arc.Start[1] + arc.Radius*math.Sin(sa)
			ex := arc.Start[0] + arc.Radius*math.Cos(ea)
			ey := arc.Start[1] + arc.Radius*math.Sin(ea)
			large := "0"
			if arc.Endangle-arc.Startangle > 180 {
				large = "1"
			}
			emit("M", fmtCoord(sx), fmtCoord(sy),
				"A", fmtCoord(arc.Radius), fmtCoord(arc.Radius), "0", large, "1",
				fmtCoord(ex), fmtCoord(ey))

		case "gr_poly", "fp_poly":
			points := ptsOf(prim, transform{})
			if len(points) == 0 {
				continue
			}
			emit("M", fmtCoord(points[0][0]), fmtCoord(points[0][1]))
			for _, pt := range points[1:] {
				emit("L", fmtCoord(pt[0]), fmtCoord(pt[1]))
			}
			emit("Z")
		}
	}
	return sb.String()
}
