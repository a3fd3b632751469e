package kicad

import (
	"math"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// transform is the footprint placement applied to footprint-local
// coordinates. The zero value is the identity (board-level items).
type transform struct {
	X     float64
	Y     float64
	Angle float64
}

// apply rotates a local point by the footprint angle and translates it to
// board coordinates. KiCad rotation is counter-clockwise before the Y-down
// flip, so the screen-space rotation negates the angle.
func (t transform) apply(lx, ly float64) (float64, float64) {
	if t.Angle != 0 {
		rad := -t.Angle * math.Pi / 180
		cos, sin := math.Cos(rad), math.Sin(rad)
		lx, ly = lx*cos-ly*sin, lx*sin+ly*cos
	}
	return lx + t.X, ly + t.Y
}

func (t transform) applyPoint(p pcb.Point) pcb.Point {
	x, y := t.apply(p[0], p[1])
	return pcb.Point{x, y}
}

// layerNameOf reads the (layer ...) child of a graphic node.
func layerNameOf(node *sexp.Node) string {
	return node.ValueOf("layer")
}

// xyOf reads (tag X Y) as a point.
func xyOf(node *sexp.Node, tag string) (pcb.Point, bool) {
	child := node.Find(tag)
	if child == nil {
		return pcb.Point{}, false
	}
	x, okX := child.FloatAt(0)
	y, okY := child.FloatAt(1)
	if !okX || !okY {
		return pcb.Point{}, false
	}
	return pcb.Point{x, y}, true
}

// widthOf reads the stroke width; KiCad 7+ nests it under (stroke ...).
func widthOf(node *sexp.Node) float64 {
	if w, ok := node.FloatOf("width"); ok {
		return w
	}
	if strokeNode := node.Find("stroke"); strokeNode != nil {
		if w, ok := strokeNode.FloatOf("width"); ok {
			return w
		}
	}
	return 0
}

// filledOf reads the (fill ...) flag. The returned pointer is nil when the
// node carries no fill information.
func filledOf(node *sexp.Node) *int {
	fill := node.Find("fill")
	if fill == nil {
		return nil
	}
	v := 0
	// KiCad 9 writes (fill yes); earlier versions (fill (type solid)).
	if fill.ValueOf("type") == "solid" || fill.AtomAt(0) == "yes" || fill.AtomAt(0) == "solid" {
		v = 1
	}
	return &v
}

// ptsOf collects the (pts (xy ..) ..) list of a polygon or curve node,
// transformed to board coordinates.
func ptsOf(node *sexp.Node, t transform) []pcb.Point {
	pts := node.Find("pts")
	if pts == nil {
		return nil
	}
	var points []pcb.Point
	for _, xy := range pts.FindAll("xy") {
		x, okX := xy.FloatAt(0)
		y, okY := xy.FloatAt(1)
		if !okX || !okY {
			continue
		}
		bx, by := t.apply(x, y)
		points = append(points, pcb.Point{bx, by})
	}
	return points
}

// parseGraphicItem converts one gr_*/fp_* node into a drawing. Returns
// (nil, "") for nodes that are not graphics.
func (d *document) parseGraphicItem(node *sexp.Node, t transform) (pcb.Drawing, string) {
	switch node.Tag() {
	case "gr_line", "fp_line":
		return parseLine(node, t)
	case "gr_rect", "fp_rect":
		return parseRect(node, t)
	case "gr_circle", "fp_circle":
		return parseCircle(node, t)
	case "gr_arc", "fp_arc":
		return parseArc(node, t)
	case "gr_curve", "fp_curve", "bezier":
		return parseCurve(node, t)
	case "gr_poly", "fp_poly":
		return parsePoly(node, t)
	case "gr_text":
		text, layer := d.parseText(node, "gr_text", t)
		if text == nil {
			return nil, ""
		}
		return text, layer
	}
	return nil, ""
}

func parseLine(node *sexp.Node, t transform) (pcb.Drawing, string) {
	start, okS := xyOf(node, "start")
	end, okE := xyOf(node, "end")
	if !okS || !okE {
		return nil, ""
	}
	return &pcb.Segment{
		Start: t.applyPoint(start),
		End:   t.applyPoint(end),
		Width: widthOf(node),
	}, layerNameOf(node)
}

func parseRect(node *sexp.Node, t transform) (pcb.Drawing, string) {
	start, okS := xyOf(node, "start")
	end, okE := xyOf(node, "end")
	if !okS || !okE {
		return nil, ""
	}
	return &pcb.Rect{
		Start: t.applyPoint(start),
		End:   t.applyPoint(end),
		Width: widthOf(node),
	}, layerNameOf(node)
}

func parseCircle(node *sexp.Node, t transform) (pcb.Drawing, string) {
	center, okC := xyOf(node, "center")
	if !okC {
		center, okC = xyOf(node, "start")
	}
	end, okE := xyOf(node, "end")
	if !okC || !okE {
		return nil, ""
	}
	c := t.applyPoint(center)
	e := t.applyPoint(end)
	return &pcb.Circle{
		Start:  c,
		Radius: math.Hypot(e[0]-c[0], e[1]-c[1]),
		Width:  widthOf(node),
		Filled: filledOf(node),
	}, layerNameOf(node)
}

// parseArc handles both the KiCad 7+ three-point form (start/mid/end) and
// the legacy center+endpoint+angle form.
func parseArc(node *sexp.Node, t transform) (pcb.Drawing, string) {
	layer := layerNameOf(node)
	width := widthOf(node)

	if mid, okM := xyOf(node, "mid"); okM {
		start, okS := xyOf(node, "start")
		end, okE := xyOf(node, "end")
		if !okS || !okE {
			return nil, ""
		}
		center, radius, sa, ea, ok := arcFromThreePoints(
			t.applyPoint(start), t.applyPoint(mid), t.applyPoint(end))
		if !ok {
			// Degenerate arc: fall back to a straight segment.
			return &pcb.Segment{Start: t.applyPoint(start), End: t.applyPoint(end), Width: width}, layer
		}
		sa, ea = pcb.NormalizeArcAngles(sa, ea)
		return &pcb.Arc{Start: center, Radius: radius, Startangle: sa, Endangle: ea, Width: width}, layer
	}

	center, okC := xyOf(node, "start")
	endpoint, okE := xyOf(node, "end")
	if !okC || !okE {
		return nil, ""
	}
	angle, _ := node.FloatOf("angle")
	c := t.applyPoint(center)
	e := t.applyPoint(endpoint)
	radius := math.Hypot(e[0]-c[0], e[1]-c[1])
	sa := math.Atan2(e[1]-c[1], e[0]-c[0]) * 180 / math.Pi
	sa, ea := pcb.NormalizeArcAngles(sa, sa+angle)
	return &pcb.Arc{Start: c, Radius: radius, Startangle: sa, Endangle: ea, Width: width}, layer
}

func parseCurve(node *sexp.Node, t transform) (pcb.Drawing, string) {
	points := ptsOf(node, t)
	if len(points) < 4 {
		return nil, ""
	}
	return &pcb.Curve{
		Start: points[0],
		CPA:   points[1],
		CPB:   points[2],
		End:   points[3],
		Width: widthOf(node),
	}, layerNameOf(node)
}

func parsePoly(node *sexp.Node, t transform) (pcb.Drawing, string) {
	points := ptsOf(node, t)
	if len(points) == 0 {
		return nil, ""
	}
	filled := filledOf(node)
	if filled == nil {
		one := 1 // polygons default to filled
		filled = &one
	}
	return &pcb.Polygon{
		Polygons: []pcb.Contour{pcb.Contour(points)},
		Filled:   filled,
		Width:    widthOf(node),
	}, layerNameOf(node)
}

// arcFromThreePoints computes the circumcircle of three points and the
// start/end angles of the arc through them.
func arcFromThreePoints(p1, p2, p3 pcb.Point) (center pcb.Point, radius, startAngle, endAngle float64, ok bool) {
	ax, ay := p1[0], p1[1]
	bx, by := p2[0], p2[1]
	cx, cy := p3[0], p3[1]

	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if math.Abs(d) < 1e-10 {
		return pcb.Point{}, 0, 0, 0, false
	}

	ux := ((ax*ax+ay*ay)*(by-cy) + (bx*bx+by*by)*(cy-ay) + (cx*cx+cy*cy)*(ay-by)) / d
	uy := ((ax*ax+ay*ay)*(cx-bx) + (bx*bx+by*by)*(ax-cx) + (cx*cx+cy*cy)*(bx-ax)) / d

	radius = math.Hypot(ax-ux, ay-uy)
	startAngle = math.Atan2(ay-uy, ax-ux) * 180 / math.Pi
	endAngle = math.Atan2(cy-uy, cx-ux) * 180 / math.Pi
	return pcb.Point{ux, uy}, radius, startAngle, endAngle, true
}
