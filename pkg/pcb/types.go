// Package pcb defines the tool-independent intermediate representation
// emitted by every format parser. All coordinates are millimetres with the
// Y axis pointing down and the origin at the top-left; angles are degrees.
// Float fields are rounded to 6 decimal places before serialization so that
// golden JSON snapshots stay stable across parser changes.
package pcb

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// Round6 rounds a value to 6 decimal places.
func Round6(v float64) float64 {
	r := math.Round(v*1e6) / 1e6
	if r == 0 {
		return 0 // normalize -0
	}
	return r
}

// Point is an (x, y) coordinate pair in millimetres.
type Point [2]float64

// MarshalJSON rounds both coordinates before emission.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{Round6(p[0]), Round6(p[1])})
}

// Polyline is an ordered list of points.
type Polyline []Point

// Contour is a closed polygon contour; the first and last points need not
// be identical.
type Contour []Point

// BBox is an axis-aligned bounding box.
type BBox struct {
	MinX float64 `json:"minx"`
	MinY float64 `json:"miny"`
	MaxX float64 `json:"maxx"`
	MaxY float64 `json:"maxy"`
}

// EmptyBBox returns a bounding box that contains nothing.
func EmptyBBox() BBox {
	return BBox{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

// IsEmpty reports whether no point has been added to the box.
func (b BBox) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Expand grows the box to include the point (x, y).
func (b *BBox) Expand(x, y float64) {
	b.MinX = math.Min(b.MinX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxX = math.Max(b.MaxX, x)
	b.MaxY = math.Max(b.MaxY, y)
}

// MarshalJSON rounds all four extents.
func (b BBox) MarshalJSON() ([]byte, error) {
	type bbox struct {
		MinX float64 `json:"minx"`
		MinY float64 `json:"miny"`
		MaxX float64 `json:"maxx"`
		MaxY float64 `json:"maxy"`
	}
	return json.Marshal(bbox{Round6(b.MinX), Round6(b.MinY), Round6(b.MaxX), Round6(b.MaxY)})
}

// Drawing is one graphical primitive on a board layer. Concrete types are
// Segment, Rect, Circle, Arc, SvgArc, Curve, Polygon, SvgPolygon and Text;
// each serializes to the JSON shape the viewer consumes.
type Drawing interface {
	drawing()
	expandBBox(b *BBox)
}

// Segment is a straight line.
type Segment struct {
	Start Point
	End   Point
	Width float64
}

// Rect is an outline rectangle given by two opposite corners.
type Rect struct {
	Start Point
	End   Point
	Width float64
}

// Circle is a circle outline, optionally filled.
type Circle struct {
	Start  Point // center
	Radius float64
	Width  float64
	Filled *int
}

// Arc is a circular arc around Start (the center). The sweep runs
// counter-clockwise from Startangle to Endangle in IR space, and
// Endangle >= Startangle always holds.
type Arc struct {
	Start      Point // center
	Radius     float64
	Startangle float64
	Endangle   float64
	Width      float64
}

// SvgArc is an arc expressed as an SVG path when center/sweep form is not
// available in the source.
type SvgArc struct {
	Svgpath string
	Width   float64
}

// Curve is a cubic Bezier.
type Curve struct {
	Start Point
	End   Point
	CPA   Point
	CPB   Point
	Width float64
}

// Polygon is a multi-contour polygon with even-odd fill, positioned at Pos
// and rotated by Angle.
type Polygon struct {
	Pos      Point
	Angle    float64
	Polygons []Contour
	Filled   *int
	Width    float64
}

// SvgPolygon is a polygon expressed as an SVG path.
type SvgPolygon struct {
	Svgpath string
	Filled  *int
	Width   float64
}

// Text is a text drawing. The SVG-path form carries Svgpath and Thickness;
// the stroke-font form carries Pos/Text/Height/Width/Justify and renders
// through the bundled stroke font. Ref and Val mark reference-designator
// and value text.
type Text struct {
	Svgpath   string
	Thickness float64
	Ref       int
	Val       int
	Pos       *Point
	Text      string
	Height    float64
	Width     float64
	Justify   *[2]int
	Angle     float64
	Attr      []string
}

func (*Segment) drawing()    {}
func (*Rect) drawing()       {}
func (*Circle) drawing()     {}
func (*Arc) drawing()        {}
func (*SvgArc) drawing()     {}
func (*Curve) drawing()      {}
func (*Polygon) drawing()    {}
func (*SvgPolygon) drawing() {}
func (*Text) drawing()       {}

func (d *Segment) expandBBox(b *BBox) {
	b.Expand(d.Start[0], d.Start[1])
	b.Expand(d.End[0], d.End[1])
}

func (d *Rect) expandBBox(b *BBox) {
	b.Expand(d.Start[0], d.Start[1])
	b.Expand(d.End[0], d.End[1])
}

func (d *Circle) expandBBox(b *BBox) {
	b.Expand(d.Start[0]-d.Radius, d.Start[1]-d.Radius)
	b.Expand(d.Start[0]+d.Radius, d.Start[1]+d.Radius)
}

func (d *Arc) expandBBox(b *BBox) {
	// Conservative: the full circle around the center.
	b.Expand(d.Start[0]-d.Radius, d.Start[1]-d.Radius)
	b.Expand(d.Start[0]+d.Radius, d.Start[1]+d.Radius)
}

func (d *SvgArc) expandBBox(*BBox) {}

func (d *Curve) expandBBox(b *BBox) {
	b.Expand(d.Start[0], d.Start[1])
	b.Expand(d.End[0], d.End[1])
	b.Expand(d.CPA[0], d.CPA[1])
	b.Expand(d.CPB[0], d.CPB[1])
}

func (d *Polygon) expandBBox(b *BBox) {
	for _, contour := range d.Polygons {
		for _, pt := range contour {
			b.Expand(pt[0]+d.Pos[0], pt[1]+d.Pos[1])
		}
	}
}

func (d *SvgPolygon) expandBBox(*BBox) {}

func (d *Text) expandBBox(b *BBox) {
	if d.Pos != nil {
		b.Expand((*d.Pos)[0], (*d.Pos)[1])
	}
}

// DrawingsBBox computes the tight axis-aligned bounding box of a drawing
// list. Returns a default 100x100 box when the list contributes nothing,
// so that a board with no edge layer still renders.
func DrawingsBBox(drawings []Drawing) BBox {
	bbox := EmptyBBox()
	for _, d := range drawings {
		d.expandBBox(&bbox)
	}
	if bbox.IsEmpty() {
		return BBox{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	}
	return bbox
}

// NormalizeArcAngles returns (start, end) with end >= start, preserving the
// counter-clockwise sweep the IR requires.
func NormalizeArcAngles(start, end float64) (float64, float64) {
	for end < start {
		end += 360
	}
	return start, end
}

// LayerDrawing pairs a drawing with the board side it sits on.
type LayerDrawing struct {
	Layer   string  `json:"layer"`
	Drawing Drawing `json:"drawing"`
}

// SideDrawings splits drawings between the front and back of the board.
type SideDrawings struct {
	F []Drawing `json:"F"`
	B []Drawing `json:"B"`
}

// Drawings groups the non-copper board-level graphics.
type Drawings struct {
	Silkscreen SideDrawings `json:"silkscreen"`
	Fabrication SideDrawings `json:"fabrication"`
}

// Pad is a conductive landing site of a footprint. Through-hole pads list
// both "F" and "B" in Layers; SMD pads list exactly one side.
type Pad struct {
	Layers     []string  `json:"layers"`
	Pos        Point     `json:"pos"`
	Size       Point     `json:"size"`
	Shape      string    `json:"shape"`
	Type       string    `json:"type"`
	Angle      *float64  `json:"angle,omitempty"`
	Pin1       int       `json:"pin1,omitempty"`
	Net        string    `json:"net,omitempty"`
	Offset     *Point    `json:"offset,omitempty"`
	Radius     *float64  `json:"radius,omitempty"`
	Chamfpos   *int      `json:"chamfpos,omitempty"`
	Chamfratio *float64  `json:"chamfratio,omitempty"`
	Drillshape string    `json:"drillshape,omitempty"`
	Drillsize  *Point    `json:"drillsize,omitempty"`
	Svgpath    string    `json:"svgpath,omitempty"`
	Polygons   []Contour `json:"polygons,omitempty"`
}

// FootprintBBox is an oriented bounding box: Pos is the rotation origin,
// Relpos the offset of the box corner relative to Pos, Size its extent and
// Angle the rotation in degrees.
type FootprintBBox struct {
	Pos    Point   `json:"pos"`
	Relpos Point   `json:"relpos"`
	Size   Point   `json:"size"`
	Angle  float64 `json:"angle"`
}

// Footprint is one placed component pattern.
type Footprint struct {
	Ref      string         `json:"ref"`
	Center   Point          `json:"center"`
	BBox     FootprintBBox  `json:"bbox"`
	Pads     []*Pad         `json:"pads"`
	Drawings []LayerDrawing `json:"drawings"`
	Layer    string         `json:"layer"`
}

// Track is one copper routing primitive: TrackSegment (straight segments
// and vias) or TrackArc.
type Track interface {
	track()
}

// TrackSegment is a straight copper segment. A via is a segment with
// Start == End and a Drillsize.
type TrackSegment struct {
	Start     Point    `json:"start"`
	End       Point    `json:"end"`
	Width     float64  `json:"width"`
	Net       string   `json:"net,omitempty"`
	Drillsize *float64 `json:"drillsize,omitempty"`
}

// TrackArc is an arc-shaped copper segment.
type TrackArc struct {
	Center     Point   `json:"center"`
	Startangle float64 `json:"startangle"`
	Endangle   float64 `json:"endangle"`
	Radius     float64 `json:"radius"`
	Width      float64 `json:"width"`
	Net        string  `json:"net,omitempty"`
}

func (*TrackSegment) track() {}
func (*TrackArc) track()     {}

// TrackMap holds tracks per copper layer. Inner layers are keyed by their
// source layer name and flattened next to F and B in JSON.
type TrackMap struct {
	F     []Track
	B     []Track
	Inner map[string][]Track
}

// ZoneMap holds zones per copper layer, mirroring TrackMap.
type ZoneMap struct {
	F     []*Zone
	B     []*Zone
	Inner map[string][]*Zone
}

// Zone is a copper area. Either Polygons (pre-computed fill outlines) or
// Svgpath with a fill rule is set.
type Zone struct {
	Polygons []Contour `json:"polygons,omitempty"`
	Svgpath  string    `json:"svgpath,omitempty"`
	Width    *float64  `json:"width,omitempty"`
	Net      string    `json:"net,omitempty"`
	Fillrule string    `json:"fillrule,omitempty"`
}

// Metadata carries the board title block.
type Metadata struct {
	Title    string `json:"title"`
	Revision string `json:"revision"`
	Company  string `json:"company"`
	Date     string `json:"date"`
}

// Glyph is one stroke-font character: W is the advance width, L the list of
// polylines tracing the character.
type Glyph struct {
	W float64    `json:"w"`
	L []Polyline `json:"l"`
}

// BomRef is one (reference designator, footprint index) pair, serialized as
// a two-element array.
type BomRef struct {
	Ref   string
	Index int
}

// MarshalJSON emits ["R1", 0] style tuples.
func (b BomRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{b.Ref, b.Index})
}

// BomFields maps a footprint index to its projected field values. Keys are
// stringified indices sorted numerically on output.
type BomFields map[string][]string

// MarshalJSON emits entries in ascending numeric key order.
func (f BomFields) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})
	buf := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(f[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	return append(buf, '}'), nil
}

// BomData is the grouped bill of materials. Both holds every non-skipped
// group; F and B filter group members by side.
type BomData struct {
	Both    [][]BomRef `json:"both"`
	F       [][]BomRef `json:"F"`
	B       [][]BomRef `json:"B"`
	Skipped []int      `json:"skipped"`
	Fields  BomFields  `json:"fields"`
}

// PcbData is the root of the IR. It is immutable after extraction; callers
// serialize it and discard it.
type PcbData struct {
	EdgesBBox  BBox                 `json:"edges_bbox"`
	Edges      []Drawing            `json:"edges"`
	Drawings   Drawings             `json:"drawings"`
	Footprints []*Footprint         `json:"footprints"`
	Metadata   Metadata             `json:"metadata"`
	Bom        *BomData             `json:"bom,omitempty"`
	Tracks     *TrackMap            `json:"tracks,omitempty"`
	Zones      *ZoneMap             `json:"zones,omitempty"`
	Nets       []string             `json:"nets,omitempty"`
	FontData   map[string]Glyph     `json:"font_data,omitempty"`
}

// Side is a board side used while assembling footprints.
type Side string

// Board sides.
const (
	SideFront Side = "F"
	SideBack  Side = "B"
)
