package pcb

import (
	"encoding/json"
	"sort"
)

// JSON serialization for the drawing and track variants. Key order follows
// the canonical IR field order and scalar floats are rounded to 6 decimals.

func (d *Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string  `json:"type"`
		Start Point   `json:"start"`
		End   Point   `json:"end"`
		Width float64 `json:"width"`
	}{"segment", d.Start, d.End, Round6(d.Width)})
}

func (d *Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string  `json:"type"`
		Start Point   `json:"start"`
		End   Point   `json:"end"`
		Width float64 `json:"width"`
	}{"rect", d.Start, d.End, Round6(d.Width)})
}

func (d *Circle) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string  `json:"type"`
		Start  Point   `json:"start"`
		Radius float64 `json:"radius"`
		Width  float64 `json:"width"`
		Filled *int    `json:"filled,omitempty"`
	}{"circle", d.Start, Round6(d.Radius), Round6(d.Width), d.Filled})
}

func (d *Arc) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       string  `json:"type"`
		Start      Point   `json:"start"`
		Radius     float64 `json:"radius"`
		Startangle float64 `json:"startangle"`
		Endangle   float64 `json:"endangle"`
		Width      float64 `json:"width"`
	}{"arc", d.Start, Round6(d.Radius), Round6(d.Startangle), Round6(d.Endangle), Round6(d.Width)})
}

func (d *SvgArc) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string  `json:"type"`
		Svgpath string  `json:"svgpath"`
		Width   float64 `json:"width"`
	}{"arc", d.Svgpath, Round6(d.Width)})
}

func (d *Curve) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string  `json:"type"`
		Start Point   `json:"start"`
		End   Point   `json:"end"`
		CPA   Point   `json:"cpa"`
		CPB   Point   `json:"cpb"`
		Width float64 `json:"width"`
	}{"curve", d.Start, d.End, d.CPA, d.CPB, Round6(d.Width)})
}

func (d *Polygon) MarshalJSON() ([]byte, error) {
	polys := d.Polygons
	if polys == nil {
		polys = []Contour{}
	}
	return json.Marshal(struct {
		Type     string    `json:"type"`
		Pos      Point     `json:"pos"`
		Angle    float64   `json:"angle"`
		Polygons []Contour `json:"polygons"`
		Filled   *int      `json:"filled,omitempty"`
		Width    float64   `json:"width"`
	}{"polygon", d.Pos, Round6(d.Angle), polys, d.Filled, Round6(d.Width)})
}

func (d *SvgPolygon) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string  `json:"type"`
		Svgpath string  `json:"svgpath"`
		Filled  *int    `json:"filled,omitempty"`
		Width   float64 `json:"width"`
	}{"polygon", d.Svgpath, d.Filled, Round6(d.Width)})
}

func (d *Text) MarshalJSON() ([]byte, error) {
	type textJSON struct {
		Svgpath   string   `json:"svgpath,omitempty"`
		Thickness *float64 `json:"thickness,omitempty"`
		Ref       int      `json:"ref,omitempty"`
		Val       int      `json:"val,omitempty"`
		Pos       *Point   `json:"pos,omitempty"`
		Text      *string  `json:"text,omitempty"`
		Height    *float64 `json:"height,omitempty"`
		Width     *float64 `json:"width,omitempty"`
		Justify   *[2]int  `json:"justify,omitempty"`
		Angle     *float64 `json:"angle,omitempty"`
		Attr      []string `json:"attr,omitempty"`
	}
	out := textJSON{Ref: d.Ref, Val: d.Val, Attr: d.Attr}
	thickness := Round6(d.Thickness)
	if d.Svgpath != "" {
		out.Svgpath = d.Svgpath
		out.Thickness = &thickness
		return json.Marshal(out)
	}
	out.Thickness = &thickness
	out.Pos = d.Pos
	text := d.Text
	out.Text = &text
	height := Round6(d.Height)
	out.Height = &height
	width := Round6(d.Width)
	out.Width = &width
	out.Justify = d.Justify
	angle := Round6(d.Angle)
	out.Angle = &angle
	return json.Marshal(out)
}

func (t *TrackSegment) MarshalJSON() ([]byte, error) {
	var drill *float64
	if t.Drillsize != nil {
		d := Round6(*t.Drillsize)
		drill = &d
	}
	return json.Marshal(struct {
		Start     Point    `json:"start"`
		End       Point    `json:"end"`
		Width     float64  `json:"width"`
		Net       string   `json:"net,omitempty"`
		Drillsize *float64 `json:"drillsize,omitempty"`
	}{t.Start, t.End, Round6(t.Width), t.Net, drill})
}

func (t *TrackArc) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Center     Point   `json:"center"`
		Startangle float64 `json:"startangle"`
		Endangle   float64 `json:"endangle"`
		Radius     float64 `json:"radius"`
		Width      float64 `json:"width"`
		Net        string  `json:"net,omitempty"`
	}{t.Center, Round6(t.Startangle), Round6(t.Endangle), Round6(t.Radius), Round6(t.Width), t.Net})
}

// marshalLayerObject emits {"F": ..., "B": ..., <inner>...} with inner layer
// keys in sorted order so output is deterministic.
func marshalLayerObject(front, back any, inner map[string]any) ([]byte, error) {
	buf := []byte(`{"F":`)
	fb, err := json.Marshal(front)
	if err != nil {
		return nil, err
	}
	buf = append(buf, fb...)
	buf = append(buf, []byte(`,"B":`)...)
	bb, err := json.Marshal(back)
	if err != nil {
		return nil, err
	}
	buf = append(buf, bb...)
	keys := make([]string, 0, len(inner))
	for k := range inner {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(inner[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, ',')
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	return append(buf, '}'), nil
}

func (m *TrackMap) MarshalJSON() ([]byte, error) {
	front := m.F
	if front == nil {
		front = []Track{}
	}
	back := m.B
	if back == nil {
		back = []Track{}
	}
	inner := make(map[string]any, len(m.Inner))
	for k, v := range m.Inner {
		inner[k] = v
	}
	return marshalLayerObject(front, back, inner)
}

func (m *ZoneMap) MarshalJSON() ([]byte, error) {
	front := m.F
	if front == nil {
		front = []*Zone{}
	}
	back := m.B
	if back == nil {
		back = []*Zone{}
	}
	inner := make(map[string]any, len(m.Inner))
	for k, v := range m.Inner {
		inner[k] = v
	}
	return marshalLayerObject(front, back, inner)
}

func (s SideDrawings) MarshalJSON() ([]byte, error) {
	front := s.F
	if front == nil {
		front = []Drawing{}
	}
	back := s.B
	if back == nil {
		back = []Drawing{}
	}
	return json.Marshal(struct {
		F []Drawing `json:"F"`
		B []Drawing `json:"B"`
	}{front, back})
}

func (b FootprintBBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Pos    Point   `json:"pos"`
		Relpos Point   `json:"relpos"`
		Size   Point   `json:"size"`
		Angle  float64 `json:"angle"`
	}{b.Pos, b.Relpos, b.Size, Round6(b.Angle)})
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round6(*v)
	return &r
}

func (p *Pad) MarshalJSON() ([]byte, error) {
	type alias Pad
	out := alias(*p)
	out.Angle = roundPtr(p.Angle)
	out.Radius = roundPtr(p.Radius)
	out.Chamfratio = roundPtr(p.Chamfratio)
	return json.Marshal(out)
}

func (z *Zone) MarshalJSON() ([]byte, error) {
	type alias Zone
	out := alias(*z)
	out.Width = roundPtr(z.Width)
	return json.Marshal(out)
}

func (f *Footprint) MarshalJSON() ([]byte, error) {
	type alias Footprint
	out := alias(*f)
	if out.Pads == nil {
		out.Pads = []*Pad{}
	}
	if out.Drawings == nil {
		out.Drawings = []LayerDrawing{}
	}
	return json.Marshal(out)
}

// MarshalJSON guards against nil top-level slices so the emitted schema is
// stable regardless of which parser produced the data.
func (p *PcbData) MarshalJSON() ([]byte, error) {
	type alias PcbData
	out := alias(*p)
	if out.Edges == nil {
		out.Edges = []Drawing{}
	}
	if out.Footprints == nil {
		out.Footprints = []*Footprint{}
	}
	return json.Marshal(out)
}
