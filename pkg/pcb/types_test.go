package pcb

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRound6(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.23456789, 1.234568},
		{-1.23456749, -1.234567},
		{0.0000001, 0},
		{-0.0000001, 0},
		{100.5, 100.5},
	}
	for _, tt := range tests {
		if got := Round6(tt.in); got != tt.want {
			t.Errorf("Round6(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBBoxExpand(t *testing.T) {
	bbox := EmptyBBox()
	if !bbox.IsEmpty() {
		t.Error("EmptyBBox().IsEmpty() = false")
	}
	bbox.Expand(1, 2)
	bbox.Expand(-3, 7)
	want := BBox{MinX: -3, MinY: 2, MaxX: 1, MaxY: 7}
	if diff := cmp.Diff(want, bbox); diff != "" {
		t.Errorf("bbox (-want +got):\n%s", diff)
	}
}

func TestNormalizeArcAngles(t *testing.T) {
	start, end := NormalizeArcAngles(90, 30)
	if end < start {
		t.Errorf("NormalizeArcAngles(90, 30) = %v..%v, end < start", start, end)
	}
	if end-start != 300 {
		t.Errorf("sweep = %v, want 300", end-start)
	}
}

func TestDrawingJSONShapes(t *testing.T) {
	one := 1
	tests := []struct {
		name    string
		drawing Drawing
		want    string
	}{
		{
			"segment",
			&Segment{Start: Point{1, 2}, End: Point{3, 4}, Width: 0.1},
			`{"type":"segment","start":[1,2],"end":[3,4],"width":0.1}`,
		},
		{
			"circle rounds to 6 decimals",
			&Circle{Start: Point{0, 0}, Radius: 1.23456789, Width: 0.1, Filled: &one},
			`{"type":"circle","start":[0,0],"radius":1.234568,"width":0.1,"filled":1}`,
		},
		{
			"arc",
			&Arc{Start: Point{5, 5}, Radius: 2, Startangle: 0, Endangle: 90, Width: 0.2},
			`{"type":"arc","start":[5,5],"radius":2,"startangle":0,"endangle":90,"width":0.2}`,
		},
		{
			"polygon",
			&Polygon{Pos: Point{0, 0}, Polygons: []Contour{{{0, 0}, {1, 0}, {1, 1}}}, Filled: &one},
			`{"type":"polygon","pos":[0,0],"angle":0,"polygons":[[[0,0],[1,0],[1,1]]],"filled":1,"width":0}`,
		},
		{
			"svg polygon",
			&SvgPolygon{Svgpath: "M 0 0 L 1 1 Z", Filled: &one, Width: 0.05},
			`{"type":"polygon","svgpath":"M 0 0 L 1 1 Z","filled":1,"width":0.05}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.drawing)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("JSON = %s\nwant   %s", got, tt.want)
			}
		})
	}
}

func TestTextJSONForms(t *testing.T) {
	pos := Point{1, 2}
	justify := [2]int{-1, 0}
	stroke := &Text{
		Thickness: 0.15,
		Ref:       1,
		Pos:       &pos,
		Text:      "R1",
		Height:    1,
		Width:     1,
		Justify:   &justify,
		Angle:     0,
	}
	got, err := json.Marshal(stroke)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"thickness":0.15,"ref":1,"pos":[1,2],"text":"R1","height":1,"width":1,"justify":[-1,0],"angle":0}`
	if string(got) != want {
		t.Errorf("stroke text JSON = %s\nwant %s", got, want)
	}

	path := &Text{Svgpath: "M 0 0", Thickness: 0.2, Val: 1}
	got, err = json.Marshal(path)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want = `{"svgpath":"M 0 0","thickness":0.2,"val":1}`
	if string(got) != want {
		t.Errorf("svgpath text JSON = %s\nwant %s", got, want)
	}
}

func TestPadJSONFieldOrder(t *testing.T) {
	angle := 90.0
	radius := 0.25
	drill := Point{0.8, 0.8}
	pad := &Pad{
		Layers:     []string{"F", "B"},
		Pos:        Point{1, 2},
		Size:       Point{1.6, 1.6},
		Shape:      "roundrect",
		Type:       "th",
		Angle:      &angle,
		Pin1:       1,
		Net:        "GND",
		Radius:     &radius,
		Drillshape: "circle",
		Drillsize:  &drill,
	}
	got, err := json.Marshal(pad)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"layers":["F","B"],"pos":[1,2],"size":[1.6,1.6],"shape":"roundrect",` +
		`"type":"th","angle":90,"pin1":1,"net":"GND","radius":0.25,` +
		`"drillshape":"circle","drillsize":[0.8,0.8]}`
	if string(got) != want {
		t.Errorf("pad JSON = %s\nwant %s", got, want)
	}
}

func TestBomFieldsNumericKeyOrder(t *testing.T) {
	fields := BomFields{
		"10": {"a"},
		"2":  {"b"},
		"1":  {"c"},
	}
	got, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"1":["c"],"2":["b"],"10":["a"]}`
	if string(got) != want {
		t.Errorf("fields JSON = %s, want %s", got, want)
	}
}

func TestTrackMapInnerLayers(t *testing.T) {
	m := &TrackMap{
		F:     []Track{&TrackSegment{Start: Point{0, 0}, End: Point{1, 0}, Width: 0.2}},
		Inner: map[string][]Track{"In1.Cu": {}},
	}
	got, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"F":[{"start":[0,0],"end":[1,0],"width":0.2}],"B":[],"In1.Cu":[]}`
	if string(got) != want {
		t.Errorf("track map JSON = %s\nwant %s", got, want)
	}
}

// Serialization is stable: marshal, reparse generically, marshal again.
func TestJSONRoundTripStable(t *testing.T) {
	one := 1
	data := &PcbData{
		EdgesBBox: BBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
		Edges: []Drawing{
			&Segment{Start: Point{0, 0}, End: Point{10, 0}, Width: 0.1},
			&Circle{Start: Point{5, 5}, Radius: 2.5, Width: 0.1, Filled: &one},
		},
		Footprints: []*Footprint{{
			Ref:    "R1",
			Center: Point{5, 5},
			BBox:   FootprintBBox{Pos: Point{5, 5}, Relpos: Point{-1, -1}, Size: Point{2, 2}, Angle: 90},
			Pads: []*Pad{{
				Layers: []string{"F"},
				Pos:    Point{5, 5},
				Size:   Point{1, 1},
				Shape:  "rect",
				Type:   "smd",
				Net:    "GND",
			}},
			Layer: "F",
		}},
		Metadata: Metadata{Title: "t"},
	}

	first, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var generic any
	if err := json.Unmarshal(first, &generic); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	second, err := json.Marshal(generic)
	if err != nil {
		t.Fatalf("re-Marshal() error: %v", err)
	}
	var generic2 any
	if err := json.Unmarshal(second, &generic2); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if diff := cmp.Diff(generic, generic2); diff != "" {
		t.Errorf("round-trip not value-stable (-first +second):\n%s", diff)
	}
}

// Every float in emitted JSON carries at most 6 decimal digits.
func TestFloatPrecisionInOutput(t *testing.T) {
	data := &PcbData{
		EdgesBBox: BBox{MinX: 1.0 / 3.0, MinY: 0, MaxX: 2.0 / 3.0, MaxY: 1},
		Edges: []Drawing{
			&Segment{Start: Point{1.0 / 7.0, 2.0 / 7.0}, End: Point{3.0 / 7.0, 4.0 / 7.0}, Width: 1.0 / 9.0},
		},
		Metadata: Metadata{},
	}
	out, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	tooPrecise := regexp.MustCompile(`\d\.\d{7,}`)
	if m := tooPrecise.Find(out); m != nil {
		t.Errorf("output contains float with more than 6 decimals: %s", m)
	}
}
