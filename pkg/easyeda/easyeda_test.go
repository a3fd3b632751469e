package easyeda

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// canvas with origin (400, 300) at fields 16/17.
const testCanvas = "CA~1000~1000~#000000~yes~#FFFFFF~10~1000~1000~line~1~mil~1~45~visible~0.5~400~300~0~yes"

func boardJSON(shapes string) string {
	return `{"docType":"5","canvas":"` + testCanvas + `","shape":[` + shapes + `]}`
}

func TestIsBoardJSON(t *testing.T) {
	if !IsBoardJSON([]byte(boardJSON(``))) {
		t.Error("IsBoardJSON() = false for a board document")
	}
	if IsBoardJSON([]byte(`{"name":"not a board"}`)) {
		t.Error("IsBoardJSON() = true for a plain JSON object")
	}
	if IsBoardJSON([]byte("TRACK~1~1")) {
		t.Error("IsBoardJSON() = true for non-JSON input")
	}
}

// Two pads on layer 1 plus one track on layer 1: both pads come out on the
// front side, the track only with IncludeTracks.
func TestPadsAndTrack(t *testing.T) {
	doc := boardJSON(`"PAD~ELLIPSE~410~310~6~6~1~GND~1~0~~0~gge1",` +
		`"PAD~RECT~420~310~6~6~1~~2~0~~0~gge2",` +
		`"TRACK~1~1~400 300 410 300~gge3"`)

	withoutTracks, err := Parse([]byte(doc), pcb.ExtractOptions{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if withoutTracks.Tracks != nil {
		t.Error("Tracks emitted without IncludeTracks")
	}
	if len(withoutTracks.Footprints) != 2 {
		t.Fatalf("len(Footprints) = %d, want 2", len(withoutTracks.Footprints))
	}
	for i, fp := range withoutTracks.Footprints {
		pad := fp.Pads[0]
		if diff := cmp.Diff([]string{"F"}, pad.Layers); diff != "" {
			t.Errorf("pad %d layers (-want +got):\n%s", i, diff)
		}
		if pad.Type != "smd" {
			t.Errorf("pad %d type = %q, want smd", i, pad.Type)
		}
	}
	first := withoutTracks.Footprints[0].Pads[0]
	if first.Net != "GND" {
		t.Errorf("pad 1 net = %q, want GND", first.Net)
	}
	// (410, 310) relative to origin (400, 300) is 10 mil in both axes.
	if !approx(first.Pos[0], 0.254) || !approx(first.Pos[1], 0.254) {
		t.Errorf("pad 1 pos = %v, want [0.254 0.254]", first.Pos)
	}
	if !approx(first.Size[0], 6*0.0254) {
		t.Errorf("pad 1 width = %v, want %v", first.Size[0], 6*0.0254)
	}

	withTracks, err := Parse([]byte(doc), pcb.ExtractOptions{IncludeTracks: true})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if withTracks.Tracks == nil || len(withTracks.Tracks.F) != 1 {
		t.Fatalf("Tracks.F = %v, want one segment", withTracks.Tracks)
	}
	seg := withTracks.Tracks.F[0].(*pcb.TrackSegment)
	if !approx(seg.Start[0], 0) || !approx(seg.End[0], 0.254) {
		t.Errorf("track = %v..%v", seg.Start, seg.End)
	}
}

func TestBoardOutlineTrack(t *testing.T) {
	doc := boardJSON(`"TRACK~1~10~400 300 500 300 500 400 400 400 400 300~gge1"`)
	data, err := Parse([]byte(doc), pcb.ExtractOptions{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(data.Edges) != 4 {
		t.Fatalf("len(Edges) = %d, want 4", len(data.Edges))
	}
	bbox := data.EdgesBBox
	if !approx(bbox.MinX, 0) || !approx(bbox.MaxX, 2.54) || !approx(bbox.MaxY, 2.54) {
		t.Errorf("EdgesBBox = %+v", bbox)
	}
}

func TestComponentPlacement(t *testing.T) {
	doc := boardJSON(`"LIB~400~300~package` + "`" + `R0402` + "`" + `~90~~gge4~1#@$` +
		`PAD~ELLIPSE~398~300~4~4~1~GND~1~0~~0~gge5#@$` +
		`TEXT~P~400~295~0.6~0~~3~~4.5~R1~M 0 0~~gge6"`)
	data, err := Parse([]byte(doc), pcb.ExtractOptions{IncludeNets: true})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(data.Footprints) != 1 {
		t.Fatalf("len(Footprints) = %d, want 1", len(data.Footprints))
	}
	fp := data.Footprints[0]
	if fp.Ref != "R1" {
		t.Errorf("Ref = %q, want R1", fp.Ref)
	}
	if fp.Layer != "F" {
		t.Errorf("Layer = %q, want F", fp.Layer)
	}
	if fp.BBox.Angle != 90 {
		t.Errorf("BBox.Angle = %v, want 90", fp.BBox.Angle)
	}
	if len(fp.Pads) != 1 {
		t.Fatalf("len(Pads) = %d, want 1", len(fp.Pads))
	}
	// Pad at 2 mil left of the origin, component rotated 90 degrees:
	// the pad ends up 2 mil below the origin in screen space.
	pad := fp.Pads[0]
	if !approx(pad.Pos[0], 0) || !approx(pad.Pos[1], 2*0.0254) {
		t.Errorf("pad pos = %v, want [0 0.0508]", pad.Pos)
	}
	if pad.Net != "GND" {
		t.Errorf("pad net = %q, want GND", pad.Net)
	}

	found := false
	for _, n := range data.Nets {
		if n == "GND" {
			found = true
		}
	}
	if !found {
		t.Errorf("Nets = %v, missing GND", data.Nets)
	}

	if data.Bom == nil || len(data.Bom.Both) != 1 {
		t.Fatalf("Bom = %+v", data.Bom)
	}
	if data.Bom.Fields["0"][1] != "R0402" {
		t.Errorf("bom footprint field = %v, want R0402", data.Bom.Fields["0"])
	}
}

func TestMirroredComponent(t *testing.T) {
	doc := boardJSON(`"LIB~400~300~package` + "`" + `C0603` + "`" + `~0~~gge7~1#@$` +
		`PAD~RECT~402~300~4~4~2~~1~0~~0~gge8"`)
	data, err := Parse([]byte(doc), pcb.ExtractOptions{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	fp := data.Footprints[0]
	if fp.Layer != "B" {
		t.Errorf("Layer = %q, want B for a layer-2 component", fp.Layer)
	}
	pad := fp.Pads[0]
	if diff := cmp.Diff([]string{"B"}, pad.Layers); diff != "" {
		t.Errorf("pad layers (-want +got):\n%s", diff)
	}
	// Mirror flips the local X offset.
	if !approx(pad.Pos[0], -2*0.0254) {
		t.Errorf("pad x = %v, want %v", pad.Pos[0], -2*0.0254)
	}
}

func TestThroughHolePad(t *testing.T) {
	doc := boardJSON(`"PAD~ELLIPSE~410~310~24~24~11~VCC~1~6~~0~gge9"`)
	data, err := Parse([]byte(doc), pcb.ExtractOptions{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	pad := data.Footprints[0].Pads[0]
	if pad.Type != "th" {
		t.Errorf("type = %q, want th", pad.Type)
	}
	if diff := cmp.Diff([]string{"F", "B"}, pad.Layers); diff != "" {
		t.Errorf("layers (-want +got):\n%s", diff)
	}
	// Hole radius 6 mil -> drill diameter 12 mil.
	if pad.Drillshape != "circle" || pad.Drillsize == nil || !approx((*pad.Drillsize)[0], 12*0.0254) {
		t.Errorf("drill = %q %v", pad.Drillshape, pad.Drillsize)
	}
}

func TestCopperAreaZone(t *testing.T) {
	doc := boardJSON(`"COPPERAREA~1~1~GND~M 400 300 L 500 300 L 500 400 Z~10~solid~gge10~spoke~yes"`)
	data, err := Parse([]byte(doc), pcb.ExtractOptions{IncludeTracks: true})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if data.Zones == nil || len(data.Zones.F) != 1 {
		t.Fatalf("Zones = %+v, want one front zone", data.Zones)
	}
	zone := data.Zones.F[0]
	if zone.Net != "GND" || zone.Fillrule != "evenodd" {
		t.Errorf("zone = %+v", zone)
	}
	if zone.Svgpath == "" {
		t.Error("zone svgpath is empty")
	}
}

func TestDocumentArrayForm(t *testing.T) {
	doc := `[{"docType":"1"},` + boardJSON(`"TRACK~1~10~400 300 410 300~e"`) + `]`
	data, err := Parse([]byte(doc), pcb.ExtractOptions{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(data.Edges) != 1 {
		t.Errorf("len(Edges) = %d, want 1", len(data.Edges))
	}
}

func TestMalformedDocument(t *testing.T) {
	if _, err := Parse([]byte("{not json"), pcb.ExtractOptions{}); err == nil {
		t.Error("Parse() on invalid JSON expected error")
	}
	if _, err := Parse([]byte(`{"docType":"5"}`), pcb.ExtractOptions{}); err == nil {
		t.Error("Parse() without shape array expected error")
	}
}
