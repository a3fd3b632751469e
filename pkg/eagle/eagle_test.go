package eagle

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

const testBoard = `<?xml version="1.0" encoding="utf-8"?>
<eagle version="9.6.2">
<drawing>
<grid distance="0.1" unitdist="mm" unit="mm"/>
<board>
<plain>
<wire x1="0" y1="0" x2="100" y2="0" width="0.1" layer="20"/>
<wire x1="100" y1="0" x2="100" y2="-80" width="0.1" layer="20"/>
<wire x1="100" y1="-80" x2="0" y2="-80" width="0.1" layer="20"/>
<wire x1="0" y1="-80" x2="0" y2="0" width="0.1" layer="20"/>
<wire x1="10" y1="-10" x2="20" y2="-10" width="0.2" layer="21"/>
</plain>
<libraries>
<library name="passives">
<packages>
<package name="R0402">
<smd name="1" x="-0.5" y="0" dx="0.6" dy="0.5" layer="1"/>
<smd name="2" x="0.5" y="0" dx="0.6" dy="0.5" layer="1" roundness="50"/>
<wire x1="-0.7" y1="0.4" x2="0.7" y2="0.4" width="0.12" layer="21"/>
<text x="0" y="1" size="0.8" layer="25">&gt;NAME</text>
</package>
<package name="DIP8">
<pad name="1" x="-3.81" y="3.81" drill="0.8" diameter="1.6" shape="square"/>
<pad name="2" x="-3.81" y="1.27" drill="0.8" diameter="1.6"/>
</package>
</packages>
</library>
</libraries>
<elements>
<element name="R1" library="passives" package="R0402" value="10k" x="50" y="-40" rot="R90"/>
<element name="U1" library="passives" package="DIP8" value="NE555" x="20" y="-20"/>
</elements>
<signals>
<signal name="GND">
<wire x1="10" y1="-10" x2="30" y2="-10" width="0.25" layer="1"/>
<wire x1="30" y1="-10" x2="40" y2="-10" width="0.25" layer="16"/>
<via x="30" y="-10" drill="0.3" diameter="0.6"/>
<contactref element="R1" pad="1"/>
<polygon width="0.2" layer="1">
<vertex x="0" y="0"/>
<vertex x="10" y="0"/>
<vertex x="10" y="-10"/>
</polygon>
</signal>
</signals>
</board>
</drawing>
</eagle>`

// Four layer-20 wires forming a 100x80 rectangle produce that exact edges
// bounding box.
func TestBoardEdges(t *testing.T) {
	data, err := Parse([]byte(testBoard), pcb.ExtractOptions{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(data.Edges) != 4 {
		t.Fatalf("len(Edges) = %d, want 4", len(data.Edges))
	}
	bbox := data.EdgesBBox
	if !approx(bbox.MinX, 0) || !approx(bbox.MinY, 0) || !approx(bbox.MaxX, 100) || !approx(bbox.MaxY, 80) {
		t.Errorf("EdgesBBox = %+v, want {0 0 100 80}", bbox)
	}
	if len(data.Drawings.Silkscreen.F) == 0 {
		t.Error("layer-21 wire missing from front silkscreen")
	}
}

func TestElementPads(t *testing.T) {
	data, err := Parse([]byte(testBoard), pcb.ExtractOptions{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(data.Footprints) != 2 {
		t.Fatalf("len(Footprints) = %d, want 2", len(data.Footprints))
	}

	r1 := data.Footprints[0]
	if r1.Ref != "R1" || r1.Layer != "F" {
		t.Errorf("R1 = %q on %q", r1.Ref, r1.Layer)
	}
	if len(r1.Pads) != 2 {
		t.Fatalf("len(R1.Pads) = %d, want 2", len(r1.Pads))
	}
	// Pad 1 local (-0.5, 0) rotated 90 degrees CCW in source space lands
	// at (50, -40.5) source, i.e. (50, 40.5) after the Y flip.
	pad1 := r1.Pads[0]
	if !approx(pad1.Pos[0], 50) || !approx(pad1.Pos[1], 40.5) {
		t.Errorf("pad 1 pos = %v, want [50 40.5]", pad1.Pos)
	}
	if pad1.Net != "GND" {
		t.Errorf("pad 1 net = %q, want GND (from contactref)", pad1.Net)
	}
	if pad1.Pin1 != 1 {
		t.Errorf("pad 1 pin1 = %d, want 1", pad1.Pin1)
	}

	// Roundness 50 on a 0.6x0.5 pad: radius = 50% * 0.5/2.
	pad2 := r1.Pads[1]
	if pad2.Shape != "roundrect" || pad2.Radius == nil || !approx(*pad2.Radius, 0.125) {
		t.Errorf("pad 2 = %q radius %v, want roundrect 0.125", pad2.Shape, pad2.Radius)
	}

	u1 := data.Footprints[1]
	th := u1.Pads[0]
	if th.Type != "th" {
		t.Errorf("U1 pad type = %q, want th", th.Type)
	}
	if diff := cmp.Diff([]string{"F", "B"}, th.Layers); diff != "" {
		t.Errorf("U1 pad layers (-want +got):\n%s", diff)
	}
	if th.Shape != "rect" {
		t.Errorf("square pad shape = %q, want rect", th.Shape)
	}
	if th.Drillsize == nil || !approx((*th.Drillsize)[0], 0.8) {
		t.Errorf("drill = %v, want 0.8", th.Drillsize)
	}
}

func TestSignals(t *testing.T) {
	data, err := Parse([]byte(testBoard), pcb.ExtractOptions{IncludeTracks: true, IncludeNets: true})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if data.Tracks == nil {
		t.Fatal("Tracks = nil with IncludeTracks")
	}
	// F: one wire plus the via; B: one wire plus the via.
	if len(data.Tracks.F) != 2 || len(data.Tracks.B) != 2 {
		t.Fatalf("track counts F=%d B=%d, want 2/2", len(data.Tracks.F), len(data.Tracks.B))
	}
	seg := data.Tracks.F[0].(*pcb.TrackSegment)
	if seg.Net != "GND" || !approx(seg.Start[1], 10) {
		t.Errorf("front track = %+v", seg)
	}

	if data.Zones == nil || len(data.Zones.F) != 1 {
		t.Fatalf("Zones = %+v, want one front zone", data.Zones)
	}
	zone := data.Zones.F[0]
	if zone.Net != "GND" || len(zone.Polygons[0]) != 3 {
		t.Errorf("zone = %+v", zone)
	}

	foundGND := false
	for _, n := range data.Nets {
		if n == "GND" {
			foundGND = true
		}
	}
	if !foundGND {
		t.Errorf("Nets = %v, missing GND", data.Nets)
	}
}

func TestMilUnits(t *testing.T) {
	board := `<eagle><drawing>
	<grid unitdist="mil" unit="mil"/>
	<board><plain>
	<wire x1="0" y1="0" x2="1000" y2="0" width="10" layer="20"/>
	</plain></board>
	</drawing></eagle>`
	data, err := Parse([]byte(board), pcb.ExtractOptions{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	seg := data.Edges[0].(*pcb.Segment)
	if !approx(seg.End[0], 25.4) {
		t.Errorf("1000 mil wire end = %v, want 25.4", seg.End[0])
	}
}

func TestCurvedWire(t *testing.T) {
	board := `<eagle><drawing>
	<grid unitdist="mm" unit="mm"/>
	<board><plain>
	<wire x1="0" y1="0" x2="10" y2="0" width="0.1" layer="20" curve="180"/>
	</plain></board>
	</drawing></eagle>`
	data, err := Parse([]byte(board), pcb.ExtractOptions{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	arc, ok := data.Edges[0].(*pcb.Arc)
	if !ok {
		t.Fatalf("edge is %T, want *Arc", data.Edges[0])
	}
	if !approx(arc.Radius, 5) {
		t.Errorf("radius = %v, want 5", arc.Radius)
	}
	if !approx(arc.Start[0], 5) || !approx(arc.Start[1], 0) {
		t.Errorf("center = %v, want [5 0]", arc.Start)
	}
	if arc.Endangle < arc.Startangle {
		t.Error("endangle < startangle violates the arc invariant")
	}
	if !approx(arc.Endangle-arc.Startangle, 180) {
		t.Errorf("sweep = %v, want 180", arc.Endangle-arc.Startangle)
	}
}

func TestMirroredElement(t *testing.T) {
	board := `<eagle><drawing>
	<grid unitdist="mm" unit="mm"/>
	<board>
	<libraries><library name="l"><packages>
	<package name="P"><smd name="1" x="1" y="0" dx="1" dy="1" layer="1"/></package>
	</packages></library></libraries>
	<elements><element name="C1" library="l" package="P" value="1u" x="10" y="-10" rot="MR0"/></elements>
	</board></drawing></eagle>`
	data, err := Parse([]byte(board), pcb.ExtractOptions{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	fp := data.Footprints[0]
	if fp.Layer != "B" {
		t.Errorf("Layer = %q, want B", fp.Layer)
	}
	pad := fp.Pads[0]
	if diff := cmp.Diff([]string{"B"}, pad.Layers); diff != "" {
		t.Errorf("pad layers (-want +got):\n%s", diff)
	}
	if !approx(pad.Pos[0], 9) {
		t.Errorf("pad x = %v, want 9 (mirrored)", pad.Pos[0])
	}
}

func TestNoBoardElement(t *testing.T) {
	if _, err := Parse([]byte(`<eagle><drawing></drawing></eagle>`), pcb.ExtractOptions{}); err == nil {
		t.Error("Parse() without <board> expected error")
	}
}
