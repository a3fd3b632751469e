package bom

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

func comp(ref, value, footprint string, layer pcb.Side, index int) Component {
	return Component{Ref: ref, Value: value, Footprint: footprint, Layer: layer, Index: index}
}

func TestGroupingByValueAndFootprint(t *testing.T) {
	components := []Component{
		comp("R1", "10k", "0402", pcb.SideFront, 0),
		comp("R10", "10k", "0402", pcb.SideFront, 1),
		comp("R2", "10k", "0402", pcb.SideBack, 2),
		comp("R3", "1k", "0402", pcb.SideFront, 3),
		comp("C1", "100n", "0603", pcb.SideFront, 4),
	}
	data := Generate(components, DefaultConfig())

	if len(data.Both) != 3 {
		t.Fatalf("len(Both) = %d, want 3", len(data.Both))
	}

	// C before R per the default prefix order; R1 < R2 < R10 numerically.
	want := [][]pcb.BomRef{
		{{Ref: "C1", Index: 4}},
		{{Ref: "R1", Index: 0}, {Ref: "R2", Index: 2}, {Ref: "R10", Index: 1}},
		{{Ref: "R3", Index: 3}},
	}
	if diff := cmp.Diff(want, data.Both); diff != "" {
		t.Errorf("Both mismatch (-want +got):\n%s", diff)
	}

	// The 10k group appears on both sides; every (group, member) pair in
	// F and B is disjoint and their union is Both.
	total := 0
	for _, g := range data.F {
		total += len(g)
	}
	for _, g := range data.B {
		total += len(g)
	}
	wantTotal := 0
	for _, g := range data.Both {
		wantTotal += len(g)
	}
	if total != wantTotal {
		t.Errorf("F+B member count = %d, want %d", total, wantTotal)
	}
}

func TestSkipVirtual(t *testing.T) {
	fiducial := comp("FID1", "", "Fiducial", pcb.SideFront, 1)
	fiducial.Virtual = true
	components := []Component{
		comp("R1", "10k", "0402", pcb.SideFront, 0),
		fiducial,
	}
	data := Generate(components, DefaultConfig())
	if diff := cmp.Diff([]int{1}, data.Skipped); diff != "" {
		t.Errorf("Skipped (-want +got):\n%s", diff)
	}
	if len(data.Both) != 1 {
		t.Errorf("len(Both) = %d, want 1", len(data.Both))
	}
	// Skipped components keep their field projection.
	if _, ok := data.Fields["1"]; !ok {
		t.Error("Fields missing entry for skipped footprint")
	}
}

func TestSkipEmptyValueAndDNP(t *testing.T) {
	noVal := comp("J1", "", "Conn", pcb.SideFront, 0)
	dnp := comp("R9", "10k", "0402", pcb.SideFront, 1)
	dnp.Fields = map[string]string{"DNP": "yes"}
	keep := comp("R1", "10k", "0402", pcb.SideFront, 2)

	cfg := DefaultConfig()
	cfg.BlacklistEmptyVal = true
	cfg.DNPField = "DNP"

	data := Generate([]Component{noVal, dnp, keep}, cfg)
	if diff := cmp.Diff([]int{0, 1}, data.Skipped); diff != "" {
		t.Errorf("Skipped (-want +got):\n%s", diff)
	}
	if len(data.Both) != 1 || data.Both[0][0].Ref != "R1" {
		t.Errorf("Both = %v, want only R1", data.Both)
	}
}

func TestPrefixSortOrder(t *testing.T) {
	components := []Component{
		comp("J1", "conn", "X", pcb.SideFront, 0),
		comp("C1", "cap", "X", pcb.SideFront, 1),
		comp("ZZ1", "odd", "X", pcb.SideFront, 2),
		comp("U1", "ic", "X", pcb.SideFront, 3),
	}
	data := Generate(components, DefaultConfig())
	var order []string
	for _, g := range data.Both {
		order = append(order, g[0].Ref)
	}
	// C and U are listed explicitly; ZZ falls into the "~" slot, which
	// comes before J in the default order.
	want := []string{"C1", "U1", "ZZ1", "J1"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("group order (-want +got):\n%s", diff)
	}
}

func TestCustomGroupFields(t *testing.T) {
	a := comp("R1", "10k", "0402", pcb.SideFront, 0)
	a.Fields = map[string]string{"MPN": "RC0402-10K"}
	b := comp("R2", "10k", "0603", pcb.SideFront, 1)
	b.Fields = map[string]string{"MPN": "RC0402-10K"}

	cfg := DefaultConfig()
	cfg.GroupFields = []string{"MPN"}
	cfg.ShowFields = []string{"Value", "MPN"}

	data := Generate([]Component{a, b}, cfg)
	if len(data.Both) != 1 || len(data.Both[0]) != 2 {
		t.Fatalf("Both = %v, want one group of two", data.Both)
	}
	if diff := cmp.Diff([]string{"10k", "RC0402-10K"}, data.Fields["0"]); diff != "" {
		t.Errorf("Fields[0] (-want +got):\n%s", diff)
	}
}

func TestSplitRef(t *testing.T) {
	tests := []struct {
		ref    string
		prefix string
		num    int
	}{
		{"R1", "R", 1},
		{"R10", "R", 10},
		{"SW12", "SW", 12},
		{"XTAL", "XTAL", 0},
	}
	for _, tt := range tests {
		prefix, num := splitRef(tt.ref)
		if prefix != tt.prefix || num != tt.num {
			t.Errorf("splitRef(%q) = (%q, %d), want (%q, %d)", tt.ref, prefix, num, tt.prefix, tt.num)
		}
	}
}
