package kicad

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/bom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/stroke"
)

// Tested file format version range (KiCad 5 through 9). Files outside the
// range are parsed best-effort with a warning.
const (
	minTestedVersion = 20171130
	maxTestedVersion = 20250114
)

// document carries the shared state of one parse.
type document struct {
	root     *sexp.Node
	nets     []string
	layers   *layerTable
	used     stroke.Used
	unmapped unknownLayerLog
}

// Parse converts a .kicad_pcb file into the neutral IR.
func Parse(data []byte, opts pcb.ExtractOptions) (*pcb.PcbData, error) {
	root, err := sexp.Parse(data)
	if err != nil {
		return nil, &pcb.MalformedError{Format: "kicad", Context: err.Error(), Offset: -1, Err: err}
	}
	if root.Tag() != "kicad_pcb" {
		return nil, pcb.Malformed("kicad", fmt.Sprintf("expected kicad_pcb root, got %q", root.Tag()))
	}
	checkVersion(root)

	doc := &document{
		root:     root,
		nets:     parseNets(root),
		layers:   parseLayerTable(root),
		used:     make(stroke.Used),
		unmapped: make(unknownLayerLog),
	}

	// Board-level graphic items, routed by layer class.
	var edges []pcb.Drawing
	var silkF, silkB, fabF, fabB []pcb.Drawing
	for _, child := range root.Children() {
		drawing, layerName := doc.parseGraphicItem(child, transform{})
		if drawing == nil {
			continue
		}
		switch classifyLayer(layerName) {
		case layerEdge:
			edges = append(edges, drawing)
		case layerSilkF:
			silkF = append(silkF, drawing)
		case layerSilkB:
			silkB = append(silkB, drawing)
		case layerFabF:
			fabF = append(fabF, drawing)
		case layerFabB:
			fabB = append(fabB, drawing)
		case layerOther:
			doc.unmapped.warn(layerName, child.Tag())
		}
	}

	// Footprints. Legacy files use (module ...) for the same structure.
	fpNodes := root.FindAll("footprint")
	fpNodes = append(fpNodes, root.FindAll("module")...)

	footprints := make([]*pcb.Footprint, 0, len(fpNodes))
	components := make([]bom.Component, 0, len(fpNodes))
	for idx, node := range fpNodes {
		fp, comp := doc.parseFootprint(node, idx)
		footprints = append(footprints, fp)
		components = append(components, comp)
	}

	result := &pcb.PcbData{
		EdgesBBox: pcb.DrawingsBBox(edges),
		Edges:     edges,
		Drawings: pcb.Drawings{
			Silkscreen:  pcb.SideDrawings{F: silkF, B: silkB},
			Fabrication: pcb.SideDrawings{F: fabF, B: fabB},
		},
		Footprints: footprints,
		Metadata:   parseMetadata(root),
		Bom:        bom.Generate(components, bom.DefaultConfig()),
	}

	if opts.IncludeTracks {
		result.Tracks = doc.parseTracks()
		result.Zones = doc.parseZones()
	}
	if opts.IncludeNets {
		nets := make([]string, len(doc.nets))
		copy(nets, doc.nets)
		result.Nets = nets
	}
	result.FontData = doc.used.Subset()

	return result, nil
}

func checkVersion(root *sexp.Node) {
	version := root.Find("version")
	if version == nil {
		log.Warn().Msg("kicad_pcb has no version field, assuming current format")
		return
	}
	v, ok := version.FloatAt(0)
	if !ok {
		return
	}
	if int(v) < minTestedVersion || int(v) > maxTestedVersion {
		log.Warn().Int("version", int(v)).
			Msg("kicad_pcb version outside tested range, parsing best-effort")
	}
}

// parseNets builds the index-addressable net name table from the top-level
// (net id "name") entries.
func parseNets(root *sexp.Node) []string {
	var nets []string
	for _, node := range root.FindAll("net") {
		id, ok := node.IntAt(0)
		if !ok || id < 0 {
			continue
		}
		for len(nets) <= id {
			nets = append(nets, "")
		}
		nets[id] = node.AtomAt(1)
	}
	return nets
}

// netName resolves a net id against the table, dropping the empty net 0.
func (d *document) netName(id int) string {
	if id < 0 || id >= len(d.nets) {
		return ""
	}
	return d.nets[id]
}

// parseMetadata reads the (title_block ...) section.
func parseMetadata(root *sexp.Node) pcb.Metadata {
	block := root.Find("title_block")
	if block == nil {
		return pcb.Metadata{}
	}
	return pcb.Metadata{
		Title:    block.ValueOf("title"),
		Revision: block.ValueOf("rev"),
		Company:  block.ValueOf("company"),
		Date:     block.ValueOf("date"),
	}
}
