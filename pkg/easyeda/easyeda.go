// Package easyeda parses EasyEDA PCB JSON documents into the neutral IR.
// The document carries a "shape" array of ~-separated primitive strings in
// mil units; components arrive as LIB blocks with nested shape lists in
// component-local coordinates.
package easyeda

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/bom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// milToMM converts EasyEDA mil units to millimetres.
const milToMM = 0.0254

// document is the subset of the EasyEDA board JSON the extractor reads.
type document struct {
	DocType json.Number `json:"docType"`
	Canvas  string      `json:"canvas"`
	Shape   []string    `json:"shape"`
	Head    struct {
		CPara map[string]string `json:"c_para"`
	} `json:"head"`
}

// Parse converts an EasyEDA board JSON file into the neutral IR.
func Parse(data []byte, opts pcb.ExtractOptions) (*pcb.PcbData, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}

	// Canvas fields 16 and 17 carry the drawing origin in mils.
	canvasParts := strings.Split(doc.Canvas, "~")
	b := &builder{}
	b.originX = floatAt(canvasParts, 16)
	b.originY = floatAt(canvasParts, 17)

	for _, shape := range doc.Shape {
		b.parseShapeString(shape)
	}

	result := &pcb.PcbData{
		EdgesBBox: pcb.DrawingsBBox(b.edges),
		Edges:     b.edges,
		Drawings: pcb.Drawings{
			Silkscreen:  pcb.SideDrawings{F: b.silkF, B: b.silkB},
			Fabrication: pcb.SideDrawings{F: b.fabF, B: b.fabB},
		},
		Footprints: b.footprints,
		Metadata:   pcb.Metadata{Title: doc.Head.CPara["name"]},
		Bom:        bom.Generate(b.components, bom.DefaultConfig()),
	}
	if opts.IncludeTracks {
		result.Tracks = &pcb.TrackMap{F: b.trackF, B: b.trackB}
		if len(b.zonesF) > 0 || len(b.zonesB) > 0 {
			result.Zones = &pcb.ZoneMap{F: b.zonesF, B: b.zonesB}
		}
	}
	if opts.IncludeNets {
		result.Nets = b.netNames()
	}
	return result, nil
}

// decodeDocument accepts both a bare PCB document and the array form in
// which the PCB document is the entry with docType 5.
func decodeDocument(data []byte) (*document, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, pcb.Malformed("easyeda", "empty document")
	}

	if trimmed[0] == '[' {
		var docs []json.RawMessage
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, &pcb.MalformedError{Format: "easyeda", Context: err.Error(), Offset: -1, Err: err}
		}
		for _, raw := range docs {
			var doc document
			if err := json.Unmarshal(raw, &doc); err != nil {
				continue
			}
			if doc.DocType.String() == "5" {
				return &doc, nil
			}
		}
		return nil, pcb.Malformed("easyeda", "no PCB document (docType 5) in array")
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, &pcb.MalformedError{Format: "easyeda", Context: err.Error(), Offset: -1, Err: err}
	}
	if len(doc.Shape) == 0 {
		return nil, pcb.Malformed("easyeda", "document has no shape array")
	}
	return &doc, nil
}

// IsBoardJSON sniffs whether a .json file looks like an EasyEDA board;
// used by format dispatch.
func IsBoardJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return bytes.Contains(data, []byte(`"canvas"`)) && bytes.Contains(data, []byte(`"shape"`))
}

// Layer categories for EasyEDA decimal layer ids.
type layerCat int

const (
	layerOther layerCat = iota
	layerCopperF
	layerCopperB
	layerSilkF
	layerSilkB
	layerFabF
	layerFabB
	layerEdge
	layerMulti
)

func categorize(layer int) layerCat {
	switch layer {
	case 1:
		return layerCopperF
	case 2:
		return layerCopperB
	case 3:
		return layerSilkF
	case 4:
		return layerSilkB
	case 10:
		return layerEdge
	case 11:
		return layerMulti
	case 13:
		return layerFabF
	case 14:
		return layerFabB
	}
	return layerOther
}

// builder accumulates IR pieces while walking the shape array.
type builder struct {
	originX, originY float64

	edges        []pcb.Drawing
	silkF, silkB []pcb.Drawing
	fabF, fabB   []pcb.Drawing
	trackF       []pcb.Track
	trackB       []pcb.Track
	zonesF       []*pcb.Zone
	zonesB       []*pcb.Zone
	footprints   []*pcb.Footprint
	components   []bom.Component
	nets         map[string]struct{}
}

// pushDrawing routes a board-level drawing by layer category.
func (b *builder) pushDrawing(cat layerCat, d pcb.Drawing) {
	switch cat {
	case layerEdge:
		b.edges = append(b.edges, d)
	case layerSilkF:
		b.silkF = append(b.silkF, d)
	case layerSilkB:
		b.silkB = append(b.silkB, d)
	case layerFabF:
		b.fabF = append(b.fabF, d)
	case layerFabB:
		b.fabB = append(b.fabB, d)
	}
}

func (b *builder) noteNet(name string) {
	if name == "" {
		return
	}
	if b.nets == nil {
		b.nets = make(map[string]struct{})
	}
	b.nets[name] = struct{}{}
}

func (b *builder) netNames() []string {
	names := make([]string, 0, len(b.nets)+1)
	names = append(names, "") // index 0 is the unconnected net
	for name := range b.nets {
		names = append(names, name)
	}
	slices.Sort(names[1:])
	return names
}

// parseShapeString handles one entry of the shape array. LIB blocks carry
// their nested shapes separated by "#@$".
func (b *builder) parseShapeString(shape string) {
	parts := strings.Split(shape, "#@$")
	if strings.HasPrefix(parts[0], "LIB~") {
		b.parseComponent(parts[0], parts[1:])
		return
	}
	for _, part := range parts {
		b.parsePrimitive(part, identityPlacement())
	}
}

func unknownPrimitive(tag string) {
	log.Debug().Str("primitive", tag).Msg("skipping unsupported shape primitive")
}

func floatAt(parts []string, index int) float64 {
	if index < 0 || index >= len(parts) {
		return 0
	}
	var v float64
	_, err := fmt.Sscanf(strings.TrimSpace(parts[index]), "%g", &v)
	if err != nil {
		return 0
	}
	return v
}
