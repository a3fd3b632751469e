package eagle

import (
	"encoding/xml"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/bom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// Eagle layer numbers used by the extractor.
const (
	layerTopCu    = 1
	layerBotCu    = 16
	layerEdgeCuts = 20
	layerTopSilk  = 21
	layerBotSilk  = 22
	layerTopNames = 25
	layerBotNames = 26
	layerTopVals  = 27
	layerBotVals  = 28
	layerTopFab   = 51
	layerBotFab   = 52
)

// Parse converts an Eagle/Fusion360 .brd file into the neutral IR.
func Parse(data []byte, opts pcb.ExtractOptions) (*pcb.PcbData, error) {
	var file eagleFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, &pcb.MalformedError{Format: "eagle", Context: err.Error(), Offset: -1, Err: err}
	}
	if file.Drawing.Board == nil {
		return nil, pcb.Malformed("eagle", "no <board> element in drawing")
	}
	brd := file.Drawing.Board

	c := &converter{
		scale:    unitScale(file.Drawing.Grid),
		packages: make(map[string]*pkg),
		nets:     make(map[string]struct{}),
	}
	for li := range brd.Libraries {
		lib := &brd.Libraries[li]
		for pi := range lib.Packages {
			c.packages[lib.Name+"/"+lib.Packages[pi].Name] = &lib.Packages[pi]
		}
	}

	// Pad nets come from contact references inside signals; index them by
	// (element, pad name).
	c.padNets = indexPadNets(data)

	footprints, components := c.convertElements(brd.Elements)
	edges, drawings := c.convertPlain(&brd.Plain)

	var tracks *pcb.TrackMap
	var zones *pcb.ZoneMap
	if opts.IncludeTracks {
		tracks, zones = c.convertSignals(brd.Signals, &edges)
	} else {
		// Board edges drawn inside signals still count even when tracks
		// are not requested.
		for _, sig := range brd.Signals {
			for _, w := range sig.Wires {
				if w.Layer == layerEdgeCuts {
					edges = append(edges, c.wireDrawing(&w))
				}
			}
		}
	}

	result := &pcb.PcbData{
		EdgesBBox:  pcb.DrawingsBBox(edges),
		Edges:      edges,
		Drawings:   drawings,
		Footprints: footprints,
		Metadata:   pcb.Metadata{},
		Bom:        bom.Generate(components, bom.DefaultConfig()),
		Tracks:     tracks,
		Zones:      zones,
	}
	if opts.IncludeNets {
		names := make([]string, 0, len(c.nets)+1)
		names = append(names, "")
		for n := range c.nets {
			names = append(names, n)
		}
		sortStrings(names[1:])
		result.Nets = names
	}
	return result, nil
}

// unitScale converts the drawing grid unit to a millimetre factor. Eagle
// files may mix mm and mil; coordinates are normalized at parse time.
func unitScale(g grid) float64 {
	unit := g.UnitDist
	if unit == "" {
		unit = g.Unit
	}
	switch strings.ToLower(unit) {
	case "mil":
		return 0.0254
	case "mic":
		return 0.001
	case "inch":
		return 25.4
	case "", "mm":
		return 1
	default:
		log.Warn().Str("unit", unit).Msg("unknown grid unit, assuming mm")
		return 1
	}
}

type converter struct {
	scale    float64
	packages map[string]*pkg
	padNets  map[string]string
	nets     map[string]struct{}
}

// pt converts source coordinates to IR millimetres; Eagle Y points up.
func (c *converter) pt(x, y float64) pcb.Point {
	return pcb.Point{x * c.scale, -y * c.scale}
}

func (c *converter) mm(v float64) float64 {
	return v * c.scale
}

// parseRotation splits an Eagle rot string such as "R90" or "MR180" into
// the angle and the mirror flag.
func parseRotation(rot string) (float64, bool) {
	if rot == "" {
		return 0, false
	}
	mirrored := strings.HasPrefix(rot, "M")
	trimmed := strings.TrimLeft(rot, "MSR")
	angle, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, mirrored
	}
	return angle, mirrored
}

// rotatePoint applies the element mirror and rotation to package-local
// coordinates (still in source units, Y up).
func rotatePoint(x, y, angle float64, mirror bool) (float64, float64) {
	if mirror {
		x = -x
	}
	if angle == 0 {
		return x, y
	}
	rad := angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return x*cos - y*sin, x*sin + y*cos
}

func mirrorLayer(layer int, mirror bool) int {
	if !mirror {
		return layer
	}
	switch layer {
	case layerTopCu:
		return layerBotCu
	case layerBotCu:
		return layerTopCu
	case layerTopSilk:
		return layerBotSilk
	case layerBotSilk:
		return layerTopSilk
	case layerTopNames:
		return layerBotNames
	case layerBotNames:
		return layerTopNames
	case layerTopVals:
		return layerBotVals
	case layerBotVals:
		return layerTopVals
	case layerTopFab:
		return layerBotFab
	case layerBotFab:
		return layerTopFab
	}
	return layer
}

func layerSide(layer int) (string, bool) {
	switch layer {
	case layerTopCu, layerTopSilk, layerTopNames, layerTopVals, layerTopFab:
		return "F", true
	case layerBotCu, layerBotSilk, layerBotNames, layerBotVals, layerBotFab:
		return "B", true
	}
	return "", false
}

func isSilkOrFab(layer int) bool {
	switch layer {
	case layerTopSilk, layerBotSilk, layerTopFab, layerBotFab,
		layerTopNames, layerBotNames, layerTopVals, layerBotVals:
		return true
	}
	return false
}

// indexPadNets walks <contactref element=".." pad=".."> entries, which the
// struct model skips, with a light second decode pass.
func indexPadNets(data []byte) map[string]string {
	type contactRef struct {
		Element string `xml:"element,attr"`
		Pad     string `xml:"pad,attr"`
	}
	type signalRefs struct {
		Name     string       `xml:"name,attr"`
		Contacts []contactRef `xml:"contactref"`
	}
	var doc struct {
		XMLName xml.Name     `xml:"eagle"`
		Signals []signalRefs `xml:"drawing>board>signals>signal"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil
	}

	out := make(map[string]string)
	for _, sig := range doc.Signals {
		for _, cr := range sig.Contacts {
			out[cr.Element+"\x00"+cr.Pad] = sig.Name
		}
	}
	return out
}

func sortStrings(s []string) {
	slices.Sort(s)
}
