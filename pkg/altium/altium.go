package altium

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/richardlehane/mscfb"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/bom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// CFBMagic is the OLE2 compound file signature; bytes starting with it are
// dispatched to this parser regardless of file name.
var CFBMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Streams the extractor requires; missing ones are a structural error.
var requiredStreams = []string{
	"Board6/Data",
	"Components6/Data",
	"Nets6/Data",
	"Tracks6/Data",
	"Arcs6/Data",
	"Pads6/Data",
	"Vias6/Data",
	"Texts6/Data",
}

// container holds the selected streams of one .PcbDoc, read fully into
// memory. Stream enumeration itself is lazy in the CFB reader.
type container struct {
	streams map[string][]byte
}

func openContainer(data []byte) (*container, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, &pcb.MalformedError{
			Format: "altium", Context: "not a valid OLE2/CFB container: " + err.Error(),
			Offset: 0, Err: err,
		}
	}

	c := &container{streams: make(map[string][]byte)}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Size == 0 {
			continue
		}
		path := strings.Join(append(append([]string{}, entry.Path...), entry.Name), "/")
		content, readErr := io.ReadAll(entry)
		if readErr != nil {
			return nil, fmt.Errorf("reading stream %s: %w", path, pcb.ErrTruncated)
		}
		c.streams[path] = content
	}
	return c, nil
}

func (c *container) stream(path string) []byte {
	return c.streams[path]
}

// checkHeader compares the Header sibling's uint32 record count against
// the number of records actually parsed. A mismatch is logged, not fatal.
func (c *container) checkHeader(name string, parsed int) {
	header := c.stream(name + "/Header")
	if len(header) < 4 {
		return
	}
	want := int(binary.LittleEndian.Uint32(header))
	if want != parsed {
		log.Warn().Str("stream", name).Int("header", want).Int("parsed", parsed).
			Msg("record count differs from stream header")
	}
}

// Parse converts an Altium .PcbDoc into the neutral IR.
func Parse(data []byte, opts pcb.ExtractOptions) (*pcb.PcbData, error) {
	c, err := openContainer(data)
	if err != nil {
		return nil, err
	}
	for _, name := range requiredStreams {
		if c.stream(name) == nil {
			return nil, pcb.Malformed("altium", "missing required stream "+name)
		}
	}

	wideStrings := parseWideStrings(c.stream("WideStrings6/Data"))

	boardRecords := parsePropertyStream(c.stream("Board6/Data"))
	if len(boardRecords) == 0 {
		return nil, pcb.Malformed("altium", "Board6 stream has no records")
	}
	checkBoardVersion(boardRecords[0])
	layers := buildLayerTable(boardRecords)

	components := parseComponents(parsePropertyStream(c.stream("Components6/Data")))
	c.checkHeader("Components6", len(components))
	nets := parseNets(parsePropertyStream(c.stream("Nets6/Data")))
	c.checkHeader("Nets6", len(nets)-1) // the empty net 0 is synthetic

	pads := parsePads(c.stream("Pads6/Data"))
	c.checkHeader("Pads6", len(pads))
	tracks := parseTracks(c.stream("Tracks6/Data"))
	c.checkHeader("Tracks6", len(tracks))
	arcs := parseArcs(c.stream("Arcs6/Data"))
	c.checkHeader("Arcs6", len(arcs))
	vias := parseVias(c.stream("Vias6/Data"))
	c.checkHeader("Vias6", len(vias))
	fills := parseFills(c.stream("Fills6/Data"))
	texts := parseTexts(c.stream("Texts6/Data"))
	c.checkHeader("Texts6", len(texts))
	regions := parseRegions(c.stream("Regions6/Data"))

	conv := &converter{layers: layers, nets: nets, wide: wideStrings}

	footprints := conv.buildFootprints(components, pads, tracks, arcs, fills, texts)

	bomComponents := make([]bom.Component, len(components))
	for idx, comp := range components {
		side := pcb.SideFront
		if layers.side(comp.Layer) == "B" {
			side = pcb.SideBack
		}
		bomComponents[idx] = bom.Component{
			Ref:       comp.Designator,
			Value:     comp.Comment,
			Footprint: comp.Pattern,
			Layer:     side,
			Index:     idx,
		}
	}

	edges, err := conv.boardEdges(boardRecords)
	if err != nil {
		return nil, err
	}

	result := &pcb.PcbData{
		EdgesBBox:  pcb.DrawingsBBox(edges),
		Edges:      edges,
		Drawings:   conv.boardDrawings(tracks, arcs, fills, texts),
		Footprints: footprints,
		Metadata:   boardMetadata(boardRecords),
		Bom:        bom.Generate(bomComponents, bom.DefaultConfig()),
	}

	if opts.IncludeTracks {
		result.Tracks = conv.buildTracks(tracks, arcs, vias)
		result.Zones = conv.buildZones(regions, parsePropertyStream(c.stream("Polygons6/Data")))
	}
	if opts.IncludeNets {
		names := make([]string, len(nets))
		copy(names, nets)
		result.Nets = names
	}
	return result, nil
}

// checkBoardVersion logs when the board claims a file version outside the
// tested range; parsing continues best-effort.
func checkBoardVersion(board propertyRecord) {
	raw := board.str("FILEVERSIONINFO")
	if raw == "" {
		raw = board.str("VERSION")
	}
	if raw == "" {
		return
	}
	if v, err := strconv.ParseFloat(strings.TrimPrefix(raw, "Protel_Advanced_PCB_"), 64); err == nil {
		if v < 5 || v > 6 {
			log.Warn().Str("version", raw).Msg("board file version outside tested range, parsing best-effort")
		}
	}
}

// parseWideStrings decodes the UTF-16LE string table: u32 count, then per
// entry u32 id, u32 length in code units, payload.
func parseWideStrings(data []byte) map[uint32]string {
	strings6 := make(map[uint32]string)
	if len(data) < 4 {
		return strings6
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	count := int(binary.LittleEndian.Uint32(data))
	offset := 4
	for i := 0; i < count; i++ {
		if offset+8 > len(data) {
			break
		}
		id := binary.LittleEndian.Uint32(data[offset:])
		units := int(binary.LittleEndian.Uint32(data[offset+4:]))
		offset += 8
		byteLen := units * 2
		if offset+byteLen > len(data) {
			break
		}
		decoded, err := decoder.String(string(data[offset : offset+byteLen]))
		if err == nil {
			strings6[id] = decoded
		}
		offset += byteLen
	}
	return strings6
}

func boardMetadata(records []propertyRecord) pcb.Metadata {
	first := records[0]
	return pcb.Metadata{
		Title:    first.str("DESIGNNAME"),
		Revision: first.str("REVISION"),
		Company:  first.str("COMPANY"),
		Date:     first.str("DATE"),
	}
}
