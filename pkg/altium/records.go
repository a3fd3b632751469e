package altium

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
)

// Unit conversion: integer coordinates are 1/10000 mil.
const unitToMM = 0.0000254

// boardLevel is the component id carried by objects that belong to the
// board rather than to a component.
const boardLevel = 0xFFFF

// ─── Text-property records ───────────────────────────────────────────

// propertyRecord is one KEY=VALUE|... record with upper-cased keys.
type propertyRecord map[string]string

// parsePropertyStream splits a stream of [u32 length][latin-1 text]
// records into property maps. Values keep their Windows-1252 decoding.
func parsePropertyStream(data []byte) []propertyRecord {
	var records []propertyRecord
	decoder := charmap.Windows1252.NewDecoder()
	offset := 0
	for offset+4 <= len(data) {
		length := int(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		if offset+length > len(data) {
			log.Warn().Int("offset", offset).Msg("truncated text record, stopping stream scan")
			break
		}
		raw := data[offset : offset+length]
		offset += length

		// Null terminator ends the text portion.
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		text, err := decoder.String(string(raw))
		if err != nil {
			text = string(raw)
		}

		rec := make(propertyRecord)
		for _, pair := range strings.Split(text, "|") {
			if pair == "" {
				continue
			}
			key, value, found := strings.Cut(pair, "=")
			if !found {
				continue
			}
			rec[strings.ToUpper(key)] = value
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records
}

func (r propertyRecord) str(key string) string {
	return r[key]
}

func (r propertyRecord) float(key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(r[key], "mil"), 64)
	if err != nil {
		return 0
	}
	return v
}

// coord parses a coordinate property. Values are either raw internal units
// or suffixed with "mil"; both convert to internal units here.
func (r propertyRecord) coord(key string) int32 {
	raw, ok := r[key]
	if !ok {
		return 0
	}
	if mil, found := strings.CutSuffix(raw, "mil"); found {
		v, err := strconv.ParseFloat(mil, 64)
		if err != nil {
			return 0
		}
		return int32(math.Round(v * 0.0254 / unitToMM))
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return int32(v)
}

// ─── Binary sub-record framing ───────────────────────────────────────

// subrecord is one [u8 type][u32 length][payload] frame.
type subrecord struct {
	Tag     uint8
	Offset  int64
	Payload []byte
}

func parseSubrecords(data []byte) []subrecord {
	var records []subrecord
	offset := 0
	for offset+5 <= len(data) {
		tag := data[offset]
		length := int(binary.LittleEndian.Uint32(data[offset+1:]))
		start := offset + 5
		if start+length > len(data) {
			log.Warn().Int("offset", offset).Msg("truncated binary sub-record, stopping stream scan")
			break
		}
		records = append(records, subrecord{
			Tag:     tag,
			Offset:  int64(offset),
			Payload: data[start : start+length],
		})
		offset = start + length
	}
	return records
}

// Little-endian field readers; out-of-range reads yield zero so that
// shortened sub-records from older file versions degrade to best-effort
// prefix parsing.
func readU8(b []byte, off int) uint8 {
	if off >= len(b) {
		return 0
	}
	return b[off]
}

func readU16(b []byte, off int) uint16 {
	if off+2 > len(b) {
		return 0
	}
	return binary.LittleEndian.Uint16(b[off:])
}

func readI32(b []byte, off int) int32 {
	if off+4 > len(b) {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b[off:]))
}

func readU32(b []byte, off int) uint32 {
	if off+4 > len(b) {
		return 0
	}
	return binary.LittleEndian.Uint32(b[off:])
}

func readF64(b []byte, off int) float64 {
	if off+8 > len(b) {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b[off:]))
}

// ─── Record types ────────────────────────────────────────────────────

type componentRecord struct {
	Designator string
	Pattern    string
	Comment    string
	X, Y       int32
	Rotation   float64
	Layer      uint8
}

type padRecord struct {
	Name        string
	Layer       uint8
	NetID       uint16
	ComponentID uint16
	X, Y        int32
	TopSizeX    int32
	TopSizeY    int32
	MidSizeX    int32
	MidSizeY    int32
	BotSizeX    int32
	BotSizeY    int32
	HoleSize    int32
	TopShape    uint8
	MidShape    uint8
	BotShape    uint8
	Rotation    float64
	Plated      bool
	RadiusPct   float64 // from the optional size-and-shape sub-record
}

type trackRecord struct {
	Layer       uint8
	NetID       uint16
	ComponentID uint16
	StartX      int32
	StartY      int32
	EndX        int32
	EndY        int32
	Width       int32
}

type arcRecord struct {
	Layer       uint8
	NetID       uint16
	ComponentID uint16
	CenterX     int32
	CenterY     int32
	Radius      int32
	StartAngle  float64
	EndAngle    float64
	Width       int32
}

type viaRecord struct {
	NetID      uint16
	X, Y       int32
	Diameter   int32
	HoleSize   int32
	StartLayer uint8
	EndLayer   uint8
}

type fillRecord struct {
	Layer       uint8
	ComponentID uint16
	X1, Y1      int32
	X2, Y2      int32
	Rotation    float64
}

type textRecord struct {
	Layer       uint8
	ComponentID uint16
	X, Y        int32
	Height      int32
	Rotation    float64
	Mirrored    bool
	Thickness   int32
	Text        string
	WideIndex   uint32
	HasWide     bool
}

type regionRecord struct {
	Layer       uint8
	NetID       uint16
	ComponentID uint16
	Props       propertyRecord
	Outline     [][2]float64 // internal units
}

// ─── Stream parsers ──────────────────────────────────────────────────

func parseComponents(records []propertyRecord) []componentRecord {
	var out []componentRecord
	for _, r := range records {
		if record, ok := r["RECORD"]; ok && record != "Component" {
			continue
		}
		designator := r.str("SOURCEDESIGNATOR")
		if designator == "" {
			designator = r.str("DESIGNATOR")
		}
		out = append(out, componentRecord{
			Designator: designator,
			Pattern:    r.str("PATTERN"),
			Comment:    r.str("COMMENT"),
			X:          r.coord("X"),
			Y:          r.coord("Y"),
			Rotation:   r.float("ROTATION"),
			Layer:      layerFromProps(r),
		})
	}
	return out
}

// parseNets returns the net name table. Index 0 is the reserved empty net;
// object records store net ids offset by one.
func parseNets(records []propertyRecord) []string {
	nets := []string{""}
	for _, r := range records {
		if record, ok := r["RECORD"]; ok && record != "Net" {
			continue
		}
		nets = append(nets, r.str("NAME"))
	}
	return nets
}

func parseTracks(data []byte) []trackRecord {
	var out []trackRecord
	for _, sr := range parseSubrecords(data) {
		if len(sr.Payload) < 13 {
			continue
		}
		out = append(out, trackRecord{
			Layer:       readU8(sr.Payload, 0),
			NetID:       readU16(sr.Payload, 3),
			ComponentID: readU16(sr.Payload, 7),
			StartX:      readI32(sr.Payload, 13),
			StartY:      readI32(sr.Payload, 17),
			EndX:        readI32(sr.Payload, 21),
			EndY:        readI32(sr.Payload, 25),
			Width:       readI32(sr.Payload, 29),
		})
	}
	return out
}

func parseArcs(data []byte) []arcRecord {
	var out []arcRecord
	for _, sr := range parseSubrecords(data) {
		if len(sr.Payload) < 13 {
			continue
		}
		out = append(out, arcRecord{
			Layer:       readU8(sr.Payload, 0),
			NetID:       readU16(sr.Payload, 3),
			ComponentID: readU16(sr.Payload, 7),
			CenterX:     readI32(sr.Payload, 13),
			CenterY:     readI32(sr.Payload, 17),
			Radius:      readI32(sr.Payload, 21),
			StartAngle:  readF64(sr.Payload, 25),
			EndAngle:    readF64(sr.Payload, 33),
			Width:       readI32(sr.Payload, 41),
		})
	}
	return out
}

func parseVias(data []byte) []viaRecord {
	var out []viaRecord
	for _, sr := range parseSubrecords(data) {
		if len(sr.Payload) < 13 {
			continue
		}
		out = append(out, viaRecord{
			NetID:      readU16(sr.Payload, 3),
			X:          readI32(sr.Payload, 13),
			Y:          readI32(sr.Payload, 17),
			Diameter:   readI32(sr.Payload, 21),
			HoleSize:   readI32(sr.Payload, 25),
			StartLayer: readU8(sr.Payload, 29),
			EndLayer:   readU8(sr.Payload, 30),
		})
	}
	return out
}

func parseFills(data []byte) []fillRecord {
	var out []fillRecord
	for _, sr := range parseSubrecords(data) {
		if len(sr.Payload) < 13 {
			continue
		}
		out = append(out, fillRecord{
			Layer:       readU8(sr.Payload, 0),
			ComponentID: readU16(sr.Payload, 7),
			X1:          readI32(sr.Payload, 13),
			Y1:          readI32(sr.Payload, 17),
			X2:          readI32(sr.Payload, 21),
			Y2:          readI32(sr.Payload, 25),
			Rotation:    readF64(sr.Payload, 29),
		})
	}
	return out
}

// isPascalString reports whether a payload looks like a length-prefixed
// name sub-record. Pad streams interleave name and geometry sub-records;
// this is the boundary detector.
func isPascalString(b []byte) bool {
	return len(b) >= 1 && int(b[0]) == len(b)-1
}

func pascalString(b []byte) string {
	if isPascalString(b) {
		return strings.TrimRight(string(b[1:]), "\x00")
	}
	return strings.TrimRight(string(b), "\x00")
}

// parsePads groups the pad stream into (name, geometry, optional
// size-and-shape) runs and decodes the documented geometry offsets.
func parsePads(data []byte) []padRecord {
	subrecords := parseSubrecords(data)
	var out []padRecord

	i := 0
	for i < len(subrecords) {
		if !isPascalString(subrecords[i].Payload) {
			i++
			continue
		}
		name := pascalString(subrecords[i].Payload)
		i++
		if i >= len(subrecords) {
			break
		}
		geom := subrecords[i].Payload
		i++

		if len(geom) < 62 {
			log.Warn().Int("len", len(geom)).Msg("short pad geometry sub-record, reading prefix fields only")
		}

		pad := padRecord{
			Name:        name,
			Layer:       readU8(geom, 0),
			NetID:       readU16(geom, 7),
			ComponentID: readU16(geom, 13),
			X:           readI32(geom, 23),
			Y:           readI32(geom, 27),
			TopSizeX:    readI32(geom, 31),
			TopSizeY:    readI32(geom, 35),
			MidSizeX:    readI32(geom, 39),
			MidSizeY:    readI32(geom, 43),
			BotSizeX:    readI32(geom, 47),
			BotSizeY:    readI32(geom, 51),
			HoleSize:    readI32(geom, 55),
			TopShape:    readU8(geom, 59),
			MidShape:    readU8(geom, 60),
			BotShape:    readU8(geom, 61),
			Rotation:    readF64(geom, 62),
			Plated:      readU8(geom, 70) != 0,
		}

		// Optional shape-override sub-record carries the roundrect corner
		// radius percentage.
		if i < len(subrecords) && !isPascalString(subrecords[i].Payload) {
			override := subrecords[i].Payload
			if len(override) >= 1 {
				pad.RadiusPct = float64(readU8(override, 0))
			}
			i++
		}

		out = append(out, pad)
	}
	return out
}

// parseTexts decodes the text stream: a geometry sub-record followed by a
// length-prefixed Latin-1 string sub-record. When the geometry carries a
// wide-string table reference the caller substitutes the UTF-16 string.
func parseTexts(data []byte) []textRecord {
	subrecords := parseSubrecords(data)
	var out []textRecord

	for i := 0; i+1 < len(subrecords); i += 2 {
		geom := subrecords[i].Payload
		str := subrecords[i+1].Payload
		if len(geom) < 13 {
			continue
		}
		rec := textRecord{
			Layer:       readU8(geom, 0),
			ComponentID: readU16(geom, 7),
			X:           readI32(geom, 13),
			Y:           readI32(geom, 17),
			Height:      readI32(geom, 21),
			Rotation:    readF64(geom, 25),
			Mirrored:    readU8(geom, 33) != 0,
			Thickness:   readI32(geom, 34),
			Text:        pascalString(str),
		}
		if len(geom) >= 45 {
			rec.WideIndex = readU32(geom, 41)
			rec.HasWide = readU8(geom, 40) != 0
		}
		out = append(out, rec)
	}
	return out
}

// parseRegions decodes Regions6 best-effort: fixed prefix, an embedded
// property blob, then the outline vertex list as f64 pairs in internal
// units.
func parseRegions(data []byte) []regionRecord {
	var out []regionRecord
	for _, sr := range parseSubrecords(data) {
		payload := sr.Payload
		if len(payload) < 22 {
			continue
		}
		rec := regionRecord{
			Layer:       readU8(payload, 0),
			NetID:       readU16(payload, 3),
			ComponentID: readU16(payload, 7),
		}

		propLen := int(readU32(payload, 18))
		cursor := 22
		if propLen < 0 || cursor+propLen > len(payload) {
			continue
		}
		propText := strings.TrimRight(string(payload[cursor:cursor+propLen]), "\x00")
		rec.Props = make(propertyRecord)
		for _, pair := range strings.Split(propText, "|") {
			if key, value, found := strings.Cut(pair, "="); found {
				rec.Props[strings.ToUpper(key)] = value
			}
		}
		cursor += propLen

		if cursor+4 > len(payload) {
			continue
		}
		count := int(readU32(payload, cursor))
		cursor += 4
		if count < 0 || cursor+count*16 > len(payload) {
			continue
		}
		rec.Outline = make([][2]float64, 0, count)
		for v := 0; v < count; v++ {
			x := readF64(payload, cursor)
			y := readF64(payload, cursor+8)
			cursor += 16
			rec.Outline = append(rec.Outline, [2]float64{x, y})
		}
		out = append(out, rec)
	}
	return out
}
