package easyeda

import (
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/bom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// parseComponent handles a LIB~x~y~attributes~rotation~... block and its
// nested shape strings. Nested coordinates are component-local; the
// placement transform and back-side mirror are applied here.
func (b *builder) parseComponent(head string, shapes []string) {
	parts := strings.Split(head, "~")
	if len(parts) < 3 {
		return
	}
	place := placement{
		X:      floatAt(parts, 1),
		Y:      floatAt(parts, 2),
		Angle:  floatAt(parts, 4),
		active: true,
	}
	attrs := parseAttributes(stringAt(parts, 3))

	// A component whose copper lives on layer 2 is placed on the back.
	for _, shape := range shapes {
		sub := strings.Split(shape, "~")
		if len(sub) > 6 && sub[0] == "PAD" {
			if int(floatAt(sub, 6)) == 2 {
				place.Mirrored = true
			}
			break
		}
	}

	sink := &collect{bbox: pcb.EmptyBBox()}
	var ref, value string
	for _, shape := range shapes {
		sub := strings.Split(shape, "~")
		if len(sub) > 10 && sub[0] == "TEXT" {
			// TEXT~type~...~string: type P is the designator, N the name.
			switch sub[1] {
			case "P":
				ref = strings.TrimSpace(sub[10])
			case "N":
				value = strings.TrimSpace(sub[10])
			}
			continue
		}
		b.parsePrimitiveInto(shape, place, sink)
	}
	if ref == "" {
		ref = attrs["pre"]
	}
	if value == "" {
		value = attrs["value"]
	}

	origin := b.toMM(place.X, place.Y)
	side := "F"
	if place.Mirrored {
		side = "B"
	}

	bbox := sink.bbox
	if bbox.IsEmpty() {
		bbox = pcb.BBox{MinX: origin[0] - 0.5, MinY: origin[1] - 0.5, MaxX: origin[0] + 0.5, MaxY: origin[1] + 0.5}
	}

	fp := &pcb.Footprint{
		Ref:    ref,
		Center: origin,
		BBox: pcb.FootprintBBox{
			Pos:    origin,
			Relpos: pcb.Point{bbox.MinX - origin[0], bbox.MinY - origin[1]},
			Size:   pcb.Point{bbox.MaxX - bbox.MinX, bbox.MaxY - bbox.MinY},
			Angle:  place.Angle,
		},
		Pads:     sink.pads,
		Drawings: sink.drawings,
		Layer:    side,
	}

	b.components = append(b.components, bom.Component{
		Ref:       ref,
		Value:     value,
		Footprint: attrs["package"],
		Layer:     pcb.Side(side),
		Index:     len(b.footprints),
	})
	b.footprints = append(b.footprints, fp)
}

// parseAttributes reads the backtick-separated key`value list of a LIB
// head, e.g. "package`R0402`value`10k`".
func parseAttributes(s string) map[string]string {
	fields := strings.Split(s, "`")
	attrs := make(map[string]string, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key := strings.TrimSpace(fields[i])
		if key != "" {
			attrs[key] = fields[i+1]
		}
	}
	return attrs
}

// convertPath rewrites an SVG path from canvas mils to IR millimetres,
// applying the component placement. Only the absolute M/L/A/Z commands
// EasyEDA emits are handled; anything else aborts the conversion.
func (b *builder) convertPath(path string, place placement) string {
	tokens := tokenizePath(path)
	if len(tokens) == 0 {
		return ""
	}
	var sb strings.Builder
	i := 0
	emit := func(s string) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s)
	}
	coord := func() (float64, float64, bool) {
		if i+1 >= len(tokens) {
			return 0, 0, false
		}
		x, errX := strconv.ParseFloat(tokens[i], 64)
		y, errY := strconv.ParseFloat(tokens[i+1], 64)
		i += 2
		if errX != nil || errY != nil {
			return 0, 0, false
		}
		gx, gy := place.apply(x, y)
		pt := b.toMM(gx, gy)
		return pt[0], pt[1], true
	}

	for i < len(tokens) {
		cmd := tokens[i]
		i++
		switch cmd {
		case "M", "L":
			x, y, ok := coord()
			if !ok {
				return ""
			}
			emit(cmd)
			emit(fmtMM(x))
			emit(fmtMM(y))
		case "A":
			if i+7 > len(tokens) {
				return ""
			}
			rx, _ := strconv.ParseFloat(tokens[i], 64)
			ry, _ := strconv.ParseFloat(tokens[i+1], 64)
			rot := tokens[i+2]
			large := tokens[i+3]
			sweep := tokens[i+4]
			i += 5
			x, y, ok := coord()
			if !ok {
				return ""
			}
			emit("A")
			emit(fmtMM(rx * milToMM))
			emit(fmtMM(ry * milToMM))
			emit(rot)
			emit(large)
			emit(sweep)
			emit(fmtMM(x))
			emit(fmtMM(y))
		case "Z", "z":
			emit("Z")
		default:
			return ""
		}
	}
	return sb.String()
}

func fmtMM(v float64) string {
	return strconv.FormatFloat(pcb.Round6(v), 'f', -1, 64)
}

// tokenizePath splits an SVG path into command letters and numbers.
func tokenizePath(path string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range path {
		switch {
		case r == ' ' || r == ',' || r == '\t' || r == '\n':
			flush()
		case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
			flush()
			tokens = append(tokens, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}
