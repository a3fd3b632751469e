package kicad

import (
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// parseZones reads (zone ...) nodes. When the source tool cached its flood
// fill, the (filled_polygon ...) children are passed through directly;
// otherwise only the zone outline is emitted.
func (d *document) parseZones() *pcb.ZoneMap {
	zones := &pcb.ZoneMap{Inner: make(map[string][]*pcb.Zone)}

	push := func(layerName string, z *pcb.Zone) {
		switch classifyLayer(layerName) {
		case layerCopperF:
			zones.F = append(zones.F, z)
		case layerCopperB:
			zones.B = append(zones.B, z)
		case layerCopperInner:
			zones.Inner[layerName] = append(zones.Inner[layerName], z)
		default:
			d.unmapped.warn(layerName, "zone")
		}
	}

	for _, zone := range d.root.FindAll("zone") {
		netName := zone.ValueOf("net_name")
		zoneLayer := layerNameOf(zone)

		filled := zone.FindAll("filled_polygon")
		if len(filled) > 0 {
			for _, fp := range filled {
				// Multi-layer zones tag each fill with its own layer.
				fillLayer := layerNameOf(fp)
				if fillLayer == "" {
					fillLayer = zoneLayer
				}
				points := ptsOf(fp, transform{})
				if len(points) == 0 {
					continue
				}
				width := 0.0
				push(fillLayer, &pcb.Zone{
					Polygons: []pcb.Contour{pcb.Contour(points)},
					Width:    &width,
					Net:      netName,
				})
			}
			continue
		}

		// No cached fill: fall back to the zone outline.
		outline := zone.Find("polygon")
		if outline == nil {
			continue
		}
		points := ptsOf(outline, transform{})
		if len(points) == 0 {
			continue
		}
		width, _ := zone.FloatOf("min_thickness")
		push(zoneLayer, &pcb.Zone{
			Polygons: []pcb.Contour{pcb.Contour(points)},
			Width:    &width,
			Net:      netName,
		})
	}
	return zones
}
