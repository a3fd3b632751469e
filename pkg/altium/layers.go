// Package altium parses Altium Designer .PcbDoc files: an OLE2 compound
// container whose named streams hold either text-property records or
// framed binary sub-records. All coordinates are integer 1/10000 mil units
// with Y pointing up; records keep these raw units and conversion to the
// Y-down millimetre IR happens when records are converted to IR entities.
package altium

import (
	"fmt"
	"strconv"
	"strings"
)

type layerCat int

const (
	layerOther layerCat = iota
	layerCopperF
	layerCopperB
	layerCopperInner
	layerSilkF
	layerSilkB
	layerFabF
	layerFabB
)

// Well-known V6 layer ids.
const (
	idTopCopper    = 1
	idBottomCopper = 32
	idTopOverlay   = 33
	idBottomOverlay = 34
	idMultiLayer   = 74
)

// layerTable resolves 8-bit V6 layer ids to categories. Mechanical layers
// (ids 57-72) are classified through the mechkind assignments found in the
// Board6 stackup; unknown kinds are dropped.
type layerTable struct {
	mechKinds map[uint8]string
}

func (t *layerTable) category(id uint8) layerCat {
	switch {
	case id == idTopCopper:
		return layerCopperF
	case id == idBottomCopper:
		return layerCopperB
	case id >= 2 && id <= 30:
		return layerCopperInner
	case id == idTopOverlay:
		return layerSilkF
	case id == idBottomOverlay:
		return layerSilkB
	case id == idMultiLayer:
		return layerCopperF // multi-layer objects render on the front
	case id >= 57 && id <= 72:
		switch strings.ToUpper(t.mechKinds[id]) {
		case "ASSEMBLY_TOP", "COURTYARD_TOP":
			return layerFabF
		case "ASSEMBLY_BOTTOM", "COURTYARD_BOTTOM":
			return layerFabB
		}
		return layerOther
	}
	return layerOther
}

func (t *layerTable) side(id uint8) string {
	switch t.category(id) {
	case layerCopperB, layerSilkB, layerFabB:
		return "B"
	}
	return "F"
}

// innerName gives inner copper layers stable IR names.
func (t *layerTable) innerName(id uint8) string {
	return fmt.Sprintf("In%d.Cu", id-1)
}

// buildLayerTable reads mechanical layer kinds from the first Board6
// record. Stackup keys look like LAYERV7_3MECHKIND=ASSEMBLY_TOP, where the
// index maps onto V6 ids starting at 57.
func buildLayerTable(board []propertyRecord) *layerTable {
	table := &layerTable{mechKinds: make(map[uint8]string)}
	if len(board) == 0 {
		return table
	}
	first := board[0]
	for i := 1; i <= 32; i++ {
		for _, key := range []string{
			fmt.Sprintf("LAYERV7_%dMECHKIND", i),
			fmt.Sprintf("LAYERV8_%dMECHKIND", i),
		} {
			if kind, ok := first[key]; ok {
				table.mechKinds[uint8(56+i)] = kind
			}
		}
	}
	return table
}

// normalizeLayerID folds the three coexisting layer id generations down to
// the legacy 8-bit id: V7 ids are 0x01000000+v6, V8 ids 0x01030000+.
func normalizeLayerID(v uint32) uint8 {
	if v >= 0x01000000 {
		return uint8(v & 0xFF)
	}
	return uint8(v)
}

// layerFromProps reads a layer id from a text-property record, trying the
// V7 key before the legacy one.
func layerFromProps(rec propertyRecord) uint8 {
	for _, key := range []string{"V7_LAYER", "LAYER"} {
		if raw, ok := rec[key]; ok {
			if v, err := strconv.ParseUint(raw, 10, 32); err == nil {
				return normalizeLayerID(uint32(v))
			}
			// Some generations write the layer as a name.
			switch strings.ToUpper(raw) {
			case "TOP":
				return idTopCopper
			case "BOTTOM":
				return idBottomCopper
			case "TOPOVERLAY":
				return idTopOverlay
			case "BOTTOMOVERLAY":
				return idBottomOverlay
			case "MULTILAYER":
				return idMultiLayer
			}
		}
	}
	return idTopCopper
}
