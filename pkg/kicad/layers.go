// Package kicad parses KiCad .kicad_pcb board files (format versions 5
// through 9) into the neutral IR. The file is a single S-expression tree;
// the walk locates nodes by head symbol rather than position so additions
// in newer format versions are tolerated.
package kicad

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/kicad/sexp"
)

type layerClass int

const (
	layerOther layerClass = iota
	layerCopperF
	layerCopperB
	layerCopperInner
	layerSilkF
	layerSilkB
	layerFabF
	layerFabB
	layerEdge
)

// layerEntry is one row of the board's (layers ...) table.
type layerEntry struct {
	ID       int
	Name     string
	Type     string
	UserName string
}

// layerTable indexes the board layer definitions by ID and name.
type layerTable struct {
	entries []layerEntry
	byName  map[string]*layerEntry
}

func parseLayerTable(root *sexp.Node) *layerTable {
	table := &layerTable{byName: make(map[string]*layerEntry)}
	layersNode := root.Find("layers")
	if layersNode == nil {
		return table
	}
	for _, child := range layersNode.Children() {
		if child.IsAtom() {
			continue
		}
		items := child.Items()
		if len(items) < 2 {
			continue
		}
		entry := layerEntry{Name: items[1].Atom()}
		if id, ok := atoi(items[0].Atom()); ok {
			entry.ID = id
		}
		if len(items) >= 3 {
			entry.Type = items[2].Atom()
		}
		if len(items) >= 4 {
			entry.UserName = items[3].Atom()
		}
		table.entries = append(table.entries, entry)
	}
	for i := range table.entries {
		table.byName[table.entries[i].Name] = &table.entries[i]
	}
	return table
}

// innerCopperNames returns the names of inner copper layers declared by the
// board, in table order.
func (t *layerTable) innerCopperNames() []string {
	var names []string
	for _, e := range t.entries {
		if classifyLayer(e.Name) == layerCopperInner {
			names = append(names, e.Name)
		}
	}
	return names
}

// classifyLayer maps a layer name to its class. Both the short (F.SilkS)
// and long (F.Silkscreen) spellings are accepted; the suffix is matched
// case-insensitively.
func classifyLayer(name string) layerClass {
	dot := strings.IndexByte(name, '.')
	if dot < 0 {
		return layerOther
	}
	prefix := name[:dot]
	suffix := strings.ToLower(name[dot+1:])

	if prefix == "Edge" && suffix == "cuts" {
		return layerEdge
	}

	var front bool
	switch prefix {
	case "F":
		front = true
	case "B":
		front = false
	default:
		if suffix == "cu" {
			return layerCopperInner
		}
		return layerOther
	}

	switch suffix {
	case "cu":
		if front {
			return layerCopperF
		}
		return layerCopperB
	case "silks", "silkscreen":
		if front {
			return layerSilkF
		}
		return layerSilkB
	case "fab", "fabrication":
		if front {
			return layerFabF
		}
		return layerFabB
	}
	return layerOther
}

// layerSide maps a layer name to "F" or "B"; the second result is false
// for edge, inner and unknown layers.
func layerSide(name string) (string, bool) {
	switch classifyLayer(name) {
	case layerCopperF, layerSilkF, layerFabF:
		return "F", true
	case layerCopperB, layerSilkB, layerFabB:
		return "B", true
	}
	return "", false
}

func isCopperLayer(name string) bool {
	c := classifyLayer(name)
	return c == layerCopperF || c == layerCopperB || c == layerCopperInner
}

// unknownLayerLog logs a dropped graphic once per layer name.
type unknownLayerLog map[string]struct{}

func (u unknownLayerLog) warn(name, what string) {
	if name == "" {
		return
	}
	if _, seen := u[name]; seen {
		return
	}
	u[name] = struct{}{}
	log.Warn().Str("layer", name).Str("item", what).Msg("dropping graphics on unmapped layer")
}

func atoi(s string) (int, bool) {
	n := 0
	neg := false
	if s == "" {
		return 0, false
	}
	i := 0
	if s[0] == '-' {
		neg = true
		i++
	}
	if i == len(s) {
		return 0, false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}
