// Package bom groups extracted components into bill-of-materials rows:
// deduplication by field tuple, reference-designator ordering, skip lists
// and field projection for the viewer table.
package bom

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// Component is the BOM-relevant projection of one footprint.
type Component struct {
	Ref       string
	Value     string
	Footprint string
	Layer     pcb.Side
	Index     int
	Fields    map[string]string
	Virtual   bool
}

// Config controls grouping, ordering and the skip list.
type Config struct {
	GroupFields       []string
	ShowFields        []string
	SortOrder         []string
	BlacklistVirtual  bool
	BlacklistEmptyVal bool
	DNPField          string
}

// DefaultSortOrder is the reference-prefix ordering applied inside groups.
// The "~" slot collects prefixes not listed explicitly.
var DefaultSortOrder = []string{
	"C", "R", "L", "D", "U", "Y", "X", "F", "SW", "A",
	"~", "HS", "CNN", "J", "P", "NT", "MH",
}

// DefaultConfig returns the grouping configuration the CLI uses.
func DefaultConfig() Config {
	return Config{
		GroupFields:      []string{"Value", "Footprint"},
		ShowFields:       []string{"Value", "Footprint"},
		SortOrder:        DefaultSortOrder,
		BlacklistVirtual: true,
	}
}

// fieldValue projects one named field out of a component.
func fieldValue(c *Component, name string) string {
	switch name {
	case "Value":
		return c.Value
	case "Footprint":
		return c.Footprint
	default:
		return c.Fields[name]
	}
}

// truthy implements the DNP-field convention: any value except empty, "0",
// "false" and "no" marks the component do-not-populate.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no":
		return false
	}
	return true
}

// Generate builds the BOM record from the component list.
func Generate(components []Component, cfg Config) *pcb.BomData {
	if len(cfg.GroupFields) == 0 {
		cfg.GroupFields = []string{"Value", "Footprint"}
	}
	if len(cfg.ShowFields) == 0 {
		cfg.ShowFields = cfg.GroupFields
	}
	if len(cfg.SortOrder) == 0 {
		cfg.SortOrder = DefaultSortOrder
	}
	ranks := prefixRanks(cfg.SortOrder)

	fields := make(pcb.BomFields, len(components))
	skipped := []int{}
	skippedSet := make(map[int]bool)

	for i := range components {
		c := &components[i]
		vals := make([]string, len(cfg.ShowFields))
		for j, name := range cfg.ShowFields {
			vals[j] = fieldValue(c, name)
		}
		fields[strconv.Itoa(c.Index)] = vals

		skip := c.Virtual && cfg.BlacklistVirtual
		if cfg.BlacklistEmptyVal && c.Value == "" {
			skip = true
		}
		if cfg.DNPField != "" && truthy(fieldValue(c, cfg.DNPField)) {
			skip = true
		}
		if skip {
			skipped = append(skipped, c.Index)
			skippedSet[c.Index] = true
		}
	}
	slices.Sort(skipped)

	groups := groupComponents(components, skippedSet, cfg, ranks)

	both := make([][]pcb.BomRef, 0, len(groups))
	front := [][]pcb.BomRef{}
	back := [][]pcb.BomRef{}
	for _, g := range groups {
		refs := make([]pcb.BomRef, len(g.members))
		var f, b []pcb.BomRef
		for i, m := range g.members {
			refs[i] = pcb.BomRef{Ref: m.Ref, Index: m.Index}
			if m.Layer == pcb.SideBack {
				b = append(b, refs[i])
			} else {
				f = append(f, refs[i])
			}
		}
		both = append(both, refs)
		if len(f) > 0 {
			front = append(front, f)
		}
		if len(b) > 0 {
			back = append(back, b)
		}
	}

	return &pcb.BomData{
		Both:    both,
		F:       front,
		B:       back,
		Skipped: skipped,
		Fields:  fields,
	}
}

type group struct {
	key     string
	members []*Component
}

func groupComponents(components []Component, skipped map[int]bool, cfg Config, ranks map[string]int) []group {
	var groups []group
	index := make(map[string]int)

	for i := range components {
		c := &components[i]
		if skipped[c.Index] {
			continue
		}
		parts := make([]string, len(cfg.GroupFields))
		for j, name := range cfg.GroupFields {
			parts[j] = fieldValue(c, name)
		}
		key := strings.Join(parts, "\x00")
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, group{key: key})
		}
		groups[gi].members = append(groups[gi].members, c)
	}

	for gi := range groups {
		slices.SortStableFunc(groups[gi].members, func(a, b *Component) int {
			return compareRefs(a.Ref, b.Ref, ranks)
		})
	}
	slices.SortStableFunc(groups, func(a, b group) int {
		return compareRefs(a.members[0].Ref, b.members[0].Ref, ranks)
	})
	return groups
}

// prefixRanks maps each sort-order prefix to its position. The "~" entry is
// the slot unknown prefixes fall into.
func prefixRanks(order []string) map[string]int {
	ranks := make(map[string]int, len(order))
	for i, p := range order {
		ranks[strings.ToUpper(p)] = i
	}
	if _, ok := ranks["~"]; !ok {
		ranks["~"] = len(order)
	}
	return ranks
}

// splitRef splits a reference designator into its letter prefix and numeric
// suffix, e.g. "R10" -> ("R", 10).
func splitRef(ref string) (string, int) {
	i := 0
	for i < len(ref) && (ref[i] < '0' || ref[i] > '9') {
		i++
	}
	num, err := strconv.Atoi(ref[i:])
	if err != nil {
		num = 0
	}
	return ref[:i], num
}

// compareRefs orders designators by prefix rank, then alphabetically within
// the unknown slot, then by numeric suffix.
func compareRefs(a, b string, ranks map[string]int) int {
	pa, na := splitRef(a)
	pb, nb := splitRef(b)
	ra, ok := ranks[strings.ToUpper(pa)]
	if !ok {
		ra = ranks["~"]
	}
	rb, ok := ranks[strings.ToUpper(pb)]
	if !ok {
		rb = ranks["~"]
	}
	if ra != rb {
		return ra - rb
	}
	if pa != pb {
		return strings.Compare(pa, pb)
	}
	if na != nb {
		return na - nb
	}
	return strings.Compare(a, b)
}
