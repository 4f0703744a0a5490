package query

import (
	"sort"

	"github.com/spektr-org/pivotq/grid"
)

// ============================================================================
// RESOLVER — Ancestor-constrained narrowing of one axis
// ============================================================================
// Filters are applied shallowest field first. The first filter seeds the
// candidate set with every matching node at its depth. Each following filter
// keeps only the matching nodes that descend from a node accepted by the
// previous step, so the final set lies on branches passing through every
// filtered value.
//
// Values present in the tree but never on the same branch resolve to nothing.
// ============================================================================

// Resolve returns the nodes of tree consistent with all filters.
// With no filters it returns the root alone; the result may be empty.
func Resolve(tree *grid.AxisTree, filters []Filter) []*grid.Node {
	if tree == nil {
		return nil
	}
	if len(filters) == 0 {
		return []*grid.Node{tree.Root}
	}

	ordered := append([]Filter(nil), filters...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Depth > ordered[j].Depth
	})

	var prev []*grid.Node
	for step, f := range ordered {
		next := make([]*grid.Node, 0)
		for _, n := range tree.NodesAt(f.Depth) {
			if n.IsRoot || n.Value != f.Value || n.Field == nil || n.Field.Name != f.Field {
				continue
			}
			if step > 0 && !descendsFromAny(n, prev) {
				continue
			}
			next = append(next, n)
		}
		prev = next
		if len(prev) == 0 {
			break
		}
	}
	return prev
}

// descendsFromAny reports whether one of the accepted nodes is n itself or an
// ancestor of n.
func descendsFromAny(n *grid.Node, accepted []*grid.Node) bool {
	for _, a := range accepted {
		if ancestorAt(n, a.Depth) == a {
			return true
		}
	}
	return false
}

// ancestorAt walks up from n until reaching depth. It returns nil when depth
// is below n or the chain ends first.
func ancestorAt(n *grid.Node, depth int) *grid.Node {
	if depth < n.Depth {
		return nil
	}
	cur := n
	for steps := depth - n.Depth; steps > 0 && cur != nil; steps-- {
		cur = cur.Parent
	}
	return cur
}
