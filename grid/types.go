package grid

import "fmt"

// ============================================================================
// PIVOT GRID TYPES — Axes, fields and hierarchy nodes
// ============================================================================
// A pivot grid has two independent axes. Each axis is a tree: one level per
// declared field, one node per distinct value under its parent.
//
// Depth convention: for an axis with N fields the root sits at depth N+1 and
// the node for field i (0-based, declaration order) sits at depth N-i. The
// first declared field is the shallowest level and carries the largest depth,
// so the field-order weight used by queries equals the node depth.
// ============================================================================

// Record is a single data row with string dimensions and numeric measures.
type Record struct {
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

// Axis identifies one of the two hierarchies of a pivot grid.
type Axis int

const (
	Rows Axis = iota
	Columns
)

func (a Axis) String() string {
	switch a {
	case Rows:
		return "rows"
	case Columns:
		return "columns"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Field describes a row, column or data field.
// Caption is a display alias; it is only an alias when non-empty and
// different from Name.
type Field struct {
	Name        string `json:"name" yaml:"name"`
	Caption     string `json:"caption,omitempty" yaml:"caption,omitempty"`
	Aggregation string `json:"aggregation,omitempty" yaml:"aggregation,omitempty"` // data fields only
}

// HasAlias reports whether the caption is usable as an alternate lookup key.
func (f Field) HasAlias() bool {
	return f.Caption != "" && f.Caption != f.Name
}

// Label returns the caption when set, the name otherwise.
func (f Field) Label() string {
	if f.Caption != "" {
		return f.Caption
	}
	return f.Name
}

// Config lists the fields of each axis and the data fields, in order.
type Config struct {
	RowFields    []Field `json:"rowFields"`
	ColumnFields []Field `json:"columnFields"`
	DataFields   []Field `json:"dataFields"`
}

// Fields returns the declared fields of an axis.
func (c Config) Fields(axis Axis) []Field {
	if axis == Columns {
		return c.ColumnFields
	}
	return c.RowFields
}

// Node is one value-level of an axis tree.
// Nodes are immutable once the grid is built.
type Node struct {
	Field  *Field
	Value  string
	Depth  int
	Parent *Node
	IsRoot bool

	children []*Node
	indices  []int // record indices under this node, ascending
}

// Children returns the node's children in first-seen order.
func (n *Node) Children() []*Node { return n.children }

// Len returns the number of records aggregated under the node.
func (n *Node) Len() int { return len(n.indices) }

// Path returns the values from the shallowest level down to this node.
func (n *Node) Path() []string {
	var path []string
	for cur := n; cur != nil && !cur.IsRoot; cur = cur.Parent {
		path = append([]string{cur.Value}, path...)
	}
	return path
}

func (n *Node) String() string {
	if n.IsRoot {
		return "<root>"
	}
	return fmt.Sprintf("%s=%s@%d", n.Field.Name, n.Value, n.Depth)
}

// AxisTree is the hierarchy of one axis plus its depth index.
type AxisTree struct {
	Axis              Axis
	Root              *Node
	DimensionsByDepth map[int][]*Node
}

// NodesAt returns the nodes at a tree depth, in build order.
func (t *AxisTree) NodesAt(depth int) []*Node {
	if t == nil {
		return nil
	}
	return t.DimensionsByDepth[depth]
}
