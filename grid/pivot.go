package grid

// PivotGrid is a built, read-only pivot grid. It is safe for concurrent reads.
type PivotGrid struct {
	config         Config
	view           RecordView
	rows           *AxisTree
	columns        *AxisTree
	defaultMeasure string
}

// Config returns a copy of the field configuration the grid was built with.
// Nodes point into the grid's own copy, so callers cannot rename their fields.
func (g *PivotGrid) Config() Config { return cloneConfig(g.config) }

// Tree returns the hierarchy of an axis.
func (g *PivotGrid) Tree(axis Axis) *AxisTree {
	if axis == Columns {
		return g.columns
	}
	return g.rows
}

// DefaultMeasure returns the data field served for an empty measure name.
func (g *PivotGrid) DefaultMeasure() string { return g.defaultMeasure }

// DataField looks up a data field by name.
func (g *PivotGrid) DataField(name string) (Field, bool) {
	i := indexOfField(g.config.DataFields, name)
	if i < 0 {
		return Field{}, false
	}
	return g.config.DataFields[i], true
}

// GetData returns the value of a measure at a (row, column) cell.
// An empty measure selects the default measure. The result is nil when the
// measure is not a data field or when no record sits under both nodes; a nil
// node stands for the axis root.
func (g *PivotGrid) GetData(measure string, row, col *Node) any {
	if measure == "" {
		measure = g.defaultMeasure
	}
	field, ok := g.DataField(measure)
	if !ok {
		return nil
	}
	if row == nil {
		row = g.rows.Root
	}
	if col == nil {
		col = g.columns.Root
	}

	var indices []int
	switch {
	case row.IsRoot:
		indices = col.indices
	case col.IsRoot:
		indices = row.indices
	default:
		indices = intersect(row.indices, col.indices)
	}
	if len(indices) == 0 {
		return nil
	}
	return Aggregate(newIndexView(g.view, indices), field.Name, field.Aggregation)
}
