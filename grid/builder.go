package grid

import (
	"errors"
	"fmt"
)

// ============================================================================
// BUILDER — Records → axis trees
// ============================================================================
// Pipeline:
//   1. Validate the field configuration
//   2. Build the row tree and the column tree (one level per field)
//   3. Index every node by depth
//
// Children are created in first-seen record order. Every node keeps the
// ascending list of record indices beneath it; cell values are computed
// lazily from those lists by GetData.
// ============================================================================

var (
	// ErrInvalidField is returned for a field with an empty name.
	ErrInvalidField = errors.New("grid: invalid field")
	// ErrDuplicateField is returned when a name or caption repeats within an axis.
	ErrDuplicateField = errors.New("grid: duplicate field")
	// ErrUnknownAggregation is returned for an unsupported data field aggregation.
	ErrUnknownAggregation = errors.New("grid: unknown aggregation")
	// ErrUnknownMeasure is returned when the default measure is not a data field.
	ErrUnknownMeasure = errors.New("grid: unknown measure")
)

// Build constructs a read-only PivotGrid over a view.
func Build(view RecordView, cfg Config, opts ...Option) (*PivotGrid, error) {
	o := applyOptions(opts)

	cfg = cloneConfig(cfg)
	if err := validateFields("row", cfg.RowFields); err != nil {
		return nil, err
	}
	if err := validateFields("column", cfg.ColumnFields); err != nil {
		return nil, err
	}
	if err := validateFields("data", cfg.DataFields); err != nil {
		return nil, err
	}
	for _, f := range cfg.DataFields {
		if f.Aggregation != "" && !IsValidAggregation(f.Aggregation) {
			return nil, fmt.Errorf("%w: %q on data field %q", ErrUnknownAggregation, f.Aggregation, f.Name)
		}
	}

	defaultMeasure := o.DefaultMeasure
	if defaultMeasure == "" && len(cfg.DataFields) > 0 {
		defaultMeasure = cfg.DataFields[0].Name
	}
	if defaultMeasure != "" && indexOfField(cfg.DataFields, defaultMeasure) < 0 {
		return nil, fmt.Errorf("%w: default measure %q", ErrUnknownMeasure, defaultMeasure)
	}

	pg := &PivotGrid{
		config:         cfg,
		view:           view,
		rows:           buildTree(Rows, cfg.RowFields, view),
		columns:        buildTree(Columns, cfg.ColumnFields, view),
		defaultMeasure: defaultMeasure,
	}

	o.Logger.Info("pivot grid built",
		"records", view.Len(),
		"rowNodes", countNodes(pg.rows),
		"columnNodes", countNodes(pg.columns),
		"dataFields", len(cfg.DataFields),
	)
	return pg, nil
}

// buildTree groups the view level by level along the declared fields.
func buildTree(axis Axis, fields []Field, view RecordView) *AxisTree {
	n := len(fields)
	all := make([]int, view.Len())
	for i := range all {
		all[i] = i
	}

	root := &Node{Depth: n + 1, IsRoot: true, indices: all}
	tree := &AxisTree{
		Axis:              axis,
		Root:              root,
		DimensionsByDepth: map[int][]*Node{n + 1: {root}},
	}

	lookup := make(map[*Node]map[string]*Node)
	for i := 0; i < view.Len(); i++ {
		cur := root
		for level := range fields {
			field := &fields[level]
			val := view.Dimension(i, field.Name)

			children, ok := lookup[cur]
			if !ok {
				children = make(map[string]*Node)
				lookup[cur] = children
			}
			child, ok := children[val]
			if !ok {
				child = &Node{
					Field:  field,
					Value:  val,
					Depth:  n - level,
					Parent: cur,
				}
				children[val] = child
				cur.children = append(cur.children, child)
				tree.DimensionsByDepth[child.Depth] = append(tree.DimensionsByDepth[child.Depth], child)
			}
			child.indices = append(child.indices, i)
			cur = child
		}
	}
	return tree
}

func validateFields(kind string, fields []Field) error {
	keys := make(map[string]bool, 2*len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("%w: %s field with empty name", ErrInvalidField, kind)
		}
		if keys[f.Name] {
			return fmt.Errorf("%w: %s field %q", ErrDuplicateField, kind, f.Name)
		}
		keys[f.Name] = true
	}
	for _, f := range fields {
		if !f.HasAlias() {
			continue
		}
		if keys[f.Caption] {
			return fmt.Errorf("%w: %s caption %q", ErrDuplicateField, kind, f.Caption)
		}
		keys[f.Caption] = true
	}
	return nil
}

func cloneConfig(c Config) Config {
	return Config{
		RowFields:    append([]Field(nil), c.RowFields...),
		ColumnFields: append([]Field(nil), c.ColumnFields...),
		DataFields:   append([]Field(nil), c.DataFields...),
	}
}

func indexOfField(fields []Field, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func countNodes(t *AxisTree) int {
	total := 0
	for _, nodes := range t.DimensionsByDepth {
		total += len(nodes)
	}
	return total
}
