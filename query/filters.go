package query

import "github.com/spektr-org/pivotq/grid"

// Filter is one recorded "field = value" constraint on an axis.
//
// Depth is the field-order weight fieldCount-fieldIndex assigned when the
// query is built: the first declared field gets the largest weight. The grid
// builder lays out trees so this weight is also the depth of the field's nodes.
type Filter struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Depth int    `json:"depth"`
}

// registry accumulates filters per axis. Recording the same field twice
// appends a second constraint; nothing is replaced.
type registry struct {
	byAxis map[grid.Axis][]Filter
}

func newRegistry() *registry {
	return &registry{byAxis: make(map[grid.Axis][]Filter)}
}

func (r *registry) record(axis grid.Axis, field string, weight int, value string) {
	r.byAxis[axis] = append(r.byAxis[axis], Filter{Field: field, Value: value, Depth: weight})
}

// filters returns a copy of the axis's filters in call order.
func (r *registry) filters(axis grid.Axis) []Filter {
	return append([]Filter(nil), r.byAxis[axis]...)
}
