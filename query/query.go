// Package query resolves chained per-field filters against a pivot grid and
// extracts measures at every matching (row, column) pair.
//
// Usage:
//
//	q, err := query.New(pg, query.WithParams(query.Param{Name: "Country", Value: "USA"}))
//	if err != nil { ... }
//	recs := q.Filter("City", "NY").Measure("Amount").Records()
//	vals := q.Data().Flat("Amount", "Qty")
//
// A Query holds nothing but the filters recorded on it. Every measure call
// resolves both axes again from scratch. A Query is not safe for concurrent use.
package query

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spektr-org/pivotq/grid"
)

var (
	// ErrUnknownField is reported for a filter on a name that is neither a
	// row/column field nor one of their captions.
	ErrUnknownField = errors.New("query: unknown field")
	// ErrUnknownMeasure is reported for a measure that is neither a data field
	// nor a data field caption.
	ErrUnknownMeasure = errors.New("query: unknown measure")
)

// Grid is the read-only view of a pivot grid the query core works against.
// *grid.PivotGrid implements it.
type Grid interface {
	Config() grid.Config
	Tree(axis grid.Axis) *grid.AxisTree
	GetData(measure string, row, col *grid.Node) any
}

// FilterFunc records a filter on one field and returns the query for chaining.
type FilterFunc func(value string) *Query

// Query is a chainable filter builder bound to one grid.
type Query struct {
	grid      Grid
	captions  Captions
	registry  *registry
	extractor *Extractor
	logger    *slog.Logger

	setters  map[string]FilterFunc
	measures map[string]*Measure
	data     *Measure

	fieldNames   []string
	measureNames []string

	err error
}

// New builds the query handles from the grid's field configuration: one
// setter per row and column field and caption, one Measure per data field and
// caption, and the default Data measure. Initial params are applied before
// New returns; an unknown param name fails with ErrUnknownField.
func New(g Grid, opts ...Option) (*Query, error) {
	cfg := applyOptions(opts)
	gc := g.Config()

	q := &Query{
		grid:     g,
		captions: NewCaptions(gc),
		registry: newRegistry(),
		logger:   cfg.Logger,
		setters:  make(map[string]FilterFunc),
		measures: make(map[string]*Measure),
	}
	q.extractor = NewExtractor(g, q.captions)

	// Columns register after rows: a name used on both axes filters columns.
	q.registerAxis(grid.Rows, gc.RowFields)
	q.registerAxis(grid.Columns, gc.ColumnFields)

	for _, f := range gc.DataFields {
		m := &Measure{query: q, name: f.Name}
		q.measures[f.Name] = m
		q.measureNames = append(q.measureNames, f.Name)
		if f.HasAlias() {
			q.measures[f.Caption] = m
			q.measureNames = append(q.measureNames, f.Caption)
		}
	}
	q.data = &Measure{query: q}
	// "data" names the default measure unless a data field claims it.
	if _, taken := q.measures[DataKey]; !taken {
		q.measures[DataKey] = q.data
	}

	for _, p := range cfg.Params {
		set, ok := q.setters[p.Name]
		if !ok {
			return nil, fmt.Errorf("%w: param %q", ErrUnknownField, p.Name)
		}
		set(p.Value)
	}
	return q, nil
}

func (q *Query) registerAxis(axis grid.Axis, fields []grid.Field) {
	for i, f := range fields {
		set := q.setter(axis, f.Name, len(fields)-i)
		q.setters[f.Name] = set
		q.fieldNames = append(q.fieldNames, f.Name)
		if f.HasAlias() {
			q.setters[f.Caption] = set
			q.fieldNames = append(q.fieldNames, f.Caption)
		}
	}
}

func (q *Query) setter(axis grid.Axis, field string, weight int) FilterFunc {
	return func(value string) *Query {
		q.registry.record(axis, field, weight, value)
		return q
	}
}

// Setter returns the filter setter registered for a field name or caption.
func (q *Query) Setter(nameOrCaption string) (FilterFunc, bool) {
	set, ok := q.setters[nameOrCaption]
	return set, ok
}

// Filter records "field = value" and returns q. An unknown name is ignored
// and remembered as the query's error.
func (q *Query) Filter(nameOrCaption, value string) *Query {
	set, ok := q.setters[nameOrCaption]
	if !ok {
		q.fail(fmt.Errorf("%w: %q", ErrUnknownField, nameOrCaption))
		return q
	}
	return set(value)
}

// Measure returns the handle of a data field, by name or caption; "data"
// returns the Data handle. An unknown
// name is remembered as the query's error; the returned handle still
// delegates the name to the grid, which decides what it yields.
func (q *Query) Measure(nameOrCaption string) *Measure {
	if m, ok := q.measures[nameOrCaption]; ok {
		return m
	}
	q.fail(fmt.Errorf("%w: %q", ErrUnknownMeasure, nameOrCaption))
	return &Measure{query: q, name: q.captions.Canonical(nameOrCaption)}
}

// Data returns the handle of the grid's default measure.
func (q *Query) Data() *Measure { return q.data }

// Filters returns a copy of the filters recorded on an axis, in call order.
func (q *Query) Filters(axis grid.Axis) []Filter {
	return q.registry.filters(axis)
}

// Resolve returns the nodes of an axis matching every filter recorded on it.
func (q *Query) Resolve(axis grid.Axis) []*grid.Node {
	filters := q.registry.filters(axis)
	nodes := Resolve(q.grid.Tree(axis), filters)
	q.logger.Debug("axis resolved",
		"axis", axis.String(),
		"filters", len(filters),
		"nodes", len(nodes),
	)
	return nodes
}

// FieldNames lists the filterable names: row then column fields, each
// followed by its caption when it has one.
func (q *Query) FieldNames() []string { return append([]string(nil), q.fieldNames...) }

// MeasureNames lists the data field names and captions, in declaration order.
func (q *Query) MeasureNames() []string { return append([]string(nil), q.measureNames...) }

// Captions returns the caption dictionary of the query.
func (q *Query) Captions() Captions { return q.captions }

// Err returns the first unknown field or measure seen by Filter or Measure.
func (q *Query) Err() error { return q.err }

func (q *Query) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

// Measure extracts one data field, or the default measure, over the current
// filters. Records and Flat share the same measure name.
type Measure struct {
	query *Query
	name  string // empty for the default measure
}

// Name returns the canonical measure name; empty for the default measure.
func (m *Measure) Name() string { return m.name }

// Records returns one structured Record per matching (row, column) pair.
// With no names the record carries this measure; with names it carries each
// requested measure nested under "data".
func (m *Measure) Records(names ...string) []Record {
	rows, cols := m.query.Resolve(grid.Rows), m.query.Resolve(grid.Columns)
	return m.query.extractor.Records(rows, cols, m.name, names)
}

// Flat returns the bare values of Records, concatenated in row-major order.
func (m *Measure) Flat(names ...string) []any {
	rows, cols := m.query.Resolve(grid.Rows), m.query.Resolve(grid.Columns)
	return m.query.extractor.Flat(rows, cols, m.name, names)
}
