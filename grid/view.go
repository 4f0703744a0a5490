package grid

import "sort"

// ============================================================================
// RECORD VIEWS — Read-only indexed access to the source records
// ============================================================================
// The grid never copies consumer data. Build reads one dimension per record
// and hierarchy level; GetData reads one measure per record of a cell.
//
//   SliceView      []Record, keys are the sorted union over all records
//   DomainView[T]  typed rows read through registered accessors
//   indexView      the records of one cell, as positions in a parent view
// ============================================================================

// RecordView provides indexed access to a dataset.
// Out-of-range indices and unknown keys read as "" and 0.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string
	MeasureKeys() []string
}

func inRange(i, n int) bool { return i >= 0 && i < n }

// ============================================================================
// SLICE VIEW
// ============================================================================

// SliceView serves a []Record held by the caller.
type SliceView struct {
	records []Record
	dimKeys []string
	mesKeys []string
}

// NewSliceView wraps records without copying them.
func NewSliceView(records []Record) RecordView {
	return &SliceView{
		records: records,
		dimKeys: unionKeys(records, func(r Record) map[string]string { return r.Dimensions }),
		mesKeys: unionKeys(records, func(r Record) map[string]float64 { return r.Measures }),
	}
}

func unionKeys[V any](records []Record, pick func(Record) map[string]V) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range pick(r) {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) Dimension(i int, key string) string {
	if !inRange(i, len(v.records)) {
		return ""
	}
	return v.records[i].Dimensions[key]
}

func (v *SliceView) Measure(i int, key string) float64 {
	if !inRange(i, len(v.records)) {
		return 0
	}
	return v.records[i].Measures[key]
}

func (v *SliceView) DimensionKeys() []string { return v.dimKeys }
func (v *SliceView) MeasureKeys() []string   { return v.mesKeys }

// ============================================================================
// INDEX VIEW — the records of one cell
// ============================================================================

type indexView struct {
	parent    RecordView
	positions []int
}

func newIndexView(parent RecordView, positions []int) RecordView {
	return &indexView{parent: parent, positions: positions}
}

func (v *indexView) Len() int { return len(v.positions) }

func (v *indexView) Dimension(i int, key string) string {
	if !inRange(i, len(v.positions)) {
		return ""
	}
	return v.parent.Dimension(v.positions[i], key)
}

func (v *indexView) Measure(i int, key string) float64 {
	if !inRange(i, len(v.positions)) {
		return 0
	}
	return v.parent.Measure(v.positions[i], key)
}

func (v *indexView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *indexView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

// ============================================================================
// DOMAIN ADAPTER — typed rows
// ============================================================================
//
//	view := grid.NewDomainAdapter[Sale]().
//	    Dimension("country", func(s Sale) string { return s.Country }).
//	    Measure("amount", func(s Sale) float64 { return s.Amount }).
//	    Bind(sales)
//
// ============================================================================

type accessor[T, V any] struct {
	key string
	get func(T) V
}

// DomainAdapter declares how to read dimensions and measures from a row type.
// Registering a key twice replaces its accessor and keeps its position.
type DomainAdapter[T any] struct {
	dims []accessor[T, string]
	meas []accessor[T, float64]
}

// NewDomainAdapter returns an adapter with no keys.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{}
}

// Dimension registers a dimension accessor.
func (a *DomainAdapter[T]) Dimension(key string, get func(T) string) *DomainAdapter[T] {
	a.dims = register(a.dims, key, get)
	return a
}

// Measure registers a measure accessor.
func (a *DomainAdapter[T]) Measure(key string, get func(T) float64) *DomainAdapter[T] {
	a.meas = register(a.meas, key, get)
	return a
}

func register[T, V any](list []accessor[T, V], key string, get func(T) V) []accessor[T, V] {
	for i := range list {
		if list[i].key == key {
			list[i].get = get
			return list
		}
	}
	return append(list, accessor[T, V]{key: key, get: get})
}

// Bind returns a view over rows. The accessors registered so far are
// snapshotted; the rows slice is referenced, not copied.
func (a *DomainAdapter[T]) Bind(rows []T) RecordView {
	v := &DomainView[T]{
		rows: rows,
		dims: make(map[string]func(T) string, len(a.dims)),
		meas: make(map[string]func(T) float64, len(a.meas)),
	}
	for _, d := range a.dims {
		v.dims[d.key] = d.get
		v.dimKeys = append(v.dimKeys, d.key)
	}
	for _, m := range a.meas {
		v.meas[m.key] = m.get
		v.mesKeys = append(v.mesKeys, m.key)
	}
	return v
}

// DomainView is a RecordView over typed rows.
type DomainView[T any] struct {
	rows    []T
	dims    map[string]func(T) string
	meas    map[string]func(T) float64
	dimKeys []string
	mesKeys []string
}

func (v *DomainView[T]) Len() int { return len(v.rows) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	get, ok := v.dims[key]
	if !ok || !inRange(i, len(v.rows)) {
		return ""
	}
	return get(v.rows[i])
}

func (v *DomainView[T]) Measure(i int, key string) float64 {
	get, ok := v.meas[key]
	if !ok || !inRange(i, len(v.rows)) {
		return 0
	}
	return get(v.rows[i])
}

func (v *DomainView[T]) DimensionKeys() []string { return v.dimKeys }
func (v *DomainView[T]) MeasureKeys() []string   { return v.mesKeys }
