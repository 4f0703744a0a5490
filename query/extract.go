package query

import "github.com/spektr-org/pivotq/grid"

// ============================================================================
// EXTRACTOR — Cross product of resolved nodes → measure values
// ============================================================================
// Outer loop over row nodes, inner loop over column nodes, both in resolver
// order. Every value comes from Grid.GetData; nothing is computed here.
//
// Zero names:      one value per pair, for the handle's own measure.
// One-or-more:     one value per requested name per pair.
// ============================================================================

// DataKey is the record key for the default measure, and the key under which
// multi-measure values are nested.
const DataKey = "data"

// Record is one structured result: the filtered field values of the pair plus
// the measure payload.
type Record map[string]any

// Extractor pulls measure values for resolved node sets.
type Extractor struct {
	grid     Grid
	captions Captions
}

// NewExtractor binds an extractor to a grid and a caption dictionary.
func NewExtractor(g Grid, captions Captions) *Extractor {
	return &Extractor{grid: g, captions: captions}
}

// Records builds one Record per (row, column) pair.
//
// A non-root node contributes {field: value}. With no names the payload is
// {measure: value} at the top level, keyed "data" when measure is empty. With
// names the payload is nested as data: {name: value}, each name resolved
// through the captions but keyed as requested.
func (e *Extractor) Records(rows, cols []*grid.Node, measure string, names []string) []Record {
	out := make([]Record, 0, len(rows)*len(cols))
	for _, r := range rows {
		for _, c := range cols {
			rec := make(Record, 3)
			if !r.IsRoot {
				rec[r.Field.Name] = r.Value
			}
			if !c.IsRoot {
				rec[c.Field.Name] = c.Value
			}

			if len(names) == 0 {
				key := measure
				if key == "" {
					key = DataKey
				}
				rec[key] = e.grid.GetData(measure, r, c)
			} else {
				data := make(map[string]any, len(names))
				for _, name := range names {
					data[name] = e.grid.GetData(e.captions.Canonical(name), r, c)
				}
				rec[DataKey] = data
			}
			out = append(out, rec)
		}
	}
	return out
}

// Flat returns bare values in cross-product order, concatenated across pairs.
func (e *Extractor) Flat(rows, cols []*grid.Node, measure string, names []string) []any {
	per := len(names)
	if per == 0 {
		per = 1
	}
	out := make([]any, 0, len(rows)*len(cols)*per)
	for _, r := range rows {
		for _, c := range cols {
			if len(names) == 0 {
				out = append(out, e.grid.GetData(measure, r, c))
				continue
			}
			for _, name := range names {
				out = append(out, e.grid.GetData(e.captions.Canonical(name), r, c))
			}
		}
	}
	return out
}
