// Package pivotq answers filter queries against pivot grids.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/pivotq/grid"
//	    "github.com/spektr-org/pivotq/query"
//	)
//
//	pg, err := grid.Build(view, grid.Config{
//	    RowFields:  []grid.Field{{Name: "country"}, {Name: "city"}},
//	    DataFields: []grid.Field{{Name: "amount", Caption: "Revenue"}},
//	})
//	q, err := query.New(pg)
//	records := q.Filter("country", "USA").Filter("city", "NY").Measure("Revenue").Records()
//
// The grid package builds the row and column hierarchies from records and
// computes cell values. The query package resolves chained field filters
// into hierarchy nodes per axis and reads measures at every matching
// (row, column) pair. Schema discovery and CSV parsing live in schema and
// helpers; cmd/pivotq is the command-line front end.
package pivotq
