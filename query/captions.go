package query

import "github.com/spektr-org/pivotq/grid"

// Captions maps display captions back to canonical field names.
// It is built once per Query and never modified afterwards.
type Captions struct {
	names map[string]string
}

// NewCaptions collects the aliases of every row, column and data field.
// Fields without a caption, or whose caption equals the name, add nothing.
func NewCaptions(cfg grid.Config) Captions {
	c := Captions{names: make(map[string]string)}
	for _, fields := range [][]grid.Field{cfg.RowFields, cfg.ColumnFields, cfg.DataFields} {
		for _, f := range fields {
			if f.HasAlias() {
				c.names[f.Caption] = f.Name
			}
		}
	}
	return c
}

// Canonical returns the field name behind a caption. Anything that is not a
// known caption is returned unchanged, so names and captions are both accepted.
func (c Captions) Canonical(nameOrCaption string) string {
	if name, ok := c.names[nameOrCaption]; ok {
		return name
	}
	return nameOrCaption
}

// Len returns the number of aliases.
func (c Captions) Len() int { return len(c.names) }
