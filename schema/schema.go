package schema

import "github.com/spektr-org/pivotq/grid"

// ============================================================================
// SCHEMA — Describes a dataset and how it is laid out as a pivot grid
// ============================================================================
// Dimensions and measures form the catalogue of a dataset (auto-discovered
// from CSV or written by hand). The layout picks which dimensions become row
// and column fields, in hierarchy order, and which measures are data fields.
// A dimension's or measure's DisplayName becomes the field caption.
// ============================================================================

// Config describes a dataset and its pivot layout.
type Config struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Dimensions []DimensionMeta `json:"dimensions" yaml:"dimensions" validate:"unique=Key,dive"`
	Measures   []MeasureMeta   `json:"measures" yaml:"measures" validate:"unique=Key,dive"`
	Layout     Layout          `json:"layout" yaml:"layout"`

	// Auto-discovery metadata
	DiscoveredFrom string          `json:"discoveredFrom,omitempty" yaml:"discoveredFrom,omitempty"`
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty" yaml:"skippedColumns,omitempty"`
}

// DimensionMeta describes a string field usable as a row or column field.
type DimensionMeta struct {
	Key          string   `json:"key" yaml:"key" validate:"required"`
	DisplayName  string   `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	SampleValues []string `json:"sampleValues,omitempty" yaml:"sampleValues,omitempty"`
	Parent       string   `json:"parent,omitempty" yaml:"parent,omitempty"` // parent dimension key for hierarchies
}

// MeasureMeta describes a numeric field usable as a data field.
type MeasureMeta struct {
	Key         string `json:"key" yaml:"key" validate:"required"`
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Aggregation string `json:"aggregation,omitempty" yaml:"aggregation,omitempty" validate:"omitempty,oneof=sum count avg min max"`
	IsSynthetic bool   `json:"isSynthetic,omitempty" yaml:"isSynthetic,omitempty"` // auto-generated, e.g. record_count
}

// Layout lists dimension keys per axis, shallowest level first, and the
// measure keys served as data fields. An empty Data list serves every measure.
type Layout struct {
	Rows           []string `json:"rows,omitempty" yaml:"rows,omitempty" validate:"unique,dive,required"`
	Columns        []string `json:"columns,omitempty" yaml:"columns,omitempty" validate:"unique,dive,required"`
	Data           []string `json:"data,omitempty" yaml:"data,omitempty" validate:"unique,dive,required"`
	DefaultMeasure string   `json:"defaultMeasure,omitempty" yaml:"defaultMeasure,omitempty"`
}

// SkippedColumn records why a column was excluded during auto-discovery.
type SkippedColumn struct {
	Column string `json:"column" yaml:"column"`
	Reason string `json:"reason" yaml:"reason"`
}

// DefaultDimension creates a DimensionMeta with a display name.
func DefaultDimension(key, displayName string) DimensionMeta {
	return DimensionMeta{Key: key, DisplayName: displayName}
}

// DefaultMeasure creates a summed MeasureMeta.
func DefaultMeasure(key, displayName string) MeasureMeta {
	return MeasureMeta{Key: key, DisplayName: displayName, Aggregation: grid.AggSum}
}

// GetDefaultMeasure returns the layout's default measure, else the first
// data field, else the first measure.
func (c Config) GetDefaultMeasure() string {
	if c.Layout.DefaultMeasure != "" {
		return c.Layout.DefaultMeasure
	}
	if len(c.Layout.Data) > 0 {
		return c.Layout.Data[0]
	}
	if len(c.Measures) > 0 {
		return c.Measures[0].Key
	}
	return ""
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// Dimension looks up a dimension by key.
func (c Config) Dimension(key string) (DimensionMeta, bool) {
	for _, d := range c.Dimensions {
		if d.Key == key {
			return d, true
		}
	}
	return DimensionMeta{}, false
}

// Measure looks up a measure by key.
func (c Config) Measure(key string) (MeasureMeta, bool) {
	for _, m := range c.Measures {
		if m.Key == key {
			return m, true
		}
	}
	return MeasureMeta{}, false
}

// GridConfig converts the layout into pivot grid fields. Unknown keys are
// kept as caption-less fields; Validate reports them.
func (c Config) GridConfig() grid.Config {
	gc := grid.Config{
		RowFields:    c.dimensionFields(c.Layout.Rows),
		ColumnFields: c.dimensionFields(c.Layout.Columns),
	}

	data := c.Layout.Data
	if len(data) == 0 {
		data = c.MeasureKeys()
	}
	for _, key := range data {
		f := grid.Field{Name: key, Aggregation: grid.AggSum}
		if m, ok := c.Measure(key); ok {
			f.Caption = m.DisplayName
			if m.Aggregation != "" {
				f.Aggregation = m.Aggregation
			}
		}
		gc.DataFields = append(gc.DataFields, f)
	}
	return gc
}

func (c Config) dimensionFields(keys []string) []grid.Field {
	fields := make([]grid.Field, 0, len(keys))
	for _, key := range keys {
		f := grid.Field{Name: key}
		if d, ok := c.Dimension(key); ok {
			f.Caption = d.DisplayName
		}
		fields = append(fields, f)
	}
	return fields
}
