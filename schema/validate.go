package schema

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spektr-org/pivotq/grid"
)

// ErrInvalidLayout wraps every schema validation failure.
var ErrInvalidLayout = errors.New("schema: invalid layout")

var validate = validator.New()

// Validate checks the catalogue and the layout: struct rules first, then the
// cross references a pivot grid relies on.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	for _, key := range append(append([]string(nil), c.Layout.Rows...), c.Layout.Columns...) {
		if _, ok := c.Dimension(key); !ok {
			return fmt.Errorf("%w: layout references unknown dimension %q", ErrInvalidLayout, key)
		}
	}
	for _, key := range c.Layout.Data {
		if _, ok := c.Measure(key); !ok {
			return fmt.Errorf("%w: layout references unknown measure %q", ErrInvalidLayout, key)
		}
	}
	if dm := c.Layout.DefaultMeasure; dm != "" && !hasDataField(c.GridConfig().DataFields, dm) {
		return fmt.Errorf("%w: default measure %q is not a data field", ErrInvalidLayout, dm)
	}

	onRows := make(map[string]bool, len(c.Layout.Rows))
	for _, key := range c.Layout.Rows {
		onRows[key] = true
	}
	for _, key := range c.Layout.Columns {
		if onRows[key] {
			return fmt.Errorf("%w: dimension %q is on both rows and columns", ErrInvalidLayout, key)
		}
	}

	// Captions double as lookup keys, so they must not shadow another name.
	dims := make([][2]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		dims[i] = [2]string{d.Key, d.DisplayName}
	}
	if err := checkDisplayNames("dimension", dims); err != nil {
		return err
	}
	measures := make([][2]string, len(c.Measures))
	for i, m := range c.Measures {
		measures[i] = [2]string{m.Key, m.DisplayName}
	}
	return checkDisplayNames("measure", measures)
}

// checkDisplayNames takes (key, display name) pairs.
func checkDisplayNames(kind string, pairs [][2]string) error {
	names := make(map[string]string, 2*len(pairs))
	for _, p := range pairs {
		names[p[0]] = p[0]
	}
	for _, p := range pairs {
		key, display := p[0], p[1]
		if display == "" || display == key {
			continue
		}
		if owner, taken := names[display]; taken {
			return fmt.Errorf("%w: %s display name %q of %q collides with %q", ErrInvalidLayout, kind, display, key, owner)
		}
		names[display] = key
	}
	return nil
}

func hasDataField(fields []grid.Field, name string) bool {
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
