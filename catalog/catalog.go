// Package catalog describes the rig's table of settings and builds the matching
// param.Set. It has no dependencies beyond param so the firmware can use it.
package catalog

import (
	"fmt"

	"github.com/calvinmclean/spin360/param"
	"github.com/calvinmclean/spin360/store"
)

// Entry describes one setting
type Entry struct {
	Name    string         `yaml:"name"`
	Address *store.Address `yaml:"address,omitempty"`
	Default int16          `yaml:"default"`
	Min     int16          `yaml:"min"`
	Max     int16          `yaml:"max"`
}

// Catalog is the ordered list of settings
type Catalog struct {
	Params []Entry `yaml:"params"`
}

// Addr returns a pointer to a, for building entries
func Addr(a store.Address) *store.Address {
	return &a
}

// Default returns the settings that ship with the rig
func Default() Catalog {
	return Catalog{Params: []Entry{
		{Name: "Pictures", Address: Addr(0), Default: 24, Min: 1, Max: 360},
		{Name: "Speed", Address: Addr(2), Default: 50, Min: 1, Max: 100},
		{Name: "Delay", Address: Addr(4), Default: 500, Min: 0, Max: 10000},
		{Name: "Degrees", Address: Addr(6), Default: 360, Min: 1, Max: 360},
		{Name: "Shutter", Address: Addr(8), Default: 200, Min: 50, Max: 2000},
	}}
}

// Build creates a param.Set with each param at its default value
func (c Catalog) Build() (*param.Set, error) {
	params := make([]*param.Param, 0, len(c.Params))
	for _, e := range c.Params {
		opts := []param.Option{param.WithDescriptor(e.Name)}
		if e.Address != nil {
			opts = append(opts, param.WithAddress(*e.Address))
		}

		p, err := param.New(e.Default, e.Min, e.Max, opts...)
		if err != nil {
			return nil, fmt.Errorf("invalid entry %q: %w", e.Name, err)
		}
		params = append(params, p)
	}

	return param.NewSet(params...)
}

// Value is a setting as reported by Snapshot
type Value struct {
	Name      string `yaml:"name"`
	Value     int16  `yaml:"value"`
	Min       int16  `yaml:"min"`
	Max       int16  `yaml:"max"`
	Persisted bool   `yaml:"persisted"`
}

// Snapshot captures the current values of s
func Snapshot(s *param.Set) []Value {
	values := make([]Value, 0, s.Len())
	for _, p := range s.All() {
		values = append(values, Value{
			Name:      p.Descriptor(),
			Value:     p.Value(),
			Min:       p.Min(),
			Max:       p.Max(),
			Persisted: p.Persisted(),
		})
	}
	return values
}
