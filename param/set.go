package param

import (
	"errors"
	"fmt"

	"github.com/calvinmclean/spin360/store"
)

// ErrDuplicate is returned when two params in a Set share a descriptor or storage
var ErrDuplicate = errors.New("duplicate param")

// Set is an ordered table of params, like the rig's settings menu
type Set struct {
	params []*Param
	byName map[string]*Param
}

// NewSet creates a Set. Descriptors must be unique when non-empty and persisted
// params must not overlap in the store.
func NewSet(params ...*Param) (*Set, error) {
	s := &Set{byName: map[string]*Param{}}

	used := map[int]string{}
	for _, p := range params {
		if p.descriptor != "" {
			if _, ok := s.byName[p.descriptor]; ok {
				return nil, fmt.Errorf("%w: descriptor %q", ErrDuplicate, p.descriptor)
			}
			s.byName[p.descriptor] = p
		}

		if addr, ok := p.Address(); ok {
			for i := int(addr); i < int(addr)+Size; i++ {
				if other, taken := used[i]; taken {
					return nil, fmt.Errorf("%w: %q overlaps %q at %s", ErrDuplicate, p.descriptor, other, store.Address(i))
				}
				used[i] = p.descriptor
			}
		}

		s.params = append(s.params, p)
	}

	return s, nil
}

// Get returns the param with the given descriptor
func (s *Set) Get(name string) (*Param, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// At returns the i-th param or nil if i is out of range
func (s *Set) At(i int) *Param {
	if i < 0 || i >= len(s.params) {
		return nil
	}
	return s.params[i]
}

// Len returns the number of params
func (s *Set) Len() int {
	return len(s.params)
}

// All returns the params in order
func (s *Set) All() []*Param {
	return s.params
}

// PersistAll persists every param, continuing past failures
func (s *Set) PersistAll(st store.Store) error {
	var errs []error
	for _, p := range s.params {
		errs = append(errs, p.Persist(st))
	}
	return errors.Join(errs...)
}

// LoadAll loads every param, continuing past failures
func (s *Set) LoadAll(st store.Store) error {
	var errs []error
	for _, p := range s.params {
		_, err := p.Load(st)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Blank reports whether every persisted param reads as erased bytes in st, as on
// a freshly flashed EEPROM. A Set without persisted params is never blank.
func (s *Set) Blank(st store.Store) (bool, error) {
	persisted := false
	var buf [Size]byte
	for _, p := range s.params {
		if !p.hasAddress {
			continue
		}
		persisted = true

		err := st.Get(p.address, buf[:])
		if err != nil {
			return false, fmt.Errorf("error reading %q from %s: %w", p.descriptor, p.address, err)
		}
		for _, b := range buf {
			if b != store.Erased {
				return false, nil
			}
		}
	}
	return persisted, nil
}
