// Package param implements bounded, optionally persisted settings for the rig.
//
// A Param always holds a value within [Min, Max]. Arithmetic saturates at the
// bounds instead of overflowing. The value cell is atomic so it may be written from
// another goroutine (the interrupt handler on the firmware) while the main loop
// reads it. Bounds and descriptor belong to the owner and are not synchronized.
package param

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/calvinmclean/spin360"
	"github.com/calvinmclean/spin360/store"
)

var (
	// ErrInvalidBounds is returned when min is greater than max
	ErrInvalidBounds = errors.New("invalid bounds")
	// ErrOutOfRange is returned when a value is outside of [min, max]
	ErrOutOfRange = errors.New("value out of range")
)

// Size is the number of bytes a Param occupies in a store
const Size = 2

// Param is a clamped integer setting
type Param struct {
	descriptor string
	address    store.Address
	hasAddress bool

	value atomic.Int32
	min   int16
	max   int16
}

// Option configures a Param at construction
type Option func(*Param)

// WithDescriptor sets the human-readable label
func WithDescriptor(d string) Option {
	return func(p *Param) {
		p.descriptor = d
	}
}

// WithAddress enables persistence at addr
func WithAddress(addr store.Address) Option {
	return func(p *Param) {
		p.address = addr
		p.hasAddress = true
	}
}

// New creates a Param. It fails if min > max or value is not within them.
func New(value, min, max int16, opts ...Option) (*Param, error) {
	if min > max {
		return nil, fmt.Errorf("%w: min %d > max %d", ErrInvalidBounds, min, max)
	}
	if value < min || value > max {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, value, min, max)
	}

	p := &Param{min: min, max: max}
	p.value.Store(int32(value))
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// MustNew is like New but panics on error. It is meant for static tables.
func MustNew(value, min, max int16, opts ...Option) *Param {
	p, err := New(value, min, max, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Value returns the current value
func (p *Param) Value() int16 {
	return int16(p.value.Load())
}

// Min returns the lower bound
func (p *Param) Min() int16 {
	return p.min
}

// Max returns the upper bound
func (p *Param) Max() int16 {
	return p.max
}

// Descriptor returns the label, which may be empty
func (p *Param) Descriptor() string {
	return p.descriptor
}

// Address returns the store address and whether the Param is persisted at all
func (p *Param) Address() (store.Address, bool) {
	return p.address, p.hasAddress
}

// Persisted reports whether Persist and Load reach a store
func (p *Param) Persisted() bool {
	return p.hasAddress
}

// Clone returns an independent copy
func (p *Param) Clone() *Param {
	c := &Param{
		descriptor: p.descriptor,
		address:    p.address,
		hasAddress: p.hasAddress,
		min:        p.min,
		max:        p.max,
	}
	c.value.Store(p.value.Load())
	return c
}

// Ref returns a read-only reference to the value cell along with the current bounds
func (p *Param) Ref() spin360.VariableRef {
	return spin360.NewVariableRef(&p.value, int(p.min), int(p.max))
}

func (p *Param) String() string {
	name := p.descriptor
	if name == "" {
		name = "param"
	}
	return fmt.Sprintf("%s=%d [%d, %d]", name, p.Value(), p.min, p.max)
}

// SetMin replaces the lower bound and pulls the value up into the new range if needed
func (p *Param) SetMin(min int16) error {
	if min > p.max {
		return fmt.Errorf("%w: min %d > max %d", ErrInvalidBounds, min, p.max)
	}
	p.min = min
	p.update(func(v int16) int16 { return clamp(int(v), p.min, p.max) })
	return nil
}

// SetMax replaces the upper bound and pulls the value down into the new range if needed
func (p *Param) SetMax(max int16) error {
	if max < p.min {
		return fmt.Errorf("%w: max %d < min %d", ErrInvalidBounds, max, p.min)
	}
	p.max = max
	p.update(func(v int16) int16 { return clamp(int(v), p.min, p.max) })
	return nil
}

// Set stores v if it is within bounds
func (p *Param) Set(v int16) error {
	if v < p.min || v > p.max {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, v, p.min, p.max)
	}
	p.value.Store(int32(v))
	return nil
}

// Add moves the value by delta, saturating at the bounds, and returns p
func (p *Param) Add(delta int) *Param {
	p.update(func(v int16) int16 { return saturatingAdd(v, delta, p.min, p.max) })
	return p
}

// AddAssign moves the value by delta in place and returns the new value
func (p *Param) AddAssign(delta int) int16 {
	return p.Add(delta).Value()
}

// Increment adds one unless the value is already at Max and returns p
func (p *Param) Increment() *Param {
	return p.Add(1)
}

// PostIncrement returns a copy of p taken before incrementing it
func (p *Param) PostIncrement() *Param {
	prev := p.Clone()
	p.Increment()
	return prev
}

// Decrement subtracts one unless the value is already at Min and returns p
func (p *Param) Decrement() *Param {
	return p.Add(-1)
}

// PostDecrement returns a copy of p taken before decrementing it
func (p *Param) PostDecrement() *Param {
	prev := p.Clone()
	p.Decrement()
	return prev
}

// Persist writes the value to s. It does nothing when p has no address.
func (p *Param) Persist(s store.Store) error {
	if !p.hasAddress {
		return nil
	}

	var buf [Size]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(p.Value()))

	err := s.Put(p.address, buf[:])
	if err != nil {
		return fmt.Errorf("error persisting %q at %s: %w", p.descriptor, p.address, err)
	}
	return nil
}

// Load reads the value from s, clamping it into range since erased storage holds
// arbitrary data. When p has no address, s is not touched. The resulting value is
// returned either way. On error the value is left unchanged.
func (p *Param) Load(s store.Store) (int16, error) {
	if !p.hasAddress {
		return p.Value(), nil
	}

	var buf [Size]byte
	err := s.Get(p.address, buf[:])
	if err != nil {
		return p.Value(), fmt.Errorf("error loading %q from %s: %w", p.descriptor, p.address, err)
	}

	v := clamp(int(int16(binary.LittleEndian.Uint16(buf[:]))), p.min, p.max)
	p.value.Store(int32(v))
	return v, nil
}

// update applies f until no other writer raced with it
func (p *Param) update(f func(int16) int16) {
	for {
		old := p.value.Load()
		if p.value.CompareAndSwap(old, int32(f(int16(old)))) {
			return
		}
	}
}

// saturatingAdd returns clamp(v+delta, min, max) without overflowing for any delta
func saturatingAdd(v int16, delta int, min, max int16) int16 {
	if delta > 0 {
		if delta >= int(max)-int(v) {
			return max
		}
	} else {
		if delta <= int(min)-int(v) {
			return min
		}
	}
	return clamp(int(v)+delta, min, max)
}

func clamp(v int, min, max int16) int16 {
	if v < int(min) {
		return min
	}
	if v > int(max) {
		return max
	}
	return int16(v)
}
