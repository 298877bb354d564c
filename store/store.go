// Package store provides byte-addressed non-volatile stores that params are
// persisted to. A value written at an address reads back unchanged until that
// address is overwritten.
package store

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrOutOfBounds is returned when an access does not fit inside the store
var ErrOutOfBounds = errors.New("address out of bounds")

// Address is a byte offset into a store
type Address uint16

func (a Address) String() string {
	return "0x" + strconv.FormatUint(uint64(a), 16)
}

// Store is a keyed byte store such as an EEPROM
type Store interface {
	// Put writes data starting at addr
	Put(addr Address, data []byte) error
	// Get fills data with the bytes starting at addr
	Get(addr Address, data []byte) error
}

// Erased is the value of a byte that was never written
const Erased byte = 0xFF

func checkBounds(addr Address, n int, size int) error {
	if int(addr)+n > size {
		return fmt.Errorf("%w: %s+%d exceeds %d bytes", ErrOutOfBounds, addr, n, size)
	}
	return nil
}
