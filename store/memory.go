package store

import "sync"

// Memory emulates an EEPROM of a fixed size in RAM. Every byte starts Erased.
type Memory struct {
	mu     sync.Mutex
	data   []byte
	writes map[Address]int
}

var _ Store = (*Memory)(nil)

// NewMemory creates a Memory store holding size bytes
func NewMemory(size int) *Memory {
	data := make([]byte, size)
	for i := range data {
		data[i] = Erased
	}
	return &Memory{data: data, writes: map[Address]int{}}
}

// Put implements Store
func (m *Memory) Put(addr Address, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := checkBounds(addr, len(data), len(m.data)); err != nil {
		return err
	}

	copy(m.data[addr:], data)
	m.writes[addr]++
	return nil
}

// Get implements Store
func (m *Memory) Get(addr Address, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := checkBounds(addr, len(data), len(m.data)); err != nil {
		return err
	}

	copy(data, m.data[addr:])
	return nil
}

// Writes returns how many times Put was called for addr
func (m *Memory) Writes(addr Address) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[addr]
}

// Size returns the capacity in bytes
func (m *Memory) Size() int {
	return len(m.data)
}
