package store

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ReaderWriterAt is a random-access device such as an I2C EEPROM or a file
type ReaderWriterAt interface {
	io.ReaderAt
	io.WriterAt
}

// Block adapts a ReaderWriterAt of a known size to a Store
type Block struct {
	mu     sync.Mutex
	dev    ReaderWriterAt
	size   int
	closer io.Closer
}

var _ Store = (*Block)(nil)

// NewBlock creates a Store on top of dev, which holds size bytes
func NewBlock(dev ReaderWriterAt, size int) *Block {
	return &Block{dev: dev, size: size}
}

// Put implements Store
func (b *Block) Put(addr Address, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := checkBounds(addr, len(data), b.size); err != nil {
		return err
	}

	_, err := b.dev.WriteAt(data, int64(addr))
	if err != nil {
		return fmt.Errorf("error writing %d bytes at %s: %w", len(data), addr, err)
	}
	return nil
}

// Get implements Store
func (b *Block) Get(addr Address, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := checkBounds(addr, len(data), b.size); err != nil {
		return err
	}

	n, err := b.dev.ReadAt(data, int64(addr))
	if err != nil && !(err == io.EOF && n == len(data)) {
		return fmt.Errorf("error reading %d bytes at %s: %w", len(data), addr, err)
	}
	return nil
}

// Size returns the capacity in bytes
func (b *Block) Size() int {
	return b.size
}

// Close closes the underlying device if it was opened by OpenFile
func (b *Block) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// OpenFile opens an EEPROM image at path. A missing or short image is
// extended to size bytes, filled with Erased.
func OpenFile(path string, size int) (*Block, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening image: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error reading image info: %w", err)
	}

	if missing := int64(size) - info.Size(); missing > 0 {
		fill := make([]byte, missing)
		for i := range fill {
			fill[i] = Erased
		}
		_, err = f.WriteAt(fill, info.Size())
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("error initializing image: %w", err)
		}
	}

	b := NewBlock(f, size)
	b.closer = f
	return b, nil
}
