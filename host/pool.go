package host

import (
	"github.com/pkg/errors"
	"github.com/rigado/fsci"
)

// Default pool geometry: a command with a maximum attribute value plus
// headers fits one buffer.
const (
	DefaultBufferSize  = 1024
	DefaultBufferCount = 8
)

// PoolAllocator hands out fixed size buffers from a preallocated set.
// Alloc never blocks; an empty pool is reported as fsci.ErrNoMemory.
type PoolAllocator struct {
	size int
	bufs chan []byte
}

// NewPoolAllocator preallocates count buffers of size bytes.
func NewPoolAllocator(size, count int) *PoolAllocator {
	p := &PoolAllocator{
		size: size,
		bufs: make(chan []byte, count),
	}
	for i := 0; i < count; i++ {
		p.bufs <- make([]byte, size)
	}
	return p
}

// Alloc returns a buffer of exactly n bytes.
func (p *PoolAllocator) Alloc(n int) ([]byte, error) {
	if n > p.size {
		return nil, errors.Wrapf(fsci.ErrNoMemory, "%d bytes requested, buffers are %d", n, p.size)
	}
	select {
	case b := <-p.bufs:
		return b[:n], nil
	default:
		return nil, errors.Wrap(fsci.ErrNoMemory, "pool exhausted")
	}
}

// Free returns b to the pool. Buffers the pool did not hand out are
// dropped.
func (p *PoolAllocator) Free(b []byte) {
	if cap(b) != p.size {
		return
	}
	select {
	case p.bufs <- b[:p.size]:
	default:
	}
}

// Available returns the number of idle buffers.
func (p *PoolAllocator) Available() int {
	return len(p.bufs)
}
