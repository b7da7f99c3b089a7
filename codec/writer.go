package codec

import (
	"encoding/binary"
	"fmt"
)

// Writer encodes fields into a buffer that was sized up front from the
// Size of what is about to be written. Writing past the end is a sizing
// bug and panics.
type Writer struct {
	b   []byte
	off int
}

// NewWriter returns a writer positioned at the start of b.
func NewWriter(b []byte) *Writer {
	return &Writer{b: b}
}

func (w *Writer) U8(v uint8) {
	w.b[w.off] = v
	w.off++
}

func (w *Writer) U16(v uint16) {
	binary.LittleEndian.PutUint16(w.b[w.off:], v)
	w.off += 2
}

func (w *Writer) U32(v uint32) {
	binary.LittleEndian.PutUint32(w.b[w.off:], v)
	w.off += 4
}

// UUID writes exactly t.Size() bytes of u.
func (w *Writer) UUID(t UUIDType, u []byte) {
	n := t.Size()
	if len(u) != n {
		panic(fmt.Sprintf("codec: %v with %d bytes", t, len(u)))
	}
	w.off += copy(w.b[w.off:w.off+n], u)
}

// Array writes b verbatim. Its length, if the layout has one, must have
// been written just before.
func (w *Writer) Array(b []byte) {
	if w.off+len(b) > len(w.b) {
		panic(fmt.Sprintf("codec: array of %d overflows buffer at %d/%d", len(b), w.off, len(w.b)))
	}
	w.off += copy(w.b[w.off:], b)
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.off
}

// Bytes returns the written part of the buffer.
func (w *Writer) Bytes() []byte {
	return w.b[:w.off]
}
