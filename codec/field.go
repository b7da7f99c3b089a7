package codec

// Field is one piece of a wire layout. Size must report exactly the number
// of bytes Put writes, so a layout can be sized before it is encoded.
type Field interface {
	Size() int
	Put(w *Writer)
}

type U8 uint8

func (v U8) Size() int     { return 1 }
func (v U8) Put(w *Writer) { w.U8(uint8(v)) }

type U16 uint16

func (v U16) Size() int     { return 2 }
func (v U16) Put(w *Writer) { w.U16(uint16(v)) }

type U32 uint32

func (v U32) Size() int     { return 4 }
func (v U32) Put(w *Writer) { w.U32(uint32(v)) }

// Bool is a one byte flag.
type Bool bool

func (v Bool) Size() int { return 1 }
func (v Bool) Put(w *Writer) {
	if v {
		w.U8(1)
	} else {
		w.U8(0)
	}
}

// Bytes is a raw array with no framing.
type Bytes []byte

func (v Bytes) Size() int     { return len(v) }
func (v Bytes) Put(w *Writer) { w.Array(v) }

// Bytes16 is a u16 length followed by the array.
type Bytes16 []byte

func (v Bytes16) Size() int { return 2 + len(v) }
func (v Bytes16) Put(w *Writer) {
	w.U16(uint16(len(v)))
	w.Array(v)
}

type uuidField struct {
	t UUIDType
	b []byte
}

// UUID is a type tag followed by the UUID bytes.
func UUID(t UUIDType, b []byte) Field {
	return uuidField{t, b}
}

func (f uuidField) Size() int { return 1 + f.t.Size() }
func (f uuidField) Put(w *Writer) {
	w.U8(uint8(f.t))
	w.UUID(f.t, f.b)
}

// Fields is a sequence laid out back to back.
type Fields []Field

func (ff Fields) Size() int {
	n := 0
	for _, f := range ff {
		n += f.Size()
	}
	return n
}

func (ff Fields) Put(w *Writer) {
	for _, f := range ff {
		f.Put(w)
	}
}

type slice8[T any] struct {
	items []T
	elem  func(T) Field
}

// Slice8 is a u8 element count followed by every element. An empty slice
// is just the zero count.
func Slice8[T any](items []T, elem func(T) Field) Field {
	return slice8[T]{items, elem}
}

func (s slice8[T]) Size() int {
	n := 1
	for _, it := range s.items {
		n += s.elem(it).Size()
	}
	return n
}

func (s slice8[T]) Put(w *Writer) {
	w.U8(uint8(len(s.items)))
	for _, it := range s.items {
		s.elem(it).Put(w)
	}
}

// Handles is the common u8 count + u16 handle list.
func Handles(hh []uint16) Field {
	return Slice8(hh, func(h uint16) Field { return U16(h) })
}

// Marshal sizes f, allocates exactly that much and encodes f.
func Marshal(f Field) []byte {
	b := make([]byte, f.Size())
	f.Put(NewWriter(b))
	return b
}

// ReadN decodes n elements with dec. Decoding stops at the first failure
// recorded on r. A zero count yields nil.
func ReadN[T any](r *Reader, n int, dec func(*Reader) T) []T {
	if n == 0 || r.Err() != nil {
		return nil
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v := dec(r)
		if r.Err() != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// Read8 decodes a u8 count and that many elements.
func Read8[T any](r *Reader, dec func(*Reader) T) []T {
	n := int(r.U8())
	return ReadN(r, n, dec)
}

// ReadHandles decodes a u8 count + u16 handle list.
func ReadHandles(r *Reader) []uint16 {
	return Read8(r, func(r *Reader) uint16 { return r.U16() })
}
