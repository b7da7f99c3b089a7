package codec

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/rigado/fsci"
)

// ErrUnknownUUIDType is reported when a UUID type byte is none of the
// defined forms.
var ErrUnknownUUIDType = errors.New("unknown uuid type")

// Reader decodes fields from a received payload. The first failure sticks:
// every read after it returns a zero value and Err reports the cause.
type Reader struct {
	b   []byte
	off int
	err error
}

// NewReader returns a reader positioned at the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.b) {
		r.err = errors.Wrapf(fsci.ErrMalformed, "short read: want %d at %d, have %d", n, r.off, len(r.b))
		return nil
	}
	b := r.b[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) Bool() bool {
	return r.U8() != 0
}

// UUIDType reads a type tag and checks it is a defined form.
func (r *Reader) UUIDType() UUIDType {
	t := UUIDType(r.U8())
	if r.err == nil && !t.Known() {
		r.err = errors.Wrapf(ErrUnknownUUIDType, "0x%02X at %d", uint8(t), r.off-1)
	}
	return t
}

// UUID reads the t.Size() bytes of a UUID of type t.
func (r *Reader) UUID(t UUIDType) []byte {
	if r.err != nil {
		return nil
	}
	if !t.Known() {
		r.err = errors.Wrapf(ErrUnknownUUIDType, "0x%02X", uint8(t))
		return nil
	}
	return r.Array(t.Size())
}

// Array reads n raw bytes into a fresh slice.
func (r *Reader) Array(n int) []byte {
	b := r.take(n)
	if b == nil || n == 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// Ref reads n bytes without copying them. The result aliases the payload
// and is nil after a failure.
func (r *Reader) Ref(n int) []byte {
	return r.take(n)
}

// Bytes16 reads a u16 length followed by that many bytes. A length above
// max fails with fsci.ErrValueTooLong before anything is copied.
func (r *Reader) Bytes16(max int) []byte {
	n := int(r.U16())
	if r.err != nil {
		return nil
	}
	if n > max {
		r.err = errors.Wrapf(fsci.ErrValueTooLong, "length %d, max %d", n, max)
		return nil
	}
	return r.Array(n)
}

// Fail records err unless an earlier failure is already recorded.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Err returns the first failure, if any.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.b) - r.off
}

// Finish returns the first failure, or an error if bytes were left unread.
func (r *Reader) Finish() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.b) {
		return errors.Wrapf(fsci.ErrMalformed, "%d trailing bytes", len(r.b)-r.off)
	}
	return nil
}
