package transport

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/rigado/fsci"
)

// Packet kinds, carried in the first byte of every chunk on the wire.
const (
	KindCommand byte = 0x01
	KindData    byte = 0x02
	KindEvent   byte = 0x04
)

var (
	// ErrFraming is reported for a segmented packet that overruns its
	// declared length or starts with less than a full header.
	ErrFraming = errors.New("framing error")
	// ErrInterleaved is reported when a whole packet arrives while a
	// segmented one is still being reassembled.
	ErrInterleaved = errors.New("interleaved packet during reassembly")
	// ErrUnknownKind is reported for a chunk with an unknown kind byte.
	ErrUnknownKind = errors.New("unknown packet kind")
)

// Framer turns kind-tagged deliveries into whole logical packets. Command
// and event deliveries pass straight through; data deliveries accumulate
// until the length in their header is reached. A Framer is not safe for
// concurrent use.
type Framer struct {
	out func([]byte)

	b          []byte
	expected   int
	inProgress bool
}

// NewFramer returns a framer handing every complete packet to out.
func NewFramer(out func([]byte)) *Framer {
	return &Framer{out: out}
}

// InProgress reports whether a segmented packet is being reassembled.
func (f *Framer) InProgress() bool {
	return f.inProgress
}

// Remaining returns the number of bytes still missing from the packet
// being reassembled.
func (f *Framer) Remaining() int {
	if !f.inProgress {
		return 0
	}
	return f.expected - len(f.b)
}

// Deliver feeds one chunk of the given kind.
func (f *Framer) Deliver(kind byte, b []byte) error {
	switch kind {
	case KindCommand, KindEvent:
		if f.inProgress {
			f.reset()
			return errors.Wrapf(ErrInterleaved, "kind 0x%02X, partial packet dropped", kind)
		}
		f.emit(b)
		return nil

	case KindData:
		return f.assemble(b)

	default:
		return errors.Wrapf(ErrUnknownKind, "0x%02X", kind)
	}
}

func (f *Framer) assemble(b []byte) error {
	if !f.inProgress {
		if len(b) < fsci.HeaderLength {
			return errors.Wrapf(ErrFraming, "first fragment of %d bytes", len(b))
		}
		f.expected = fsci.HeaderLength + int(binary.LittleEndian.Uint16(b[2:]))
		f.b = make([]byte, 0, f.expected)
		f.inProgress = true
	}

	if len(f.b)+len(b) > f.expected {
		n := len(f.b) + len(b)
		f.reset()
		return errors.Wrapf(ErrFraming, "overrun: %d bytes for a %d byte packet", n, f.expected)
	}
	f.b = append(f.b, b...)

	if len(f.b) == f.expected {
		p := f.b
		f.reset()
		f.out(p)
	}
	return nil
}

func (f *Framer) emit(b []byte) {
	p := make([]byte, len(b))
	copy(p, b)
	f.out(p)
}

func (f *Framer) reset() {
	f.b = nil
	f.expected = 0
	f.inProgress = false
}
