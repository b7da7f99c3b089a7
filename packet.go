package fsci

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Packet is one logical FSCI packet, header stripped.
type Packet struct {
	Group   Group
	OpCode  uint8
	Payload []byte
}

// IsEvent reports whether the opcode lies in the event range.
func (p Packet) IsEvent() bool {
	return p.OpCode >= EventBase
}

// Len returns the encoded size of p.
func (p Packet) Len() int {
	return HeaderLength + len(p.Payload)
}

// Marshal encodes p into b, which must be at least p.Len() bytes.
func (p Packet) Marshal(b []byte) error {
	if len(p.Payload) > MaxPayloadLength {
		return errors.Wrapf(ErrMalformed, "payload length %d", len(p.Payload))
	}
	if len(b) < p.Len() {
		return fmt.Errorf("buffer too small: want %d, have %d", p.Len(), len(b))
	}
	b[0] = byte(p.Group)
	b[1] = p.OpCode
	binary.LittleEndian.PutUint16(b[2:], uint16(len(p.Payload)))
	copy(b[HeaderLength:], p.Payload)
	return nil
}

// Bytes returns the encoded packet.
func (p Packet) Bytes() ([]byte, error) {
	b := make([]byte, p.Len())
	if err := p.Marshal(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ParsePacket decodes a logical packet. The payload aliases b.
func ParsePacket(b []byte) (Packet, error) {
	if len(b) < HeaderLength {
		return Packet{}, errors.Wrapf(ErrMalformed, "short packet: % X", b)
	}
	plen := int(binary.LittleEndian.Uint16(b[2:]))
	if plen != len(b)-HeaderLength {
		return Packet{}, errors.Wrapf(ErrMalformed, "payload length %d, have %d", plen, len(b)-HeaderLength)
	}
	return Packet{
		Group:   Group(b[0]),
		OpCode:  b[1],
		Payload: b[HeaderLength:],
	}, nil
}

// PayloadLength reads the payload length field of an encoded header.
func PayloadLength(hdr []byte) (int, error) {
	if len(hdr) < HeaderLength {
		return 0, fmt.Errorf("not enough bytes")
	}
	return int(binary.LittleEndian.Uint16(hdr[2:])), nil
}

func (p Packet) String() string {
	return fmt.Sprintf("%s op 0x%02X [% X]", p.Group, p.OpCode, p.Payload)
}
