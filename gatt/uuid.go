package gatt

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rigado/fsci/codec"
	"github.com/rigado/fsci/sliceops"
)

// UUIDType is the wire tag of a UUID.
type UUIDType = codec.UUIDType

const (
	UUIDType16  = codec.UUID16
	UUIDType32  = codec.UUID32
	UUIDType128 = codec.UUID128
)

// A UUID is a tagged BLE UUID. Bytes are little endian, as on the wire.
type UUID struct {
	Type  UUIDType
	Bytes []byte
}

// UUID16 converts a uint16 (such as 0x1800) to a UUID.
func UUID16(i uint16) UUID {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, i)
	return UUID{UUIDType16, b}
}

// UUID32 converts a uint32 to a UUID.
func UUID32(i uint32) UUID {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, i)
	return UUID{UUIDType32, b}
}

// Parse parses a standard-format UUID string, such
// as "1800" or "34DA3AD1-7110-41A1-B1EF-4430F509CDE7".
func Parse(s string) (UUID, error) {
	s = strings.Replace(s, "-", "", -1)
	b, err := hex.DecodeString(s)
	if err != nil {
		return UUID{}, err
	}
	t, err := codec.TypeForLen(len(b))
	if err != nil {
		return UUID{}, err
	}
	return UUID{t, sliceops.Reverse(b)}, nil
}

// MustParse parses a standard-format UUID string,
// like Parse, but panics in case of error.
func MustParse(s string) UUID {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Len returns the wire size of the UUID bytes.
func (u UUID) Len() int {
	return u.Type.Size()
}

// String hex-encodes a UUID, most significant byte first.
func (u UUID) String() string {
	return fmt.Sprintf("%x", sliceops.Reverse(u.Bytes))
}

// Equal returns a boolean reporting whether v represent the same UUID as u.
func (u UUID) Equal(v UUID) bool {
	return u.Type == v.Type && bytes.Equal(u.Bytes, v.Bytes)
}

// MarshalText lets UUIDs act as readable keys in cached profiles.
func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *UUID) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Field returns the tagged wire form of u.
func (u UUID) Field() codec.Field {
	return codec.UUID(u.Type, u.Bytes)
}

// ReadUUID decodes a type tag and the UUID bytes.
func ReadUUID(r *codec.Reader) UUID {
	t := r.UUIDType()
	return UUID{t, r.UUID(t)}
}
