package codec

import "fmt"

// UUIDType tags the wire form of a UUID. The tag alone determines how many
// bytes follow; no length prefix is ever written.
type UUIDType uint8

const (
	UUID16  UUIDType = 0x01
	UUID128 UUIDType = 0x02
	UUID32  UUIDType = 0x03
)

// Known reports whether t is one of the defined UUID forms.
func (t UUIDType) Known() bool {
	switch t {
	case UUID16, UUID32, UUID128:
		return true
	}
	return false
}

// Size returns the wire size of a UUID of type t. It panics on an unknown
// type; the set of types is closed.
func (t UUIDType) Size() int {
	switch t {
	case UUID16:
		return 2
	case UUID32:
		return 4
	case UUID128:
		return 16
	}
	panic(fmt.Sprintf("codec: unknown uuid type 0x%02X", uint8(t)))
}

func (t UUIDType) String() string {
	switch t {
	case UUID16:
		return "uuid16"
	case UUID32:
		return "uuid32"
	case UUID128:
		return "uuid128"
	}
	return fmt.Sprintf("uuid(0x%02X)", uint8(t))
}

// TypeForLen maps a UUID byte length back to its type.
func TypeForLen(n int) (UUIDType, error) {
	switch n {
	case 2:
		return UUID16, nil
	case 4:
		return UUID32, nil
	case 16:
		return UUID128, nil
	}
	return 0, fmt.Errorf("UUIDs must have length 2, 4 or 16, got %d", n)
}
