package fsci

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Addr identifies a remote peer across sessions. Device ids are reassigned
// on every connection, so anything persisted is keyed by address instead.
type Addr interface {
	String() string
	Bytes() []byte
}

// NewAddr creates an Addr from string
func NewAddr(s string) Addr {
	return addr(strings.ToLower(s))
}

// DeviceAddr names a peer by its device id when no address is known.
func DeviceAddr(deviceID uint8) Addr {
	return addr(fmt.Sprintf("device-%d", deviceID))
}

type addr string

func (a addr) String() string {
	return string(a)
}

func (a addr) Bytes() []byte {
	hexStr := strings.Replace(a.String(), ":", "", -1)

	out, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil
	}

	return out
}
