package transport

import (
	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
)

// DefaultBaudRate is the UART rate of the reference boards.
const DefaultBaudRate = 115200

// DefaultSerialOptions returns 8N1 options with a short inter-character
// timeout, so reads return periodically and the link can notice a close.
func DefaultSerialOptions() serial.OpenOptions {
	return serial.OpenOptions{
		BaudRate:              DefaultBaudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	}
}

// OpenSerial opens a UART and wraps it in a Link.
func OpenSerial(path string, baud uint, iface uint32) (*Link, error) {
	so := DefaultSerialOptions()
	so.PortName = path
	if baud != 0 {
		so.BaudRate = baud
	}

	sp, err := serial.Open(so)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", path)
	}
	return NewLink(sp, iface), nil
}
