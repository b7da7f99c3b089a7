package host

import (
	"fmt"
	"time"

	"github.com/rigado/fsci"
)

// SetInterface sets the interface id packets are sent on.
func (h *Host) SetInterface(id uint32) error {
	h.iface = id
	return nil
}

// SetMirrorCommands enables decoding of commands echoed by the remote side.
func (h *Host) SetMirrorCommands(enable bool) error {
	h.mirror = enable
	return nil
}

// SetStatusTimeout overrides DefaultStatusTimeout.
func (h *Host) SetStatusTimeout(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("invalid status timeout %v", d)
	}
	h.statusTimeout = d
	return nil
}

// SetAllocator overrides the default buffer pool.
func (h *Host) SetAllocator(a fsci.Allocator) error {
	if a == nil {
		return fmt.Errorf("nil allocator")
	}
	h.alloc = a
	return nil
}

// SetErrorHandler ...
func (h *Host) SetErrorHandler(handler func(error)) error {
	h.errorHandler = handler
	return nil
}

// SetLogger overrides the package logger.
func (h *Host) SetLogger(l fsci.Logger) error {
	h.logger = l
	return nil
}

// SetTransportUart sets the uart path and baud rate
func (h *Host) SetTransportUart(path string, baud uint) error {
	h.transport = transportConfig{
		uart: &transportUart{path, baud},
	}
	return nil
}

// SetTransportSocket sets the address of a serial-to-tcp bridge
func (h *Host) SetTransportSocket(addr string, timeout time.Duration) error {
	h.transport = transportConfig{
		socket: &transportSocket{addr, timeout},
	}
	return nil
}
