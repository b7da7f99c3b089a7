package fsci

import (
	"time"
)

// DeviceOption is an interface which the host should implement to allow using configuration options
type DeviceOption interface {
	SetInterface(id uint32) error
	SetMirrorCommands(bool) error
	SetStatusTimeout(time.Duration) error
	SetAllocator(Allocator) error
	SetErrorHandler(handler func(error)) error
	SetLogger(Logger) error

	SetTransportUart(path string, baud uint) error
	SetTransportSocket(addr string, timeout time.Duration) error
}

// Allocator hands out the byte buffers the marshalling layer fills on
// behalf of callers that did not supply their own.
type Allocator interface {
	Alloc(n int) ([]byte, error)
	Free(b []byte)
}

// An Option is a configuration function, which configures the host.
type Option func(DeviceOption) error

// OptInterface selects the serial interface id packets are sent on and
// accepted from.
func OptInterface(id uint32) Option {
	return func(opt DeviceOption) error {
		return opt.SetInterface(id)
	}
}

// OptMirrorCommands makes inbound packets carrying command opcodes decode
// as commands instead of being rejected. Devices running a loopback or
// sniffer build echo every command they receive.
func OptMirrorCommands(enable bool) Option {
	return func(opt DeviceOption) error {
		return opt.SetMirrorCommands(enable)
	}
}

// OptStatusTimeout bounds the wait for the synchronous status of a command.
// Statuses carry no command identifier: one arriving after its command timed
// out is taken as the status of the next command of the same group. The host
// logs a warning when that may have happened, so keep the timeout well above
// the engine's worst case.
func OptStatusTimeout(d time.Duration) Option {
	return func(opt DeviceOption) error {
		return opt.SetStatusTimeout(d)
	}
}

// OptAllocator overrides the default buffer pool.
func OptAllocator(a Allocator) Option {
	return func(opt DeviceOption) error {
		return opt.SetAllocator(a)
	}
}

// OptErrorHandler sets error handler
func OptErrorHandler(handler func(error)) Option {
	return func(opt DeviceOption) error {
		return opt.SetErrorHandler(handler)
	}
}

// OptLogger overrides the package logger for one host.
func OptLogger(l Logger) Option {
	return func(opt DeviceOption) error {
		return opt.SetLogger(l)
	}
}

// OptTransportUart set uart transport
func OptTransportUart(path string, baud uint) Option {
	return func(opt DeviceOption) error {
		return opt.SetTransportUart(path, baud)
	}
}

// OptTransportSocket set socket transport, used with serial-to-tcp bridges
func OptTransportSocket(addr string, timeout time.Duration) Option {
	return func(opt DeviceOption) error {
		return opt.SetTransportSocket(addr, timeout)
	}
}
