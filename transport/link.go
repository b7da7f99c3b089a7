// Package transport carries logical FSCI packets over a byte stream: a
// serial UART, a TCP socket bridged to one, or an in-memory pipe.
package transport

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/pkg/errors"
	"github.com/rigado/fsci"
)

const rxBufferSize = 2048

// PacketHandler consumes complete logical packets.
type PacketHandler interface {
	HandlePacket(b []byte, iface uint32) error
}

// Link sends commands and reassembles inbound packets on one interface.
type Link struct {
	rw    io.ReadWriteCloser
	iface uint32

	wmu sync.Mutex

	up     PacketHandler
	framer *Framer
	acc    []byte

	errorHandler func(error)
	logger       fsci.Logger

	cmu  sync.Mutex
	done chan struct{}
	err  error
}

// NewLink wraps rw. Call Start to begin receiving.
func NewLink(rw io.ReadWriteCloser, iface uint32) *Link {
	l := &Link{
		rw:    rw,
		iface: iface,
		done:  make(chan struct{}),
		logger: fsci.ComponentLogger("link", iface),
	}
	l.framer = NewFramer(l.deliver)
	return l
}

// SetErrorHandler sets the callback for receive-side errors. Errors are
// logged when none is set.
func (l *Link) SetErrorHandler(fn func(error)) {
	l.errorHandler = fn
}

// Start hands every packet received to up, from a single goroutine.
func (l *Link) Start(up PacketHandler) {
	l.up = up
	go l.rxLoop()
}

// Send writes one command packet.
func (l *Link) Send(b []byte, iface uint32) error {
	if iface != l.iface {
		return fmt.Errorf("link serves interface %d, not %d", l.iface, iface)
	}
	if !l.isOpen() {
		return fsci.ErrClosed
	}

	f := make([]byte, 1+len(b))
	f[0] = KindCommand
	copy(f[1:], b)

	l.wmu.Lock()
	defer l.wmu.Unlock()

	l.logger.Debugf("tx [% X]", f)
	n, err := l.rw.Write(f)
	if err != nil {
		return errors.Wrap(err, "can't write link")
	}
	if n != len(f) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(f))
	}
	return nil
}

// Close stops the receive loop and closes the underlying stream.
func (l *Link) Close() error {
	l.cmu.Lock()
	defer l.cmu.Unlock()

	select {
	case <-l.done:
		return nil
	default:
		close(l.done)
		return errors.Wrap(l.rw.Close(), "can't close link")
	}
}

// Done is closed once the link is closed or the stream failed.
func (l *Link) Done() <-chan struct{} {
	return l.done
}

// Err returns the error that stopped the receive loop.
func (l *Link) Err() error {
	l.cmu.Lock()
	defer l.cmu.Unlock()
	return l.err
}

func (l *Link) isOpen() bool {
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

func (l *Link) rxLoop() {
	b := make([]byte, rxBufferSize)
	for {
		n, err := l.rw.Read(b)

		switch {
		case !l.isOpen():
			return

		case n == 0 && err == nil:
			// read timeout
			continue

		case isTimeout(err):
			continue

		case err != nil:
			l.fail(err)
			return
		}

		l.logger.Debugf("rx [% X]", b[:n])
		l.acc = append(l.acc, b[:n]...)
		l.drain()
	}
}

func (l *Link) fail(err error) {
	l.cmu.Lock()
	if err != io.EOF {
		err = errors.Wrap(err, "can't read link")
	}
	l.err = err
	l.cmu.Unlock()

	l.dispatchError(err)
	l.Close()
}

// drain feeds every complete chunk of the accumulated stream to the framer.
// A whole packet is only taken once its header and payload have arrived;
// data packets are fed as they come once their header is in.
func (l *Link) drain() {
	for len(l.acc) > 0 {
		if l.framer.InProgress() {
			n := l.framer.Remaining()
			if n > len(l.acc) {
				n = len(l.acc)
			}
			l.feed(KindData, l.take(n))
			continue
		}

		kind := l.acc[0]
		switch kind {
		case KindCommand, KindEvent:
			if len(l.acc) < 1+fsci.HeaderLength {
				return
			}
			n := fsci.HeaderLength + int(binary.LittleEndian.Uint16(l.acc[3:]))
			if len(l.acc) < 1+n {
				return
			}
			l.take(1)
			l.feed(kind, l.take(n))

		case KindData:
			if len(l.acc) < 1+fsci.HeaderLength {
				return
			}
			n := fsci.HeaderLength + int(binary.LittleEndian.Uint16(l.acc[3:]))
			if n > len(l.acc)-1 {
				n = len(l.acc) - 1
			}
			l.take(1)
			l.feed(KindData, l.take(n))

		default:
			// resync on the next byte
			l.logger.Warnf("dropping byte 0x%02X: %v", kind, ErrUnknownKind)
			l.take(1)
		}
	}
}

func (l *Link) take(n int) []byte {
	b := l.acc[:n]
	l.acc = l.acc[n:]
	if len(l.acc) == 0 {
		l.acc = nil
	}
	return b
}

func (l *Link) feed(kind byte, b []byte) {
	if err := l.framer.Deliver(kind, b); err != nil {
		l.dispatchError(err)
	}
}

func (l *Link) deliver(p []byte) {
	if l.up == nil {
		return
	}
	if err := l.up.HandlePacket(p, l.iface); err != nil {
		l.dispatchError(err)
	}
}

func (l *Link) dispatchError(err error) {
	if l.errorHandler != nil {
		l.errorHandler(err)
		return
	}
	l.logger.Error(err)
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
