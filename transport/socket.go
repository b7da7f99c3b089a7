package transport

import (
	"net"
	"time"

	"github.com/pkg/errors"
)

// DefaultSocketTimeout bounds every read and write on a socket link.
const DefaultSocketTimeout = time.Second

type connWithTimeout struct {
	c       net.Conn
	timeout time.Duration
}

func (cwt *connWithTimeout) Read(b []byte) (int, error) {
	cwt.c.SetReadDeadline(time.Now().Add(cwt.timeout))
	return cwt.c.Read(b)
}

func (cwt *connWithTimeout) Write(b []byte) (int, error) {
	cwt.c.SetWriteDeadline(time.Now().Add(cwt.timeout))
	return cwt.c.Write(b)
}

func (cwt *connWithTimeout) Close() error {
	return cwt.c.Close()
}

// DialSocket connects to a TCP bridge in front of a UART and wraps the
// connection in a Link.
func DialSocket(addr string, timeout time.Duration, iface uint32) (*Link, error) {
	if timeout <= 0 {
		timeout = DefaultSocketTimeout
	}
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "can't dial %s", addr)
	}
	return NewLink(&connWithTimeout{c, timeout}, iface), nil
}
