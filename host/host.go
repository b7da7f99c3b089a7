// Package host drives the GATT and GATT database layers of a remote BLE
// engine over FSCI. Every API call marshals one command, waits for its
// status and, for procedures, for the completion event of the same
// (device, bearer) pair.
package host

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/fsci"
	"github.com/rigado/fsci/codec"
	"github.com/rigado/fsci/dispatch"
	"github.com/rigado/fsci/procedure"
	"github.com/rigado/fsci/transport"
)

// DefaultStatusTimeout bounds the wait for the status of a command.
const DefaultStatusTimeout = 5 * time.Second

// Sender transmits one logical packet on an interface.
type Sender interface {
	Send(b []byte, iface uint32) error
}

type transportUart struct {
	path string
	baud uint
}

type transportSocket struct {
	addr    string
	timeout time.Duration
}

type transportConfig struct {
	uart   *transportUart
	socket *transportSocket
}

// pkt is the command currently waiting for its status on a lock key. pc is
// the context it registered, if any.
type pkt struct {
	name string
	key  procedure.Key
	pc   *procedure.Context
	done chan fsci.Status
}

// Host is the command/event marshalling layer for one interface.
type Host struct {
	sender    Sender
	link      *transport.Link
	transport transportConfig

	iface         uint32
	mirror        bool
	statusTimeout time.Duration
	alloc         fsci.Allocator
	errorHandler  func(error)
	logger        fsci.Logger

	registry *dispatch.Registry
	store    *procedure.Store
	locks    *cmdLocks

	muSent sync.Mutex
	sent   map[lockKey]*pkt
	stale  map[lockKey]int

	muHandler sync.RWMutex
	handler   Handler

	muClose sync.Mutex
	done    chan struct{}
}

// New returns a host sending through s. s may be nil when a transport
// option is given; Init then opens the transport.
func New(s Sender, opts ...fsci.Option) (*Host, error) {
	h := &Host{
		sender:        s,
		statusTimeout: DefaultStatusTimeout,
		alloc:         NewPoolAllocator(DefaultBufferSize, DefaultBufferCount),
		logger:        fsci.GetLogger(),
		locks:         newCmdLocks(),
		sent:          make(map[lockKey]*pkt),
		stale:         make(map[lockKey]int),
		done:          make(chan struct{}),
	}
	if err := h.Option(opts...); err != nil {
		return nil, errors.Wrap(err, "can't set options")
	}
	h.logger = h.logger.ChildLogger(map[string]interface{}{
		fsci.TagComponent: "host",
		fsci.TagIface:     h.iface,
	})
	h.store = procedure.NewStore(h.release)

	r, err := h.buildRegistry()
	if err != nil {
		return nil, errors.Wrap(err, "can't build opcode tables")
	}
	h.registry = r
	return h, nil
}

// Option sets the options specified.
func (h *Host) Option(opts ...fsci.Option) error {
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return err
		}
	}
	return nil
}

// Init opens the configured transport when the host was created without a
// sender, and starts receiving from it.
func (h *Host) Init() error {
	if h.sender != nil {
		return nil
	}

	var l *transport.Link
	var err error
	switch {
	case h.transport.uart != nil:
		l, err = transport.OpenSerial(h.transport.uart.path, h.transport.uart.baud, h.iface)
	case h.transport.socket != nil:
		l, err = transport.DialSocket(h.transport.socket.addr, h.transport.socket.timeout, h.iface)
	default:
		return fmt.Errorf("no valid transport found")
	}
	if err != nil {
		return errors.Wrap(err, "can't open transport")
	}

	h.attach(l)
	return nil
}

// attach makes l the sender of h. A link that stops on its own closes the
// host, failing every pending procedure.
func (h *Host) attach(l *transport.Link) {
	l.SetErrorHandler(h.dispatchError)
	h.link = l
	h.sender = l
	l.Start(h)

	go func() {
		select {
		case <-l.Done():
			if h.isOpen() {
				h.logger.Warnf("link closed: %v", l.Err())
			}
			h.Close()
		case <-h.done:
		}
	}()
}

// SetHandler replaces the application callbacks.
func (h *Host) SetHandler(hd Handler) {
	h.muHandler.Lock()
	defer h.muHandler.Unlock()
	h.handler = hd
}

func (h *Host) callbacks() Handler {
	h.muHandler.RLock()
	defer h.muHandler.RUnlock()
	return h.handler
}

// Store exposes the pending procedures, for inspection.
func (h *Host) Store() *procedure.Store {
	return h.store
}

// Close fails every pending procedure and closes the transport opened by
// Init, if any.
func (h *Host) Close() error {
	h.muClose.Lock()
	defer h.muClose.Unlock()

	select {
	case <-h.done:
		return nil
	default:
		close(h.done)
	}

	h.store.FailAll(fsci.ErrClosed)
	if h.link != nil {
		return h.link.Close()
	}
	return nil
}

// Done is closed once the host is closed.
func (h *Host) Done() <-chan struct{} {
	return h.done
}

func (h *Host) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// HandlePacket decodes one logical packet received on iface.
func (h *Host) HandlePacket(b []byte, iface uint32) error {
	if iface != h.iface {
		return fmt.Errorf("packet on interface %d, host serves %d", iface, h.iface)
	}
	p, err := fsci.ParsePacket(b)
	if err != nil {
		return err
	}
	h.logger.Debugf("rx %s: [% X]", h.registry.Describe(p.Group, p.OpCode), p.Payload)
	return h.registry.Dispatch(p)
}

func (h *Host) dispatchError(err error) {
	switch {
	case h.errorHandler == nil:
		h.logger.Error(err)
	case !h.isOpen():
		h.logger.Debug("host closing: ", err)
	default:
		h.errorHandler(err)
	}
}

// command is one outbound command: its opcode and argument layout.
type command struct {
	group  fsci.Group
	op     uint8
	fields codec.Fields
}

func gattCommand(op uint8, ff ...codec.Field) command {
	return command{fsci.GroupGATT, op, ff}
}

func gattDbCommand(op uint8, ff ...codec.Field) command {
	return command{fsci.GroupGATTDB, op, ff}
}

func (h *Host) name(c command) string {
	return h.registry.Describe(c.group, c.op)
}

// marshal sizes c, allocates exactly that many bytes and encodes it.
func (h *Host) marshal(c command) ([]byte, error) {
	n := c.fields.Size()
	if n > fsci.MaxPayloadLength {
		return nil, errors.Wrapf(fsci.ErrMalformed, "%s: payload of %d bytes", h.name(c), n)
	}
	b, err := h.alloc.Alloc(fsci.HeaderLength + n)
	if err != nil {
		return nil, errors.Wrapf(err, "can't allocate %s", h.name(c))
	}
	b[0] = byte(c.group)
	b[1] = c.op
	binary.LittleEndian.PutUint16(b[2:], uint16(n))
	c.fields.Put(codec.NewWriter(b[fsci.HeaderLength:]))
	return b, nil
}

// exec sends c and waits for its status. With pc set, pc is registered
// under k before anything is allocated or sent, and exec also waits for
// the completion event.
func (h *Host) exec(ctx context.Context, c command, k procedure.Key, pc *procedure.Context) error {
	if !h.isOpen() {
		return fsci.ErrClosed
	}
	if h.sender == nil {
		return fmt.Errorf("host not initialized")
	}

	if pc != nil {
		if err := h.store.Register(k, pc); err != nil {
			return errors.Wrap(err, h.name(c))
		}
	}

	b, err := h.marshal(c)
	if err != nil {
		if pc != nil {
			h.store.FailIf(k, pc, err)
		}
		return err
	}

	err = h.send(ctx, c, b, k, pc)
	h.alloc.Free(b)
	if err != nil {
		if pc != nil {
			h.store.FailIf(k, pc, err)
		}
		return err
	}
	if pc == nil {
		return nil
	}

	select {
	case <-pc.Done():
		return pc.Err()
	case <-ctx.Done():
		if h.store.FailIf(k, pc, ctx.Err()) {
			return ctx.Err()
		}
		// ended by its event first
		<-pc.Done()
		return pc.Err()
	}
}

// send transmits b under the command lock of its group and waits for the
// status.
func (h *Host) send(ctx context.Context, c command, b []byte, k procedure.Key, pc *procedure.Context) error {
	lk := lockKey{h.iface, c.group, fsci.StatusOpCode}
	if err := h.locks.acquire(ctx, lk, h.done); err != nil {
		return err
	}
	defer h.locks.release(lk)

	p := &pkt{
		name: h.name(c),
		key:  k,
		pc:   pc,
		done: make(chan fsci.Status, 1),
	}
	h.muSent.Lock()
	h.sent[lk] = p
	h.muSent.Unlock()

	defer func() {
		h.muSent.Lock()
		if h.sent[lk] == p {
			delete(h.sent, lk)
		}
		h.muSent.Unlock()
	}()

	h.logger.Debugf("tx %s: [% X]", p.name, b)
	if err := h.sender.Send(b, h.iface); err != nil {
		return errors.Wrapf(err, "can't send %s", p.name)
	}

	tmo := time.NewTimer(h.statusTimeout)
	defer tmo.Stop()

	select {
	case st := <-p.done:
		if !st.OK() {
			return errors.Wrap(st, p.name)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-tmo.C:
		h.muSent.Lock()
		h.stale[lk]++
		h.muSent.Unlock()
		err := errors.Wrapf(fsci.ErrTimeout, "%s after %v", p.name, h.statusTimeout)
		h.dispatchError(err)
		return err
	case <-h.done:
		return fsci.ErrClosed
	}
}

// handleStatus completes the command holding the lock of group g. A
// rejected procedure is erased right away since no event will follow.
// Statuses carry no correlation, so once a command timed out the next
// status of the group may be its late answer; that is logged, not resolved.
func (h *Host) handleStatus(g fsci.Group) dispatch.Handler {
	return func(p fsci.Packet) error {
		r := codec.NewReader(p.Payload)
		st := fsci.Status(r.U16())
		if err := r.Finish(); err != nil {
			return err
		}

		lk := lockKey{h.iface, g, fsci.StatusOpCode}
		h.muSent.Lock()
		c, ok := h.sent[lk]
		if ok {
			delete(h.sent, lk)
		}
		stale := h.stale[lk] > 0
		if stale {
			h.stale[lk]--
		}
		h.muSent.Unlock()

		if !ok {
			if stale {
				h.logger.Debugf("%s late status of a timed out command: %v", g, st)
			} else {
				h.logger.Warnf("%s status with no command in flight: %v", g, st)
			}
			return nil
		}
		if stale {
			h.logger.Warnf("%s status %v credited to %s may belong to a timed out command", g, st, c.name)
		}
		if !st.OK() && c.pc != nil {
			h.store.FailIf(c.key, c.pc, errors.Wrap(st, c.name))
		}
		c.done <- st
		return nil
	}
}

// release is the store's free hook: the owned value buffer goes back to
// the allocator and the caller keeps a copy of what was read into it.
func (h *Host) release(c *procedure.Context) {
	if c.Value == nil {
		return
	}
	v := make([]byte, c.Count)
	copy(v, c.Value)
	h.alloc.Free(c.Value)
	c.Value = v
}
