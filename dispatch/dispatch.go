// Package dispatch routes inbound packets to the decoder registered for
// their (group, opcode). Tables are built once and never change after.
package dispatch

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rigado/fsci"
)

// Handler decodes one packet.
type Handler func(p fsci.Packet) error

type entry struct {
	desc    string
	handler Handler
}

// Table maps the opcodes [base, base+size) of one direction of a layer.
// Slots are sparse; a missing slot is an unknown opcode.
type Table struct {
	base    uint8
	size    int
	entries map[uint8]entry
}

func newTable(base uint8, size int) *Table {
	return &Table{base: base, size: size, entries: make(map[uint8]entry)}
}

func (t *Table) inBounds(op uint8) bool {
	return int(op) >= int(t.base) && int(op) < int(t.base)+t.size
}

func (t *Table) lookup(op uint8) (entry, bool) {
	if t == nil || !t.inBounds(op) {
		return entry{}, false
	}
	e, ok := t.entries[op-t.base]
	if !ok || e.handler == nil {
		return entry{}, false
	}
	return e, true
}

// Len returns the number of populated slots.
func (t *Table) Len() int {
	return len(t.entries)
}

type layer struct {
	group    fsci.Group
	commands *Table
	events   *Table
	mirror   bool
}

// Registry holds the tables of every layer.
type Registry struct {
	layers map[fsci.Group]*layer
}

// Dispatch hands p to its handler. With command mirroring enabled on the
// layer the command table is tried first; otherwise, or when it has no
// match, the event table is consulted. Nothing is invoked for an opcode no
// table owns.
func (r *Registry) Dispatch(p fsci.Packet) error {
	l, ok := r.layers[p.Group]
	if !ok {
		return errors.Wrapf(fsci.ErrUnknownGroup, "0x%02X", uint8(p.Group))
	}

	if l.mirror {
		if e, ok := l.commands.lookup(p.OpCode); ok {
			return errors.Wrap(e.handler(p), e.desc)
		}
	}

	if e, ok := l.events.lookup(p.OpCode); ok {
		return errors.Wrap(e.handler(p), e.desc)
	}

	return errors.Wrapf(fsci.ErrUnknownOpcode, "%s op 0x%02X", p.Group, p.OpCode)
}

// Describe returns the registered name of an opcode, for logging.
func (r *Registry) Describe(g fsci.Group, op uint8) string {
	l, ok := r.layers[g]
	if !ok {
		return fmt.Sprintf("group 0x%02X op 0x%02X", uint8(g), op)
	}
	t := l.events
	if op < fsci.EventBase {
		t = l.commands
	}
	if e, ok := t.entries[op-t.base]; ok && t.inBounds(op) {
		return e.desc
	}
	return fmt.Sprintf("%s op 0x%02X", g, op)
}

// Mirrored reports whether command mirroring is enabled for g.
func (r *Registry) Mirrored(g fsci.Group) bool {
	l, ok := r.layers[g]
	return ok && l.mirror
}

// Builder assembles a Registry. The first registration error is kept and
// returned from Build.
type Builder struct {
	layers map[fsci.Group]*layer
	err    error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{layers: make(map[fsci.Group]*layer)}
}

// LayerBuilder registers the handlers of one layer.
type LayerBuilder struct {
	b *Builder
	l *layer
}

// Layer starts (or resumes) the tables for group g. Command opcodes run
// from 0 to cmdSize-1, event opcodes from fsci.EventBase to
// fsci.EventBase+evtSize-1.
func (b *Builder) Layer(g fsci.Group, cmdSize, evtSize int) *LayerBuilder {
	l, ok := b.layers[g]
	if !ok {
		if cmdSize > int(fsci.EventBase) || evtSize > 0x100-int(fsci.EventBase) {
			b.fail(fmt.Errorf("%s: table sizes %d/%d out of range", g, cmdSize, evtSize))
		}
		l = &layer{
			group:    g,
			commands: newTable(0, cmdSize),
			events:   newTable(fsci.EventBase, evtSize),
		}
		b.layers[g] = l
	}
	return &LayerBuilder{b, l}
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (lb *LayerBuilder) add(t *Table, kind string, op uint8, desc string, h Handler) *LayerBuilder {
	switch {
	case h == nil:
		lb.b.fail(fmt.Errorf("%s %s 0x%02X (%s): nil handler", lb.l.group, kind, op, desc))
	case !t.inBounds(op):
		lb.b.fail(fmt.Errorf("%s %s 0x%02X (%s): outside table", lb.l.group, kind, op, desc))
	default:
		if e, dup := t.entries[op-t.base]; dup {
			lb.b.fail(fmt.Errorf("%s %s 0x%02X: %s already registered as %s", lb.l.group, kind, op, desc, e.desc))
			break
		}
		t.entries[op-t.base] = entry{desc, h}
	}
	return lb
}

// Command registers the decoder of a mirrored command.
func (lb *LayerBuilder) Command(op uint8, desc string, h Handler) *LayerBuilder {
	return lb.add(lb.l.commands, "command", op, desc, h)
}

// Event registers the decoder of an event.
func (lb *LayerBuilder) Event(op uint8, desc string, h Handler) *LayerBuilder {
	return lb.add(lb.l.events, "event", op, desc, h)
}

// Mirror enables command decoding for inbound packets of the layer.
func (lb *LayerBuilder) Mirror(enable bool) *LayerBuilder {
	lb.l.mirror = enable
	return lb
}

// Build freezes the registered tables.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	r := &Registry{layers: b.layers}
	b.layers = nil
	return r, nil
}
