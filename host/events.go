package host

import (
	"github.com/pkg/errors"
	"github.com/rigado/fsci"
	"github.com/rigado/fsci/codec"
	"github.com/rigado/fsci/dispatch"
	"github.com/rigado/fsci/gatt"
	"github.com/rigado/fsci/procedure"
)

// procedureResult values of a procedure event.
const (
	procedureSuccess uint8 = 0x00
	procedureError   uint8 = 0x01
)

type tailFn func(r *codec.Reader, c *procedure.Context)

type evtDesc struct {
	op      uint8
	desc    string
	handler dispatch.Handler
}

func (h *Host) buildRegistry() (*dispatch.Registry, error) {
	b := dispatch.NewBuilder()

	gl := b.Layer(fsci.GroupGATT, gattCommandCount, gattEventCount).Mirror(h.mirror)
	for _, c := range gattCommands {
		gl.Command(c.op, c.name, h.handleCommand(fsci.GroupGATT, c))
	}
	for _, e := range h.gattEvents() {
		gl.Event(e.op, e.desc, e.handler)
	}

	dl := b.Layer(fsci.GroupGATTDB, gattDbCommandCount, gattDbEventCount).Mirror(h.mirror)
	for _, c := range gattDbCommands {
		dl.Command(c.op, c.name, h.handleCommand(fsci.GroupGATTDB, c))
	}
	for _, e := range h.gattDbEvents() {
		dl.Event(e.op, e.desc, e.handler)
	}

	return b.Build()
}

func (h *Host) gattEvents() []evtDesc {
	proc := func(op uint8, desc string, tail tailFn) evtDesc {
		return evtDesc{op, desc, h.procedureEvent(op, desc, tail)}
	}
	server := func(op uint8, desc string, body func(*codec.Reader, *ServerEvent)) evtDesc {
		return evtDesc{op, desc, h.serverEvent(op, desc, body, false)}
	}
	serverValue := func(op uint8, desc string) evtDesc {
		return evtDesc{op, desc, h.serverEvent(op, desc, nil, true)}
	}

	return []evtDesc{
		{evtGattStatus, "GattStatus", h.handleStatus(fsci.GroupGATT)},
		{evtGattGetMtuIndication, "GattGetMtuIndication", h.handleGetMtu},

		proc(evtGattClientExchangeMtu, "GattClientProcedureExchangeMtuIndication", nil),
		proc(evtGattClientDiscoverAllPrimaryServices, "GattClientProcedureDiscoverAllPrimaryServicesIndication", services),
		proc(evtGattClientDiscoverPrimaryServicesByUuid, "GattClientProcedureDiscoverPrimaryServicesByUuidIndication", services),
		proc(evtGattClientFindIncludedServices, "GattClientProcedureFindIncludedServicesIndication", includedServices),
		proc(evtGattClientDiscoverAllCharacteristics, "GattClientProcedureDiscoverAllCharacteristicsIndication", serviceCharacteristics),
		proc(evtGattClientDiscoverCharacteristicByUuid, "GattClientProcedureDiscoverCharacteristicByUuidIndication", characteristics),
		proc(evtGattClientDiscoverAllDescriptors, "GattClientProcedureDiscoverAllCharacteristicDescriptorsIndication", descriptors),
		proc(evtGattClientReadCharacteristicValue, "GattClientProcedureReadCharacteristicValueIndication", characteristic),
		proc(evtGattClientReadUsingCharacteristicUuid, "GattClientProcedureReadUsingCharacteristicUuidIndication", valueInto),
		proc(evtGattClientReadMultipleCharacteristicValues, "GattClientProcedureReadMultipleCharacteristicValuesIndication", characteristics),
		proc(evtGattClientWriteCharacteristicValue, "GattClientProcedureWriteCharacteristicValueIndication", nil),
		proc(evtGattClientReadCharacteristicDescriptor, "GattClientProcedureReadCharacteristicDescriptorIndication", descriptor),
		proc(evtGattClientWriteCharacteristicDescriptor, "GattClientProcedureWriteCharacteristicDescriptorIndication", nil),

		{evtGattClientNotification, "GattClientNotificationIndication", h.notification(false)},
		{evtGattClientIndication, "GattClientIndicationIndication", h.notification(true)},

		server(evtGattServerMtuChanged, "GattServerMtuChangedIndication", func(r *codec.Reader, e *ServerEvent) {
			e.Mtu = r.U16()
		}),
		server(evtGattServerHandleValueConfirmation, "GattServerHandleValueConfirmationIndication", nil),
		serverValue(evtGattServerAttributeWritten, "GattServerAttributeWrittenIndication"),
		server(evtGattServerCharacteristicCccdWritten, "GattServerCharacteristicCccdWrittenIndication", func(r *codec.Reader, e *ServerEvent) {
			e.Handle = r.U16()
			e.Cccd = r.U8()
		}),
		serverValue(evtGattServerAttributeWrittenWithoutResponse, "GattServerAttributeWrittenWithoutResponseIndication"),
		server(evtGattServerError, "GattServerErrorIndication", func(r *codec.Reader, e *ServerEvent) {
			e.ProcedureType = r.U8()
			e.Status = fsci.Status(r.U16())
		}),
		serverValue(evtGattServerLongCharacteristicWritten, "GattServerLongCharacteristicWrittenIndication"),
		server(evtGattServerAttributeRead, "GattServerAttributeReadIndication", func(r *codec.Reader, e *ServerEvent) {
			e.Handle = r.U16()
		}),
	}
}

func (h *Host) gattDbEvents() []evtDesc {
	handle := func(op uint8, desc string) evtDesc {
		return evtDesc{op, desc, h.localEvent(desc, func(r *codec.Reader, c *procedure.Context) {
			c.Handle = r.U16()
		})}
	}

	return []evtDesc{
		{evtGattDbStatus, "GattDbStatus", h.handleStatus(fsci.GroupGATTDB)},
		{evtGattDbReadAttributeIndication, "GattDbReadAttributeIndication", h.localEvent("GattDbReadAttributeIndication", valueInto)},
		handle(evtGattDbFindServiceHandle, "GattDbFindServiceHandleIndication"),
		handle(evtGattDbFindCharValueHandleInService, "GattDbFindCharValueHandleInServiceIndication"),
		handle(evtGattDbFindCccdHandleForCharValueHandle, "GattDbFindCccdHandleForCharValueHandleIndication"),
		handle(evtGattDbFindDescriptorHandleForCharValue, "GattDbFindDescriptorHandleForCharValueHandleIndication"),
		handle(evtGattDbAddPrimaryServiceDeclaration, "GattDbAddPrimaryServiceDeclarationIndication"),
		handle(evtGattDbAddSecondaryServiceDeclaration, "GattDbAddSecondaryServiceDeclarationIndication"),
		handle(evtGattDbAddIncludeDeclaration, "GattDbAddIncludeDeclarationIndication"),
		handle(evtGattDbAddCharacteristicDeclarationAndValue, "GattDbAddCharacteristicDeclarationAndValueIndication"),
		handle(evtGattDbAddCharacteristicDescriptor, "GattDbAddCharacteristicDescriptorIndication"),
		handle(evtGattDbAddCccd, "GattDbAddCccdIndication"),
		handle(evtGattDbAddCharacteristicWithUniqueValue, "GattDbAddCharacteristicDeclarationWithUniqueValueIndication"),
	}
}

func readKey(r *codec.Reader) procedure.Key {
	return procedure.Key{Peer: r.U8(), Bearer: r.U8()}
}

// procedureEvent decodes a client procedure event: the common result
// header, then tail into the pending context of the same key.
func (h *Host) procedureEvent(op uint8, name string, tail tailFn) dispatch.Handler {
	return func(p fsci.Packet) error {
		r := codec.NewReader(p.Payload)
		k := readKey(r)
		result := r.U8()
		st := fsci.Status(r.U16())
		if err := r.Err(); err != nil {
			return err
		}

		ev := ProcedureEvent{Key: k, OpCode: op, Name: name}
		if result != procedureSuccess {
			ev.Status = st
		}

		var pending bool
		if result != procedureSuccess {
			pending = h.store.Fail(k, &fsci.ProcedureError{Op: name, Status: st}) != nil
		} else {
			var err error
			pending, err = h.store.Resolve(k, func(c *procedure.Context) error {
				if tail != nil {
					tail(r, c)
				}
				return r.Finish()
			})
			if err != nil {
				return err
			}
		}
		if !pending {
			h.logger.Debugf("%s for %s with no pending procedure", name, k)
		}

		if fn := h.callbacks().OnProcedure; fn != nil {
			fn(ev)
		}
		return nil
	}
}

// localEvent decodes a database event into the pending local procedure.
func (h *Host) localEvent(name string, tail tailFn) dispatch.Handler {
	return func(p fsci.Packet) error {
		r := codec.NewReader(p.Payload)
		pending, err := h.store.Resolve(procedure.LocalKey, func(c *procedure.Context) error {
			tail(r, c)
			return r.Finish()
		})
		if !pending {
			h.logger.Debugf("%s with no pending procedure", name)
		}
		return err
	}
}

func (h *Host) handleGetMtu(p fsci.Packet) error {
	r := codec.NewReader(p.Payload)
	k := readKey(r)
	mtu := r.U16()
	if err := r.Finish(); err != nil {
		return err
	}

	h.store.Resolve(k, func(c *procedure.Context) error {
		c.MTU = mtu
		return nil
	})
	if fn := h.callbacks().OnMtu; fn != nil {
		fn(k, mtu)
	}
	return nil
}

// transient reads a u16 length and value into a buffer from the allocator,
// for handing to a callback. The caller frees the buffer.
func (h *Host) transient(r *codec.Reader) ([]byte, error) {
	raw := refValue(r)
	if err := r.Finish(); err != nil {
		return nil, err
	}
	b, err := h.alloc.Alloc(len(raw))
	if err != nil {
		return nil, err
	}
	copy(b, raw)
	return b, nil
}

func (h *Host) notification(indication bool) dispatch.Handler {
	return func(p fsci.Packet) error {
		r := codec.NewReader(p.Payload)
		n := Notification{Key: readKey(r), Handle: r.U16()}
		v, err := h.transient(r)
		if err != nil {
			return err
		}
		defer h.alloc.Free(v)
		n.Value = v

		hd := h.callbacks()
		fn := hd.OnNotification
		if indication {
			fn = hd.OnIndication
		}
		if fn != nil {
			fn(n)
		}
		return nil
	}
}

// serverEvent decodes a server event. With withValue the body is a handle
// and a value, handed to the callback in a transient buffer.
func (h *Host) serverEvent(op uint8, name string, body func(*codec.Reader, *ServerEvent), withValue bool) dispatch.Handler {
	return func(p fsci.Packet) error {
		r := codec.NewReader(p.Payload)
		e := ServerEvent{Key: readKey(r), OpCode: op, Name: name}

		if withValue {
			e.Handle = r.U16()
			v, err := h.transient(r)
			if err != nil {
				return err
			}
			defer h.alloc.Free(v)
			e.Value = v
		} else {
			if body != nil {
				body(r, &e)
			}
			if err := r.Finish(); err != nil {
				return err
			}
		}

		if fn := h.callbacks().OnServerEvent; fn != nil {
			fn(e)
		}
		return nil
	}
}

// refValue reads a u16 length and that many bytes without copying,
// rejecting lengths above the maximum attribute size.
func refValue(r *codec.Reader) []byte {
	n := int(r.U16())
	if r.Err() != nil {
		return nil
	}
	if n > gatt.MaxAttributeValueSize {
		r.Fail(errors.Wrapf(fsci.ErrValueTooLong, "value length %d", n))
		return nil
	}
	return r.Ref(n)
}
