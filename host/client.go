package host

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rigado/fsci"
	"github.com/rigado/fsci/codec"
	"github.com/rigado/fsci/gatt"
	"github.com/rigado/fsci/procedure"
)

// HandleRange bounds a read by characteristic UUID.
type HandleRange struct {
	Start uint16
	End   uint16
}

// WriteOptions select the ATT write procedure.
type WriteOptions struct {
	WithoutResponse   bool
	Signed            bool
	ReliableLongWrite bool
	Csrk              [16]byte
}

func peer(k procedure.Key) codec.Field {
	return codec.Fields{codec.U8(k.Peer), codec.U8(k.Bearer)}
}

func checkUUID(u gatt.UUID) error {
	if !u.Type.Known() || len(u.Bytes) != u.Type.Size() {
		return errors.Wrapf(fsci.ErrMalformed, "uuid type 0x%02X with %d bytes", uint8(u.Type), len(u.Bytes))
	}
	return nil
}

func checkLength(n int) error {
	if n > gatt.MaxAttributeValueSize {
		return errors.Wrapf(fsci.ErrValueTooLong, "length %d, max %d", n, gatt.MaxAttributeValueSize)
	}
	return nil
}

func (h *Host) status(ctx context.Context, c command) error {
	return h.exec(ctx, c, procedure.Key{}, nil)
}

// GattInit initializes the GATT layer.
func (h *Host) GattInit(ctx context.Context) error {
	return h.status(ctx, gattCommand(opGattInit))
}

// GetMtu returns the ATT MTU negotiated with a peer.
func (h *Host) GetMtu(ctx context.Context, k procedure.Key) (uint16, error) {
	pc := &procedure.Context{}
	if err := h.exec(ctx, gattCommand(opGattGetMtu, peer(k)), k, pc); err != nil {
		return 0, err
	}
	return pc.MTU, nil
}

// ClientInit initializes the GATT client.
func (h *Host) ClientInit(ctx context.Context) error {
	return h.status(ctx, gattCommand(opGattClientInit))
}

// ClientResetProcedure aborts the running client procedures. Pending
// procedures of remote peers fail, since their events will not come.
func (h *Host) ClientResetProcedure(ctx context.Context) error {
	if err := h.status(ctx, gattCommand(opGattClientResetProcedure)); err != nil {
		return err
	}
	h.store.FailWhere(func(k procedure.Key) bool {
		return k != procedure.LocalKey
	}, errors.Wrap(fsci.ErrProcedureFailed, "procedure reset"))
	return nil
}

// ClientRegisterProcedureCallback enables procedure events.
func (h *Host) ClientRegisterProcedureCallback(ctx context.Context) error {
	return h.status(ctx, gattCommand(opGattClientRegisterProcedureCallback))
}

// ClientRegisterNotificationCallback enables notification events.
func (h *Host) ClientRegisterNotificationCallback(ctx context.Context) error {
	return h.status(ctx, gattCommand(opGattClientRegisterNotificationCallback))
}

// ClientRegisterIndicationCallback enables indication events.
func (h *Host) ClientRegisterIndicationCallback(ctx context.Context) error {
	return h.status(ctx, gattCommand(opGattClientRegisterIndicationCallback))
}

// ClientExchangeMtu runs the MTU exchange with a peer.
func (h *Host) ClientExchangeMtu(ctx context.Context, k procedure.Key) error {
	return h.exec(ctx, gattCommand(opGattClientExchangeMtu, peer(k)), k, &procedure.Context{})
}

// ClientDiscoverAllPrimaryServices returns up to max primary services of
// a peer.
func (h *Host) ClientDiscoverAllPrimaryServices(ctx context.Context, k procedure.Key, max uint8) ([]gatt.Service, error) {
	pc := &procedure.Context{Max: int(max)}
	c := gattCommand(opGattClientDiscoverAllPrimaryServices, peer(k), codec.U8(max))
	if err := h.exec(ctx, c, k, pc); err != nil {
		return nil, err
	}
	return pc.Services, nil
}

// ClientDiscoverPrimaryServicesByUuid returns up to max primary services
// of type u.
func (h *Host) ClientDiscoverPrimaryServicesByUuid(ctx context.Context, k procedure.Key, u gatt.UUID, max uint8) ([]gatt.Service, error) {
	if err := checkUUID(u); err != nil {
		return nil, err
	}
	pc := &procedure.Context{Max: int(max)}
	c := gattCommand(opGattClientDiscoverPrimaryServicesByUuid, peer(k), u.Field(), codec.U8(max))
	if err := h.exec(ctx, c, k, pc); err != nil {
		return nil, err
	}
	return pc.Services, nil
}

// ClientFindIncludedServices returns s with its included services filled
// in, up to max.
func (h *Host) ClientFindIncludedServices(ctx context.Context, k procedure.Key, s gatt.Service, max uint8) (gatt.Service, error) {
	if err := s.Validate(); err != nil {
		return gatt.Service{}, err
	}
	pc := &procedure.Context{Max: int(max)}
	c := gattCommand(opGattClientFindIncludedServices, peer(k), s, codec.U8(max))
	if err := h.exec(ctx, c, k, pc); err != nil {
		return gatt.Service{}, err
	}
	return firstService(pc), nil
}

// ClientDiscoverAllCharacteristicsOfService returns s with up to max
// characteristics filled in.
func (h *Host) ClientDiscoverAllCharacteristicsOfService(ctx context.Context, k procedure.Key, s gatt.Service, max uint8) (gatt.Service, error) {
	if err := s.Validate(); err != nil {
		return gatt.Service{}, err
	}
	pc := &procedure.Context{Max: int(max)}
	c := gattCommand(opGattClientDiscoverAllCharacteristics, peer(k), s, codec.U8(max))
	if err := h.exec(ctx, c, k, pc); err != nil {
		return gatt.Service{}, err
	}
	return firstService(pc), nil
}

// ClientDiscoverCharacteristicOfServiceByUuid returns up to max
// characteristics of type u within s.
func (h *Host) ClientDiscoverCharacteristicOfServiceByUuid(ctx context.Context, k procedure.Key, u gatt.UUID, s gatt.Service, max uint8) ([]gatt.Characteristic, error) {
	if err := checkUUID(u); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	pc := &procedure.Context{Max: int(max)}
	c := gattCommand(opGattClientDiscoverCharacteristicByUuid, peer(k), u.Field(), s, codec.U8(max))
	if err := h.exec(ctx, c, k, pc); err != nil {
		return nil, err
	}
	return pc.Characteristics, nil
}

// ClientDiscoverAllCharacteristicDescriptors returns ch with up to max
// descriptors found before end.
func (h *Host) ClientDiscoverAllCharacteristicDescriptors(ctx context.Context, k procedure.Key, ch gatt.Characteristic, end uint16, max uint8) (gatt.Characteristic, error) {
	if err := ch.Validate(); err != nil {
		return gatt.Characteristic{}, err
	}
	pc := &procedure.Context{Max: int(max)}
	c := gattCommand(opGattClientDiscoverAllDescriptors, peer(k), ch, codec.U16(end), codec.U8(max))
	if err := h.exec(ctx, c, k, pc); err != nil {
		return gatt.Characteristic{}, err
	}
	return firstCharacteristic(pc), nil
}

// ClientReadCharacteristicValue reads up to max bytes of ch's value.
func (h *Host) ClientReadCharacteristicValue(ctx context.Context, k procedure.Key, ch gatt.Characteristic, max uint16) (gatt.Characteristic, error) {
	if err := checkLength(int(max)); err != nil {
		return gatt.Characteristic{}, err
	}
	if err := ch.Validate(); err != nil {
		return gatt.Characteristic{}, err
	}
	pc := &procedure.Context{}
	c := gattCommand(opGattClientReadCharacteristicValue, peer(k), ch, codec.U16(max))
	if err := h.exec(ctx, c, k, pc); err != nil {
		return gatt.Characteristic{}, err
	}
	return firstCharacteristic(pc), nil
}

// ClientReadUsingCharacteristicUuid reads the value of the first
// characteristic of type u, optionally within rng.
func (h *Host) ClientReadUsingCharacteristicUuid(ctx context.Context, k procedure.Key, u gatt.UUID, rng *HandleRange, max uint16) ([]byte, error) {
	if err := checkUUID(u); err != nil {
		return nil, err
	}
	if err := checkLength(int(max)); err != nil {
		return nil, err
	}

	ff := []codec.Field{peer(k), u.Field(), codec.Bool(rng != nil)}
	if rng != nil {
		ff = append(ff, codec.U16(rng.Start), codec.U16(rng.End))
	}
	ff = append(ff, codec.U16(max))

	buf, err := h.alloc.Alloc(int(max))
	if err != nil {
		return nil, errors.Wrap(err, "can't allocate value buffer")
	}
	pc := &procedure.Context{Value: buf, Owned: true}
	if err := h.exec(ctx, gattCommand(opGattClientReadUsingCharacteristicUuid, ff...), k, pc); err != nil {
		if pc.Done() == nil {
			// never registered, so the store did not free it
			h.alloc.Free(buf)
		}
		return nil, err
	}
	return pc.Value, nil
}

// ClientReadMultipleCharacteristicValues reads the values of chars in one
// procedure. Every declared length is checked before anything is sized.
func (h *Host) ClientReadMultipleCharacteristicValues(ctx context.Context, k procedure.Key, chars []gatt.Characteristic) ([]gatt.Characteristic, error) {
	if len(chars) > 0xFF {
		return nil, errors.Wrapf(fsci.ErrMalformed, "%d characteristics", len(chars))
	}
	for i, ch := range chars {
		if err := ch.Validate(); err != nil {
			return nil, errors.Wrapf(err, "characteristic %d", i)
		}
	}

	pc := &procedure.Context{}
	c := gattCommand(opGattClientReadMultipleCharacteristicValues, peer(k), gatt.Characteristics(chars))
	if err := h.exec(ctx, c, k, pc); err != nil {
		return nil, err
	}
	return pc.Characteristics, nil
}

// ClientWriteCharacteristicValue writes value to ch. Writes without
// response complete with the status; every other write waits for the
// procedure result.
func (h *Host) ClientWriteCharacteristicValue(ctx context.Context, k procedure.Key, ch gatt.Characteristic, value []byte, o WriteOptions) error {
	if err := checkLength(len(value)); err != nil {
		return err
	}
	if err := ch.Validate(); err != nil {
		return err
	}

	c := gattCommand(opGattClientWriteCharacteristicValue,
		peer(k),
		ch,
		codec.Bytes16(value),
		codec.Bool(o.WithoutResponse),
		codec.Bool(o.Signed),
		codec.Bool(o.ReliableLongWrite),
		codec.Bytes(o.Csrk[:]),
	)
	if o.WithoutResponse {
		return h.exec(ctx, c, k, nil)
	}
	return h.exec(ctx, c, k, &procedure.Context{})
}

// ClientReadCharacteristicDescriptor reads up to max bytes of d.
func (h *Host) ClientReadCharacteristicDescriptor(ctx context.Context, k procedure.Key, d gatt.Descriptor, max uint16) (gatt.Descriptor, error) {
	if err := checkLength(int(max)); err != nil {
		return gatt.Descriptor{}, err
	}
	if err := d.Validate(); err != nil {
		return gatt.Descriptor{}, err
	}
	pc := &procedure.Context{}
	c := gattCommand(opGattClientReadCharacteristicDescriptor, peer(k), d, codec.U16(max))
	if err := h.exec(ctx, c, k, pc); err != nil {
		return gatt.Descriptor{}, err
	}
	if len(pc.Descriptors) == 0 {
		return gatt.Descriptor{}, nil
	}
	return pc.Descriptors[0], nil
}

// ClientWriteCharacteristicDescriptor writes value to d.
func (h *Host) ClientWriteCharacteristicDescriptor(ctx context.Context, k procedure.Key, d gatt.Descriptor, value []byte) error {
	if err := checkLength(len(value)); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	c := gattCommand(opGattClientWriteCharacteristicDescriptor, peer(k), d, codec.Bytes16(value))
	return h.exec(ctx, c, k, &procedure.Context{})
}

func firstService(pc *procedure.Context) gatt.Service {
	if len(pc.Services) == 0 {
		return gatt.Service{}
	}
	return pc.Services[0]
}

func firstCharacteristic(pc *procedure.Context) gatt.Characteristic {
	if len(pc.Characteristics) == 0 {
		return gatt.Characteristic{}
	}
	return pc.Characteristics[0]
}
