package host

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rigado/fsci/codec"
	"github.com/rigado/fsci/gatt"
	"github.com/rigado/fsci/procedure"
)

// Database procedures run against the local database and share
// procedure.LocalKey, so one runs at a time.

func (h *Host) dbHandle(ctx context.Context, c command) (uint16, error) {
	pc := &procedure.Context{}
	if err := h.exec(ctx, c, procedure.LocalKey, pc); err != nil {
		return 0, err
	}
	return pc.Handle, nil
}

// DbWriteAttribute sets the value of a database attribute.
func (h *Host) DbWriteAttribute(ctx context.Context, handle uint16, value []byte) error {
	if err := checkLength(len(value)); err != nil {
		return err
	}
	return h.status(ctx, gattDbCommand(opGattDbWriteAttribute, codec.U16(handle), codec.Bytes16(value)))
}

// DbReadAttribute reads up to max bytes of a database attribute.
func (h *Host) DbReadAttribute(ctx context.Context, handle uint16, max uint16) ([]byte, error) {
	if err := checkLength(int(max)); err != nil {
		return nil, err
	}
	buf, err := h.alloc.Alloc(int(max))
	if err != nil {
		return nil, errors.Wrap(err, "can't allocate value buffer")
	}
	pc := &procedure.Context{Value: buf, Owned: true}
	c := gattDbCommand(opGattDbReadAttribute, codec.U16(handle), codec.U16(max))
	if err := h.exec(ctx, c, procedure.LocalKey, pc); err != nil {
		if pc.Done() == nil {
			h.alloc.Free(buf)
		}
		return nil, err
	}
	return pc.Value, nil
}

// DbReadAttributeInto reads a database attribute into dst and returns the
// number of bytes read. dst stays owned by the caller.
func (h *Host) DbReadAttributeInto(ctx context.Context, handle uint16, dst []byte) (int, error) {
	if err := checkLength(len(dst)); err != nil {
		return 0, err
	}
	pc := &procedure.Context{Value: dst}
	c := gattDbCommand(opGattDbReadAttribute, codec.U16(handle), codec.U16(len(dst)))
	if err := h.exec(ctx, c, procedure.LocalKey, pc); err != nil {
		return 0, err
	}
	return pc.Count, nil
}

// DbFindServiceHandle returns the handle of the first service of type u
// at or after start.
func (h *Host) DbFindServiceHandle(ctx context.Context, start uint16, u gatt.UUID) (uint16, error) {
	if err := checkUUID(u); err != nil {
		return 0, err
	}
	return h.dbHandle(ctx, gattDbCommand(opGattDbFindServiceHandle, codec.U16(start), u.Field()))
}

// DbFindCharValueHandleInService returns the value handle of the
// characteristic of type u within the service at service.
func (h *Host) DbFindCharValueHandleInService(ctx context.Context, service uint16, u gatt.UUID) (uint16, error) {
	if err := checkUUID(u); err != nil {
		return 0, err
	}
	return h.dbHandle(ctx, gattDbCommand(opGattDbFindCharValueHandleInService, codec.U16(service), u.Field()))
}

// DbFindCccdHandleForCharValueHandle returns the CCCD handle of a
// characteristic value.
func (h *Host) DbFindCccdHandleForCharValueHandle(ctx context.Context, handle uint16) (uint16, error) {
	return h.dbHandle(ctx, gattDbCommand(opGattDbFindCccdHandleForCharValueHandle, codec.U16(handle)))
}

// DbFindDescriptorHandleForCharValueHandle returns the handle of the
// descriptor of type u of a characteristic value.
func (h *Host) DbFindDescriptorHandleForCharValueHandle(ctx context.Context, handle uint16, u gatt.UUID) (uint16, error) {
	if err := checkUUID(u); err != nil {
		return 0, err
	}
	return h.dbHandle(ctx, gattDbCommand(opGattDbFindDescriptorHandleForCharValue, codec.U16(handle), u.Field()))
}

// DbInit initializes the local database.
func (h *Host) DbInit(ctx context.Context) error {
	return h.status(ctx, gattDbCommand(opGattDbInitDatabase))
}

// DbRelease releases the local database.
func (h *Host) DbRelease(ctx context.Context) error {
	return h.status(ctx, gattDbCommand(opGattDbReleaseDatabase))
}

// DbAddPrimaryServiceDeclaration adds a primary service and returns its
// handle.
func (h *Host) DbAddPrimaryServiceDeclaration(ctx context.Context, desired uint16, u gatt.UUID) (uint16, error) {
	if err := checkUUID(u); err != nil {
		return 0, err
	}
	return h.dbHandle(ctx, gattDbCommand(opGattDbAddPrimaryServiceDeclaration, codec.U16(desired), u.Field()))
}

// DbAddSecondaryServiceDeclaration adds a secondary service and returns
// its handle.
func (h *Host) DbAddSecondaryServiceDeclaration(ctx context.Context, desired uint16, u gatt.UUID) (uint16, error) {
	if err := checkUUID(u); err != nil {
		return 0, err
	}
	return h.dbHandle(ctx, gattDbCommand(opGattDbAddSecondaryServiceDeclaration, codec.U16(desired), u.Field()))
}

// DbAddIncludeDeclaration adds an include of the service at included.
func (h *Host) DbAddIncludeDeclaration(ctx context.Context, included, endGroup uint16, u gatt.UUID) (uint16, error) {
	if err := checkUUID(u); err != nil {
		return 0, err
	}
	return h.dbHandle(ctx, gattDbCommand(opGattDbAddIncludeDeclaration, codec.U16(included), codec.U16(endGroup), u.Field()))
}

// DbAddCharacteristicDeclarationAndValue adds a characteristic with an
// initial value and returns its declaration handle.
func (h *Host) DbAddCharacteristicDeclarationAndValue(ctx context.Context, u gatt.UUID, props gatt.Property, maxLen uint16, value []byte, perms uint8) (uint16, error) {
	if err := checkUUID(u); err != nil {
		return 0, err
	}
	if err := checkLength(int(maxLen)); err != nil {
		return 0, err
	}
	if err := checkLength(len(value)); err != nil {
		return 0, err
	}
	c := gattDbCommand(opGattDbAddCharacteristicDeclarationAndValue,
		u.Field(),
		codec.U8(props),
		codec.U16(maxLen),
		codec.Bytes16(value),
		codec.U8(perms),
	)
	return h.dbHandle(ctx, c)
}

// DbAddCharacteristicDescriptor adds a descriptor to the last added
// characteristic.
func (h *Host) DbAddCharacteristicDescriptor(ctx context.Context, u gatt.UUID, value []byte, perms uint8) (uint16, error) {
	if err := checkUUID(u); err != nil {
		return 0, err
	}
	if err := checkLength(len(value)); err != nil {
		return 0, err
	}
	return h.dbHandle(ctx, gattDbCommand(opGattDbAddCharacteristicDescriptor, u.Field(), codec.Bytes16(value), codec.U8(perms)))
}

// DbAddCccd adds a CCCD to the last added characteristic.
func (h *Host) DbAddCccd(ctx context.Context) (uint16, error) {
	return h.dbHandle(ctx, gattDbCommand(opGattDbAddCccd))
}

// DbAddCharacteristicDeclarationWithUniqueValue adds a characteristic
// whose value is held by the application.
func (h *Host) DbAddCharacteristicDeclarationWithUniqueValue(ctx context.Context, u gatt.UUID, props gatt.Property, perms uint8) (uint16, error) {
	if err := checkUUID(u); err != nil {
		return 0, err
	}
	return h.dbHandle(ctx, gattDbCommand(opGattDbAddCharacteristicWithUniqueValue, u.Field(), codec.U8(props), codec.U8(perms)))
}

// DbRemoveService removes the service at handle.
func (h *Host) DbRemoveService(ctx context.Context, handle uint16) error {
	return h.status(ctx, gattDbCommand(opGattDbRemoveService, codec.U16(handle)))
}

// DbRemoveCharacteristic removes the characteristic at handle.
func (h *Host) DbRemoveCharacteristic(ctx context.Context, handle uint16) error {
	return h.status(ctx, gattDbCommand(opGattDbRemoveCharacteristic, codec.U16(handle)))
}
