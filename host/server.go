package host

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rigado/fsci"
	"github.com/rigado/fsci/codec"
	"github.com/rigado/fsci/procedure"
)

// ServerInit initializes the GATT server.
func (h *Host) ServerInit(ctx context.Context) error {
	return h.status(ctx, gattCommand(opGattServerInit))
}

// ServerRegisterCallback enables server events.
func (h *Host) ServerRegisterCallback(ctx context.Context) error {
	return h.status(ctx, gattCommand(opGattServerRegisterCallback))
}

func handles(hh []uint16) (codec.Field, error) {
	if len(hh) > 0xFF {
		return nil, errors.Wrapf(fsci.ErrMalformed, "%d handles", len(hh))
	}
	return codec.Handles(hh), nil
}

// ServerRegisterHandlesForWriteNotifications asks the server to report
// writes to hh instead of applying them.
func (h *Host) ServerRegisterHandlesForWriteNotifications(ctx context.Context, hh []uint16) error {
	f, err := handles(hh)
	if err != nil {
		return err
	}
	return h.status(ctx, gattCommand(opGattServerRegisterHandlesForWriteNotify, f))
}

// ServerRegisterHandlesForReadNotifications asks the server to report
// reads of hh.
func (h *Host) ServerRegisterHandlesForReadNotifications(ctx context.Context, hh []uint16) error {
	f, err := handles(hh)
	if err != nil {
		return err
	}
	return h.status(ctx, gattCommand(opGattServerRegisterHandlesForReadNotify, f))
}

// ServerSendAttributeWrittenStatus answers a reported write.
func (h *Host) ServerSendAttributeWrittenStatus(ctx context.Context, k procedure.Key, handle uint16, status uint8) error {
	return h.status(ctx, gattCommand(opGattServerSendAttributeWrittenStatus, peer(k), codec.U16(handle), codec.U8(status)))
}

// ServerSendAttributeReadStatus answers a reported read.
func (h *Host) ServerSendAttributeReadStatus(ctx context.Context, k procedure.Key, handle uint16, status uint8) error {
	return h.status(ctx, gattCommand(opGattServerSendAttributeReadStatus, peer(k), codec.U16(handle), codec.U8(status)))
}

// ServerSendNotification notifies the database value of handle.
func (h *Host) ServerSendNotification(ctx context.Context, k procedure.Key, handle uint16) error {
	return h.status(ctx, gattCommand(opGattServerSendNotification, peer(k), codec.U16(handle)))
}

// ServerSendIndication indicates the database value of handle. The
// confirmation arrives as a server event.
func (h *Host) ServerSendIndication(ctx context.Context, k procedure.Key, handle uint16) error {
	return h.status(ctx, gattCommand(opGattServerSendIndication, peer(k), codec.U16(handle)))
}

// ServerSendInstantValueNotification notifies value without storing it.
func (h *Host) ServerSendInstantValueNotification(ctx context.Context, k procedure.Key, handle uint16, value []byte) error {
	if err := checkLength(len(value)); err != nil {
		return err
	}
	return h.status(ctx, gattCommand(opGattServerSendInstantValueNotification, peer(k), codec.U16(handle), codec.Bytes16(value)))
}

// ServerSendInstantValueIndication indicates value without storing it.
func (h *Host) ServerSendInstantValueIndication(ctx context.Context, k procedure.Key, handle uint16, value []byte) error {
	if err := checkLength(len(value)); err != nil {
		return err
	}
	return h.status(ctx, gattCommand(opGattServerSendInstantValueIndication, peer(k), codec.U16(handle), codec.Bytes16(value)))
}
