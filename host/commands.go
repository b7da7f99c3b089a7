package host

import (
	"github.com/pkg/errors"
	"github.com/rigado/fsci"
	"github.com/rigado/fsci/dispatch"
	"github.com/rigado/fsci/procedure"
)

type cmdDesc struct {
	op   uint8
	name string
	// peer is set for commands whose payload starts with device and bearer
	peer bool
}

var gattCommands = []cmdDesc{
	{opGattInit, "GattInit", false},
	{opGattGetMtu, "GattGetMtu", true},
	{opGattClientInit, "GattClientInit", false},
	{opGattClientResetProcedure, "GattClientResetProcedure", false},
	{opGattClientRegisterProcedureCallback, "GattClientRegisterProcedureCallback", false},
	{opGattClientRegisterNotificationCallback, "GattClientRegisterNotificationCallback", false},
	{opGattClientRegisterIndicationCallback, "GattClientRegisterIndicationCallback", false},
	{opGattClientExchangeMtu, "GattClientExchangeMtu", true},
	{opGattClientDiscoverAllPrimaryServices, "GattClientDiscoverAllPrimaryServices", true},
	{opGattClientDiscoverPrimaryServicesByUuid, "GattClientDiscoverPrimaryServicesByUuid", true},
	{opGattClientFindIncludedServices, "GattClientFindIncludedServices", true},
	{opGattClientDiscoverAllCharacteristics, "GattClientDiscoverAllCharacteristicsOfService", true},
	{opGattClientDiscoverCharacteristicByUuid, "GattClientDiscoverCharacteristicOfServiceByUuid", true},
	{opGattClientDiscoverAllDescriptors, "GattClientDiscoverAllCharacteristicDescriptors", true},
	{opGattClientReadCharacteristicValue, "GattClientReadCharacteristicValue", true},
	{opGattClientReadUsingCharacteristicUuid, "GattClientReadUsingCharacteristicUuid", true},
	{opGattClientReadMultipleCharacteristicValues, "GattClientReadMultipleCharacteristicValues", true},
	{opGattClientWriteCharacteristicValue, "GattClientWriteCharacteristicValue", true},
	{opGattClientReadCharacteristicDescriptor, "GattClientReadCharacteristicDescriptor", true},
	{opGattClientWriteCharacteristicDescriptor, "GattClientWriteCharacteristicDescriptor", true},
	{opGattServerInit, "GattServerInit", false},
	{opGattServerRegisterCallback, "GattServerRegisterCallback", false},
	{opGattServerRegisterHandlesForWriteNotify, "GattServerRegisterHandlesForWriteNotifications", false},
	{opGattServerSendAttributeWrittenStatus, "GattServerSendAttributeWrittenStatus", true},
	{opGattServerSendNotification, "GattServerSendNotification", true},
	{opGattServerSendIndication, "GattServerSendIndication", true},
	{opGattServerSendInstantValueNotification, "GattServerSendInstantValueNotification", true},
	{opGattServerSendInstantValueIndication, "GattServerSendInstantValueIndication", true},
	{opGattServerRegisterHandlesForReadNotify, "GattServerRegisterHandlesForReadNotifications", false},
	{opGattServerSendAttributeReadStatus, "GattServerSendAttributeReadStatus", true},
}

var gattDbCommands = []cmdDesc{
	{opGattDbWriteAttribute, "GattDbWriteAttribute", false},
	{opGattDbReadAttribute, "GattDbReadAttribute", false},
	{opGattDbFindServiceHandle, "GattDbFindServiceHandle", false},
	{opGattDbFindCharValueHandleInService, "GattDbFindCharValueHandleInService", false},
	{opGattDbFindCccdHandleForCharValueHandle, "GattDbFindCccdHandleForCharValueHandle", false},
	{opGattDbFindDescriptorHandleForCharValue, "GattDbFindDescriptorHandleForCharValueHandle", false},
	{opGattDbInitDatabase, "GattDbInitDatabase", false},
	{opGattDbReleaseDatabase, "GattDbReleaseDatabase", false},
	{opGattDbAddPrimaryServiceDeclaration, "GattDbAddPrimaryServiceDeclaration", false},
	{opGattDbAddSecondaryServiceDeclaration, "GattDbAddSecondaryServiceDeclaration", false},
	{opGattDbAddIncludeDeclaration, "GattDbAddIncludeDeclaration", false},
	{opGattDbAddCharacteristicDeclarationAndValue, "GattDbAddCharacteristicDeclarationAndValue", false},
	{opGattDbAddCharacteristicDescriptor, "GattDbAddCharacteristicDescriptor", false},
	{opGattDbAddCccd, "GattDbAddCccd", false},
	{opGattDbAddCharacteristicWithUniqueValue, "GattDbAddCharacteristicDeclarationWithUniqueValue", false},
	{opGattDbRemoveService, "GattDbRemoveService", false},
	{opGattDbRemoveCharacteristic, "GattDbRemoveCharacteristic", false},
}

// handleCommand reports a command echoed by the remote side to OnCommand.
func (h *Host) handleCommand(g fsci.Group, c cmdDesc) dispatch.Handler {
	return func(p fsci.Packet) error {
		cmd := Command{Group: g, OpCode: c.op, Name: c.name, Payload: p.Payload}
		if c.peer {
			if len(p.Payload) < 2 {
				return errors.Wrapf(fsci.ErrMalformed, "%s without device and bearer", c.name)
			}
			cmd.Key = &procedure.Key{Peer: p.Payload[0], Bearer: p.Payload[1]}
		}

		if fn := h.callbacks().OnCommand; fn != nil {
			fn(cmd)
		}
		return nil
	}
}
