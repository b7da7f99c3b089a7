package host

// GATT layer commands.
const (
	opGattInit                                   uint8 = 0x01
	opGattGetMtu                                 uint8 = 0x02
	opGattClientInit                             uint8 = 0x03
	opGattClientResetProcedure                   uint8 = 0x04
	opGattClientRegisterProcedureCallback        uint8 = 0x05
	opGattClientRegisterNotificationCallback     uint8 = 0x06
	opGattClientRegisterIndicationCallback       uint8 = 0x07
	opGattClientExchangeMtu                      uint8 = 0x08
	opGattClientDiscoverAllPrimaryServices       uint8 = 0x09
	opGattClientDiscoverPrimaryServicesByUuid    uint8 = 0x0A
	opGattClientFindIncludedServices             uint8 = 0x0B
	opGattClientDiscoverAllCharacteristics       uint8 = 0x0C
	opGattClientDiscoverCharacteristicByUuid     uint8 = 0x0D
	opGattClientDiscoverAllDescriptors           uint8 = 0x0E
	opGattClientReadCharacteristicValue          uint8 = 0x0F
	opGattClientReadUsingCharacteristicUuid      uint8 = 0x10
	opGattClientReadMultipleCharacteristicValues uint8 = 0x11
	opGattClientWriteCharacteristicValue         uint8 = 0x12
	opGattClientReadCharacteristicDescriptor     uint8 = 0x13
	opGattClientWriteCharacteristicDescriptor    uint8 = 0x14
	opGattServerInit                             uint8 = 0x15
	opGattServerRegisterCallback                 uint8 = 0x16
	opGattServerRegisterHandlesForWriteNotify    uint8 = 0x17
	opGattServerSendAttributeWrittenStatus       uint8 = 0x18
	opGattServerSendNotification                 uint8 = 0x19
	opGattServerSendIndication                   uint8 = 0x1A
	opGattServerSendInstantValueNotification     uint8 = 0x1B
	opGattServerSendInstantValueIndication       uint8 = 0x1C
	opGattServerRegisterHandlesForReadNotify     uint8 = 0x1D
	opGattServerSendAttributeReadStatus          uint8 = 0x1E
)

// GATT layer events.
const (
	evtGattStatus                                 uint8 = 0x80
	evtGattGetMtuIndication                       uint8 = 0x81
	evtGattClientExchangeMtu                      uint8 = 0x82
	evtGattClientDiscoverAllPrimaryServices       uint8 = 0x83
	evtGattClientDiscoverPrimaryServicesByUuid    uint8 = 0x84
	evtGattClientFindIncludedServices             uint8 = 0x85
	evtGattClientDiscoverAllCharacteristics       uint8 = 0x86
	evtGattClientDiscoverCharacteristicByUuid     uint8 = 0x87
	evtGattClientDiscoverAllDescriptors           uint8 = 0x88
	evtGattClientReadCharacteristicValue          uint8 = 0x89
	evtGattClientReadUsingCharacteristicUuid      uint8 = 0x8A
	evtGattClientReadMultipleCharacteristicValues uint8 = 0x8B
	evtGattClientWriteCharacteristicValue         uint8 = 0x8C
	evtGattClientReadCharacteristicDescriptor     uint8 = 0x8D
	evtGattClientWriteCharacteristicDescriptor    uint8 = 0x8E
	evtGattClientNotification                     uint8 = 0x8F
	evtGattClientIndication                       uint8 = 0x90
	evtGattServerMtuChanged                       uint8 = 0x91
	evtGattServerHandleValueConfirmation          uint8 = 0x92
	evtGattServerAttributeWritten                 uint8 = 0x93
	evtGattServerCharacteristicCccdWritten        uint8 = 0x94
	evtGattServerAttributeWrittenWithoutResponse  uint8 = 0x95
	evtGattServerError                            uint8 = 0x96
	evtGattServerLongCharacteristicWritten        uint8 = 0x97
	evtGattServerAttributeRead                    uint8 = 0x98
)

// GATT database commands.
const (
	opGattDbWriteAttribute                       uint8 = 0x00
	opGattDbReadAttribute                        uint8 = 0x01
	opGattDbFindServiceHandle                    uint8 = 0x02
	opGattDbFindCharValueHandleInService         uint8 = 0x03
	opGattDbFindCccdHandleForCharValueHandle     uint8 = 0x04
	opGattDbFindDescriptorHandleForCharValue     uint8 = 0x05
	opGattDbInitDatabase                         uint8 = 0x06
	opGattDbReleaseDatabase                      uint8 = 0x07
	opGattDbAddPrimaryServiceDeclaration         uint8 = 0x08
	opGattDbAddSecondaryServiceDeclaration       uint8 = 0x09
	opGattDbAddIncludeDeclaration                uint8 = 0x0A
	opGattDbAddCharacteristicDeclarationAndValue uint8 = 0x0B
	opGattDbAddCharacteristicDescriptor          uint8 = 0x0C
	opGattDbAddCccd                              uint8 = 0x0D
	opGattDbAddCharacteristicWithUniqueValue     uint8 = 0x0E
	opGattDbRemoveService                        uint8 = 0x0F
	opGattDbRemoveCharacteristic                 uint8 = 0x10
)

// GATT database events.
const (
	evtGattDbStatus                               uint8 = 0x80
	evtGattDbReadAttributeIndication              uint8 = 0x81
	evtGattDbFindServiceHandle                    uint8 = 0x82
	evtGattDbFindCharValueHandleInService         uint8 = 0x83
	evtGattDbFindCccdHandleForCharValueHandle     uint8 = 0x84
	evtGattDbFindDescriptorHandleForCharValue     uint8 = 0x85
	evtGattDbAddPrimaryServiceDeclaration         uint8 = 0x86
	evtGattDbAddSecondaryServiceDeclaration       uint8 = 0x87
	evtGattDbAddIncludeDeclaration                uint8 = 0x88
	evtGattDbAddCharacteristicDeclarationAndValue uint8 = 0x89
	evtGattDbAddCharacteristicDescriptor          uint8 = 0x8A
	evtGattDbAddCccd                              uint8 = 0x8B
	evtGattDbAddCharacteristicWithUniqueValue     uint8 = 0x8C
)

// Table sizes, counted from the first command and first event opcode.
const (
	gattCommandCount   = 0x1F
	gattEventCount     = 0x19
	gattDbCommandCount = 0x11
	gattDbEventCount   = 0x0D
)
