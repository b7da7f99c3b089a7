package host

import (
	"github.com/rigado/fsci"
	"github.com/rigado/fsci/procedure"
)

// ProcedureEvent reports the end of a client procedure.
type ProcedureEvent struct {
	Key    procedure.Key
	OpCode uint8
	Name   string
	Status fsci.Status // zero when the procedure succeeded
}

// Notification is a value pushed by a peer. Value is only valid for the
// duration of the callback.
type Notification struct {
	Key    procedure.Key
	Handle uint16
	Value  []byte
}

// ServerEvent is an event raised by the local GATT server. Fields not
// carried by the opcode are zero. Value is only valid for the duration of
// the callback.
type ServerEvent struct {
	Key           procedure.Key
	OpCode        uint8
	Name          string
	Handle        uint16
	Value         []byte
	Cccd          uint8
	Mtu           uint16
	ProcedureType uint8
	Status        fsci.Status
}

// Command is a command echoed back by the remote side. Payload is only
// valid for the duration of the callback.
type Command struct {
	Group   fsci.Group
	OpCode  uint8
	Name    string
	Key     *procedure.Key
	Payload []byte
}

// Handler holds the application callbacks. Nil fields are skipped.
// Callbacks run on the receive goroutine and must not block on a procedure
// of the same host.
type Handler struct {
	OnProcedure    func(ProcedureEvent)
	OnNotification func(Notification)
	OnIndication   func(Notification)
	OnServerEvent  func(ServerEvent)
	OnMtu          func(k procedure.Key, mtu uint16)
	OnCommand      func(Command)
}
