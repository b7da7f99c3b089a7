package fsci

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownGroup is reported for a packet whose group has no layer.
	ErrUnknownGroup = errors.New("unknown opcode group")
	// ErrUnknownOpcode is reported for an opcode outside every table of its
	// layer, or for an empty table slot.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrNoMemory is reported when the buffer allocator is exhausted.
	ErrNoMemory = errors.New("buffer allocation failed")
	// ErrValueTooLong is reported when a length field exceeds the maximum
	// attribute value size.
	ErrValueTooLong = errors.New("value length exceeds maximum attribute size")
	// ErrProcedurePending is returned when a procedure is started on a
	// (peer, bearer) pair that already has one outstanding.
	ErrProcedurePending = errors.New("procedure already pending")
	// ErrProcedureFailed is returned when the completion event reports an
	// error result.
	ErrProcedureFailed = errors.New("procedure failed")
	// ErrMalformed is reported for a packet whose payload does not match its
	// opcode's layout.
	ErrMalformed = errors.New("malformed packet")
	ErrClosed    = errors.New("fsci closed")
	ErrTimeout   = errors.New("no status received")
)

// Status is the result code carried by status and procedure events.
type Status uint16

// Result codes reported by the remote engine.
const (
	StatusSuccess               Status = 0x0000
	StatusInvalidParameter      Status = 0x0001
	StatusOverflow              Status = 0x0002
	StatusUnavailable           Status = 0x0003
	StatusFeatureNotSupported   Status = 0x0004
	StatusOutOfMemory           Status = 0x0005
	StatusAlreadyInitialized    Status = 0x0006
	StatusOsError               Status = 0x0007
	StatusUnexpectedError       Status = 0x0008
	StatusInvalidState          Status = 0x0009
	StatusTimerError            Status = 0x000A
	StatusGattAnotherProcedure  Status = 0x0501
	StatusGattOutOfHandles      Status = 0x0502
	StatusGattInvalidHandle     Status = 0x0503
	StatusGattServerTimeout     Status = 0x0504
	StatusGattNotConnected      Status = 0x0505
	StatusGattDbInvalidHandle   Status = 0x0601
	StatusGattDbCharNotFound    Status = 0x0602
	StatusGattDbCccdNotFound    Status = 0x0603
	StatusGattDbServiceNotFound Status = 0x0604
	StatusGattDbDescNotFound    Status = 0x0605
)

var statusNames = map[Status]string{
	StatusSuccess:               "success",
	StatusInvalidParameter:      "invalid parameter",
	StatusOverflow:              "overflow",
	StatusUnavailable:           "unavailable",
	StatusFeatureNotSupported:   "feature not supported",
	StatusOutOfMemory:           "out of memory",
	StatusAlreadyInitialized:    "already initialized",
	StatusOsError:               "os error",
	StatusUnexpectedError:       "unexpected error",
	StatusInvalidState:          "invalid state",
	StatusTimerError:            "timer error",
	StatusGattAnotherProcedure:  "gatt: another procedure in progress",
	StatusGattOutOfHandles:      "gatt: out of handles",
	StatusGattInvalidHandle:     "gatt: invalid handle",
	StatusGattServerTimeout:     "gatt: server timeout",
	StatusGattNotConnected:      "gatt: not connected",
	StatusGattDbInvalidHandle:   "gattdb: invalid handle",
	StatusGattDbCharNotFound:    "gattdb: characteristic not found",
	StatusGattDbCccdNotFound:    "gattdb: cccd not found",
	StatusGattDbServiceNotFound: "gattdb: service not found",
	StatusGattDbDescNotFound:    "gattdb: descriptor not found",
}

func (s Status) Error() string {
	if n, ok := statusNames[s]; ok {
		return fmt.Sprintf("status 0x%04X (%s)", uint16(s), n)
	}
	return fmt.Sprintf("status 0x%04X", uint16(s))
}

// OK reports whether s is StatusSuccess.
func (s Status) OK() bool {
	return s == StatusSuccess
}

// ProcedureError is returned when a procedure was accepted but its
// completion event reported a failure. errors.Cause yields
// ErrProcedureFailed.
type ProcedureError struct {
	Op     string
	Status Status
}

func (e *ProcedureError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrProcedureFailed, e.Status)
}

// Cause implements the pkg/errors causer interface.
func (e *ProcedureError) Cause() error {
	return ErrProcedureFailed
}
