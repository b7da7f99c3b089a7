package fsci

// Group identifies the protocol layer an opcode belongs to.
type Group uint8

// Opcode groups carried in the first byte of every packet.
const (
	GroupGATT   Group = 0x45
	GroupGATTDB Group = 0x46
)

func (g Group) String() string {
	switch g {
	case GroupGATT:
		return "gatt"
	case GroupGATTDB:
		return "gattdb"
	default:
		return "unknown"
	}
}

// EventBase is the first event opcode of every layer. Opcodes below it are
// commands; EventBase itself is the "status of last command" event.
const EventBase uint8 = 0x80

// StatusOpCode is the generic status event of a layer.
const StatusOpCode = EventBase

// HeaderLength is the size of the logical packet header:
// group (1), opcode (1), payload length (2).
const HeaderLength = 4

// MaxPayloadLength bounds the payload length field.
const MaxPayloadLength = 0xFFFF
