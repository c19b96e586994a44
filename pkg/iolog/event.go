package iolog

import "time"

// Event is one captured instrument I/O operation.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the operation completed (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the driver session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Device is the device identifier, e.g. "dev8888".
	Device string `cbor:"3,keyasint,omitempty"`

	// Op classifies the operation.
	Op Op `cbor:"4,keyasint"`

	// Path is the node or module parameter path addressed, if any.
	Path string `cbor:"5,keyasint,omitempty"`

	// Value is a printable summary of the value read or written. Vector
	// payloads are summarized as "[N samples]" rather than dumped.
	Value string `cbor:"6,keyasint,omitempty"`

	// Error is the failure message when the operation failed.
	Error string `cbor:"7,keyasint,omitempty"`
}

// Op classifies an instrument I/O operation.
type Op uint8

const (
	// OpRead is a node read of any kind.
	OpRead Op = 0

	// OpWrite is a node write of any kind.
	OpWrite Op = 1

	// OpSync is a synchronization barrier.
	OpSync Op = 2

	// OpList is a node schema listing.
	OpList Op = 3

	// OpCompile is a sequence-program submission to the compiler.
	OpCompile Op = 4

	// OpPoll is one compiler-status or progress poll iteration.
	OpPoll Op = 5
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpRead:
		return "READ"
	case OpWrite:
		return "WRITE"
	case OpSync:
		return "SYNC"
	case OpList:
		return "LIST"
	case OpCompile:
		return "COMPILE"
	case OpPoll:
		return "POLL"
	default:
		return "UNKNOWN"
	}
}
