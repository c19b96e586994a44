package ziapi

import (
	"context"
	"errors"
)

// Session errors. Implementations return these (possibly wrapped) so
// callers can match with errors.Is.
var (
	ErrSessionClosed = errors.New("session is closed")
	ErrPathNotFound  = errors.New("node path not found")
	ErrReadOnly      = errors.New("node is read-only")
	ErrWriteOnly     = errors.New("node is write-only")
	ErrTypeMismatch  = errors.New("node type mismatch")
)

// ListFlag selects which nodes ListNodesJSON reports. Flags combine with
// bitwise OR. The values mirror the vendor's ziListEnum constants.
type ListFlag int

const (
	// ListAll reports every node under the queried path.
	ListAll ListFlag = 0

	// ListSettingsOnly reports only nodes marked as settings.
	ListSettingsOnly ListFlag = 0x08

	// ListStreamingOnly reports only streaming nodes.
	ListStreamingOnly ListFlag = 0x10

	// ListSubscribedOnly reports only subscribed nodes.
	ListSubscribedOnly ListFlag = 0x20

	// ListBaseChannel reports one instance of multi-channel nodes.
	ListBaseChannel ListFlag = 0x40
)

// Session is a live connection to a data server. It provides typed
// get/set primitives keyed by hierarchical node paths, a synchronization
// barrier, and schema listing.
//
// All operations block until the server responds. Thread safety is the
// implementation's concern; the drivers in this module issue calls from
// a single goroutine.
type Session interface {
	// GetInt reads a 64-bit integer node.
	GetInt(ctx context.Context, path string) (int64, error)

	// SetInt writes a 64-bit integer node.
	SetInt(ctx context.Context, path string, value int64) error

	// GetDouble reads a double node.
	GetDouble(ctx context.Context, path string) (float64, error)

	// SetDouble writes a double node.
	SetDouble(ctx context.Context, path string, value float64) error

	// GetString reads a string node.
	GetString(ctx context.Context, path string) (string, error)

	// SetString writes a string node.
	SetString(ctx context.Context, path string, value string) error

	// VectorRead reads an opaque sample vector node.
	VectorRead(ctx context.Context, path string) ([]float64, error)

	// VectorWrite writes an opaque sample vector node.
	VectorWrite(ctx context.Context, path string, values []float64) error

	// Sync drains all pending set operations so subsequent reads and
	// vector writes observe them. Mirrors the vendor daq.sync().
	Sync(ctx context.Context) error

	// ListNodesJSON returns the JSON-encoded node schema for every node
	// under path that matches flags. Decode with ParseNodeTree.
	ListNodesJSON(ctx context.Context, path string, flags ListFlag) ([]byte, error)

	// AWGModule returns the sequence-compiler sub-module handle.
	AWGModule() (AWGModule, error)

	// Close releases the connection. Further calls return ErrSessionClosed.
	Close() error
}
