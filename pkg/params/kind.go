package params

import (
	"errors"
	"fmt"

	"github.com/equal1/labdrivers/pkg/ziapi"
)

// ErrUnknownKind is returned when a schema entry declares a type tag
// this package does not recognize. The vendor driver silently skipped
// such nodes; here the gap is surfaced explicitly.
var ErrUnknownKind = errors.New("unknown node type")

// Kind is the declared data type of a parameter.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInt64
	KindIntEnum
	KindDouble
	KindString
	KindVector
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt64:
		return "int64"
	case KindIntEnum:
		return "enum"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindVector:
		return "vector"
	default:
		return "unknown"
	}
}

// KindFromVendor maps a vendor type tag to a Kind. An unrecognized tag
// is an error, not a silent no-op.
func KindFromVendor(tag string) (Kind, error) {
	switch tag {
	case ziapi.TypeInteger:
		return KindInt64, nil
	case ziapi.TypeIntegerEnum:
		return KindIntEnum, nil
	case ziapi.TypeDouble:
		return KindDouble, nil
	case ziapi.TypeString:
		return KindString, nil
	case ziapi.TypeVectorData:
		return KindVector, nil
	default:
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, tag)
	}
}
