package params

import (
	"context"
	"errors"
	"fmt"

	"github.com/equal1/labdrivers/pkg/ziapi"
)

// Parameter errors.
var (
	ErrNotReadable      = errors.New("parameter is not readable")
	ErrNotWritable      = errors.New("parameter is not writable")
	ErrInvalidEnumValue = errors.New("value is not in the enumerated set")
	ErrValueType        = errors.New("invalid value type for parameter")
)

// Parameter is a stateless accessor for one device node. It proxies
// every Get and Set to the bound session; session errors propagate
// unmodified.
type Parameter struct {
	entry   Entry
	session ziapi.Session
}

// NewParameter binds an entry to a session.
func NewParameter(entry Entry, session ziapi.Session) *Parameter {
	return &Parameter{entry: entry, session: session}
}

// Name returns the derived registry name.
func (p *Parameter) Name() string { return p.entry.DerivedName() }

// Entry returns the schema entry the parameter was built from.
func (p *Parameter) Entry() Entry { return p.entry }

// Get reads the current value from the device. The returned value is
// int64 for integer and enumerated kinds, float64 for doubles, string
// for strings, and []float64 for vectors.
func (p *Parameter) Get(ctx context.Context) (any, error) {
	if !p.entry.Access.CanRead() {
		return nil, fmt.Errorf("%s: %w", p.Name(), ErrNotReadable)
	}

	switch p.entry.Kind {
	case KindInt64, KindIntEnum:
		return p.session.GetInt(ctx, p.entry.Path)
	case KindDouble:
		return p.session.GetDouble(ctx, p.entry.Path)
	case KindString:
		return p.session.GetString(ctx, p.entry.Path)
	case KindVector:
		return p.session.VectorRead(ctx, p.entry.Path)
	default:
		return nil, fmt.Errorf("%s: %w: kind %d", p.Name(), ErrUnknownKind, p.entry.Kind)
	}
}

// Set writes a value to the device. Enumerated parameters validate the
// value against the entry's option set before any session call.
func (p *Parameter) Set(ctx context.Context, value any) error {
	if !p.entry.Access.CanWrite() {
		return fmt.Errorf("%s: %w", p.Name(), ErrNotWritable)
	}

	switch p.entry.Kind {
	case KindInt64:
		v, ok := toInt64(value)
		if !ok {
			return fmt.Errorf("%s: %w: expected integer, got %T", p.Name(), ErrValueType, value)
		}
		return p.session.SetInt(ctx, p.entry.Path, v)

	case KindIntEnum:
		v, ok := toInt64(value)
		if !ok {
			return fmt.Errorf("%s: %w: expected integer, got %T", p.Name(), ErrValueType, value)
		}
		if _, allowed := p.entry.Options[v]; !allowed {
			return fmt.Errorf("%s: %w: %d", p.Name(), ErrInvalidEnumValue, v)
		}
		return p.session.SetInt(ctx, p.entry.Path, v)

	case KindDouble:
		v, ok := toFloat64(value)
		if !ok {
			return fmt.Errorf("%s: %w: expected number, got %T", p.Name(), ErrValueType, value)
		}
		return p.session.SetDouble(ctx, p.entry.Path, v)

	case KindString:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: %w: expected string, got %T", p.Name(), ErrValueType, value)
		}
		return p.session.SetString(ctx, p.entry.Path, v)

	case KindVector:
		v, ok := toVector(value)
		if !ok {
			return fmt.Errorf("%s: %w: expected sample vector, got %T", p.Name(), ErrValueType, value)
		}
		return p.session.VectorWrite(ctx, p.entry.Path, v)

	default:
		return fmt.Errorf("%s: %w: kind %d", p.Name(), ErrUnknownKind, p.entry.Kind)
	}
}

// toInt64 converts Go integer types to int64.
func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	default:
		return 0, false
	}
}

// toFloat64 converts numeric types to float64.
func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		if i, ok := toInt64(value); ok {
			return float64(i), true
		}
		return 0, false
	}
}

// toVector converts sample slices to []float64.
func toVector(value any) ([]float64, bool) {
	switch v := value.(type) {
	case []float64:
		return v, true
	case []float32:
		out := make([]float64, len(v))
		for i, s := range v {
			out[i] = float64(s)
		}
		return out, true
	case []int16:
		out := make([]float64, len(v))
		for i, s := range v {
			out[i] = float64(s)
		}
		return out, true
	default:
		return nil, false
	}
}
