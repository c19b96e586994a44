package params

import (
	"errors"
	"fmt"
	"sort"

	"github.com/equal1/labdrivers/pkg/ziapi"
)

// Registry errors.
var (
	ErrNameCollision     = errors.New("derived parameter name collision")
	ErrParameterNotFound = errors.New("parameter not found")
)

// Registry holds the full parameter surface of a device, keyed by
// derived name. It is built once by Bind and read-only afterwards.
type Registry struct {
	params map[string]*Parameter
}

// Bind converts a schema into a registry of accessors bound to session.
// Distinct paths deriving the same name are an error; the vendor driver
// silently let the last one win, which hid real schema overlaps.
func Bind(session ziapi.Session, entries []Entry) (*Registry, error) {
	r := &Registry{params: make(map[string]*Parameter, len(entries))}

	for _, entry := range entries {
		p := NewParameter(entry, session)
		name := p.Name()
		if prev, exists := r.params[name]; exists {
			return nil, fmt.Errorf("%w: %q derived from both %s and %s",
				ErrNameCollision, name, prev.Entry().Path, entry.Path)
		}
		r.params[name] = p
	}

	return r, nil
}

// BindNodeTree decodes a vendor node tree and binds it in one step.
func BindNodeTree(session ziapi.Session, tree map[string]ziapi.NodeInfo) (*Registry, error) {
	entries := make([]Entry, 0, len(tree))
	for _, info := range tree {
		entry, err := EntryFromNodeInfo(info)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	// Map iteration order is random; bind deterministically by path so
	// collision errors are stable.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return Bind(session, entries)
}

// Lookup returns the parameter with the given derived name.
func (r *Registry) Lookup(name string) (*Parameter, error) {
	p, ok := r.params[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrParameterNotFound, name)
	}
	return p, nil
}

// Names returns all derived names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.params))
	for name := range r.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bound parameters.
func (r *Registry) Len() int { return len(r.params) }
