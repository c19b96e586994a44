package params

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/equal1/labdrivers/pkg/ziapi"
)

// Entry is one immutable schema entry, decoded from the vendor node
// description into typed form.
type Entry struct {
	// Path is the full slash-delimited node path.
	Path string

	// Kind is the declared data type.
	Kind Kind

	// Access is the permitted operation set.
	Access Access

	// Options maps allowed integer values to labels. Only populated for
	// KindIntEnum entries, where it doubles as the set validator.
	Options map[int64]string

	// Unit is the measurement unit, empty when dimensionless.
	Unit string

	// Description is the vendor's node description.
	Description string
}

// EntryFromNodeInfo converts a decoded vendor node description into an
// Entry. Fails on unrecognized type tags and malformed option keys.
func EntryFromNodeInfo(info ziapi.NodeInfo) (Entry, error) {
	kind, err := KindFromVendor(info.Type)
	if err != nil {
		return Entry{}, fmt.Errorf("node %s: %w", info.Node, err)
	}

	e := Entry{
		Path:        info.Node,
		Kind:        kind,
		Access:      AccessFromProperties(info.Properties),
		Description: info.Description,
	}
	if info.Unit != "" && info.Unit != "None" {
		e.Unit = info.Unit
	}

	if kind == KindIntEnum {
		e.Options = make(map[int64]string, len(info.Options))
		for key, label := range info.Options {
			v, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return Entry{}, fmt.Errorf("node %s: option key %q is not an integer", info.Node, key)
			}
			e.Options[v] = label
		}
	}

	return e, nil
}

// DerivedName returns the registry name for the entry: the path with the
// leading device identifier and root namespace segments dropped, the
// remainder joined with underscores and lower-cased.
// "/dev1234/sigouts/0/on" derives "sigouts_0_on".
func (e Entry) DerivedName() string {
	segments := strings.Split(strings.TrimPrefix(e.Path, "/"), "/")
	if len(segments) <= 1 {
		return strings.ToLower(strings.Join(segments, "_"))
	}
	return strings.ToLower(strings.Join(segments[1:], "_"))
}
