package ziapi

import (
	"encoding/json"
	"fmt"
)

// Vendor type tags reported in NodeInfo.Type.
const (
	TypeInteger     = "Integer (64 bit)"
	TypeIntegerEnum = "Integer (enumerated)"
	TypeDouble      = "Double"
	TypeString      = "String"
	TypeVectorData  = "ZIVectorData"
)

// Property tokens that appear in NodeInfo.Properties, a comma-separated
// list such as "Read, Write, Setting".
const (
	PropertyRead    = "Read"
	PropertyWrite   = "Write"
	PropertySetting = "Setting"
)

// NodeInfo describes one node of the device schema as reported by
// ListNodesJSON. The field names match the vendor JSON keys.
type NodeInfo struct {
	// Node is the full slash-delimited path.
	Node string `json:"Node"`

	// Description is the vendor's human-readable node description.
	Description string `json:"Description"`

	// Properties is a comma-separated access list, e.g. "Read, Write".
	Properties string `json:"Properties"`

	// Type is the vendor type tag, one of the Type* constants.
	Type string `json:"Type"`

	// Unit is the measurement unit, "None" when dimensionless.
	Unit string `json:"Unit"`

	// Options maps enumerated integer values (as decimal strings, the
	// vendor's JSON encoding) to their labels. Only populated for
	// TypeIntegerEnum nodes.
	Options map[string]string `json:"Options,omitempty"`
}

// ParseNodeTree decodes the JSON document returned by ListNodesJSON into
// a map keyed by upper-cased node path, matching the vendor encoding.
func ParseNodeTree(data []byte) (map[string]NodeInfo, error) {
	var tree map[string]NodeInfo
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decoding node tree: %w", err)
	}
	return tree, nil
}

// EncodeNodeTree is the inverse of ParseNodeTree. The simulator uses it
// to serve schemas; applications rarely need it.
func EncodeNodeTree(tree map[string]NodeInfo) ([]byte, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encoding node tree: %w", err)
	}
	return data, nil
}
