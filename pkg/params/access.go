package params

import "strings"

// Access describes the allowed operations on a parameter.
type Access uint8

const (
	// AccessRead allows reading the parameter.
	AccessRead Access = 1 << iota

	// AccessWrite allows writing the parameter.
	AccessWrite

	// AccessReadWrite allows both.
	AccessReadWrite = AccessRead | AccessWrite
)

// CanRead returns true if reading is allowed.
func (a Access) CanRead() bool { return a&AccessRead != 0 }

// CanWrite returns true if writing is allowed.
func (a Access) CanWrite() bool { return a&AccessWrite != 0 }

// String returns the access flags as a compact string.
func (a Access) String() string {
	var s string
	if a.CanRead() {
		s += "R"
	}
	if a.CanWrite() {
		s += "W"
	}
	if s == "" {
		return "-"
	}
	return s
}

// AccessFromProperties parses a vendor properties list such as
// "Read, Write, Setting" into Access flags. Tokens other than Read and
// Write are ignored.
func AccessFromProperties(properties string) Access {
	var a Access
	for _, tok := range strings.Split(properties, ",") {
		switch strings.TrimSpace(tok) {
		case "Read":
			a |= AccessRead
		case "Write":
			a |= AccessWrite
		}
	}
	return a
}
