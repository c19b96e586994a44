// Package ziapi defines the boundary to a LabOne-style data server.
//
// The package contains no wire protocol. It declares the typed get/set
// session surface the vendor client library exposes, the AWG compiler
// sub-module, the node-listing flags, and the JSON schema shape returned
// by ListNodesJSON. Concrete implementations are provided elsewhere: a
// vendor-backed session supplied by the application, or the in-memory
// simulator in package zisim for tests and offline use.
//
// All node addressing uses slash-delimited hierarchical paths, e.g.
// "/dev8888/sigouts/0/on". Paths are case-insensitive on real hardware;
// this package treats them as opaque keys.
package ziapi
