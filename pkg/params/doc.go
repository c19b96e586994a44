// Package params turns a hardware-reported node schema into a registry
// of named, typed parameter accessors.
//
// Each schema entry becomes one Parameter: a stateless getter/setter
// pair bound to a live ziapi.Session and the entry's node path. The
// parameter holds no cached value; every Get and Set is a session call.
// The registry is built once at driver initialization and is read-only
// afterwards.
package params
