// Package zisim is an in-memory data server implementing the ziapi
// session and AWG module interfaces.
//
// It serves a node schema, enforces per-node access and type rules, and
// records every call so tests can assert exact instrument traffic. The
// AWG module runs a scripted compiler: tests enqueue the status and
// progress sequences the polling loops should observe.
//
// The simulator mirrors the role of the simulated-instrument backend the
// upstream test fixtures fall back to when no hardware is reachable.
package zisim
