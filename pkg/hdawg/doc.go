// Package hdawg drives an HDAWG-class arbitrary waveform generator
// through a ziapi session.
//
// On Open the driver attaches the AWG compiler module, downloads the
// device node schema, and binds every reported node into a params
// registry, so the full configuration surface is addressable by derived
// name without any per-model code. On top of the bound parameters it
// provides the sequencing workflow: CSV waveform export, sequence
// program generation, and compile/upload with polling.
//
// The driver is synchronous and single-threaded by design: every
// operation blocks until the session answers, matching the underlying
// vendor API. Polling loops honor context cancellation and a
// configurable timeout.
package hdawg
