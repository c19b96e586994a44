// Package b1500 drives a B1500-class semiconductor parameter analyzer
// over a message-based (VISA-style) session.
//
// The analyzer speaks line-oriented text commands, not the node tree the
// AWG uses, so this driver binds no parameter registry; it wraps the
// session-lifecycle and status surface the control framework needs:
// identification, status byte, reset, self-test, and error-queue drain.
//
// A SimSession stands in for hardware when no instrument is reachable,
// mirroring the simulated-instrument fallback of the upstream fixtures.
package b1500
