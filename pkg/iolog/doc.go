// Package iolog provides structured capture logging of instrument I/O.
//
// The drivers emit one event per session operation (node reads and
// writes, sync barriers, compiler submissions, poll iterations). This is
// separate from operational logging (slog) - capture logging produces a
// complete machine-readable trace of the traffic a measurement generated,
// for post-hoc debugging of hardware interactions.
//
// Applications configure capture by passing a Logger to the driver:
//
//	// For development: mirror events into slog
//	cfg.IOLogger = iolog.NewSlogAdapter(slog.Default())
//
//	// For measurement runs: write to a binary file
//	cfg.IOLogger, _ = iolog.NewFileLogger("run42.ilog")
//
//	// Both: use MultiLogger
//	cfg.IOLogger = iolog.NewMultiLogger(
//	    iolog.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// Log files use CBOR encoding with .ilog extension; the lablog CLI views
// and summarizes them.
package iolog
