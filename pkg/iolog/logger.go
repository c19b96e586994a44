package iolog

// Logger is the interface drivers use to emit capture events.
// Pass nil or NoopLogger to disable capture.
type Logger interface {
	// Log records an I/O event. Implementations must be thread-safe and
	// should return quickly; blocking slows down instrument traffic.
	Log(event Event)
}

// NoopLogger discards all events. Use when capture is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
