package iolog

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func sampleEvent(op Op, path string) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		SessionID: "11111111-2222-3333-4444-555555555555",
		Device:    "dev8888",
		Op:        op,
		Path:      path,
		Value:     "1",
	}
}

func TestEncodeDecodeEvent(t *testing.T) {
	event := sampleEvent(OpWrite, "/dev8888/sigouts/0/on")
	event.Error = "device rejected write"

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if decoded.SessionID != event.SessionID {
		t.Errorf("session ID mismatch: %q != %q", decoded.SessionID, event.SessionID)
	}
	if decoded.Op != OpWrite || decoded.Path != event.Path || decoded.Error != event.Error {
		t.Errorf("decoded event differs: %+v", decoded)
	}
	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("timestamp not preserved: %v != %v", decoded.Timestamp, event.Timestamp)
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.ilog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(sampleEvent(OpRead, "/dev8888/oscs/0/freq"))
	logger.Log(sampleEvent(OpWrite, "/dev8888/sigouts/0/on"))
	logger.Log(sampleEvent(OpSync, ""))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Log after close is silently dropped.
	logger.Log(sampleEvent(OpRead, "/dev8888/oscs/0/freq"))
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var count int
	for {
		_, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
	if count != 3 {
		t.Errorf("expected 3 events, got %d", count)
	}
}

func TestFilteredReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.ilog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(sampleEvent(OpRead, "/dev8888/oscs/0/freq"))
	logger.Log(sampleEvent(OpWrite, "/dev8888/oscs/0/freq"))
	failed := sampleEvent(OpWrite, "/dev8888/sigouts/0/on")
	failed.Error = "boom"
	logger.Log(failed)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	t.Run("ByOp", func(t *testing.T) {
		op := OpWrite
		reader, err := NewFilteredReader(path, Filter{Op: &op})
		if err != nil {
			t.Fatalf("NewFilteredReader failed: %v", err)
		}
		defer reader.Close()

		var count int
		for {
			event, err := reader.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			if event.Op != OpWrite {
				t.Errorf("filter leaked op %v", event.Op)
			}
			count++
		}
		if count != 2 {
			t.Errorf("expected 2 write events, got %d", count)
		}
	})

	t.Run("ErrorsOnly", func(t *testing.T) {
		reader, err := NewFilteredReader(path, Filter{ErrorsOnly: true})
		if err != nil {
			t.Fatalf("NewFilteredReader failed: %v", err)
		}
		defer reader.Close()

		event, err := reader.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if event.Error != "boom" {
			t.Errorf("expected the failed event, got %+v", event)
		}
		if _, err := reader.Next(); err != io.EOF {
			t.Errorf("expected EOF, got %v", err)
		}
	})
}

func TestMultiLogger(t *testing.T) {
	var a, b countingLogger
	m := NewMultiLogger(&a, &b)
	m.Log(sampleEvent(OpRead, "/x"))
	m.Log(sampleEvent(OpWrite, "/y"))

	if a.n != 2 || b.n != 2 {
		t.Errorf("expected both loggers to see 2 events, got %d and %d", a.n, b.n)
	}
}

type countingLogger struct{ n int }

func (c *countingLogger) Log(Event) { c.n++ }

func TestSlogAdapterDoesNotPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := NewSlogAdapter(logger)
	a.Log(sampleEvent(OpPoll, "awgModule/progress"))
	a.Log(Event{})
}

func TestOpString(t *testing.T) {
	cases := map[Op]string{
		OpRead:    "READ",
		OpWrite:   "WRITE",
		OpSync:    "SYNC",
		OpList:    "LIST",
		OpCompile: "COMPILE",
		OpPoll:    "POLL",
		Op(99):    "UNKNOWN",
	}
	for op, want := range cases {
		if got := op.String(); got != want {
			t.Errorf("Op(%d).String() = %q, want %q", op, got, want)
		}
	}
}
