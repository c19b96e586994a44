package zisim

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/equal1/labdrivers/pkg/ziapi"
)

func seeded(t *testing.T) *Server {
	t.Helper()
	srv := NewServer("dev8888")
	srv.SeedHDAWG()
	return srv
}

func TestTypedAccess(t *testing.T) {
	srv := seeded(t)
	ctx := context.Background()

	t.Run("IntRoundTrip", func(t *testing.T) {
		if err := srv.SetInt(ctx, "/dev8888/sigouts/0/on", 1); err != nil {
			t.Fatalf("SetInt failed: %v", err)
		}
		v, err := srv.GetInt(ctx, "/dev8888/sigouts/0/on")
		if err != nil {
			t.Fatalf("GetInt failed: %v", err)
		}
		if v != 1 {
			t.Errorf("expected 1, got %d", v)
		}
	})

	t.Run("DoubleRoundTrip", func(t *testing.T) {
		if err := srv.SetDouble(ctx, "/dev8888/oscs/0/freq", 10e6); err != nil {
			t.Fatalf("SetDouble failed: %v", err)
		}
		v, err := srv.GetDouble(ctx, "/dev8888/oscs/0/freq")
		if err != nil {
			t.Fatalf("GetDouble failed: %v", err)
		}
		if v != 10e6 {
			t.Errorf("expected 10e6, got %g", v)
		}
	})

	t.Run("PathsAreCaseInsensitive", func(t *testing.T) {
		if _, err := srv.GetInt(ctx, "/DEV8888/SIGOUTS/0/ON"); err != nil {
			t.Errorf("upper-cased path failed: %v", err)
		}
	})

	t.Run("UnknownPath", func(t *testing.T) {
		_, err := srv.GetInt(ctx, "/dev8888/nope")
		if !errors.Is(err, ziapi.ErrPathNotFound) {
			t.Errorf("expected ErrPathNotFound, got %v", err)
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		_, err := srv.GetDouble(ctx, "/dev8888/sigouts/0/on")
		if !errors.Is(err, ziapi.ErrTypeMismatch) {
			t.Errorf("expected ErrTypeMismatch, got %v", err)
		}
	})

	t.Run("WriteOnlyReadRejected", func(t *testing.T) {
		_, err := srv.VectorRead(ctx, "/dev8888/awgs/0/waveform/data")
		if !errors.Is(err, ziapi.ErrWriteOnly) {
			t.Errorf("expected ErrWriteOnly, got %v", err)
		}
	})

	t.Run("ReadOnlyWriteRejected", func(t *testing.T) {
		err := srv.SetString(ctx, "/dev8888/features/serial", "x")
		if !errors.Is(err, ziapi.ErrReadOnly) {
			t.Errorf("expected ErrReadOnly, got %v", err)
		}
	})
}

func TestListNodesJSON(t *testing.T) {
	srv := seeded(t)
	ctx := context.Background()

	data, err := srv.ListNodesJSON(ctx, "/dev8888/", ziapi.ListAll)
	if err != nil {
		t.Fatalf("ListNodesJSON failed: %v", err)
	}
	tree, err := ziapi.ParseNodeTree(data)
	if err != nil {
		t.Fatalf("ParseNodeTree failed: %v", err)
	}
	if len(tree) == 0 {
		t.Fatal("empty node tree")
	}

	info, ok := tree["/DEV8888/SIGOUTS/0/ON"]
	if !ok {
		t.Fatalf("missing sigouts node; keys: %d", len(tree))
	}
	if info.Type != ziapi.TypeIntegerEnum {
		t.Errorf("unexpected type %q", info.Type)
	}
	if info.Options["1"] != "on" {
		t.Errorf("unexpected options %v", info.Options)
	}

	t.Run("SettingsOnly", func(t *testing.T) {
		data, err := srv.ListNodesJSON(ctx, "/dev8888/", ziapi.ListSettingsOnly)
		if err != nil {
			t.Fatalf("ListNodesJSON failed: %v", err)
		}
		settings, err := ziapi.ParseNodeTree(data)
		if err != nil {
			t.Fatalf("ParseNodeTree failed: %v", err)
		}
		if len(settings) >= len(tree) {
			t.Errorf("settings-only listing (%d) should be smaller than full (%d)",
				len(settings), len(tree))
		}
		for key, info := range settings {
			if !strings.Contains(info.Properties, ziapi.PropertySetting) {
				t.Errorf("%s is not a setting node", key)
			}
		}
	})
}

func TestScriptedCompiler(t *testing.T) {
	srv := seeded(t)
	ctx := context.Background()

	m := srv.Compiler()
	m.ScriptCompiler("bad program", ziapi.CompilerInProgress, ziapi.CompilerFailure)

	if err := m.SetString(ctx, ziapi.ModuleCompilerSource, "x"); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}

	v, _ := m.GetInt(ctx, ziapi.ModuleCompilerStatus)
	if v != ziapi.CompilerInProgress {
		t.Errorf("first poll: expected in-progress, got %d", v)
	}
	v, _ = m.GetInt(ctx, ziapi.ModuleCompilerStatus)
	if v != ziapi.CompilerFailure {
		t.Errorf("second poll: expected failure, got %d", v)
	}
	// Terminal status repeats.
	v, _ = m.GetInt(ctx, ziapi.ModuleCompilerStatus)
	if v != ziapi.CompilerFailure {
		t.Errorf("third poll: expected failure, got %d", v)
	}
	if got := m.StatusPolls(); got != 3 {
		t.Errorf("expected 3 status polls, got %d", got)
	}

	msg, _ := m.GetString(ctx, ziapi.ModuleCompilerStatusText)
	if msg != "bad program" {
		t.Errorf("unexpected status text %q", msg)
	}
}

func TestClose(t *testing.T) {
	srv := seeded(t)
	ctx := context.Background()

	if err := srv.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := srv.GetInt(ctx, "/dev8888/sigouts/0/on"); !errors.Is(err, ziapi.ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
	if err := srv.Sync(ctx); !errors.Is(err, ziapi.ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}
