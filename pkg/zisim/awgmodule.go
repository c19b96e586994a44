package zisim

import (
	"context"
	"fmt"
	"sync"

	"github.com/equal1/labdrivers/pkg/ziapi"
)

// AWGModule simulates the sequence-compiler sub-module. Tests script the
// compiler by enqueuing the status and progress values the polling loops
// will observe; each poll consumes one value and the final value repeats.
type AWGModule struct {
	mu       sync.Mutex
	server   *Server
	executed bool
	closed   bool

	ints    map[string]int64
	strings map[string]string

	directory  string
	statusSeq  []int64
	statusIdx  int
	progSeq    []float64
	progIdx    int
	statusText string

	// Poll counters for test assertions.
	statusPolls   int
	progressPolls int
}

func newAWGModule(server *Server) *AWGModule {
	return &AWGModule{
		server:  server,
		ints:    make(map[string]int64),
		strings: make(map[string]string),
		// Nothing submitted yet.
		statusSeq: []int64{ziapi.CompilerIdle},
	}
}

// ScriptCompiler sets the status sequence the next compilation reports,
// and the message returned for the status-string query.
func (m *AWGModule) ScriptCompiler(statusText string, statuses ...int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusSeq = statuses
	m.statusIdx = 0
	m.statusText = statusText
	m.statusPolls = 0
}

// ScriptProgress sets the progress sequence reported after compilation.
func (m *AWGModule) ScriptProgress(values ...float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progSeq = values
	m.progIdx = 0
	m.progressPolls = 0
}

// SetDirectory sets the module data directory reported by
// ziapi.ModuleDirectory.
func (m *AWGModule) SetDirectory(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.directory = dir
}

// StatusPolls returns how many times the compiler status was read since
// the last ScriptCompiler call.
func (m *AWGModule) StatusPolls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusPolls
}

// ProgressPolls returns how many times the progress fraction was read
// since the last ScriptProgress call.
func (m *AWGModule) ProgressPolls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progressPolls
}

// Source returns the last submitted compiler source text.
func (m *AWGModule) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.strings[ziapi.ModuleCompilerSource]
}

// Index returns the last value written to the module index parameter.
func (m *AWGModule) Index() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ints[ziapi.ModuleIndex]
}

// Execute starts the module thread.
func (m *AWGModule) Execute(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ziapi.ErrSessionClosed
	}
	m.executed = true
	return nil
}

// SetInt writes an integer module parameter.
func (m *AWGModule) SetInt(_ context.Context, path string, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ziapi.ErrSessionClosed
	}
	m.ints[path] = value
	return nil
}

// SetString writes a string module parameter. Writing the compiler
// source rewinds the scripted status sequence, starting a "compilation".
func (m *AWGModule) SetString(_ context.Context, path string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ziapi.ErrSessionClosed
	}
	m.strings[path] = value
	if path == ziapi.ModuleCompilerSource {
		m.statusIdx = 0
		m.progIdx = 0
		m.statusPolls = 0
		m.progressPolls = 0
	}
	return nil
}

// GetInt reads an integer module parameter. The compiler status is
// served from the scripted sequence.
func (m *AWGModule) GetInt(_ context.Context, path string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ziapi.ErrSessionClosed
	}
	if path == ziapi.ModuleCompilerStatus {
		m.statusPolls++
		status := m.statusSeq[m.statusIdx]
		if m.statusIdx < len(m.statusSeq)-1 {
			m.statusIdx++
		}
		return status, nil
	}
	return m.ints[path], nil
}

// GetDouble reads a double module parameter. The progress fraction is
// served from the scripted sequence.
func (m *AWGModule) GetDouble(_ context.Context, path string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ziapi.ErrSessionClosed
	}
	if path == ziapi.ModuleProgress {
		m.progressPolls++
		if len(m.progSeq) == 0 {
			return 1.0, nil
		}
		p := m.progSeq[m.progIdx]
		if m.progIdx < len(m.progSeq)-1 {
			m.progIdx++
		}
		return p, nil
	}
	return 0, fmt.Errorf("%w: %s", ziapi.ErrPathNotFound, path)
}

// GetString reads a string module parameter.
func (m *AWGModule) GetString(_ context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ziapi.ErrSessionClosed
	}
	switch path {
	case ziapi.ModuleDirectory:
		return m.directory, nil
	case ziapi.ModuleCompilerStatusText:
		return m.statusText, nil
	default:
		return m.strings[path], nil
	}
}

// Close releases the module handle.
func (m *AWGModule) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Compile-time interface satisfaction check.
var _ ziapi.AWGModule = (*AWGModule)(nil)
