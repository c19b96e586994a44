package ziapi

import "context"

// AWG module parameter paths. The module exposes its own small flat
// namespace, distinct from the device node tree.
const (
	ModuleDevice             = "awgModule/device"
	ModuleIndex              = "awgModule/index"
	ModuleDirectory          = "awgModule/directory"
	ModuleProgress           = "awgModule/progress"
	ModuleCompilerSource     = "awgModule/compiler/sourcestring"
	ModuleCompilerStatus     = "awgModule/compiler/status"
	ModuleCompilerStatusText = "awgModule/compiler/statusstring"
)

// Compiler status codes read from ModuleCompilerStatus.
const (
	// CompilerIdle is reported before any source has been submitted.
	CompilerIdle int64 = -1

	// CompilerInProgress is reported while compilation runs. The vendor
	// reuses -1 for both idle and in-progress; callers distinguish the
	// two by having submitted source first.
	CompilerInProgress int64 = -1

	// CompilerSuccess means compilation finished cleanly.
	CompilerSuccess int64 = 0

	// CompilerFailure means compilation failed; the human-readable cause
	// is in ModuleCompilerStatusText.
	CompilerFailure int64 = 1

	// CompilerWarning means compilation succeeded with warnings.
	CompilerWarning int64 = 2
)

// AWGModule is the sequence-compiler sub-handle of a Session. Setting
// ModuleCompilerSource starts an asynchronous compilation; callers poll
// ModuleCompilerStatus and then ModuleProgress.
type AWGModule interface {
	// Execute starts the module thread. Must be called once before any
	// compiler interaction.
	Execute(ctx context.Context) error

	// SetInt writes an integer module parameter.
	SetInt(ctx context.Context, path string, value int64) error

	// SetString writes a string module parameter.
	SetString(ctx context.Context, path string, value string) error

	// GetInt reads an integer module parameter.
	GetInt(ctx context.Context, path string) (int64, error)

	// GetDouble reads a double module parameter.
	GetDouble(ctx context.Context, path string) (float64, error)

	// GetString reads a string module parameter.
	GetString(ctx context.Context, path string) (string, error)

	// Close releases the module handle.
	Close() error
}
