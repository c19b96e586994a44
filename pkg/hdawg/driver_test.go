package hdawg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equal1/labdrivers/pkg/iolog"
	"github.com/equal1/labdrivers/pkg/ziapi"
	"github.com/equal1/labdrivers/pkg/zisim"
)

// collectLogger records capture events for assertions.
type collectLogger struct {
	mu     sync.Mutex
	events []iolog.Event
}

func (c *collectLogger) Log(event iolog.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *collectLogger) byOp(op iolog.Op) []iolog.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []iolog.Event
	for _, e := range c.events {
		if e.Op == op {
			out = append(out, e)
		}
	}
	return out
}

func openTestDriver(t *testing.T, capture iolog.Logger) (*Driver, *zisim.Server) {
	t.Helper()
	srv := zisim.NewServer("dev8888")
	srv.SeedHDAWG()

	d, err := Open(context.Background(), Config{
		DeviceID:     "dev8888",
		Session:      srv,
		PollInterval: time.Millisecond,
		IOLogger:     capture,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	srv.ResetCalls()
	return d, srv
}

func TestOpenBindsFullSchema(t *testing.T) {
	d, _ := openTestDriver(t, nil)

	require.NotZero(t, d.Params().Len())

	// Spot-check representative nodes of each kind.
	for _, name := range []string{
		"sigouts_0_on",
		"oscs_3_freq",
		"awgs_0_waveform_data",
		"features_serial",
		"system_awg_channelgrouping",
	} {
		_, err := d.Params().Lookup(name)
		assert.NoError(t, err, "missing parameter %s", name)
	}
}

func TestOpenValidation(t *testing.T) {
	srv := zisim.NewServer("dev8888")

	_, err := Open(context.Background(), Config{Session: srv})
	require.ErrorIs(t, err, ErrNoDeviceID)

	_, err = Open(context.Background(), Config{DeviceID: "dev8888"})
	require.ErrorIs(t, err, ErrNoSession)
}

func TestChannelAndAWGControl(t *testing.T) {
	d, srv := openTestDriver(t, nil)
	ctx := context.Background()

	require.NoError(t, d.EnableChannel(ctx, 3))
	calls := srv.CallsFor("/dev8888/sigouts/3/on")
	require.Len(t, calls, 1)
	assert.Equal(t, zisim.OpSetInt, calls[0].Op)
	assert.Equal(t, int64(1), calls[0].Value)

	require.NoError(t, d.DisableChannel(ctx, 3))
	calls = srv.CallsFor("/dev8888/sigouts/3/on")
	require.Len(t, calls, 2)
	assert.Equal(t, int64(0), calls[1].Value)

	require.NoError(t, d.StartAWG(ctx, 1))
	require.NoError(t, d.StopAWG(ctx, 1))
	calls = srv.CallsFor("/dev8888/awgs/1/enable")
	require.Len(t, calls, 2)

	require.NoError(t, d.SetChannelGrouping(ctx, GroupingAll))
	calls = srv.CallsFor("/dev8888/system/awg/channelgrouping")
	require.Len(t, calls, 1)
	assert.Equal(t, int64(2), calls[0].Value)
}

func TestUploadWaveformOrder(t *testing.T) {
	d, srv := openTestDriver(t, nil)

	wave := []float64{0.0, 0.5, 1.0, 0.5}
	require.NoError(t, d.UploadWaveform(context.Background(), 0, wave, 2))

	calls := srv.Calls()
	require.Len(t, calls, 3)

	// Index set, sync barrier, then data write - in that order.
	assert.Equal(t, zisim.OpSetInt, calls[0].Op)
	assert.Equal(t, "/dev8888/awgs/0/waveform/index", calls[0].Path)
	assert.Equal(t, int64(2), calls[0].Value)
	assert.Equal(t, zisim.OpSync, calls[1].Op)
	assert.Equal(t, zisim.OpVectorWrite, calls[2].Op)
	assert.Equal(t, "/dev8888/awgs/0/waveform/data", calls[2].Path)
}

func TestWaveformToCSV(t *testing.T) {
	d, srv := openTestDriver(t, nil)

	dataDir := t.TempDir()
	waveDir := filepath.Join(dataDir, "awg", "waves")
	require.NoError(t, os.MkdirAll(waveDir, 0755))
	srv.Compiler().SetDirectory(dataDir)

	err := d.WaveformToCSV(context.Background(), "w",
		[]float64{0.1, 0.2},
		[]float64{-0.1, -0.2})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(waveDir, "w.csv"))
	require.NoError(t, err)
	assert.Equal(t, "0.1;-0.1\n0.2;-0.2\n", string(data))
}

func TestWaveformToCSVTruncatesToShortest(t *testing.T) {
	d, srv := openTestDriver(t, nil)

	dataDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "awg", "waves"), 0755))
	srv.Compiler().SetDirectory(dataDir)

	err := d.WaveformToCSV(context.Background(), "w",
		[]float64{1, 2, 3},
		[]float64{4, 5})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dataDir, "awg", "waves", "w.csv"))
	require.NoError(t, err)
	assert.Equal(t, "1;4\n2;5\n", string(data))
}

func TestWaveformToCSVMissingDirectory(t *testing.T) {
	d, srv := openTestDriver(t, nil)
	srv.Compiler().SetDirectory(filepath.Join(t.TempDir(), "nope"))

	err := d.WaveformToCSV(context.Background(), "w", []float64{0.1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestUploadSequenceProgramSuccess(t *testing.T) {
	capture := &collectLogger{}
	d, srv := openTestDriver(t, capture)

	srv.Compiler().ScriptCompiler("",
		ziapi.CompilerInProgress, ziapi.CompilerInProgress, ziapi.CompilerSuccess)
	srv.Compiler().ScriptProgress(0.4, 1.0)

	status, err := d.UploadSequenceProgram(context.Background(), 0,
		GenerateSequenceProgram([]string{"w"}))
	require.NoError(t, err)
	assert.Equal(t, ziapi.CompilerSuccess, status)

	// Two in-progress observations before the terminal status, two
	// progress reads to completion.
	assert.Equal(t, 3, srv.Compiler().StatusPolls())
	assert.Equal(t, 2, srv.Compiler().ProgressPolls())
	assert.EqualValues(t, 0, srv.Compiler().Index())

	// Capture log saw the submission and every poll.
	require.Len(t, capture.byOp(iolog.OpCompile), 1)
	assert.Len(t, capture.byOp(iolog.OpPoll), 5)
	for _, e := range capture.byOp(iolog.OpPoll) {
		assert.Equal(t, d.SessionID(), e.SessionID)
	}
}

func TestUploadSequenceProgramWarning(t *testing.T) {
	d, srv := openTestDriver(t, nil)

	srv.Compiler().ScriptCompiler("compiled with warnings",
		ziapi.CompilerInProgress, ziapi.CompilerWarning)
	srv.Compiler().ScriptProgress(1.0)

	status, err := d.UploadSequenceProgram(context.Background(), 1, "while(true){}")
	require.NoError(t, err)
	assert.Equal(t, ziapi.CompilerWarning, status)
	assert.EqualValues(t, 1, srv.Compiler().Index())
}

func TestUploadSequenceProgramFailure(t *testing.T) {
	d, srv := openTestDriver(t, nil)

	srv.Compiler().ScriptCompiler("line 2: unknown wave \"x\"",
		ziapi.CompilerInProgress, ziapi.CompilerFailure)

	_, err := d.UploadSequenceProgram(context.Background(), 0, "playWave(\"x\");")
	require.Error(t, err)

	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Message, "unknown wave")

	// Failure must not reach progress polling.
	assert.Zero(t, srv.Compiler().ProgressPolls())
}

func TestUploadSequenceProgramTimeout(t *testing.T) {
	srv := zisim.NewServer("dev8888")
	srv.SeedHDAWG()

	d, err := Open(context.Background(), Config{
		DeviceID:     "dev8888",
		Session:      srv,
		PollInterval: time.Millisecond,
		PollTimeout:  5 * time.Millisecond,
	})
	require.NoError(t, err)
	defer d.Close()

	// Compiler never leaves the in-progress state.
	srv.Compiler().ScriptCompiler("", ziapi.CompilerInProgress)

	_, err = d.UploadSequenceProgram(context.Background(), 0, "while(true){}")
	require.ErrorIs(t, err, ErrPollTimeout)
}

func TestUploadSequenceProgramCancellation(t *testing.T) {
	d, srv := openTestDriver(t, nil)
	srv.Compiler().ScriptCompiler("", ziapi.CompilerInProgress)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.UploadSequenceProgram(ctx, 0, "while(true){}")
	require.ErrorIs(t, err, context.Canceled)
}

func TestGetSetByName(t *testing.T) {
	d, srv := openTestDriver(t, nil)
	ctx := context.Background()

	require.NoError(t, d.Set(ctx, "oscs_0_freq", 10e6))
	v, err := d.Get(ctx, "oscs_0_freq")
	require.NoError(t, err)
	assert.Equal(t, 10e6, v)

	calls := srv.CallsFor("/dev8888/oscs/0/freq")
	require.Len(t, calls, 2)
}

func TestCloseReleasesSession(t *testing.T) {
	srv := zisim.NewServer("dev8888")
	srv.SeedHDAWG()

	d, err := Open(context.Background(), Config{DeviceID: "dev8888", Session: srv})
	require.NoError(t, err)
	require.NoError(t, d.Close())

	// Session calls after close fail.
	_, err = srv.GetInt(context.Background(), "/dev8888/sigouts/0/on")
	require.ErrorIs(t, err, ziapi.ErrSessionClosed)

	// Double close reports ErrClosed.
	require.ErrorIs(t, d.Close(), ErrClosed)
}

func TestGenerateSequenceProgram(t *testing.T) {
	t.Run("NamesOnly", func(t *testing.T) {
		program := GenerateSequenceProgram([]string{"wave1", "wave2"})
		assert.Contains(t, program, `playWave("wave1", "wave2");`)
		assert.Contains(t, program, "while(true){")
		assert.True(t, strings.HasPrefix(program, "// generated by"))
	})

	t.Run("WithChannels", func(t *testing.T) {
		program := GenerateSequenceProgram([]string{"wave1", "wave2"}, 0, 1)
		assert.Contains(t, program, `playWave(0, "wave1", 1, "wave2");`)
	})

	t.Run("ChannelsTruncate", func(t *testing.T) {
		program := GenerateSequenceProgram([]string{"wave1", "wave2"}, 0)
		assert.Contains(t, program, `playWave(0, "wave1");`)
	})
}
