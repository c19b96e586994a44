package hdawg

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/equal1/labdrivers/pkg/iolog"
	"github.com/equal1/labdrivers/pkg/ziapi"
)

// CompileError reports a failed sequence compilation with the compiler's
// own status message.
type CompileError struct {
	// Status is the compiler status code that signaled the failure.
	Status int64

	// Message is the compiler-reported status string.
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("sequence compilation failed: %s", e.Message)
}

// UploadSequenceProgram submits sequencer source text to the addressed
// AWG core and blocks until the device has compiled and loaded it,
// equivalent to the sequencer tab in the vendor GUI.
//
// The compiler runs asynchronously on the data server; this call polls
// its status every PollInterval until it leaves the in-progress state,
// then polls the load progress fraction to 1.0. A failure status returns
// a *CompileError carrying the compiler's message, without progress
// polling. The terminal return value is the compiler status code
// (ziapi.CompilerSuccess, or ziapi.CompilerWarning when the program
// compiled with warnings).
//
// Polling honors ctx and the driver's PollTimeout; a device that never
// completes yields ErrPollTimeout rather than hanging forever.
func (d *Driver) UploadSequenceProgram(ctx context.Context, awg int, source string) (int64, error) {
	if err := d.awg.SetInt(ctx, ziapi.ModuleIndex, int64(awg)); err != nil {
		return 0, fmt.Errorf("addressing AWG core %d: %w", awg, err)
	}

	err := d.awg.SetString(ctx, ziapi.ModuleCompilerSource, source)
	d.capture(iolog.OpCompile, ziapi.ModuleCompilerSource, fmt.Sprintf("[%d bytes]", len(source)), err)
	if err != nil {
		return 0, fmt.Errorf("submitting sequence program: %w", err)
	}

	status, err := d.pollCompilerStatus(ctx)
	if err != nil {
		return 0, err
	}

	if status == ziapi.CompilerFailure {
		msg, merr := d.awg.GetString(ctx, ziapi.ModuleCompilerStatusText)
		if merr != nil {
			msg = fmt.Sprintf("status %d (status string unavailable: %v)", status, merr)
		}
		return status, &CompileError{Status: status, Message: msg}
	}

	if err := d.pollProgress(ctx); err != nil {
		return status, err
	}
	return status, nil
}

// pollCompilerStatus blocks until the compiler leaves the in-progress
// state and returns the terminal status code.
func (d *Driver) pollCompilerStatus(ctx context.Context) (int64, error) {
	deadline := time.Now().Add(d.pollTimeout)
	for {
		status, err := d.awg.GetInt(ctx, ziapi.ModuleCompilerStatus)
		d.capture(iolog.OpPoll, ziapi.ModuleCompilerStatus, strconv.FormatInt(status, 10), err)
		if err != nil {
			return 0, fmt.Errorf("polling compiler status: %w", err)
		}
		if status != ziapi.CompilerInProgress {
			return status, nil
		}
		if err := d.pollWait(ctx, deadline); err != nil {
			return 0, fmt.Errorf("waiting for compiler: %w", err)
		}
	}
}

// pollProgress blocks until the upload progress fraction reaches 1.0.
func (d *Driver) pollProgress(ctx context.Context) error {
	deadline := time.Now().Add(d.pollTimeout)
	for {
		progress, err := d.awg.GetDouble(ctx, ziapi.ModuleProgress)
		d.capture(iolog.OpPoll, ziapi.ModuleProgress, strconv.FormatFloat(progress, 'g', -1, 64), err)
		if err != nil {
			return fmt.Errorf("polling upload progress: %w", err)
		}
		if progress >= 1.0 {
			return nil
		}
		if err := d.pollWait(ctx, deadline); err != nil {
			return fmt.Errorf("waiting for upload: %w", err)
		}
	}
}

// pollWait sleeps one poll interval, honoring cancellation and the
// loop deadline. A negative PollTimeout disables the deadline.
func (d *Driver) pollWait(ctx context.Context, deadline time.Time) error {
	if d.pollTimeout > 0 && !time.Now().Before(deadline) {
		return ErrPollTimeout
	}
	timer := time.NewTimer(d.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
