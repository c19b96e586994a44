package hdawg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/equal1/labdrivers/pkg/iolog"
	"github.com/equal1/labdrivers/pkg/ziapi"
)

// WaveformToCSV writes one or more waveforms to a semicolon-delimited
// CSV file in the AWG module's wave directory, where generated sequence
// programs can reference them by name. Multiple waveforms become columns
// and play simultaneously on separate outputs; rows are truncated to the
// shortest waveform.
//
// The target directory is <module data dir>/awg/waves and must already
// exist; the module creates it when the data server is set up.
func (d *Driver) WaveformToCSV(ctx context.Context, waveName string, waveforms ...[]float64) error {
	if len(waveforms) == 0 {
		return fmt.Errorf("no waveforms given for %q", waveName)
	}

	dataDir, err := d.awg.GetString(ctx, ziapi.ModuleDirectory)
	if err != nil {
		return fmt.Errorf("querying module data directory: %w", err)
	}

	waveDir := filepath.Join(dataDir, "awg", "waves")
	info, err := os.Stat(waveDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("AWG module wave directory %s does not exist or is not a directory", waveDir)
	}

	rows := len(waveforms[0])
	for _, w := range waveforms[1:] {
		if len(w) < rows {
			rows = len(w)
		}
	}

	var b strings.Builder
	cols := make([]string, len(waveforms))
	for i := 0; i < rows; i++ {
		for j, w := range waveforms {
			cols[j] = strconv.FormatFloat(w[i], 'g', -1, 64)
		}
		b.WriteString(strings.Join(cols, ";"))
		b.WriteString("\n")
	}

	path := filepath.Join(waveDir, waveName+".csv")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing waveform file: %w", err)
	}
	return nil
}

// UploadWaveform replaces the contents of a waveform placeholder in
// device memory. The placeholder must have been allocated by the running
// sequence program; this call replaces data, it never allocates.
//
// Samples are floating-point in [-1.0, 1.0] (or 16-bit integer derived
// values); out-of-range samples pass through unchecked and the hardware
// decides their fate.
func (d *Driver) UploadWaveform(ctx context.Context, awg int, waveform []float64, index int64) error {
	if err := d.Set(ctx, fmt.Sprintf("awgs_%d_waveform_index", awg), index); err != nil {
		return err
	}

	err := d.session.Sync(ctx)
	d.capture(iolog.OpSync, "", "", err)
	if err != nil {
		return fmt.Errorf("synchronizing before waveform write: %w", err)
	}

	return d.Set(ctx, fmt.Sprintf("awgs_%d_waveform_data", awg), waveform)
}
