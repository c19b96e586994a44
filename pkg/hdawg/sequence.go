package hdawg

import (
	"fmt"
	"strings"
)

// sequenceHeader opens every generated program so device-side sources
// can be traced back to this module.
const sequenceHeader = "// generated by labdrivers/hdawg"

// GenerateSequenceProgram returns sequencer source text that plays the
// named waveforms in an endless loop. Each name must correspond to a CSV
// file previously exported with WaveformToCSV.
//
// Without channels the playWave call lists the quoted wave names. With
// channels, names are paired positionally with output channel numbers;
// surplus names or channels are silently dropped, matching the vendor
// helper this reproduces.
func GenerateSequenceProgram(waveNames []string, channels ...int) string {
	var args []string
	if len(channels) == 0 {
		for _, name := range waveNames {
			args = append(args, fmt.Sprintf("%q", name))
		}
	} else {
		n := len(waveNames)
		if len(channels) < n {
			n = len(channels)
		}
		for i := 0; i < n; i++ {
			args = append(args, fmt.Sprintf("%d, %q", channels[i], waveNames[i]))
		}
	}

	var b strings.Builder
	b.WriteString(sequenceHeader)
	b.WriteString("\n")
	b.WriteString("while(true){\n")
	fmt.Fprintf(&b, "    playWave(%s);\n", strings.Join(args, ", "))
	b.WriteString("}\n")
	return b.String()
}
