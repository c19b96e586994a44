// Package interactive provides the interactive command-line interface
// for the awgctl console.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/equal1/labdrivers/pkg/hdawg"
	"github.com/equal1/labdrivers/pkg/params"
	"github.com/equal1/labdrivers/pkg/ziapi"
	"github.com/equal1/labdrivers/pkg/zisim"
)

// Shell handles interactive mode for awgctl.
type Shell struct {
	driver *hdawg.Driver
	sim    *zisim.Server
	rl     *readline.Instance
}

// New creates a new interactive shell. sim may be nil when the driver
// is not backed by the simulator; the sim command is then unavailable.
func New(driver *hdawg.Driver, sim *zisim.Server) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "awg> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Shell{
		driver: driver,
		sim:    sim,
		rl:     rl,
	}, nil
}

// Stdout returns a writer that properly coordinates with the readline
// input. Use this for log output to avoid interfering with the prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "params", "p":
			s.cmdParams(args)

		case "info", "i":
			s.cmdInfo(args)

		case "get", "read", "g", "r":
			s.cmdGet(ctx, args)

		case "set", "write", "w":
			s.cmdSet(ctx, args)

		case "enable", "on":
			s.cmdEnable(ctx, args, true)

		case "disable", "off":
			s.cmdEnable(ctx, args, false)

		case "start":
			s.cmdRun(ctx, args, true)

		case "stop":
			s.cmdRun(ctx, args, false)

		case "grouping":
			s.cmdGrouping(ctx, args)

		case "seq":
			s.cmdSeq(ctx, args)

		case "wave":
			s.cmdWave(ctx, args)

		case "csv":
			s.cmdCSV(ctx, args)

		case "sim":
			s.cmdSim(args)

		case "status":
			s.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
AWG Console Commands:
  Parameters:
    params [prefix]        - List bound parameter names
    info <name>            - Show parameter path, type, access, options
    get <name>             - Read a parameter value
    set <name> <value>     - Write a parameter value

  Channel Control:
    enable <ch>            - Switch a signal output on
    disable <ch>           - Switch a signal output off
    start <awg>            - Start an AWG core
    stop <awg>             - Stop an AWG core
    grouping <0|1|2>       - Channel grouping: 0=4x2, 1=2x4, 2=1x8

  Waveforms:
    seq <awg> <w1,w2,..> [c1,c2,..]  - Generate and upload a playWave program
    wave <awg> <index> <v,v,..>      - Upload waveform samples to an index
    csv <name> <v,v,..> [v,v,..]     - Export waveform columns to CSV

  Simulator:
    sim ok|warn|fail [message]       - Script the next compile outcome
    status                           - Show session status

  General:
    help                   - Show this help
    quit                   - Exit console

  Values:
    int/enum: 1     double: 1.5e9     string: text     vector: 0.1,0.2,0.3`)
}

func (s *Shell) cmdParams(args []string) {
	prefix := ""
	if len(args) > 0 {
		prefix = strings.ToLower(args[0])
	}

	names := s.driver.Params().Names()
	sort.Strings(names)

	count := 0
	for _, name := range names {
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		fmt.Fprintln(s.rl.Stdout(), " ", name)
		count++
	}
	fmt.Fprintf(s.rl.Stdout(), "%d parameters\n", count)
}

func (s *Shell) cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: info <name>")
		return
	}

	param, err := s.driver.Params().Lookup(args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}

	entry := param.Entry()
	fmt.Fprintf(s.rl.Stdout(), "Name:   %s\n", param.Name())
	fmt.Fprintf(s.rl.Stdout(), "Path:   %s\n", entry.Path)
	fmt.Fprintf(s.rl.Stdout(), "Type:   %s\n", entry.Kind)
	fmt.Fprintf(s.rl.Stdout(), "Access: %s\n", entry.Access)
	if entry.Unit != "" {
		fmt.Fprintf(s.rl.Stdout(), "Unit:   %s\n", entry.Unit)
	}
	if len(entry.Options) > 0 {
		fmt.Fprintln(s.rl.Stdout(), "Options:")
		keys := make([]int64, 0, len(entry.Options))
		for k := range entry.Options {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, k := range keys {
			fmt.Fprintf(s.rl.Stdout(), "  %d: %s\n", k, entry.Options[k])
		}
	}
	if entry.Description != "" {
		fmt.Fprintf(s.rl.Stdout(), "Desc:   %s\n", entry.Description)
	}
}

func (s *Shell) cmdGet(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: get <name>")
		return
	}

	value, err := s.driver.Get(ctx, args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%s = %v\n", args[0], value)
}

func (s *Shell) cmdSet(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: set <name> <value>")
		return
	}

	param, err := s.driver.Params().Lookup(args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}

	value, err := parseValue(param.Entry().Kind, strings.Join(args[1:], " "))
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid value: %v\n", err)
		return
	}

	if err := s.driver.Set(ctx, args[0], value); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%s = %v\n", args[0], value)
}

func (s *Shell) cmdEnable(ctx context.Context, args []string, on bool) {
	verb := "enable"
	if !on {
		verb = "disable"
	}
	if len(args) < 1 {
		fmt.Fprintf(s.rl.Stdout(), "Usage: %s <channel>\n", verb)
		return
	}

	ch, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid channel: %s\n", args[0])
		return
	}

	if on {
		err = s.driver.EnableChannel(ctx, ch)
	} else {
		err = s.driver.DisableChannel(ctx, ch)
	}
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Channel %d %sd\n", ch, verb)
}

func (s *Shell) cmdRun(ctx context.Context, args []string, start bool) {
	verb := "start"
	if !start {
		verb = "stop"
	}
	if len(args) < 1 {
		fmt.Fprintf(s.rl.Stdout(), "Usage: %s <awg>\n", verb)
		return
	}

	awg, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid AWG index: %s\n", args[0])
		return
	}

	done := "started"
	if start {
		err = s.driver.StartAWG(ctx, awg)
	} else {
		err = s.driver.StopAWG(ctx, awg)
		done = "stopped"
	}
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "AWG %d %s\n", awg, done)
}

func (s *Shell) cmdGrouping(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: grouping <0|1|2>")
		return
	}

	mode, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid grouping: %s\n", args[0])
		return
	}

	if err := s.driver.SetChannelGrouping(ctx, mode); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Channel grouping set to %d\n", mode)
}

func (s *Shell) cmdSeq(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: seq <awg> <wave1,wave2,..> [ch1,ch2,..]")
		return
	}

	awg, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid AWG index: %s\n", args[0])
		return
	}

	waveNames := strings.Split(args[1], ",")

	var channels []int
	if len(args) > 2 {
		for _, field := range strings.Split(args[2], ",") {
			ch, err := strconv.Atoi(field)
			if err != nil {
				fmt.Fprintf(s.rl.Stdout(), "Invalid channel: %s\n", field)
				return
			}
			channels = append(channels, ch)
		}
	}

	source := hdawg.GenerateSequenceProgram(waveNames, channels...)
	fmt.Fprintln(s.rl.Stdout(), source)

	status, err := s.driver.UploadSequenceProgram(ctx, awg, source)
	if err != nil {
		var compileErr *hdawg.CompileError
		if errors.As(err, &compileErr) {
			fmt.Fprintf(s.rl.Stdout(), "Compile failed: %s\n", compileErr.Message)
		} else {
			fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		}
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Uploaded to AWG %d (compiler status %d)\n", awg, status)
}

func (s *Shell) cmdWave(ctx context.Context, args []string) {
	if len(args) < 3 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: wave <awg> <index> <v,v,..>")
		return
	}

	awg, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid AWG index: %s\n", args[0])
		return
	}
	index, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid index: %s\n", args[1])
		return
	}
	samples, err := parseVectorValue(args[2])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid samples: %v\n", err)
		return
	}

	if err := s.driver.UploadWaveform(ctx, awg, samples, index); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Uploaded %d samples to AWG %d index %d\n", len(samples), awg, index)
}

func (s *Shell) cmdCSV(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: csv <name> <v,v,..> [v,v,..]")
		return
	}

	waveforms := make([][]float64, 0, len(args)-1)
	for _, column := range args[1:] {
		samples, err := parseVectorValue(column)
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Invalid samples: %v\n", err)
			return
		}
		waveforms = append(waveforms, samples)
	}

	if err := s.driver.WaveformToCSV(ctx, args[0], waveforms...); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Wrote %s.csv (%d columns)\n", args[0], len(waveforms))
}

func (s *Shell) cmdSim(args []string) {
	if s.sim == nil {
		fmt.Fprintln(s.rl.Stdout(), "Not running against the simulator")
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: sim ok|warn|fail [message]")
		return
	}

	compiler := s.sim.Compiler()
	message := strings.Join(args[1:], " ")

	switch strings.ToLower(args[0]) {
	case "ok":
		compiler.ScriptCompiler("", ziapi.CompilerInProgress, ziapi.CompilerSuccess)
		compiler.ScriptProgress(0.5, 1.0)
		fmt.Fprintln(s.rl.Stdout(), "Next compile will succeed")
	case "warn":
		if message == "" {
			message = "compiled with warnings"
		}
		compiler.ScriptCompiler(message, ziapi.CompilerInProgress, ziapi.CompilerWarning)
		compiler.ScriptProgress(1.0)
		fmt.Fprintf(s.rl.Stdout(), "Next compile will warn: %s\n", message)
	case "fail":
		if message == "" {
			message = "syntax error"
		}
		compiler.ScriptCompiler(message, ziapi.CompilerInProgress, ziapi.CompilerFailure)
		fmt.Fprintf(s.rl.Stdout(), "Next compile will fail: %s\n", message)
	default:
		fmt.Fprintln(s.rl.Stdout(), "Usage: sim ok|warn|fail [message]")
	}
}

func (s *Shell) cmdStatus() {
	fmt.Fprintf(s.rl.Stdout(), "Device:     %s\n", s.driver.DeviceID())
	fmt.Fprintf(s.rl.Stdout(), "Session:    %s\n", s.driver.SessionID())
	fmt.Fprintf(s.rl.Stdout(), "Parameters: %d\n", s.driver.Params().Len())
	if s.sim != nil {
		fmt.Fprintf(s.rl.Stdout(), "Backend:    simulator (%d calls recorded)\n", len(s.sim.Calls()))
	}
}

// parseValue converts shell input to the value type the parameter expects.
func parseValue(kind params.Kind, input string) (any, error) {
	switch kind {
	case params.KindInt64, params.KindIntEnum:
		return strconv.ParseInt(input, 10, 64)
	case params.KindDouble:
		return strconv.ParseFloat(input, 64)
	case params.KindString:
		return input, nil
	case params.KindVector:
		return parseVectorValue(input)
	default:
		return nil, fmt.Errorf("cannot parse value of kind %s", kind)
	}
}

// parseVectorValue parses a comma-separated list of float samples.
func parseVectorValue(input string) ([]float64, error) {
	fields := strings.Split(input, ",")
	samples := make([]float64, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("bad sample %q", field)
		}
		samples = append(samples, v)
	}
	return samples, nil
}
