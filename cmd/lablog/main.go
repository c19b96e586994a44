// Command lablog is a tool for viewing and analyzing instrument I/O
// capture files.
//
// Capture files are created by the drivers when configured with an
// iolog.FileLogger, e.g. via awgctl's -iolog flag.
//
// Usage:
//
//	lablog <command> [flags] <file.ilog>
//
// Commands:
//
//	view     View capture file in human-readable format
//	export   Export capture file to JSONL or CSV format
//	stats    Show statistics about the capture file
//
// Examples:
//
//	# View all operations
//	lablog view session.ilog
//
//	# View only compiler polls
//	lablog view -op poll session.ilog
//
//	# View only failed operations
//	lablog view -errors session.ilog
//
//	# Export to CSV
//	lablog export -format csv -o session.csv session.ilog
//
//	# Show statistics
//	lablog stats session.ilog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/equal1/labdrivers/cmd/lablog/commands"
)

const usage = `lablog - Instrument I/O Capture Analyzer

Usage:
  lablog <command> [flags] <file.ilog>

Commands:
  view     View capture file in human-readable format
  export   Export capture file to JSONL or CSV format
  stats    Show statistics about the capture file

Use "lablog <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `lablog view - View capture file in human-readable format

Usage:
  lablog view [flags] <file.ilog>

Flags:
`)
		fs.PrintDefaults()
	}

	session := fs.String("session", "", "Filter by session ID")
	device := fs.String("device", "", "Filter by device ID")
	op := fs.String("op", "", "Filter by operation (read, write, sync, list, compile, poll)")
	path := fs.String("path", "", "Filter by exact node path")
	errorsOnly := fs.Bool("errors", false, "Show only failed operations")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: capture file path required")
		fs.Usage()
		os.Exit(1)
	}

	filter, err := commands.BuildFilter(*session, *device, *op, *path, *errorsOnly)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := commands.RunView(fs.Arg(0), filter, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `lablog export - Export capture file to JSONL or CSV format

Usage:
  lablog export [flags] <file.ilog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format: jsonl, csv")
	output := fs.String("o", "", "Output file (default stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: capture file path required")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunExport(fs.Arg(0), *format, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `lablog stats - Show statistics about the capture file

Usage:
  lablog stats <file.ilog>
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: capture file path required")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunStats(fs.Arg(0), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
