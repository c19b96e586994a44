// Package commands implements the lablog CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/equal1/labdrivers/pkg/iolog"
)

// BuildFilter translates CLI flag values into an iolog.Filter.
func BuildFilter(session, device, op, path string, errorsOnly bool) (iolog.Filter, error) {
	filter := iolog.Filter{
		SessionID:  session,
		Device:     device,
		Path:       path,
		ErrorsOnly: errorsOnly,
	}
	if op != "" {
		parsed, err := ParseOpFlag(op)
		if err != nil {
			return iolog.Filter{}, err
		}
		filter.Op = &parsed
	}
	return filter, nil
}

// ParseOpFlag parses an operation name as given on the command line.
func ParseOpFlag(s string) (iolog.Op, error) {
	switch strings.ToLower(s) {
	case "read":
		return iolog.OpRead, nil
	case "write":
		return iolog.OpWrite, nil
	case "sync":
		return iolog.OpSync, nil
	case "list":
		return iolog.OpList, nil
	case "compile":
		return iolog.OpCompile, nil
	case "poll":
		return iolog.OpPoll, nil
	default:
		return 0, fmt.Errorf("unknown operation: %s (supported: read, write, sync, list, compile, poll)", s)
	}
}

// RunView reads the capture file and prints matching events.
func RunView(path string, filter iolog.Filter, w io.Writer) error {
	reader, err := iolog.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
		count++
	}

	fmt.Fprintf(w, "%d events\n", count)
	return nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event iolog.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	sessID := shortenSessionID(event.SessionID)

	fmt.Fprintf(w, "%s [sess:%s] %-7s", ts, sessID, event.Op)
	if event.Device != "" {
		fmt.Fprintf(w, " %s", event.Device)
	}
	if event.Path != "" {
		fmt.Fprintf(w, " %s", event.Path)
	}
	if event.Value != "" {
		fmt.Fprintf(w, " = %s", event.Value)
	}
	if event.Error != "" {
		fmt.Fprintf(w, "  ERROR: %s", event.Error)
	}
	fmt.Fprintln(w)
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
