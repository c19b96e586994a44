package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/equal1/labdrivers/pkg/iolog"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents int
	EventsByOp  map[iolog.Op]int
	Sessions    map[string]*SessionStats
	Errors      int
	TimeRange   struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single driver session.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Device    string
	Errors    int
}

// RunStats analyzes the capture file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := iolog.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByOp: make(map[iolog.Op]int),
		Sessions:   make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByOp[event.Op]++
		if event.Error != "" {
			stats.Errors++
		}

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		sess := stats.Sessions[event.SessionID]
		if sess == nil {
			sess = &SessionStats{FirstSeen: event.Timestamp}
			stats.Sessions[event.SessionID] = sess
		}
		sess.Events++
		sess.LastSeen = event.Timestamp
		if event.Device != "" {
			sess.Device = event.Device
		}
		if event.Error != "" {
			sess.Errors++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintf(w, "Total events: %d\n", stats.TotalEvents)
	if stats.TotalEvents == 0 {
		return
	}

	fmt.Fprintf(w, "Time range:   %s - %s (%s)\n",
		stats.TimeRange.Start.UTC().Format(time.RFC3339),
		stats.TimeRange.End.UTC().Format(time.RFC3339),
		stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
	fmt.Fprintf(w, "Errors:       %d\n", stats.Errors)

	fmt.Fprintln(w, "\nEvents by operation:")
	ops := make([]iolog.Op, 0, len(stats.EventsByOp))
	for op := range stats.EventsByOp {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	for _, op := range ops {
		fmt.Fprintf(w, "  %-8s %d\n", op.String()+":", stats.EventsByOp[op])
	}

	fmt.Fprintln(w, "\nSessions:")
	ids := make([]string, 0, len(stats.Sessions))
	for id := range stats.Sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		sess := stats.Sessions[id]
		fmt.Fprintf(w, "  %s  device=%s events=%d errors=%d duration=%s\n",
			shortenSessionID(id), sess.Device, sess.Events, sess.Errors,
			sess.LastSeen.Sub(sess.FirstSeen).Round(time.Millisecond))
	}
}
