package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/equal1/labdrivers/pkg/iolog"
)

// createTestCaptureFile writes events to a temporary .ilog file and
// returns its path.
func createTestCaptureFile(t *testing.T, events []iolog.Event) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.ilog")
	logger, err := iolog.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, event := range events {
		logger.Log(event)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return path
}

func TestViewFormatsEvents(t *testing.T) {
	ts := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	events := []iolog.Event{
		{Timestamp: ts, SessionID: "sess-aaaa-bbbb", Device: "dev8888", Op: iolog.OpWrite, Path: "/dev8888/sigouts/0/on", Value: "1"},
		{Timestamp: ts, SessionID: "sess-aaaa-bbbb", Device: "dev8888", Op: iolog.OpRead, Path: "/dev8888/oscs/0/freq", Value: "1e+07"},
	}

	path := createTestCaptureFile(t, events)

	var buf bytes.Buffer
	if err := RunView(path, iolog.Filter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "WRITE") {
		t.Error("expected WRITE op in output")
	}
	if !strings.Contains(output, "/dev8888/sigouts/0/on") {
		t.Error("expected node path in output")
	}
	if !strings.Contains(output, "[sess:sess-aaa]") {
		t.Error("expected shortened session ID in output")
	}
	if !strings.Contains(output, "2 events") {
		t.Error("expected event count in output")
	}
}

func TestViewFiltersByOp(t *testing.T) {
	ts := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	events := []iolog.Event{
		{Timestamp: ts, SessionID: "s1", Op: iolog.OpWrite, Path: "/dev8888/awgs/0/enable"},
		{Timestamp: ts, SessionID: "s1", Op: iolog.OpPoll, Path: "awgModule/compiler/status", Value: "-1"},
		{Timestamp: ts, SessionID: "s1", Op: iolog.OpPoll, Path: "awgModule/compiler/status", Value: "0"},
	}

	path := createTestCaptureFile(t, events)

	filter, err := BuildFilter("", "", "poll", "", false)
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}

	var buf bytes.Buffer
	if err := RunView(path, filter, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "WRITE") {
		t.Error("filtered op should not appear in output")
	}
	if !strings.Contains(output, "2 events") {
		t.Errorf("expected 2 events, got output:\n%s", output)
	}
}

func TestViewErrorsOnly(t *testing.T) {
	ts := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	events := []iolog.Event{
		{Timestamp: ts, SessionID: "s1", Op: iolog.OpRead, Path: "/dev8888/oscs/0/freq"},
		{Timestamp: ts, SessionID: "s1", Op: iolog.OpCompile, Error: "syntax error at line 3"},
	}

	path := createTestCaptureFile(t, events)

	filter, err := BuildFilter("", "", "", "", true)
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}

	var buf bytes.Buffer
	if err := RunView(path, filter, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "ERROR: syntax error at line 3") {
		t.Error("expected error message in output")
	}
	if !strings.Contains(output, "1 events") {
		t.Errorf("expected 1 event, got output:\n%s", output)
	}
}

func TestBuildFilterRejectsUnknownOp(t *testing.T) {
	_, err := BuildFilter("", "", "frobnicate", "", false)
	if err == nil {
		t.Fatal("expected error for unknown operation")
	}
}

func TestStatsAggregates(t *testing.T) {
	start := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	events := []iolog.Event{
		{Timestamp: start, SessionID: "s1", Device: "dev8888", Op: iolog.OpList},
		{Timestamp: start.Add(time.Second), SessionID: "s1", Device: "dev8888", Op: iolog.OpWrite},
		{Timestamp: start.Add(2 * time.Second), SessionID: "s1", Device: "dev8888", Op: iolog.OpPoll},
		{Timestamp: start.Add(3 * time.Second), SessionID: "s2", Device: "dev9999", Op: iolog.OpCompile, Error: "boom"},
	}

	path := createTestCaptureFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Total events: 4") {
		t.Errorf("expected total count, got:\n%s", output)
	}
	if !strings.Contains(output, "Errors:       1") {
		t.Errorf("expected error count, got:\n%s", output)
	}
	for _, want := range []string{"LIST:", "WRITE:", "POLL:", "COMPILE:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output", want)
		}
	}
	if !strings.Contains(output, "device=dev8888") || !strings.Contains(output, "device=dev9999") {
		t.Errorf("expected both sessions in output, got:\n%s", output)
	}
}

func TestStatsEmptyFile(t *testing.T) {
	path := createTestCaptureFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total events: 0") {
		t.Errorf("expected zero total, got:\n%s", buf.String())
	}
}

func TestExportJSONL(t *testing.T) {
	ts := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	events := []iolog.Event{
		{Timestamp: ts, SessionID: "s1", Device: "dev8888", Op: iolog.OpWrite, Path: "/dev8888/sigouts/0/on", Value: "1"},
	}

	path := createTestCaptureFile(t, events)
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data := readFile(t, out)
	var decoded exportEvent
	if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Op != "WRITE" {
		t.Errorf("expected op WRITE, got %s", decoded.Op)
	}
	if decoded.Path != "/dev8888/sigouts/0/on" {
		t.Errorf("unexpected path: %s", decoded.Path)
	}
}

func TestExportCSV(t *testing.T) {
	ts := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	events := []iolog.Event{
		{Timestamp: ts, SessionID: "s1", Device: "dev8888", Op: iolog.OpSync},
	}

	path := createTestCaptureFile(t, events)
	out := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data := readFile(t, out)
	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp,session_id,device,op") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "SYNC") {
		t.Errorf("expected SYNC row, got: %s", lines[1])
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	path := createTestCaptureFile(t, nil)
	if err := RunExport(path, "xml", ""); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
