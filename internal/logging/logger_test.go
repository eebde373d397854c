package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"trace", LevelTrace},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantTrace bool
	}{
		{"info", false, false},
		{"debug", true, false},
		{"trace", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)
			logger.Debug("trace verdict", "index", 1)
			logger.Log(t.Context(), LevelTrace, "invocation", "component", "C0")

			out := buf.String()
			if got := strings.Contains(out, "trace verdict"); got != tt.wantDebug {
				t.Errorf("debug record present = %v, want %v:\n%s", got, tt.wantDebug, out)
			}
			if got := strings.Contains(out, "level=TRACE"); got != tt.wantTrace {
				t.Errorf("TRACE record present = %v, want %v:\n%s", got, tt.wantTrace, out)
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(t.Context(), slog.LevelError) {
		t.Error("Discard() logger accepts error records")
	}
}

// readEvents decodes every JSONL line in data.
func readEvents(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var events []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var e map[string]any
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("invalid JSONL line %q: %v", sc.Text(), err)
		}
		events = append(events, e)
	}
	return events
}

func TestEventLogWriter(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLogWriter(&buf)

	event := map[string]any{"event": "trace", "index": 3, "verdict": "fail"}
	el.Log(event)
	el.Log(map[string]any{"event": "run", "traces": 4})
	el.Log(nil)

	if _, ok := event["time"]; ok {
		t.Error("Log mutated the caller's map")
	}
	events := readEvents(t, buf.Bytes())
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0]["event"] != "trace" || events[0]["verdict"] != "fail" || events[0]["index"] != float64(3) {
		t.Errorf("unexpected first event: %v", events[0])
	}
	for i, e := range events {
		if _, ok := e["time"].(string); !ok {
			t.Errorf("event %d has no time stamp: %v", i, e)
		}
	}
}

func TestEventLog_ConcurrentWritesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLogWriter(&buf)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				el.Log(map[string]any{"event": "trace", "worker": w, "index": i})
			}
		}(w)
	}
	wg.Wait()

	if got := len(readEvents(t, buf.Bytes())); got != 200 {
		t.Errorf("got %d events, want 200", got)
	}
}

func TestEventLog_NilAndClosed(t *testing.T) {
	var nilLog *EventLog
	nilLog.Log(map[string]any{"event": "trace"})
	nilLog.Close()

	var buf bytes.Buffer
	el := NewEventLogWriter(&buf)
	el.Close()
	el.Log(map[string]any{"event": "trace"})
	if buf.Len() != 0 {
		t.Errorf("closed log wrote %q", buf.String())
	}
}

func TestNewEventLog(t *testing.T) {
	t.Run("info level disables events", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "events")
		if el := NewEventLog(dir, "info"); el != nil {
			el.Close()
			t.Fatal("expected nil event log at info level")
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("info level created %s", dir)
		}
	})

	for _, level := range []string{"debug", "trace"} {
		t.Run(level, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "nested", "events")
			el := NewEventLog(dir, level)
			if el == nil {
				t.Fatal("expected an event log")
			}
			el.Log(map[string]any{"event": "sweep", "seeds": 2})
			el.Close()

			// A second log appends to the same file.
			el = NewEventLog(dir, level)
			el.Log(map[string]any{"event": "run"})
			el.Close()

			path := filepath.Join(dir, "events.jsonl")
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			events := readEvents(t, data)
			if len(events) != 2 || events[0]["event"] != "sweep" || events[1]["event"] != "run" {
				t.Errorf("unexpected events: %v", events)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if perm := info.Mode().Perm(); perm != 0600 {
				t.Errorf("events.jsonl mode = %o, want 600", perm)
			}
		})
	}
}
