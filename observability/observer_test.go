package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/authstate/observability"
)

type recordingObserver struct {
	events []observability.Event
}

func (r *recordingObserver) OnEvent(_ context.Context, event observability.Event) {
	r.events = append(r.events, event)
}

func TestLevelMapping(t *testing.T) {
	tests := []struct {
		level observability.Level
		text  string
		slog  slog.Level
	}{
		{observability.LevelVerbose, "DEBUG", slog.LevelDebug},
		{observability.LevelInfo, "INFO", slog.LevelInfo},
		{observability.LevelWarning, "WARN", slog.LevelWarn},
		{observability.LevelError, "ERROR", slog.LevelError},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.text {
			t.Errorf("level %d: expected %s, got %s", tt.level, tt.text, got)
		}
		if got := tt.level.SlogLevel(); got != tt.slog {
			t.Errorf("level %d: expected slog %v, got %v", tt.level, tt.slog, got)
		}
	}
}

func TestSlogObserver_OnEvent_LogsEventFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	observer := observability.NewSlogObserver(logger)

	observer.OnEvent(context.Background(), observability.Event{
		Type:      observability.EventDispatchCommitted,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "authstate",
		Data: map[string]any{
			"kind":     "establish",
			"revision": uint64(1),
		},
	})

	output := buf.String()
	for _, want := range []string{"state.dispatch.committed", "source=authstate", "kind=establish", "revision=1"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected log to contain %q, got %q", want, output)
		}
	}
}

func TestSlogObserver_RespectsHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	observer := observability.NewSlogObserver(logger)

	observer.OnEvent(context.Background(), observability.Event{
		Type:  observability.EventSubscribe,
		Level: observability.LevelVerbose,
	})
	if buf.Len() != 0 {
		t.Fatalf("expected debug event to be filtered, got %q", buf.String())
	}
}

func TestMultiObserver_FansOutAndSkipsNil(t *testing.T) {
	a := &recordingObserver{}
	b := &recordingObserver{}
	multi := observability.NewMultiObserver(a, nil, b, observability.NoOpObserver{})

	multi.OnEvent(context.Background(), observability.Event{Type: observability.EventClose})

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("expected one event per observer, got %d and %d", len(a.events), len(b.events))
	}
}
