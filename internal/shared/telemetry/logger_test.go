package telemetry

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInfoWritesFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	prev := L()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	Info("resume.uploaded", map[string]any{
		"resume_id": "r-1",
		"size":      42,
		"err":       errors.New("boom"),
	})

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "resume.uploaded" {
		t.Fatalf("unexpected message %q", entries[0].Message)
	}
	ctx := entries[0].ContextMap()
	if ctx["resume_id"] != "r-1" {
		t.Fatalf("unexpected resume_id: %v", ctx["resume_id"])
	}
	if ctx["err"] != "boom" {
		t.Fatalf("expected error rendered as string, got %v", ctx["err"])
	}
}

func TestLevelsRespectCore(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	prev := L()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	Debug("dropped", nil)
	Info("dropped", nil)
	Warn("kept", nil)
	Error("kept", nil)

	if got := observed.Len(); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}
}

func TestLLMFields(t *testing.T) {
	fields := LLMFields("  openai ", "")
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != FieldLLMProvider || fields[0].String != "openai" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	l := WithFields(nil, zap.String("k", "v"))
	if l == nil {
		t.Fatal("expected fallback logger")
	}
	l.Info("does not panic")
}

func TestTruncate(t *testing.T) {
	if got := Truncate("  abcdef ", 3); got != "abc..." {
		t.Fatalf("unexpected truncate result %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("unexpected truncate result %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
