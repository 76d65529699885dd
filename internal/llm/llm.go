package llm

import (
	"context"
	"errors"
	"time"

	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/telemetry"
)

// Completer sends one prompt to a model and returns its raw text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Named is implemented by completers that can report their provider and model.
type Named interface {
	Provider() string
	Model() string
}

// ErrNotConfigured is returned when no LLM provider is configured.
var ErrNotConfigured = errors.New("llm provider not configured")

// Unavailable fails every call so callers take their deterministic fallback.
type Unavailable struct{}

func (Unavailable) Complete(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", ErrNotConfigured
}

func (Unavailable) Provider() string { return "none" }
func (Unavailable) Model() string    { return "" }

// Instrumented records latency and outcome of every completion.
type Instrumented struct {
	Base Completer
}

func (i Instrumented) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := i.Base.Complete(ctx, prompt)
	elapsed := time.Since(start)
	metrics.ObserveLLMDuration(elapsed)

	fields := describe(i.Base)
	fields["duration_ms"] = elapsed.Milliseconds()
	fields["prompt_chars"] = len(prompt)
	if err != nil {
		fields["error"] = err
		telemetry.Warn("llm.complete_failed", fields)
		return "", err
	}
	fields["response_chars"] = len(out)
	telemetry.Debug("llm.complete", fields)
	return out, nil
}

func (i Instrumented) Provider() string { return describeString(i.Base, true) }
func (i Instrumented) Model() string    { return describeString(i.Base, false) }

func describe(c Completer) map[string]any {
	fields := map[string]any{}
	if p := describeString(c, true); p != "" {
		fields[telemetry.FieldLLMProvider] = p
	}
	if m := describeString(c, false); m != "" {
		fields[telemetry.FieldLLMModel] = m
	}
	return fields
}

func describeString(c Completer, provider bool) string {
	named, ok := c.(Named)
	if !ok {
		return ""
	}
	if provider {
		return named.Provider()
	}
	return named.Model()
}
