package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"resume-tailor/internal/shared/telemetry"
)

// Retrying retries transient provider failures with linear backoff.
type Retrying struct {
	Base     Completer
	Attempts int
	Delay    time.Duration
}

func (r Retrying) Complete(ctx context.Context, prompt string) (string, error) {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := r.Base.Complete(ctx, prompt)
		if err == nil || !ShouldRetry(err) || attempt == attempts {
			return out, err
		}
		lastErr = err
		telemetry.Warn("llm.retry", map[string]any{"attempt": attempt, "error": err})
		select {
		case <-time.After(r.Delay * time.Duration(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

func (r Retrying) Provider() string { return describeString(r.Base, true) }
func (r Retrying) Model() string    { return describeString(r.Base, false) }

// ShouldRetry reports whether err looks transient: timeouts, 5xx responses
// and dropped connections.
func ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "timeout") {
		return true
	}
	for _, marker := range []string{"connection reset", "connection refused", "connection closed", "broken pipe", "eof"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
