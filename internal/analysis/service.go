package analysis

import (
	"context"

	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/telemetry"
)

// Service runs the remote analyzer and falls back to the example analysis.
type Service struct {
	Remote   Analyzer
	Fallback Analyzer
}

// NewService builds a service that analyzes through completer.
func NewService(completer llm.Completer) *Service {
	return &Service{
		Remote:   RemoteAnalyzer{LLM: completer},
		Fallback: ExampleAnalyzer{},
	}
}

// Analyze never fails for model or parse errors; only a canceled context is
// returned as an error.
func (s *Service) Analyze(ctx context.Context, in Input) (Result, error) {
	var (
		result Result
		err    error
	)
	if s.Remote != nil {
		result, err = s.Remote.Analyze(ctx, in)
	} else {
		err = llm.ErrNotConfigured
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		metrics.IncAnalysisFallback()
		telemetry.Warn("analysis.fallback", map[string]any{
			"error":     err,
			"job_title": in.JobTitle,
		})
		fallback := s.Fallback
		if fallback == nil {
			fallback = ExampleAnalyzer{}
		}
		if result, err = fallback.Analyze(ctx, in); err != nil {
			return Result{}, err
		}
	}
	metrics.IncAnalysisCompleted()
	return Finalize(result), nil
}
