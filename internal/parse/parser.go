package parse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/resume/model"
)

const (
	SourceAI    = "ai"
	SourceRules = "rules"

	// maxPromptChars bounds the resume text sent to the model.
	maxPromptChars = 20000
)

// ErrEmptyResponse is returned when the model reply holds no JSON object.
var ErrEmptyResponse = errors.New("llm returned no resume json")

// Parser turns plain resume text into structured data.
type Parser interface {
	Parse(ctx context.Context, text string) (model.ResumeData, error)
}

// AIParser asks an LLM to structure the text.
type AIParser struct {
	LLM llm.Completer
}

func (p AIParser) Parse(ctx context.Context, text string) (model.ResumeData, error) {
	if p.LLM == nil {
		return model.ResumeData{}, llm.ErrNotConfigured
	}
	prompt, err := llm.RenderPrompt(llm.PromptParseResume, map[string]string{
		"RESUME_TEXT": truncateRunes(text, maxPromptChars),
	})
	if err != nil {
		return model.ResumeData{}, err
	}
	raw, err := p.LLM.Complete(ctx, prompt)
	if err != nil {
		return model.ResumeData{}, fmt.Errorf("llm parse: %w", err)
	}
	payload, ok := llm.ExtractJSONObject(llm.CleanJSON(raw))
	if !ok {
		return model.ResumeData{}, ErrEmptyResponse
	}
	var data model.ResumeData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return model.ResumeData{}, fmt.Errorf("decode resume json: %w", err)
	}
	return data.Normalize(), nil
}

// FallbackParser tries Primary and falls back to Fallback on any error.
// The returned source names which one produced the data.
type FallbackParser struct {
	Primary  Parser
	Fallback Parser
}

func (p FallbackParser) ParseWithSource(ctx context.Context, text string) (model.ResumeData, string, error) {
	if p.Primary != nil {
		data, err := p.Primary.Parse(ctx, text)
		if err == nil {
			return data.Normalize(), SourceAI, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.ResumeData{}, "", ctxErr
		}
		metrics.IncParseFallback()
		telemetry.Warn("resume.parse_fallback", map[string]any{"error": err})
	}
	fallback := p.Fallback
	if fallback == nil {
		fallback = RuleParser{}
	}
	data, err := fallback.Parse(ctx, text)
	if err != nil {
		return model.ResumeData{}, "", err
	}
	return data.Normalize(), SourceRules, nil
}

func (p FallbackParser) Parse(ctx context.Context, text string) (model.ResumeData, error) {
	data, _, err := p.ParseWithSource(ctx, text)
	return data, err
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
