package tailoring

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

var (
	ErrInvalidJob = errors.New("job title or description is required")
	ErrFailed     = errors.New("tailoring failed")
)

// Job is the posting a resume is tailored to.
type Job struct {
	Title       string `json:"jobTitle"`
	Company     string `json:"company"`
	Description string `json:"jobDescription"`
}

// Validate requires at least a title or a description.
func (j Job) Validate() error {
	if strings.TrimSpace(j.Title) == "" && strings.TrimSpace(j.Description) == "" {
		return ErrInvalidJob
	}
	return nil
}

// Tailorer rewrites resume content for a job through an LLM.
type Tailorer struct {
	LLM llm.Completer
}

// Tailor returns rewritten content. Model failures are returned wrapped in
// ErrFailed; contact details always come from the source resume.
func (t Tailorer) Tailor(ctx context.Context, resume model.ResumeData, job Job) (model.ResumeData, error) {
	if err := job.Validate(); err != nil {
		return model.ResumeData{}, err
	}
	if t.LLM == nil {
		return model.ResumeData{}, fmt.Errorf("%w: %w", ErrFailed, llm.ErrNotConfigured)
	}
	source := resume.Normalize()
	resumeJSON, err := json.MarshalIndent(source, "", "  ")
	if err != nil {
		return model.ResumeData{}, fmt.Errorf("encode resume: %w", err)
	}
	prompt, err := llm.RenderPrompt(llm.PromptTailor, map[string]string{
		"JOB_TITLE":       strings.TrimSpace(job.Title),
		"COMPANY":         strings.TrimSpace(job.Company),
		"JOB_DESCRIPTION": strings.TrimSpace(job.Description),
		"RESUME_JSON":     string(resumeJSON),
	})
	if err != nil {
		return model.ResumeData{}, err
	}

	raw, err := t.LLM.Complete(ctx, prompt)
	if err != nil {
		return model.ResumeData{}, t.fail(fmt.Errorf("llm tailor: %w", err))
	}
	payload, ok := llm.ExtractJSONObject(llm.CleanJSON(raw))
	if !ok {
		return model.ResumeData{}, t.fail(errors.New("no json object in reply"))
	}
	var out model.ResumeData
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return model.ResumeData{}, t.fail(fmt.Errorf("decode tailored resume: %w", err))
	}
	out = out.Normalize()
	if out.IsEmpty() {
		return model.ResumeData{}, t.fail(errors.New("empty tailored resume"))
	}
	out.Contact = source.Contact
	return out, nil
}

func (t Tailorer) fail(err error) error {
	metrics.IncTailorFailed()
	telemetry.Warn("tailor.failed", map[string]any{"error": err})
	return fmt.Errorf("%w: %w", ErrFailed, err)
}
