package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"resume-tailor/internal/llm"
	"resume-tailor/resume/model"
)

// ErrInvalidResponse is returned when the model reply is not a usable analysis.
var ErrInvalidResponse = errors.New("invalid analysis response")

// Analyzer scores a resume against a job.
type Analyzer interface {
	Analyze(ctx context.Context, in Input) (Result, error)
}

// RemoteAnalyzer runs the analysis prompt through an LLM.
type RemoteAnalyzer struct {
	LLM llm.Completer
}

func (a RemoteAnalyzer) Analyze(ctx context.Context, in Input) (Result, error) {
	if a.LLM == nil {
		return Result{}, llm.ErrNotConfigured
	}
	prompt, err := llm.RenderPrompt(llm.PromptAnalyze, map[string]string{
		"JOB_TITLE":       strings.TrimSpace(in.JobTitle),
		"COMPANY":         strings.TrimSpace(in.Company),
		"JOB_DESCRIPTION": strings.TrimSpace(in.JobDescription),
		"RESUME_TEXT":     in.text(),
	})
	if err != nil {
		return Result{}, err
	}
	raw, err := a.LLM.Complete(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("llm analyze: %w", err)
	}
	return decodeResult(llm.JSONPayload(raw), in)
}

// decodeResult reads the reply field by field so that a string score or a
// malformed optional section does not discard the whole analysis.
func decodeResult(payload string, in Input) (Result, error) {
	if !gjson.Valid(payload) {
		return Result{}, fmt.Errorf("%w: not json", ErrInvalidResponse)
	}
	doc := gjson.Parse(payload)
	if !doc.IsObject() || !doc.Get("matchScore").Exists() {
		return Result{}, fmt.Errorf("%w: missing matchScore", ErrInvalidResponse)
	}

	r := Result{
		MatchScore:        scoreOf(doc.Get("matchScore")),
		ATSScore:          scoreOf(doc.Get("atsScore")),
		ReadabilityScore:  scoreOf(doc.Get("readabilityScore")),
		CompletenessScore: scoreOf(doc.Get("completenessScore")),
		CategoryScores:    map[string]int{},
		MatchedKeywords:   stringsOf(doc.Get("matchedKeywords")),
		MissingKeywords:   stringsOf(doc.Get("missingKeywords")),
		Summary:           doc.Get("summary").String(),
		Source:            SourceAI,
	}
	doc.Get("categoryScores").ForEach(func(key, value gjson.Result) bool {
		r.CategoryScores[strings.ToLower(key.String())] = scoreOf(value)
		return true
	})
	for _, item := range doc.Get("suggestions").Array() {
		if item.Type == gjson.String {
			r.Suggestions = append(r.Suggestions, Suggestion{Title: item.String(), Priority: "medium"})
			continue
		}
		r.Suggestions = append(r.Suggestions, Suggestion{
			Category:    item.Get("category").String(),
			Title:       item.Get("title").String(),
			Description: item.Get("description").String(),
			Priority:    item.Get("priority").String(),
		})
	}

	r.OptimizedContent = in.Resume.Normalize()
	if opt := doc.Get("optimizedContent"); opt.IsObject() {
		content := r.OptimizedContent
		if err := json.Unmarshal([]byte(opt.Raw), &content); err == nil && !content.Normalize().IsEmpty() {
			r.OptimizedContent = content
		}
	}
	if in.Resume.Contact != (model.Contact{}) {
		r.OptimizedContent.Contact = in.Resume.Contact
	}
	return r, nil
}

func scoreOf(v gjson.Result) int {
	if !v.Exists() {
		return 0
	}
	// gjson converts numeric strings such as "85" as well. Clamp before the
	// int conversion, which is undefined for floats outside the int range.
	f := v.Float()
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= 100:
		return 100
	}
	return int(math.Round(f))
}

func stringsOf(v gjson.Result) []string {
	var out []string
	for _, item := range v.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
