package applications

import (
	"strings"
	"time"

	"resume-tailor/internal/analysis"
	"resume-tailor/resume/model"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusOptimized Status = "OPTIMIZED"
)

// JobApplication is one tailoring attempt of a resume against a job posting.
// Score fields stay nil until an analysis has been applied.
type JobApplication struct {
	ID                string                `json:"id"`
	UserID            string                `json:"userId"`
	ResumeID          string                `json:"resumeId"`
	JobTitle          string                `json:"jobTitle"`
	Company           string                `json:"company"`
	JobDescription    string                `json:"jobDescription"`
	JobURL            string                `json:"jobUrl,omitempty"`
	Status            Status                `json:"status"`
	MatchScore        *int                  `json:"matchScore"`
	ATSScore          *int                  `json:"atsScore"`
	ReadabilityScore  *int                  `json:"readabilityScore"`
	CompletenessScore *int                  `json:"completenessScore"`
	CategoryScores    map[string]int        `json:"categoryScores"`
	MatchedKeywords   []string              `json:"matchedKeywords"`
	MissingKeywords   []string              `json:"missingKeywords"`
	Suggestions       []analysis.Suggestion `json:"suggestions"`
	OptimizedContent  *model.ResumeData     `json:"optimizedContent"`
	AnalysisSummary   string                `json:"analysisSummary"`
	AnalysisSource    string                `json:"analysisSource,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

// CreateInput is the data needed to open a draft application.
type CreateInput struct {
	ResumeID       string `json:"resumeId"`
	JobTitle       string `json:"jobTitle"`
	Company        string `json:"company"`
	JobDescription string `json:"jobDescription"`
	JobURL         string `json:"jobUrl"`
}

func (in CreateInput) normalize() CreateInput {
	return CreateInput{
		ResumeID:       strings.TrimSpace(in.ResumeID),
		JobTitle:       strings.TrimSpace(in.JobTitle),
		Company:        strings.TrimSpace(in.Company),
		JobDescription: strings.TrimSpace(in.JobDescription),
		JobURL:         strings.TrimSpace(in.JobURL),
	}
}

// ApplyAnalysis copies an analysis result onto the application and moves it
// to OPTIMIZED. Applying to an OPTIMIZED application replaces the result and
// keeps the status.
func ApplyAnalysis(app JobApplication, r analysis.Result, now time.Time) JobApplication {
	app.MatchScore = intPtr(r.MatchScore)
	app.ATSScore = intPtr(r.ATSScore)
	app.ReadabilityScore = intPtr(r.ReadabilityScore)
	app.CompletenessScore = intPtr(r.CompletenessScore)
	app.CategoryScores = r.CategoryScores
	app.MatchedKeywords = r.MatchedKeywords
	app.MissingKeywords = r.MissingKeywords
	app.Suggestions = r.Suggestions
	content := r.OptimizedContent
	app.OptimizedContent = &content
	app.AnalysisSummary = r.Summary
	app.AnalysisSource = r.Source
	app.Status = StatusOptimized
	app.UpdatedAt = now
	return app
}

func intPtr(v int) *int {
	return &v
}

func (a JobApplication) withDefaults() JobApplication {
	if a.Status == "" {
		a.Status = StatusDraft
	}
	if a.CategoryScores == nil {
		a.CategoryScores = map[string]int{}
	}
	if a.MatchedKeywords == nil {
		a.MatchedKeywords = []string{}
	}
	if a.MissingKeywords == nil {
		a.MissingKeywords = []string{}
	}
	if a.Suggestions == nil {
		a.Suggestions = []analysis.Suggestion{}
	}
	return a
}
