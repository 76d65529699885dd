package analysis

import (
	"strings"

	"resume-tailor/resume/model"
)

const (
	SourceAI      = "ai"
	SourceExample = "example"

	MaxKeywords    = 15
	MaxSuggestions = 8
	MinSuggestions = 3
)

// CategoryKeys are the category scores every result carries.
var CategoryKeys = []string{"skills", "experience", "education", "keywords", "formatting"}

// Result is a finished analysis of one resume against one job.
type Result struct {
	MatchScore        int              `json:"matchScore"`
	ATSScore          int              `json:"atsScore"`
	ReadabilityScore  int              `json:"readabilityScore"`
	CompletenessScore int              `json:"completenessScore"`
	CategoryScores    map[string]int   `json:"categoryScores"`
	MatchedKeywords   []string         `json:"matchedKeywords"`
	MissingKeywords   []string         `json:"missingKeywords"`
	Suggestions       []Suggestion     `json:"suggestions"`
	OptimizedContent  model.ResumeData `json:"optimizedContent"`
	Summary           string           `json:"summary"`
	Source            string           `json:"source"`
}

// Suggestion is one improvement the user can act on.
type Suggestion struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// ClampScore bounds a score to [0,100].
func ClampScore(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// Finalize clamps every score, caps the keyword and suggestion lists and pads
// suggestions to the minimum. The result always has a complete JSON shape.
func Finalize(r Result) Result {
	r.MatchScore = ClampScore(r.MatchScore)
	r.ATSScore = ClampScore(r.ATSScore)
	r.ReadabilityScore = ClampScore(r.ReadabilityScore)
	r.CompletenessScore = ClampScore(r.CompletenessScore)

	scores := make(map[string]int, len(r.CategoryScores)+len(CategoryKeys))
	for k, v := range r.CategoryScores {
		scores[k] = ClampScore(v)
	}
	for _, k := range CategoryKeys {
		if _, ok := scores[k]; !ok {
			scores[k] = 0
		}
	}
	r.CategoryScores = scores

	r.MatchedKeywords = capKeywords(r.MatchedKeywords)
	r.MissingKeywords = capKeywords(r.MissingKeywords)

	suggestions := make([]Suggestion, 0, len(r.Suggestions))
	for _, s := range r.Suggestions {
		s.Title = strings.TrimSpace(s.Title)
		if s.Title == "" {
			continue
		}
		s.Priority = normalizePriority(s.Priority)
		suggestions = append(suggestions, s)
	}
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	r.Suggestions = EnhanceToMinimumSuggestions(suggestions)

	r.OptimizedContent = r.OptimizedContent.Normalize()
	r.Summary = strings.TrimSpace(r.Summary)
	return r
}

func capKeywords(items []string) []string {
	out := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if item == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

func normalizePriority(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "high", "critical":
		return "high"
	case "low":
		return "low"
	default:
		return "medium"
	}
}
