package analysis

import "strings"

// defaultSuggestions pads short suggestion lists. Order is significant.
var defaultSuggestions = []Suggestion{
	{
		Category:    "experience",
		Title:       "Quantify your achievements",
		Description: "Add numbers such as percentages, revenue, time saved or team size to your bullet points to show measurable impact.",
		Priority:    "high",
	},
	{
		Category:    "keywords",
		Title:       "Mirror the job description keywords",
		Description: "Use the exact terms the posting uses for tools, skills and responsibilities so applicant tracking systems can match them.",
		Priority:    "high",
	},
	{
		Category:    "experience",
		Title:       "Start bullets with strong action verbs",
		Description: "Lead each bullet with a verb like built, led, reduced or launched instead of phrases like responsible for.",
		Priority:    "medium",
	},
	{
		Category:    "summary",
		Title:       "Tailor your professional summary",
		Description: "Rewrite the summary in two or three sentences that connect your strongest experience to this role.",
		Priority:    "medium",
	},
	{
		Category:    "formatting",
		Title:       "Keep formatting simple and consistent",
		Description: "Use standard section headings, one date format and plain bullet characters so the resume parses cleanly.",
		Priority:    "low",
	},
}

// EnhanceToMinimumSuggestions returns suggestions padded to at least three
// entries from the default pool. Existing entries are kept unchanged and in
// order, and no title is added twice.
func EnhanceToMinimumSuggestions(suggestions []Suggestion) []Suggestion {
	out := make([]Suggestion, 0, max(len(suggestions), MinSuggestions))
	out = append(out, suggestions...)
	if len(out) >= MinSuggestions {
		return out
	}
	seen := make(map[string]bool, len(out))
	for _, s := range out {
		seen[titleKey(s.Title)] = true
	}
	for _, candidate := range defaultSuggestions {
		if len(out) >= MinSuggestions {
			break
		}
		if seen[titleKey(candidate.Title)] {
			continue
		}
		seen[titleKey(candidate.Title)] = true
		out = append(out, candidate)
	}
	return out
}

func titleKey(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
