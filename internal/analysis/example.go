package analysis

import "context"

// ExampleAnalyzer returns a fixed, fully formed analysis. It is used whenever
// the remote analysis fails so callers always receive a complete payload.
type ExampleAnalyzer struct{}

func (ExampleAnalyzer) Analyze(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{
		MatchScore:        72,
		ATSScore:          68,
		ReadabilityScore:  75,
		CompletenessScore: 80,
		CategoryScores: map[string]int{
			"skills":     70,
			"experience": 75,
			"education":  80,
			"keywords":   65,
			"formatting": 78,
		},
		MatchedKeywords: []string{"communication", "teamwork", "problem solving"},
		MissingKeywords: []string{"leadership", "project management", "data analysis"},
		Suggestions: []Suggestion{
			defaultSuggestions[0],
			defaultSuggestions[1],
			defaultSuggestions[2],
		},
		OptimizedContent: in.Resume.Normalize(),
		Summary:          "Detailed AI analysis is temporarily unavailable. These example results show the kind of feedback you will receive; run the analysis again shortly for results specific to this job.",
		Source:           SourceExample,
	}, nil
}
