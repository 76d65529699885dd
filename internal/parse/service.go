package parse

import (
	"context"

	"resume-tailor/internal/extract"
	"resume-tailor/internal/llm"
	"resume-tailor/resume/model"
)

// Parsed is the outcome of turning an uploaded file into resume data.
type Parsed struct {
	Text   string
	Data   model.ResumeData
	Source string
}

// Service extracts text from uploaded files and structures it.
type Service struct {
	Parser FallbackParser
}

// NewService wires the LLM parser with the rule-based fallback.
func NewService(completer llm.Completer) *Service {
	return &Service{Parser: FallbackParser{
		Primary:  AIParser{LLM: completer},
		Fallback: RuleParser{},
	}}
}

// ParseResume extracts text from the file and structures it. Only extraction
// errors are returned; parsing always yields a populated record.
func (s *Service) ParseResume(ctx context.Context, data []byte, mimeType, fileName string) (Parsed, error) {
	text, err := extract.ExtractTextFromBytes(ctx, data, mimeType, fileName)
	if err != nil {
		return Parsed{}, err
	}
	return s.ParseText(ctx, text)
}

// ParseText structures already extracted text.
func (s *Service) ParseText(ctx context.Context, text string) (Parsed, error) {
	text = extract.SanitizeText(text)
	structured, source, err := s.Parser.ParseWithSource(ctx, text)
	if err != nil {
		return Parsed{}, err
	}
	return Parsed{Text: text, Data: structured, Source: source}, nil
}
