package parse

import (
	"context"
	"errors"
	"testing"

	"resume-tailor/internal/extract"
)

type stubLLM struct {
	reply  string
	err    error
	prompt string
}

func (s *stubLLM) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

func TestAIParserStripsFencesAndNormalizes(t *testing.T) {
	stub := &stubLLM{reply: "```json\n{\"contact\":{\"name\":\" Jane Doe \"},\"skills\":[\"Go\",\" \"]}\n```"}
	data, err := AIParser{LLM: stub}.Parse(context.Background(), "resume body")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if data.Contact.Name != "Jane Doe" {
		t.Fatalf("name = %q", data.Contact.Name)
	}
	if len(data.Skills) != 1 || data.Experience == nil || data.Education == nil {
		t.Fatalf("expected normalized data, got %+v", data)
	}
	if stub.prompt == "" {
		t.Fatalf("expected prompt to be sent")
	}
}

func TestAIParserRejectsNonJSON(t *testing.T) {
	_, err := AIParser{LLM: &stubLLM{reply: "I cannot help with that"}}.Parse(context.Background(), "x")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestFallbackParserUsesRulesOnLLMFailure(t *testing.T) {
	p := FallbackParser{
		Primary:  AIParser{LLM: &stubLLM{err: errors.New("openai http status 500: boom")}},
		Fallback: RuleParser{},
	}
	data, source, err := p.ParseWithSource(context.Background(), sampleResume)
	if err != nil {
		t.Fatalf("ParseWithSource: %v", err)
	}
	if source != SourceRules {
		t.Fatalf("source = %q", source)
	}
	if data.Contact.Email != "jane.doe@example.com" {
		t.Fatalf("expected rule-based contact, got %+v", data.Contact)
	}
}

func TestFallbackParserUsesRulesOnBadJSON(t *testing.T) {
	p := FallbackParser{Primary: AIParser{LLM: &stubLLM{reply: `{"contact": [}`}}}
	_, source, err := p.ParseWithSource(context.Background(), sampleResume)
	if err != nil || source != SourceRules {
		t.Fatalf("expected rules fallback, got source=%q err=%v", source, err)
	}
}

func TestFallbackParserPrefersAI(t *testing.T) {
	p := FallbackParser{
		Primary:  AIParser{LLM: &stubLLM{reply: `{"contact":{"name":"From Model"}}`}},
		Fallback: RuleParser{},
	}
	data, source, err := p.ParseWithSource(context.Background(), sampleResume)
	if err != nil {
		t.Fatalf("ParseWithSource: %v", err)
	}
	if source != SourceAI || data.Contact.Name != "From Model" {
		t.Fatalf("unexpected result source=%q name=%q", source, data.Contact.Name)
	}
}

func TestServiceParseTextSanitizes(t *testing.T) {
	svc := NewService(&stubLLM{err: errors.New("down")})
	parsed, err := svc.ParseText(context.Background(), "Jane Doe\x00\r\njane@example.com\x85")
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if parsed.Text != "Jane Doe\njane@example.com" {
		t.Fatalf("unexpected sanitized text %q", parsed.Text)
	}
	if parsed.Source != SourceRules || parsed.Data.Contact.Name != "Jane Doe" {
		t.Fatalf("unexpected parse %+v", parsed)
	}
}

func TestServiceParseResumeSurfacesExtractionErrors(t *testing.T) {
	svc := NewService(&stubLLM{})
	_, err := svc.ParseResume(context.Background(), []byte("not a pdf"), extract.MimePDF, "resume.pdf")
	if !errors.Is(err, extract.ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}
