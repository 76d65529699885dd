package llm

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed prompts/*.txt
var promptFiles embed.FS

const (
	PromptParseResume = "parse_resume"
	PromptAnalyze     = "analyze"
	PromptTailor      = "tailor"
	PromptJobPosting  = "job_posting"
)

// RenderPrompt loads an embedded template and substitutes {{KEY}} placeholders.
func RenderPrompt(name string, vars map[string]string) (string, error) {
	raw, err := promptFiles.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("prompt %s: %w", name, err)
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(string(raw)), nil
}

// MustRenderPrompt is RenderPrompt for templates known to be embedded.
func MustRenderPrompt(name string, vars map[string]string) string {
	out, err := RenderPrompt(name, vars)
	if err != nil {
		panic(err)
	}
	return out
}
