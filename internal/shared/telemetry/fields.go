package telemetry

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldLLMProvider is the log key for the LLM provider name.
	FieldLLMProvider = "llm_provider"
	// FieldLLMModel is the log key for the LLM model identifier.
	FieldLLMModel = "llm_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, dropping entries with
// an empty key or value after trimming.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(l *zap.Logger, fields ...zap.Field) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// LLMFields returns the provider/model fields used on every LLM log line.
func LLMFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldLLMProvider, Value: provider},
		StringField{Key: FieldLLMModel, Value: model},
	)
}

// Truncate shortens s to limit runes, appending an ellipsis when cut.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
