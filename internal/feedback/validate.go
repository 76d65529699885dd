package feedback

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"resume-tailor/internal/shared/server/respond"
)

//go:embed schema.json
var schemaJSON []byte

var schema = mustSchema()

func mustSchema() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("feedback schema: %v", err))
	}
	return s
}

// ValidationError carries one entry per invalid field.
type ValidationError struct {
	Fields []respond.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid feedback: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Validate checks a raw JSON payload against the feedback schema.
func Validate(payload []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return &ValidationError{Fields: []respond.FieldError{{Field: "(root)", Message: "body must be a JSON object"}}}
	}
	if result.Valid() {
		return nil
	}
	fields := make([]respond.FieldError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		fields = append(fields, respond.FieldError{Field: fieldName(e), Message: e.Description()})
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &ValidationError{Fields: fields}
}

// fieldName reports the offending property, including missing required ones
// which the validator attributes to the parent object.
func fieldName(e gojsonschema.ResultError) string {
	if e.Type() == "required" || e.Type() == "additional_property_not_allowed" {
		if prop, ok := e.Details()["property"].(string); ok && prop != "" {
			return prop
		}
	}
	return e.Field()
}
