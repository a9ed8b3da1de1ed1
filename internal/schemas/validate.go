// Package schemas validates model output against the two expected JSON shapes.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Kind identifies which output shape a response must conform to.
type Kind string

// Supported schema kinds
const (
	KindRefinedResume Kind = "refined-resume"
	KindCoverLetter   Kind = "cover-letter"
)

//go:embed *.schema.json
var schemaFS embed.FS

var schemaFiles = map[Kind]string{
	KindRefinedResume: "refined_resume.schema.json",
	KindCoverLetter:   "cover_letter.schema.json",
}

var (
	compileMu sync.Mutex
	compiled  = map[Kind]*gojsonschema.Schema{}
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or compiling the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// schemaFor returns the compiled schema for kind, compiling the embedded
// document on first use.
func schemaFor(kind Kind) (*gojsonschema.Schema, error) {
	compileMu.Lock()
	defer compileMu.Unlock()

	if s, ok := compiled[kind]; ok {
		return s, nil
	}

	name, ok := schemaFiles[kind]
	if !ok {
		return nil, &SchemaLoadError{Path: string(kind), Message: "unknown schema kind"}
	}

	content, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "embedded schema missing", Cause: err}
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(content))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema failed to compile", Cause: err}
	}

	compiled[kind] = s
	return s, nil
}

// Validate checks a JSON document against the schema for kind. A shape
// mismatch returns a *ValidationError carrying one entry per violated field;
// schema problems return a *SchemaLoadError.
func Validate(data []byte, kind Kind) error {
	schema, err := schemaFor(kind)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &SchemaLoadError{
			Path:    string(kind),
			Message: "document failed to load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
