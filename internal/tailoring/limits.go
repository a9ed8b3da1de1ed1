package tailoring

import (
	"encoding/json"
	"fmt"

	"github.com/mwilhelm/applypilot/internal/schemas"
)

// The embedded schemas cap list sizes at fixed ceilings, but the configured
// maxima are usually tighter and reach the model only as prompt text, which
// it can ignore. These checks reject over-limit responses as validation
// failures so the retry loop applies.

func checkHighlightLimit(doc []byte, limit int) error {
	if limit <= 0 {
		return nil
	}

	var resume struct {
		WorkExperience []struct {
			Highlights []json.RawMessage `json:"highlights"`
		} `json:"workExperience"`
	}
	if err := json.Unmarshal(doc, &resume); err != nil {
		return err
	}

	verr := &schemas.ValidationError{}
	for i, exp := range resume.WorkExperience {
		if len(exp.Highlights) > limit {
			verr.Errors = append(verr.Errors, schemas.FieldError{
				Field:   fmt.Sprintf("workExperience.%d.highlights", i),
				Message: fmt.Sprintf("must contain at most %d items, got %d", limit, len(exp.Highlights)),
			})
		}
	}
	if len(verr.Errors) > 0 {
		return verr
	}
	return nil
}

func checkParagraphLimit(doc []byte, limit int) error {
	if limit <= 0 {
		return nil
	}

	var letter struct {
		BodyParagraphs []json.RawMessage `json:"bodyParagraphs"`
	}
	if err := json.Unmarshal(doc, &letter); err != nil {
		return err
	}

	if n := len(letter.BodyParagraphs); n > limit {
		return &schemas.ValidationError{Errors: []schemas.FieldError{{
			Field:   "bodyParagraphs",
			Message: fmt.Sprintf("must contain at most %d items, got %d", limit, n),
		}}}
	}
	return nil
}
