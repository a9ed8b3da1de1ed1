package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// RefineRequest represents a request to tailor the resume to a job posting.
// JobText must be substantial enough to tailor against; short fragments
// produce garbage output, so anything under 50 characters is rejected up front.
type RefineRequest struct {
	Resume    Resume           `json:"resume" validate:"required"`
	JobText   string           `json:"job_text" validate:"required,min=50"`
	Overrides *PromptOverrides `json:"overrides,omitempty"`
}

// CoverLetterRequest represents a request to generate a cover letter.
type CoverLetterRequest struct {
	Resume      Resume           `json:"resume" validate:"required"`
	JobText     string           `json:"job_text" validate:"required,min=50"`
	CompanyName string           `json:"company_name" validate:"required,min=1"`
	CompanyInfo string           `json:"company_info,omitempty"`
	Overrides   *PromptOverrides `json:"overrides,omitempty"`
}

// IngestJobRequest represents a request to turn a posting URL or pasted text
// into clean job text.
type IngestJobRequest struct {
	URL  string `json:"url,omitempty" validate:"omitempty,url"`
	Text string `json:"text,omitempty"`
}

// UnlockRequest represents the request to unlock the daemon with the user's passphrase.
type UnlockRequest struct {
	Passphrase string `json:"passphrase" validate:"required"`
}

// Validate validates the RefineRequest using the validator.
func (r *RefineRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.Resume.PersonalInfo.Name == "" {
		return fmt.Errorf("resume personal info must include a name")
	}
	return nil
}

// Validate validates the CoverLetterRequest using the validator.
func (r *CoverLetterRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.Resume.PersonalInfo.Name == "" {
		return fmt.Errorf("resume personal info must include a name")
	}
	return nil
}

// Validate validates the IngestJobRequest using the validator.
// Exactly one of URL or Text must be supplied.
func (r *IngestJobRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.URL == "" && r.Text == "" {
		return fmt.Errorf("either url or text is required")
	}
	if r.URL != "" && r.Text != "" {
		return fmt.Errorf("url and text are mutually exclusive")
	}
	return nil
}

// Validate validates the UnlockRequest using the validator.
func (r *UnlockRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
