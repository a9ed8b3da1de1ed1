//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleResume() Resume {
	return Resume{
		PersonalInfo: PersonalInfo{
			Name:    "Jane Doe",
			Email:   "jane@example.com",
			Summary: "Backend engineer with eight years of experience.",
		},
		WorkExperience: []WorkExperience{
			{
				Company:    "Acme Corp",
				Position:   "Senior Engineer",
				StartDate:  "2019-03",
				Highlights: []string{"Led migration to event-driven architecture"},
			},
		},
		Skills: []string{"Go", "PostgreSQL", "Kubernetes"},
	}
}

func longJobText() string {
	return strings.Repeat("We are hiring a backend engineer. ", 5)
}

func TestRefineRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request RefineRequest
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid request",
			request: RefineRequest{
				Resume:  sampleResume(),
				JobText: longJobText(),
			},
			wantErr: false,
		},
		{
			name: "missing job text",
			request: RefineRequest{
				Resume: sampleResume(),
			},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name: "job text too short",
			request: RefineRequest{
				Resume:  sampleResume(),
				JobText: "short posting",
			},
			wantErr: true,
			errMsg:  "min",
		},
		{
			name: "resume without a name",
			request: RefineRequest{
				Resume:  Resume{Skills: []string{"Go"}},
				JobText: longJobText(),
			},
			wantErr: true,
			errMsg:  "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCoverLetterRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request CoverLetterRequest
		wantErr bool
	}{
		{
			name: "valid request",
			request: CoverLetterRequest{
				Resume:      sampleResume(),
				JobText:     longJobText(),
				CompanyName: "Acme Corp",
			},
			wantErr: false,
		},
		{
			name: "missing company name",
			request: CoverLetterRequest{
				Resume:  sampleResume(),
				JobText: longJobText(),
			},
			wantErr: true,
		},
		{
			name: "job text too short",
			request: CoverLetterRequest{
				Resume:      sampleResume(),
				JobText:     "tiny",
				CompanyName: "Acme Corp",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIngestJobRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request IngestJobRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "url only",
			request: IngestJobRequest{URL: "https://example.com/jobs/123"},
			wantErr: false,
		},
		{
			name:    "text only",
			request: IngestJobRequest{Text: "We are hiring."},
			wantErr: false,
		},
		{
			name:    "neither",
			request: IngestJobRequest{},
			wantErr: true,
			errMsg:  "either url or text",
		},
		{
			name:    "both",
			request: IngestJobRequest{URL: "https://example.com", Text: "hello"},
			wantErr: true,
			errMsg:  "mutually exclusive",
		},
		{
			name:    "malformed url",
			request: IngestJobRequest{URL: "not a url"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
