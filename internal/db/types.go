package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StoredResume is a master resume row. Data holds the resume JSON exactly as
// the API serves it.
type StoredResume struct {
	ID        uuid.UUID       `json:"id"`
	Label     string          `json:"label"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Generation statuses mirror the terminal operation states.
const (
	GenerationCompleted = "completed"
	GenerationError     = "error"
	GenerationCancelled = "cancelled"
)

// Generation is one recorded tailoring operation, successful or not.
type Generation struct {
	ID           uuid.UUID       `json:"id"`
	Kind         string          `json:"kind"`
	Company      string          `json:"company,omitempty"`
	RoleTitle    string          `json:"role_title,omitempty"`
	JobText      string          `json:"job_text"`
	Result       json.RawMessage `json:"result,omitempty"`
	Status       string          `json:"status"`
	ErrorKind    string          `json:"error_kind,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Attempts     int             `json:"attempts"`
	ElapsedMS    int64           `json:"elapsed_ms"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Succeeded reports whether the generation produced a result.
func (g *Generation) Succeeded() bool {
	return g.Status == GenerationCompleted
}

// GenerationFilters holds optional filters for listing generations.
type GenerationFilters struct {
	Kind    string
	Company string
	Status  string
	Limit   int
}

// JobPage is a cached fetch of a job posting URL.
type JobPage struct {
	URL         string     `json:"url"`
	RawHTML     string     `json:"-"`
	CleanedText string     `json:"cleaned_text"`
	ContentHash string     `json:"content_hash,omitempty"`
	HTTPStatus  int        `json:"http_status"`
	FetchedAt   time.Time  `json:"fetched_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// IsFresh reports whether the cached page is still within its TTL.
func (p *JobPage) IsFresh() bool {
	return p.ExpiresAt != nil && time.Now().Before(*p.ExpiresAt)
}

// IsExpired reports whether the page carries an elapsed TTL. A page with no
// expiry is neither fresh nor expired; callers decide its fate.
func (p *JobPage) IsExpired() bool {
	return p.ExpiresAt != nil && !time.Now().Before(*p.ExpiresAt)
}
