// Package types provides type definitions for structured data used throughout the applypilot system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Field names are camelCase because these structs mirror the JSON contract the
// model is instructed to emit; the schemas in internal/schemas use the same names.

// Resume represents a job seeker's master resume
type Resume struct {
	PersonalInfo   PersonalInfo     `json:"personalInfo"`
	WorkExperience []WorkExperience `json:"workExperience"`
	Education      []Education      `json:"education,omitempty"`
	Skills         []string         `json:"skills"`
	Certifications []string         `json:"certifications,omitempty"`
}

// PersonalInfo represents the contact block of a resume
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// WorkExperience represents one position held, with its highlight bullets
type WorkExperience struct {
	Company    string   `json:"company"`
	Position   string   `json:"position"`
	Location   string   `json:"location,omitempty"`
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate,omitempty"` // empty means current
	Highlights []string `json:"highlights"`
}

// Education represents one degree or program
type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	Field          string `json:"field,omitempty"`
	GraduationDate string `json:"graduationDate,omitempty"`
}

// RefinedResume represents a resume tailored to a specific job posting.
// Same shape as Resume plus optional metadata about the refinement.
type RefinedResume struct {
	PersonalInfo       PersonalInfo        `json:"personalInfo"`
	WorkExperience     []WorkExperience    `json:"workExperience"`
	Education          []Education         `json:"education,omitempty"`
	Skills             []string            `json:"skills"`
	Certifications     []string            `json:"certifications,omitempty"`
	RefinementMetadata *RefinementMetadata `json:"refinementMetadata,omitempty"`
}

// RefinementMetadata describes what the model changed and how confident it is
type RefinementMetadata struct {
	TargetedKeywords []string `json:"targetedKeywords,omitempty"`
	ChangesSummary   string   `json:"changesSummary,omitempty"`
	ConfidenceScore  float64  `json:"confidenceScore,omitempty"` // 0.0 to 1.0
}
