package types

// CoverLetter represents a generated cover letter for one application
type CoverLetter struct {
	RecipientName      string              `json:"recipientName,omitempty"`
	RecipientTitle     string              `json:"recipientTitle,omitempty"`
	CompanyName        string              `json:"companyName"`
	CompanyAddress     string              `json:"companyAddress,omitempty"`
	Date               string              `json:"date,omitempty"`
	Opening            string              `json:"opening"`
	BodyParagraphs     []string            `json:"bodyParagraphs"`
	Closing            string              `json:"closing"`
	Signature          string              `json:"signature"`
	GenerationMetadata *GenerationMetadata `json:"generationMetadata,omitempty"`
}

// GenerationMetadata describes how the letter was generated
type GenerationMetadata struct {
	Tone            string  `json:"tone,omitempty"`
	WordCount       int     `json:"wordCount,omitempty"`
	ConfidenceScore float64 `json:"confidenceScore,omitempty"` // 0.0 to 1.0
}
