package types

// Tone controls the voice used in generated text
type Tone string

// Supported tones
const (
	ToneProfessional Tone = "professional"
	ToneEnthusiastic Tone = "enthusiastic"
	ToneConfident    Tone = "confident"
	ToneConcise      Tone = "concise"
)

// Style controls the structural register of generated text
type Style string

// Supported styles
const (
	StyleTraditional Style = "traditional"
	StyleModern      Style = "modern"
	StyleCreative    Style = "creative"
)

// ValidTone reports whether t is one of the supported tones.
func ValidTone(t Tone) bool {
	switch t {
	case ToneProfessional, ToneEnthusiastic, ToneConfident, ToneConcise:
		return true
	}
	return false
}

// ValidStyle reports whether s is one of the supported styles.
func ValidStyle(s Style) bool {
	switch s {
	case StyleTraditional, StyleModern, StyleCreative:
		return true
	}
	return false
}

// PromptOptions holds the fully resolved knobs for one prompt build.
// Every field carries a concrete value; resolution from settings and
// per-call overrides happens before a PromptOptions is constructed.
type PromptOptions struct {
	MaxSummaryChars           int      `json:"max_summary_chars"`
	MaxHighlightsPerJob       int      `json:"max_highlights_per_job"`
	MaxBodyParagraphs         int      `json:"max_body_paragraphs"`
	Tone                      Tone     `json:"tone"`
	Style                     Style    `json:"style"`
	FocusAreas                []string `json:"focus_areas,omitempty"`
	CustomInstructions        string   `json:"custom_instructions,omitempty"`
	PreserveAllContent        bool     `json:"preserve_all_content"`
	IncludeMetadata           bool     `json:"include_metadata"`
	EmphasizeCompanyKnowledge bool     `json:"emphasize_company_knowledge"`
}

// DefaultPromptOptions returns the documented fallbacks used when neither
// settings nor the caller supply a value.
func DefaultPromptOptions() PromptOptions {
	return PromptOptions{
		MaxSummaryChars:     400,
		MaxHighlightsPerJob: 5,
		MaxBodyParagraphs:   3,
		Tone:                ToneProfessional,
		Style:               StyleModern,
		IncludeMetadata:     true,
	}
}

// PromptOverrides is the per-call overlay applied on top of settings-derived
// defaults. Pointer fields distinguish "not supplied" from a zero value, so a
// caller can explicitly turn a boolean off.
type PromptOverrides struct {
	MaxSummaryChars           *int     `json:"max_summary_chars,omitempty"`
	MaxHighlightsPerJob       *int     `json:"max_highlights_per_job,omitempty"`
	MaxBodyParagraphs         *int     `json:"max_body_paragraphs,omitempty"`
	Tone                      *Tone    `json:"tone,omitempty"`
	Style                     *Style   `json:"style,omitempty"`
	FocusAreas                []string `json:"focus_areas,omitempty"`
	CustomInstructions        *string  `json:"custom_instructions,omitempty"`
	PreserveAllContent        *bool    `json:"preserve_all_content,omitempty"`
	IncludeMetadata           *bool    `json:"include_metadata,omitempty"`
	EmphasizeCompanyKnowledge *bool    `json:"emphasize_company_knowledge,omitempty"`
}

// Apply returns base with every supplied override field replacing the
// corresponding base field. Nil fields leave the base value untouched.
func (o *PromptOverrides) Apply(base PromptOptions) PromptOptions {
	if o == nil {
		return base
	}
	out := base
	if o.MaxSummaryChars != nil {
		out.MaxSummaryChars = *o.MaxSummaryChars
	}
	if o.MaxHighlightsPerJob != nil {
		out.MaxHighlightsPerJob = *o.MaxHighlightsPerJob
	}
	if o.MaxBodyParagraphs != nil {
		out.MaxBodyParagraphs = *o.MaxBodyParagraphs
	}
	if o.Tone != nil {
		out.Tone = *o.Tone
	}
	if o.Style != nil {
		out.Style = *o.Style
	}
	if len(o.FocusAreas) > 0 {
		out.FocusAreas = o.FocusAreas
	}
	if o.CustomInstructions != nil {
		out.CustomInstructions = *o.CustomInstructions
	}
	if o.PreserveAllContent != nil {
		out.PreserveAllContent = *o.PreserveAllContent
	}
	if o.IncludeMetadata != nil {
		out.IncludeMetadata = *o.IncludeMetadata
	}
	if o.EmphasizeCompanyKnowledge != nil {
		out.EmphasizeCompanyKnowledge = *o.EmphasizeCompanyKnowledge
	}
	return out
}
