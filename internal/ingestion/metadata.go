package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Source says where a posting came from.
type Source string

const (
	SourceText Source = "text"
	SourceFile Source = "file"
	SourceURL  Source = "url"
)

// Metadata describes an ingested posting. Company and RoleTitle are best
// effort; they stay empty when the page gives nothing to go on.
type Metadata struct {
	Source     Source `json:"source"`
	URL        string `json:"url,omitempty"`
	Platform   string `json:"platform,omitempty"`
	Company    string `json:"company,omitempty"`
	RoleTitle  string `json:"role_title,omitempty"`
	Hash       string `json:"hash"`
	Chars      int    `json:"chars"`
	FromCache  bool   `json:"from_cache,omitempty"`
	IngestedAt string `json:"ingested_at"`
}

// newMetadata stamps the invariant fields shared by every source.
func newMetadata(source Source, text string) Metadata {
	return Metadata{
		Source:     source,
		Hash:       textHash(text),
		Chars:      len(text),
		IngestedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func textHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
