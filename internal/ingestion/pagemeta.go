package ingestion

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mwilhelm/applypilot/internal/fetch"
)

// PageMeta is what a posting page reveals about itself: the company hiring
// and the role title. Extraction is heuristic; empty fields mean the page
// kept quiet.
type PageMeta struct {
	Company   string
	RoleTitle string
}

var greenhouseTitleRE = regexp.MustCompile(`^Job Application for (.+) at (.+)$`)

// ExtractPageMeta reads company and role title out of a posting page. It
// checks Open Graph tags and the document title first, then falls back to
// the first h1 and the company slug the ATS embeds in its URLs.
func ExtractPageMeta(html, pageURL string) PageMeta {
	var meta PageMeta
	slugCompany := prettifySlug(fetch.CompanySlug(pageURL))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		meta.Company = slugCompany
		return meta
	}

	title := metaContent(doc, "og:title")
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	siteName := metaContent(doc, "og:site_name")

	meta.RoleTitle, meta.Company = splitTitle(title, []string{siteName, slugCompany})

	if meta.RoleTitle == "" {
		meta.RoleTitle = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if meta.Company == "" {
		meta.Company = siteName
	}
	if meta.Company == "" {
		meta.Company = slugCompany
	}
	return meta
}

// splitTitle breaks a document title into role and company. Hints are names
// the company is already known by; whichever side of the separator matches a
// hint is the company, and without a match the company is assumed last.
func splitTitle(title string, hints []string) (role, company string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ""
	}

	if m := greenhouseTitleRE.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}

	for _, sep := range []string{" | ", " – ", " - "} {
		idx := strings.LastIndex(title, sep)
		if idx <= 0 {
			continue
		}
		left := strings.TrimSpace(title[:idx])
		right := strings.TrimSpace(title[idx+len(sep):])
		if left == "" || right == "" {
			continue
		}
		if matchesHint(left, hints) {
			return right, left
		}
		return left, right
	}

	if idx := strings.LastIndex(title, " at "); idx > 0 {
		return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+len(" at "):])
	}

	return title, ""
}

func matchesHint(candidate string, hints []string) bool {
	normalized := normalizeName(candidate)
	if normalized == "" {
		return false
	}
	for _, hint := range hints {
		h := normalizeName(hint)
		if h == "" {
			continue
		}
		if normalized == h {
			return true
		}
		// "DoorDash" should match the slug "doordashusa".
		if len(normalized) >= 4 && strings.HasPrefix(h, normalized) {
			return true
		}
		if len(h) >= 4 && strings.HasPrefix(normalized, h) {
			return true
		}
	}
	return false
}

func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// prettifySlug turns an ATS slug like "acme-corp" into "Acme Corp".
func prettifySlug(slug string) string {
	if slug == "" {
		return ""
	}
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func metaContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}
