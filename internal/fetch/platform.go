package fetch

import (
	"net/url"
	"strings"
)

// Platform identifies the applicant tracking system serving a job posting.
// Knowing the ATS lets extraction target its markup instead of guessing.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformUnknown    Platform = "unknown"
)

var platformHosts = []struct {
	fragment string
	platform Platform
}{
	{"greenhouse.io", PlatformGreenhouse},
	{"lever.co", PlatformLever},
	{"myworkdayjobs.com", PlatformWorkday},
	{"workday.com", PlatformWorkday},
}

// DetectPlatform identifies the job board platform from a posting URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for _, entry := range platformHosts {
		if strings.Contains(host, entry.fragment) {
			return entry.platform
		}
	}
	return PlatformUnknown
}

// CompanySlug extracts the company identifier an ATS embeds in its posting
// URLs: the first path segment on Greenhouse and Lever boards, the subdomain
// on Workday tenants. Unknown platforms yield "".
func CompanySlug(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}

	switch DetectPlatform(urlStr) {
	case PlatformGreenhouse, PlatformLever:
		segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
		if len(segments) > 0 && segments[0] != "" {
			return strings.ToLower(segments[0])
		}
	case PlatformWorkday:
		// company.wd5.myworkdayjobs.com
		labels := strings.Split(strings.ToLower(parsed.Hostname()), ".")
		if len(labels) > 2 && labels[0] != "www" {
			return labels[0]
		}
	}
	return ""
}

// PlatformContentSelectors returns the content selectors for a platform,
// ordered most specific first.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformGreenhouse:
		return []string{
			".job__description.body",
			".job__description",
			".job-description__content",
			"#content",
			".job-post-container",
		}
	case PlatformLever:
		return []string{
			".posting-page",
			".section-wrapper.page-full-width",
			".posting-description",
			".content",
		}
	case PlatformWorkday:
		return []string{
			"[data-automation-id='jobDescription']",
			".WDXK",
			".gwt-HTML",
			".job-description",
		}
	default:
		return JobPostingSelectors()
	}
}

// PlatformNoiseSelectors returns the elements to strip before extraction.
// Application forms, EEO boilerplate, and consent banners dilute the posting
// text that reaches the model, so they go first.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		"form",
		"#application-form",
		".application-form",
		".application--container",
		".apply-button-container",
		"[data-testid='application-form']",
		".voluntary-disclosure",
		".eeo-statement",
		".eeo-section",
		"[data-testid='eeo']",
		".legal-disclosure",
		".self-identification",
		".social-share",
		".share-buttons",
		".social-links",
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
	}

	switch platform {
	case PlatformGreenhouse:
		return append(common,
			".application--wrapper",
			".voluntary-self-id",
			".voluntary-self-id-wrapper",
			"#usa_self_id_section",
			".post-apply",
		)
	case PlatformLever:
		return append(common,
			".apply-section",
			".lever-application-form",
			".posting-apply",
		)
	case PlatformWorkday:
		return append(common,
			"[data-automation-id='applyButton']",
			".application-section",
			".WDAF",
		)
	default:
		return common
	}
}
