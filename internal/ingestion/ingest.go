package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mwilhelm/applypilot/internal/fetch"
)

// ErrEmptyPosting is returned when a posting cleans down to nothing.
var ErrEmptyPosting = errors.New("posting contains no usable text")

// Options configures an Ingestor.
type Options struct {
	// UseBrowser enables the headless Chrome fallback for pages that render
	// their posting client-side.
	UseBrowser     bool
	BrowserTimeout time.Duration
	CacheTTL       time.Duration
	SkipCache      bool
	Fetch          *fetch.Options
	Verbose        bool
}

type renderFunc func(ctx context.Context, url string, timeout time.Duration) (string, error)

// Ingestor produces clean posting text from any of the supported sources.
type Ingestor struct {
	fetcher        *fetch.CachedFetcher
	useBrowser     bool
	browserTimeout time.Duration
	verbose        bool
	render         renderFunc
}

// New creates an Ingestor backed by the given page store. A nil store is
// fine; URL ingestion then skips caching.
func New(store fetch.PageStore, opts Options) *Ingestor {
	return &Ingestor{
		fetcher: fetch.NewCachedFetcher(store, &fetch.CachedConfig{
			CacheTTL:  opts.CacheTTL,
			SkipCache: opts.SkipCache,
			Options:   opts.Fetch,
		}),
		useBrowser:     opts.UseBrowser,
		browserTimeout: opts.BrowserTimeout,
		verbose:        opts.Verbose,
		render:         fetch.Render,
	}
}

// Result is an ingested posting: the cleaned text plus where it came from.
type Result struct {
	Text string   `json:"job_text"`
	Meta Metadata `json:"meta"`
}

// FromText cleans pasted posting text.
func (in *Ingestor) FromText(raw string) (*Result, error) {
	text := CleanText(raw)
	if text == "" {
		return nil, ErrEmptyPosting
	}
	return &Result{Text: text, Meta: newMetadata(SourceText, text)}, nil
}

// FromFile reads and cleans a posting saved to disk.
func (in *Ingestor) FromFile(path string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	text := CleanText(string(content))
	if text == "" {
		return nil, ErrEmptyPosting
	}
	return &Result{Text: text, Meta: newMetadata(SourceFile, text)}, nil
}

// FromURL fetches a posting page, extracts its text, and cleans it. Pages
// that come back nearly empty over plain HTTP are retried in a headless
// browser when the Ingestor was built with UseBrowser.
func (in *Ingestor) FromURL(ctx context.Context, urlStr string) (*Result, error) {
	fetched, err := in.fetcher.Fetch(ctx, urlStr)
	if err != nil {
		return nil, err
	}

	platform := fetch.DetectPlatform(urlStr)
	if in.verbose {
		log.Printf("[ingest] %s platform=%s cached=%v html=%d bytes", urlStr, platform, fetched.FromCache, len(fetched.HTML))
	}

	html := fetched.HTML
	text := fetched.Text

	if in.useBrowser && fetch.NeedsBrowser(text) {
		rendered, renderErr := in.render(ctx, urlStr, in.browserTimeout)
		if renderErr != nil {
			// Keep the HTTP content; a missing Chrome install should not
			// sink the whole ingest.
			log.Printf("[ingest] browser fallback failed for %s: %v", urlStr, renderErr)
		} else {
			extracted, extractErr := fetch.ExtractMainText(rendered,
				fetch.PlatformContentSelectors(platform),
				fetch.PlatformNoiseSelectors(platform)...)
			if extractErr == nil && len(extracted) > len(text) {
				html = rendered
				text = extracted
				if in.verbose {
					log.Printf("[ingest] browser render yielded %d chars", len(extracted))
				}
			}
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return nil, &fetch.Error{URL: urlStr, Message: "page yielded no posting text"}
	}

	meta := newMetadata(SourceURL, cleaned)
	meta.URL = urlStr
	meta.Platform = string(platform)
	meta.FromCache = fetched.FromCache

	pageMeta := ExtractPageMeta(html, urlStr)
	meta.Company = pageMeta.Company
	meta.RoleTitle = pageMeta.RoleTitle

	return &Result{Text: cleaned, Meta: meta}, nil
}
