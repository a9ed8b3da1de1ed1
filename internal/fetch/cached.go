package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/mwilhelm/applypilot/internal/db"
)

// DefaultCacheTTL is how long a fetched page stays fresh. Postings change
// rarely; a week keeps repeat tailoring runs off the job board.
const DefaultCacheTTL = 7 * 24 * time.Hour

// PageStore is the slice of the database the cached fetcher needs.
// *db.DB satisfies it.
type PageStore interface {
	GetJobPage(ctx context.Context, url string) (*db.JobPage, error)
	UpsertJobPage(ctx context.Context, page *db.JobPage) error
}

// CachedFetcher wraps URL fetching with a database-backed page cache.
// A nil store degrades to plain fetching.
type CachedFetcher struct {
	store     PageStore
	options   *Options
	cacheTTL  time.Duration
	skipCache bool
}

// CachedConfig holds configuration for the cached fetcher.
type CachedConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
}

// NewCachedFetcher creates a cached fetcher. Zero config fields fall back to
// defaults.
func NewCachedFetcher(store PageStore, config *CachedConfig) *CachedFetcher {
	if config == nil {
		config = &CachedConfig{}
	}
	opts := config.Options
	if opts == nil {
		opts = DefaultOptions()
	}
	ttl := config.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFetcher{
		store:     store,
		options:   opts,
		cacheTTL:  ttl,
		skipCache: config.SkipCache,
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache   bool
	ContentHash string
}

// Fetch retrieves a URL, serving a fresh cached copy when one exists.
// A cache miss fetches the page, extracts the posting text with the
// platform's selectors, and stores both.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	if f.store != nil && !f.skipCache {
		cached, err := f.store.GetJobPage(ctx, urlStr)
		if err != nil {
			return nil, fmt.Errorf("failed to check page cache: %w", err)
		}
		if cached != nil && cached.IsFresh() {
			return &CachedResult{
				Result: &Result{
					URL:        cached.URL,
					HTML:       cached.RawHTML,
					Text:       cached.CleanedText,
					StatusCode: cached.HTTPStatus,
				},
				FromCache:   true,
				ContentHash: cached.ContentHash,
			}, nil
		}
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	platform := DetectPlatform(urlStr)
	text, err := ExtractMainText(result.HTML, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to extract posting text", Cause: err}
	}
	result.Text = text
	hash := ContentHash(text)

	if f.store != nil {
		expires := time.Now().Add(f.cacheTTL)
		page := &db.JobPage{
			URL:         urlStr,
			RawHTML:     result.HTML,
			CleanedText: text,
			ContentHash: hash,
			HTTPStatus:  result.StatusCode,
			ExpiresAt:   &expires,
		}
		if storeErr := f.store.UpsertJobPage(ctx, page); storeErr != nil {
			// The fetch itself succeeded; a cache write failure is not fatal.
			log.Printf("[fetch] failed to cache %s: %v", urlStr, storeErr)
		}
	}

	return &CachedResult{Result: result, FromCache: false, ContentHash: hash}, nil
}

// Invalidate expires the cached copy of a URL so the next Fetch goes to the
// network. A URL that was never cached is a no-op.
func (f *CachedFetcher) Invalidate(ctx context.Context, urlStr string) error {
	if f.store == nil {
		return nil
	}
	page, err := f.store.GetJobPage(ctx, urlStr)
	if err != nil || page == nil {
		return err
	}
	past := time.Now().Add(-time.Hour)
	page.ExpiresAt = &past
	return f.store.UpsertJobPage(ctx, page)
}

// ContentHash returns the hex SHA-256 of the extracted text. Stored alongside
// the page so repeat fetches can tell whether a posting actually changed.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
