package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// UpsertJobPage stores a fetched job posting page, replacing any previous
// fetch of the same URL.
func (db *DB) UpsertJobPage(ctx context.Context, page *JobPage) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_pages (url, raw_html, cleaned_text, content_hash, http_status, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), $6)
		 ON CONFLICT (url) DO UPDATE SET
		   raw_html = $2, cleaned_text = $3, content_hash = $4,
		   http_status = $5, fetched_at = NOW(), expires_at = $6`,
		page.URL, page.RawHTML, page.CleanedText, page.ContentHash, page.HTTPStatus, page.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert job page: %w", err)
	}
	return nil
}

// GetJobPage retrieves a cached page by URL. A miss returns nil without an
// error; freshness is the caller's call via IsFresh.
func (db *DB) GetJobPage(ctx context.Context, url string) (*JobPage, error) {
	var page JobPage
	err := db.pool.QueryRow(ctx,
		`SELECT url, raw_html, cleaned_text, content_hash, http_status, fetched_at, expires_at
		 FROM job_pages WHERE url = $1`,
		url,
	).Scan(&page.URL, &page.RawHTML, &page.CleanedText, &page.ContentHash,
		&page.HTTPStatus, &page.FetchedAt, &page.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job page: %w", err)
	}
	return &page, nil
}

// PurgeExpiredPages deletes pages whose TTL elapsed before cutoff and
// returns how many were removed.
func (db *DB) PurgeExpiredPages(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM job_pages WHERE expires_at IS NOT NULL AND expires_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge job pages: %w", err)
	}
	return result.RowsAffected(), nil
}
