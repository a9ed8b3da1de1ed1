package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mwilhelm/applypilot/internal/types"
)

// DefaultResumeLabel names the resume used when a request does not pick one.
const DefaultResumeLabel = "default"

// UpsertResume stores resume under label, replacing any previous version.
func (db *DB) UpsertResume(ctx context.Context, label string, resume types.Resume) (*StoredResume, error) {
	if label == "" {
		label = DefaultResumeLabel
	}

	data, err := json.Marshal(resume)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resume: %w", err)
	}

	var stored StoredResume
	err = db.pool.QueryRow(ctx,
		`INSERT INTO resumes (label, data)
		 VALUES ($1, $2)
		 ON CONFLICT (label) DO UPDATE SET data = $2, updated_at = NOW()
		 RETURNING id, label, data, created_at, updated_at`,
		label, data,
	).Scan(&stored.ID, &stored.Label, &stored.Data, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert resume: %w", err)
	}
	return &stored, nil
}

// GetResume retrieves the resume stored under label. A missing label returns
// nil without an error.
func (db *DB) GetResume(ctx context.Context, label string) (*StoredResume, error) {
	if label == "" {
		label = DefaultResumeLabel
	}

	var stored StoredResume
	err := db.pool.QueryRow(ctx,
		`SELECT id, label, data, created_at, updated_at FROM resumes WHERE label = $1`,
		label,
	).Scan(&stored.ID, &stored.Label, &stored.Data, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return &stored, nil
}

// DecodeResume unmarshals a stored resume's data.
func (s *StoredResume) DecodeResume() (types.Resume, error) {
	var resume types.Resume
	if err := json.Unmarshal(s.Data, &resume); err != nil {
		return types.Resume{}, fmt.Errorf("failed to decode stored resume %q: %w", s.Label, err)
	}
	return resume, nil
}

// ListResumes returns every stored resume, newest first.
func (db *DB) ListResumes(ctx context.Context) ([]StoredResume, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, label, data, created_at, updated_at FROM resumes ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	var resumes []StoredResume
	for rows.Next() {
		var stored StoredResume
		if err := rows.Scan(&stored.ID, &stored.Label, &stored.Data, &stored.CreatedAt, &stored.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, stored)
	}
	return resumes, nil
}

// DeleteResume removes the resume stored under label.
func (db *DB) DeleteResume(ctx context.Context, label string) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM resumes WHERE label = $1`, label)
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("resume not found: %s", label)
	}
	return nil
}
