package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveGeneration records a finished operation. The row ID is the operation
// ID, so history lines up with progress events and logs.
func (db *DB) SaveGeneration(ctx context.Context, gen *Generation) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO generations
		   (id, kind, company, role_title, job_text, result, status, error_kind, error_message, attempts, elapsed_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		gen.ID, gen.Kind, gen.Company, gen.RoleTitle, gen.JobText, gen.Result,
		gen.Status, gen.ErrorKind, gen.ErrorMessage, gen.Attempts, gen.ElapsedMS,
	)
	if err != nil {
		return fmt.Errorf("failed to save generation: %w", err)
	}
	return nil
}

// GetGeneration retrieves one generation by operation ID. A missing ID
// returns nil without an error.
func (db *DB) GetGeneration(ctx context.Context, id uuid.UUID) (*Generation, error) {
	var gen Generation
	err := db.pool.QueryRow(ctx,
		`SELECT id, kind, company, role_title, job_text, result, status,
		        error_kind, error_message, attempts, elapsed_ms, created_at
		 FROM generations WHERE id = $1`,
		id,
	).Scan(&gen.ID, &gen.Kind, &gen.Company, &gen.RoleTitle, &gen.JobText, &gen.Result,
		&gen.Status, &gen.ErrorKind, &gen.ErrorMessage, &gen.Attempts, &gen.ElapsedMS, &gen.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get generation: %w", err)
	}
	return &gen, nil
}

// ListGenerations retrieves history with optional filters, newest first.
func (db *DB) ListGenerations(ctx context.Context, filters GenerationFilters) ([]Generation, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT id, kind, company, role_title, job_text, result, status,
	                 error_kind, error_message, attempts, elapsed_ms, created_at
	          FROM generations WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, filters.Kind)
		argNum++
	}
	if filters.Company != "" {
		query += fmt.Sprintf(" AND company ILIKE $%d", argNum)
		args = append(args, "%"+filters.Company+"%")
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	var generations []Generation
	for rows.Next() {
		var gen Generation
		if err := rows.Scan(&gen.ID, &gen.Kind, &gen.Company, &gen.RoleTitle, &gen.JobText, &gen.Result,
			&gen.Status, &gen.ErrorKind, &gen.ErrorMessage, &gen.Attempts, &gen.ElapsedMS, &gen.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		generations = append(generations, gen)
	}
	return generations, nil
}

// DeleteGeneration removes one history entry.
func (db *DB) DeleteGeneration(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM generations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete generation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("generation not found: %s", id)
	}
	return nil
}
