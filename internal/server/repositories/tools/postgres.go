// Package tools provides a PostgreSQL-backed repository for the per-owner
// tools collection.
package tools

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/modtoolkit/internal/common"
	"github.com/dmitrijs2005/modtoolkit/internal/dbx"
	"github.com/dmitrijs2005/modtoolkit/internal/server/models"
)

// PostgresRepository implements tool storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByOwner returns all tools for ownerID ordered by creation time, oldest
// first. The ordering is stable so repeated snapshots keep list identity.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Tool, error) {
	query := `
		SELECT id, owner_id, title, category, description, enabled, progress, created_at
		FROM tools
		WHERE owner_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tools: %w", err)
	}
	defer rows.Close()

	var result []*models.Tool
	for rows.Next() {
		var item models.Tool
		if err := rows.Scan(
			&item.ID, &item.OwnerID, &item.Title, &item.Category, &item.Description,
			&item.Enabled, &item.Progress, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns a single tool owned by ownerID. A tool belonging to another
// owner yields common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (*models.Tool, error) {
	query := `
		SELECT id, owner_id, title, category, description, enabled, progress, created_at
		FROM tools
		WHERE id = $1 AND owner_id = $2
	`
	tool := &models.Tool{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&tool.ID, &tool.OwnerID, &tool.Title, &tool.Category, &tool.Description,
		&tool.Enabled, &tool.Progress, &tool.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tool, nil
}

// Create inserts a new tool and returns it with the server-assigned
// created_at filled in.
func (r *PostgresRepository) Create(ctx context.Context, tool *models.Tool) (*models.Tool, error) {
	query := `
		INSERT INTO tools (id, owner_id, title, category, description, enabled, progress)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		tool.ID, tool.OwnerID, tool.Title, tool.Category, tool.Description,
		tool.Enabled, tool.Progress).Scan(&tool.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tool, nil
}

// Update rewrites the editable fields of an existing tool. The enabled flag
// is deliberately not part of the statement, it is owned by SetEnabled.
// Expects exactly one row to be affected; zero rows means the record does
// not exist for this owner.
func (r *PostgresRepository) Update(ctx context.Context, tool *models.Tool) error {
	query := `
		UPDATE tools
		SET title = $1, category = $2, description = $3, progress = $4
		WHERE id = $5 AND owner_id = $6
	`
	res, err := r.db.ExecContext(ctx, query,
		tool.Title, tool.Category, tool.Description, tool.Progress,
		tool.ID, tool.OwnerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// SetEnabled patches the single enabled field.
func (r *PostgresRepository) SetEnabled(ctx context.Context, ownerID, id string, enabled bool) error {
	query := `
		UPDATE tools SET enabled = $1
		WHERE id = $2 AND owner_id = $3
	`
	res, err := r.db.ExecContext(ctx, query, enabled, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// Delete removes a tool owned by ownerID.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `
		DELETE FROM tools
		WHERE id = $1 AND owner_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
