// Package store provides the Postgres persistence behind the design
// module.
package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artfolio/artfolio/modules/design"
	"github.com/artfolio/artfolio/pkg/pg"
)

const defaultListLimit = 20

var _ design.Storage = (*DesignStore)(nil)

// DesignStore persists designs in Postgres.
type DesignStore struct {
	db *pgxpool.Pool
}

// NewDesignStore creates a Postgres-backed design store.
func NewDesignStore(db *pgxpool.Pool) *DesignStore {
	return &DesignStore{db: db}
}

const designColumns = `id, name, description, category, subcategory, tags, image_url, author_id, status, created_at`

func (s *DesignStore) CreateDesign(ctx context.Context, d *design.Design) error {
	query := `INSERT INTO designs (` + designColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.Exec(ctx, query,
		d.ID, d.Name, d.Description, d.Category, d.Subcategory, d.Tags,
		d.ImageURL, d.AuthorID, d.Status, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create design: %w", err)
	}
	return nil
}

func (s *DesignStore) GetDesignByID(ctx context.Context, id uuid.UUID) (*design.Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs WHERE id = $1`

	var d design.Design
	err := s.db.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Name, &d.Description, &d.Category, &d.Subcategory, &d.Tags,
		&d.ImageURL, &d.AuthorID, &d.Status, &d.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, design.ErrDesignNotFound
		}
		return nil, fmt.Errorf("failed to get design: %w", err)
	}
	return &d, nil
}

func (s *DesignStore) ListDesigns(ctx context.Context, filter design.ListFilter) ([]design.Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs WHERE status = 'published'`
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += " AND category = $" + strconv.Itoa(len(args))
	}
	if filter.Subcategory != "" {
		args = append(args, filter.Subcategory)
		query += " AND subcategory = $" + strconv.Itoa(len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)
	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	defer rows.Close()

	var designs []design.Design
	for rows.Next() {
		var d design.Design
		if err := rows.Scan(
			&d.ID, &d.Name, &d.Description, &d.Category, &d.Subcategory, &d.Tags,
			&d.ImageURL, &d.AuthorID, &d.Status, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan design: %w", err)
		}
		designs = append(designs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read designs: %w", err)
	}

	return designs, nil
}
