// Package articles provides the PostgreSQL-backed article store.
package articles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/miniblog/internal/common"
	"github.com/dmitrijs2005/miniblog/internal/dbx"
	"github.com/dmitrijs2005/miniblog/internal/server/models"
	"github.com/dmitrijs2005/miniblog/internal/server/repositories/pgutil"
)

// PostgresRepository implements Repository over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectArticle = `SELECT id, title, description, content, image, category, date, read_time,
		 author, author_avatar, featured, owner_id, created_at, updated_at FROM articles`

func scanArticle(row interface{ Scan(dest ...any) error }) (*models.Article, error) {
	a := &models.Article{}
	var owner sql.NullString
	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.Content, &a.Image, &a.Category,
		&a.Date, &a.ReadTime, &a.Author, &a.AuthorAvatar, &a.Featured, &owner,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if owner.Valid {
		a.OwnerID = &owner.String
	}
	return a, nil
}

func ownerArg(owner *string) any {
	if owner == nil {
		return nil
	}
	return *owner
}

// Create inserts a and fills in its ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	query :=
		`INSERT INTO articles (title, description, content, image, category, date, read_time,
		 author, author_avatar, featured, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		a.Title, a.Description, a.Content, a.Image, a.Category, a.Date, a.ReadTime,
		a.Author, a.AuthorAvatar, a.Featured, ownerArg(a.OwnerID)).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// GetByID returns the article or common.ErrorNotFound. Malformed ids are
// treated as unknown.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	if !pgutil.ValidID(id) {
		return nil, common.ErrorNotFound
	}

	a, err := scanArticle(r.db.QueryRowContext(ctx, selectArticle+`
		 WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context, category string) ([]*models.Article, error) {
	if category == "" {
		return r.list(ctx, selectArticle+`
		 ORDER BY created_at DESC, seq DESC`)
	}
	return r.list(ctx, selectArticle+`
		 WHERE category = $1
		 ORDER BY created_at DESC, seq DESC`, category)
}

// ListByOwner returns the articles owned by ownerID, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Article, error) {
	if !pgutil.ValidID(ownerID) {
		return []*models.Article{}, nil
	}
	return r.list(ctx, selectArticle+`
		 WHERE owner_id = $1
		 ORDER BY created_at DESC, seq DESC`, ownerID)
}

// Update overwrites every editable column of a. Ownership is not changed.
func (r *PostgresRepository) Update(ctx context.Context, a *models.Article) error {
	if !pgutil.ValidID(a.ID) {
		return common.ErrorNotFound
	}

	query :=
		`UPDATE articles SET title = $2, description = $3, content = $4, image = $5,
		 category = $6, date = $7, read_time = $8, author = $9, author_avatar = $10,
		 featured = $11, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, a.ID,
		a.Title, a.Description, a.Content, a.Image, a.Category, a.Date, a.ReadTime,
		a.Author, a.AuthorAvatar, a.Featured).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the article or returns common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if !pgutil.ValidID(id) {
		return common.ErrorNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// DeleteAll empties the catalog.
func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM articles`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
