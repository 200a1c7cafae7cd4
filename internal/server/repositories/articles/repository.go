package articles

import (
	"context"

	"github.com/dmitrijs2005/miniblog/internal/server/models"
)

// Repository persists articles.
type Repository interface {
	Create(ctx context.Context, a *models.Article) (*models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	// List returns articles newest first; an empty category selects all.
	List(ctx context.Context, category string) ([]*models.Article, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Article, error)
	Update(ctx context.Context, a *models.Article) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
