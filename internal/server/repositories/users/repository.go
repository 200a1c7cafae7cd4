package users

import (
	"context"

	"github.com/dmitrijs2005/miniblog/internal/server/models"
)

// Repository is the credential store. Emails are expected to be normalized
// by the caller.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]*models.User, error)
}
