package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/miniblog/internal/server/models"
)

// Client is the API surface the CLI uses.
type Client interface {
	Register(ctx context.Context, name, email string, password []byte) (*models.PublicUser, error)
	Login(ctx context.Context, email string, password []byte) (*models.PublicUser, error)
	Logout(ctx context.Context) error
	// Me returns nil and no error when there is no live session.
	Me(ctx context.Context) (*models.PublicUser, error)
	Posts(ctx context.Context, category string) ([]*models.Article, error)
	MyPosts(ctx context.Context) ([]*models.Article, error)
	// Upload stores body through a presigned URL and returns its public URL.
	Upload(ctx context.Context, kind, contentType string, body io.Reader) (string, error)
}
