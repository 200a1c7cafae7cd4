package services

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/miniblog/internal/common"
	"github.com/dmitrijs2005/miniblog/internal/dbx"
	"github.com/dmitrijs2005/miniblog/internal/logging"
	"github.com/dmitrijs2005/miniblog/internal/server/auth"
	"github.com/dmitrijs2005/miniblog/internal/server/models"
	"github.com/dmitrijs2005/miniblog/internal/server/repositories/repomanager"
)

const (
	// CategoryAll is the listing filter that selects every category.
	CategoryAll = "All"

	// DateLayout is the display format of Article.Date.
	DateLayout = "Jan 2, 2006"

	wordsPerMinute = 200

	// DefaultAuthor and DefaultAuthorAvatar fill in attribution when neither
	// the request nor the author's profile provides it.
	DefaultAuthor       = "Anonymous"
	DefaultAuthorAvatar = "https://images.unsplash.com/photo-1535713875002-d1d0cf377fde?auto=format&fit=crop&q=80&w=100"

	MsgArticleNotFound   = "Post not found"
	MsgArticleIncomplete = "Title, description, content, image and category are required."
)

//go:embed seed_posts.json
var seedPosts []byte

// ArticleService implements browsing and authoring of articles.
type ArticleService struct {
	db          dbx.Handle
	repomanager repomanager.RepositoryManager
	guard       Guard
	log         logging.Logger
	now         func() time.Time
}

// NewArticleService constructs an ArticleService.
func NewArticleService(db dbx.Handle, m repomanager.RepositoryManager, guard Guard, log logging.Logger) *ArticleService {
	return &ArticleService{db: db, repomanager: m, guard: guard, log: log, now: time.Now}
}

func (s *ArticleService) internal(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, op+" failed", "error", err)
	return common.NewError(common.ErrorInternal, MsgInternal)
}

func notFound() error {
	return common.NewError(common.ErrorNotFound, MsgArticleNotFound)
}

// ReadTime estimates the reading time of content, at least one minute.
func ReadTime(content string) string {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

func complete(a *models.Article) bool {
	for _, v := range []string{a.Title, a.Description, a.Content, a.Image, a.Category} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// List returns articles newest first, optionally restricted to category.
func (s *ArticleService) List(ctx context.Context, category string) ([]*models.Article, error) {
	if category == CategoryAll {
		category = ""
	}

	db, err := s.db.Get(ctx)
	if err != nil {
		return nil, s.internal(ctx, "open store", err)
	}
	list, err := s.repomanager.Articles(db).List(ctx, category)
	if err != nil {
		return nil, s.internal(ctx, "list articles", err)
	}
	return list, nil
}

// Get returns a single article.
func (s *ArticleService) Get(ctx context.Context, id string) (*models.Article, error) {
	db, err := s.db.Get(ctx)
	if err != nil {
		return nil, s.internal(ctx, "open store", err)
	}
	a, err := s.repomanager.Articles(db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, notFound()
		}
		return nil, s.internal(ctx, "get article", err)
	}
	return a, nil
}

// Mine returns the articles owned by the caller.
func (s *ArticleService) Mine(ctx context.Context, claims *auth.Claims) ([]*models.Article, error) {
	if claims == nil {
		return nil, common.NewError(common.ErrorUnauthorized, "Unauthorized")
	}

	db, err := s.db.Get(ctx)
	if err != nil {
		return nil, s.internal(ctx, "open store", err)
	}
	list, err := s.repomanager.Articles(db).ListByOwner(ctx, claims.UserID())
	if err != nil {
		return nil, s.internal(ctx, "list own articles", err)
	}
	return list, nil
}

// Create stores a new article owned by the caller. The owner always comes
// from claims. Date and read time are derived when absent, author and
// avatar default to the caller's profile.
func (s *ArticleService) Create(ctx context.Context, claims *auth.Claims, in models.ArticlePatch) (*models.Article, error) {
	if claims == nil {
		return nil, common.NewError(common.ErrorUnauthorized, "Unauthorized")
	}

	a := &models.Article{}
	in.Apply(a)
	a.Author = strings.TrimSpace(a.Author)
	a.AuthorAvatar = strings.TrimSpace(a.AuthorAvatar)

	if !complete(a) {
		return nil, common.NewError(common.ErrorValidation, MsgArticleIncomplete)
	}

	db, err := s.db.Get(ctx)
	if err != nil {
		return nil, s.internal(ctx, "open store", err)
	}

	if a.Author == "" || a.AuthorAvatar == "" {
		var profile *models.User
		profile, err = s.repomanager.Users(db).GetByID(ctx, claims.UserID())
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, s.internal(ctx, "lookup author", err)
		}
		if a.Author == "" {
			a.Author = firstNonEmpty(nameOf(profile), claims.Name, DefaultAuthor)
		}
		if a.AuthorAvatar == "" {
			a.AuthorAvatar = firstNonEmpty(avatarOf(profile), DefaultAuthorAvatar)
		}
	}
	if a.Date == "" {
		a.Date = s.now().Format(DateLayout)
	}
	if a.ReadTime == "" {
		a.ReadTime = ReadTime(a.Content)
	}

	owner := claims.UserID()
	a.OwnerID = &owner

	created, err := s.repomanager.Articles(db).Create(ctx, a)
	if err != nil {
		return nil, s.internal(ctx, "create article", err)
	}
	s.log.Info(ctx, "article created", "article_id", created.ID, "user_id", owner)
	return created, nil
}

// Update applies patch to an article the caller may modify. Concurrent
// updates are last-write-wins.
func (s *ArticleService) Update(ctx context.Context, claims *auth.Claims, id string, patch models.ArticlePatch) (*models.Article, error) {
	if claims == nil {
		return nil, common.NewError(common.ErrorUnauthorized, "Unauthorized")
	}

	db, err := s.db.Get(ctx)
	if err != nil {
		return nil, s.internal(ctx, "open store", err)
	}
	repo := s.repomanager.Articles(db)

	a, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, notFound()
		}
		return nil, s.internal(ctx, "get article", err)
	}
	if err := s.guard.Authorize(claims, a); err != nil {
		return nil, err
	}

	patch.Apply(a)
	if !complete(a) {
		return nil, common.NewError(common.ErrorValidation, MsgArticleIncomplete)
	}

	if err := repo.Update(ctx, a); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, notFound()
		}
		return nil, s.internal(ctx, "update article", err)
	}
	return a, nil
}

// Delete removes an article the caller may modify.
func (s *ArticleService) Delete(ctx context.Context, claims *auth.Claims, id string) error {
	if claims == nil {
		return common.NewError(common.ErrorUnauthorized, "Unauthorized")
	}

	db, err := s.db.Get(ctx)
	if err != nil {
		return s.internal(ctx, "open store", err)
	}
	repo := s.repomanager.Articles(db)

	a, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return notFound()
		}
		return s.internal(ctx, "get article", err)
	}
	if err := s.guard.Authorize(claims, a); err != nil {
		return err
	}

	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return notFound()
		}
		return s.internal(ctx, "delete article", err)
	}
	s.log.Info(ctx, "article deleted", "article_id", id, "user_id", claims.UserID())
	return nil
}

// SeedArticles returns the built-in catalog. Seeded articles have no owner.
func SeedArticles() ([]*models.Article, error) {
	var list []*models.Article
	if err := json.Unmarshal(seedPosts, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Seed replaces the whole catalog with the built-in articles in a single
// transaction.
func (s *ArticleService) Seed(ctx context.Context) ([]*models.Article, error) {
	posts, err := SeedArticles()
	if err != nil {
		return nil, s.internal(ctx, "decode seed data", err)
	}

	db, err := s.db.Get(ctx)
	if err != nil {
		return nil, s.internal(ctx, "open store", err)
	}

	// Inserted oldest first, so listings show the catalog in file order.
	inserted := make([]*models.Article, len(posts))
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Articles(tx)
		if err := repo.DeleteAll(ctx); err != nil {
			return err
		}
		for i := len(posts) - 1; i >= 0; i-- {
			p := posts[i]
			p.OwnerID = nil
			a, err := repo.Create(ctx, p)
			if err != nil {
				return err
			}
			inserted[i] = a
		}
		return nil
	})
	if err != nil {
		return nil, s.internal(ctx, "seed articles", err)
	}

	s.log.Info(ctx, "catalog seeded", "count", len(inserted))
	return inserted, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nameOf(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.Name
}

func avatarOf(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.Avatar
}
