package httpapi

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/miniblog/internal/common"
	"github.com/dmitrijs2005/miniblog/internal/dbx"
	"github.com/dmitrijs2005/miniblog/internal/server/models"
	articlesrepo "github.com/dmitrijs2005/miniblog/internal/server/repositories/articles"
	usersrepo "github.com/dmitrijs2005/miniblog/internal/server/repositories/users"
	"github.com/google/uuid"
)

// memStore backs both repositories with maps.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	articles map[string]*models.Article
	seq      int
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*models.User{}, articles: map[string]*models.Article{}}
}

func (m *memStore) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memStore) Users(dbx.DBTX) usersrepo.Repository          { return memUsers{m} }
func (m *memStore) Articles(dbx.DBTX) articlesrepo.Repository    { return memArticles{m} }

func (m *memStore) tick() time.Time {
	m.seq++
	return time.Unix(int64(m.seq), 0)
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.users {
		if e.Email == u.Email {
			return nil, common.ErrorConflict
		}
	}
	cp := *u
	cp.ID = uuid.NewString()
	cp.CreatedAt = r.m.tick()
	r.m.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) UpdateProfile(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.users[u.ID]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Name, stored.Avatar, stored.Bio = u.Name, u.Avatar, u.Bio
	return nil
}

func (r memUsers) List(context.Context) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memArticles struct{ m *memStore }

func (r memArticles) Create(_ context.Context, a *models.Article) (*models.Article, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *a
	cp.ID = uuid.NewString()
	cp.CreatedAt = r.m.tick()
	r.m.articles[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memArticles) GetByID(_ context.Context, id string) (*models.Article, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.articles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r memArticles) filter(keep func(*models.Article) bool) []*models.Article {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Article, 0)
	for _, a := range r.m.articles {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memArticles) List(_ context.Context, category string) ([]*models.Article, error) {
	return r.filter(func(a *models.Article) bool { return category == "" || a.Category == category }), nil
}

func (r memArticles) ListByOwner(_ context.Context, ownerID string) ([]*models.Article, error) {
	return r.filter(func(a *models.Article) bool { return a.IsOwnedBy(ownerID) }), nil
}

func (r memArticles) Update(_ context.Context, a *models.Article) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.articles[a.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *a
	r.m.articles[a.ID] = &cp
	return nil
}

func (r memArticles) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.articles[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.articles, id)
	return nil
}

func (r memArticles) DeleteAll(context.Context) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.articles = map[string]*models.Article{}
	return nil
}

type failingHandle struct{ err error }

func (h failingHandle) Get(context.Context) (*sql.DB, error) { return nil, h.err }
