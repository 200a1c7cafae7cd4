package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/miniblog/internal/common"
	"github.com/dmitrijs2005/miniblog/internal/dbx"
	"github.com/dmitrijs2005/miniblog/internal/server/models"
	articlesrepo "github.com/dmitrijs2005/miniblog/internal/server/repositories/articles"
	usersrepo "github.com/dmitrijs2005/miniblog/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type failingHandle struct{ err error }

func (h failingHandle) Get(context.Context) (*sql.DB, error) { return nil, h.err }

// fakeUsersRepo is an in-memory credential store.
type fakeUsersRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	order   []string
	listErr error
	getErr  error

	// createErr is returned by Create after the email check passes.
	createErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrorConflict
		}
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	cp := *u
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.byID[cp.ID] = &cp
	f.order = append(f.order, cp.ID)
	out := cp
	return &out, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) UpdateProfile(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[u.ID]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Name, stored.Avatar, stored.Bio = u.Name, u.Avatar, u.Bio
	stored.UpdatedAt = time.Now()
	u.UpdatedAt = stored.UpdatedAt
	return nil
}

func (f *fakeUsersRepo) List(context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.User, 0, len(f.order))
	for _, id := range f.order {
		cp := *f.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUsersRepo) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

// fakeArticlesRepo is an in-memory article store.
type fakeArticlesRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.Article
	seq       int
	err       error
	createErr error
}

func newFakeArticlesRepo() *fakeArticlesRepo {
	return &fakeArticlesRepo{byID: map[string]*models.Article{}}
}

func (f *fakeArticlesRepo) put(a models.Article) *models.Article {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	f.seq++
	a.CreatedAt = time.Unix(int64(f.seq), 0)
	f.byID[a.ID] = &a
	cp := a
	return &cp
}

func (f *fakeArticlesRepo) Create(_ context.Context, a *models.Article) (*models.Article, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.put(*a), nil
}

func (f *fakeArticlesRepo) GetByID(_ context.Context, id string) (*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeArticlesRepo) sorted(keep func(*models.Article) bool) []*models.Article {
	out := make([]*models.Article, 0)
	for _, a := range f.byID {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeArticlesRepo) List(_ context.Context, category string) ([]*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(func(a *models.Article) bool { return category == "" || a.Category == category }), nil
}

func (f *fakeArticlesRepo) ListByOwner(_ context.Context, ownerID string) ([]*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(a *models.Article) bool { return a.IsOwnedBy(ownerID) }), nil
}

func (f *fakeArticlesRepo) Update(_ context.Context, a *models.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[a.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeArticlesRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeArticlesRepo) DeleteAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.byID = map[string]*models.Article{}
	return nil
}

func (f *fakeArticlesRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	a *fakeArticlesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), a: newFakeArticlesRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Articles(db dbx.DBTX) articlesrepo.Repository { return m.a }
