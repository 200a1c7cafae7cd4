package dbx

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultOpenTimeout bounds a single open, including ping and migrations.
const DefaultOpenTimeout = 30 * time.Second

// ErrClosedDuringOpen is returned to callers of an open that finished after
// Close. The handle it produced has already been closed.
var ErrClosedDuringOpen = errors.New("database handle closed while opening")

// OpenFunc opens and prepares a database handle (connect, ping, migrate).
type OpenFunc func(ctx context.Context) (*sql.DB, error)

// Lazy holds a database handle that is opened on first use and then shared
// by every caller. Concurrent first callers wait on the same in-flight
// open; a successful handle is memoized, a failed open is not, so the next
// call tries again. A caller stops waiting when its own context ends; the
// open keeps running, bounded by its own timeout.
type Lazy struct {
	open        OpenFunc
	openTimeout time.Duration
	group       singleflight.Group

	mu  sync.RWMutex
	db  *sql.DB
	gen uint64 // bumped by Close
}

// NewLazy returns a Lazy that uses open to create the handle.
func NewLazy(open OpenFunc) *Lazy {
	return &Lazy{open: open, openTimeout: DefaultOpenTimeout}
}

func (l *Lazy) current() (*sql.DB, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.db, l.gen
}

// Get returns the shared handle, opening it if needed.
func (l *Lazy) Get(ctx context.Context) (*sql.DB, error) {
	if db, _ := l.current(); db != nil {
		return db, nil
	}

	// The open must outlive the request that happened to trigger it.
	openCtx := context.WithoutCancel(ctx)

	ch := l.group.DoChan("db", func() (any, error) {
		db, gen := l.current()
		if db != nil {
			return db, nil
		}

		ctx, cancel := context.WithTimeout(openCtx, l.openTimeout)
		defer cancel()

		db, err := l.open(ctx)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		if l.gen != gen {
			l.mu.Unlock()
			_ = db.Close()
			return nil, ErrClosedDuringOpen
		}
		l.db = db
		l.mu.Unlock()
		return db, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*sql.DB), nil
	}
}

// Close closes the handle if it was opened. An open still in flight is
// discarded when it completes. Get may be called again after Close and
// will open a fresh handle.
func (l *Lazy) Close() error {
	l.mu.Lock()
	db := l.db
	l.db = nil
	l.gen++
	l.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

// Handle yields the database a service should talk to.
type Handle interface {
	Get(ctx context.Context) (*sql.DB, error)
}

type static struct{ db *sql.DB }

func (s static) Get(context.Context) (*sql.DB, error) { return s.db, nil }

// Static wraps an already opened handle.
func Static(db *sql.DB) Handle { return static{db: db} }

// Ping obtains the handle from h and checks the connection.
func Ping(ctx context.Context, h Handle) error {
	db, err := h.Get(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}
