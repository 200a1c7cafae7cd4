// Package httpapi exposes the blog over a JSON HTTP API. Sessions travel in
// an HttpOnly cookie; every response body has a boolean success field.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/miniblog/internal/dbx"
	"github.com/dmitrijs2005/miniblog/internal/logging"
	"github.com/dmitrijs2005/miniblog/internal/server/auth"
	"github.com/dmitrijs2005/miniblog/internal/server/services"
	"github.com/gorilla/mux"
)

// Server wires services to routes.
type Server struct {
	address     string
	users       *services.UserService
	articles    *services.ArticleService
	media       *services.MediaService
	cookies     *auth.CookieManager
	tokens      *auth.TokenCodec
	db          dbx.Handle
	metrics     *Metrics
	log         logging.Logger
	seedEnabled bool
}

// Options groups the dependencies of NewServer.
type Options struct {
	Address     string
	Users       *services.UserService
	Articles    *services.ArticleService
	Media       *services.MediaService
	Cookies     *auth.CookieManager
	Tokens      *auth.TokenCodec
	DB          dbx.Handle
	Metrics     *Metrics
	Logger      logging.Logger
	SeedEnabled bool
}

func NewServer(o Options) *Server {
	return &Server{
		address:     o.Address,
		users:       o.Users,
		articles:    o.Articles,
		media:       o.Media,
		cookies:     o.Cookies,
		tokens:      o.Tokens,
		db:          o.DB,
		metrics:     o.Metrics,
		log:         o.Logger.With("module", "http_server"),
		seedEnabled: o.SeedEnabled,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(withRecover(s.log), s.withSession, withRequestLogging(s.log), s.metrics.Middleware)

	r.HandleFunc("/healthz", s.liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.readiness).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", s.me).Methods(http.MethodGet)
	api.HandleFunc("/auth/me", requireSession(s.updateMe)).Methods(http.MethodPatch)
	api.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)

	api.HandleFunc("/posts", s.listPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts", requireSession(s.createPost)).Methods(http.MethodPost)
	api.HandleFunc("/posts/mine", requireSession(s.myPosts)).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", s.getPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", requireSession(s.updatePost)).Methods(http.MethodPatch)
	api.HandleFunc("/posts/{id}", requireSession(s.deletePost)).Methods(http.MethodDelete)

	api.HandleFunc("/media/presign", requireSession(s.presign)).Methods(http.MethodPost)

	if s.seedEnabled {
		api.HandleFunc("/seed", s.seed).Methods(http.MethodPost)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.log.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
