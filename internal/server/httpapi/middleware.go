package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/miniblog/internal/logging"
	"github.com/dmitrijs2005/miniblog/internal/server/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// claimsFrom returns the session attached by withSession, or nil.
func claimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

// withSession resolves the session cookie. A missing or invalid cookie is
// not an error here: handlers decide whether a session is required.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := s.cookies.Read(r); token != "" {
			if claims := s.tokens.Identify(token); claims != nil {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireSession answers 401 when the request carries no valid session.
func requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claimsFrom(r.Context()) == nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

// withRequestLogging logs one line per request.
func withRequestLogging(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.status,
				"bytes", rw.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if c := claimsFrom(r.Context()); c != nil {
				args = append(args, "user_id", c.UserID())
			}
			log.Info(r.Context(), "http.request", args...)
		})
	}
}

// withRecover turns a handler panic into a 500.
func withRecover(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					log.Error(r.Context(), "handler panic", "panic", p, "path", r.URL.Path)
					writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
