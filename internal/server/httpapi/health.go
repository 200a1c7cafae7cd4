package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/miniblog/internal/dbx"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// ReadinessTimeout bounds the database check of the readiness probe.
const ReadinessTimeout = 2 * time.Second

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database,omitempty"`
}

func checkDatabase(ctx context.Context, db dbx.Handle) error {
	ctx, cancel := context.WithTimeout(ctx, ReadinessTimeout)
	defer cancel()
	return dbx.Ping(ctx, db)
}

// liveness always answers 200 while the process serves requests.
func (s *Server) liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthStatus{Status: StatusHealthy, Timestamp: time.Now()})
}

// readiness answers 503 until the database is reachable.
func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	if err := checkDatabase(r.Context(), s.db); err != nil {
		s.log.Warn(r.Context(), "readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthStatus{
			Status: StatusUnhealthy, Timestamp: time.Now(), Database: StatusUnhealthy,
		})
		return
	}
	writeJSON(w, http.StatusOK, HealthStatus{Status: StatusHealthy, Timestamp: time.Now(), Database: StatusHealthy})
}
