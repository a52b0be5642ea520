// Package health reports readiness of the service and its datastore.
package health

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"findoc-backend/internal/shared/server/respond"
)

// Service checks dependency reachability.
type Service struct {
	DB *sql.DB
}

// NewService constructs a Service. DB may be nil when running on in-memory
// repositories, in which case there is no datastore to probe.
func NewService(db *sql.DB) *Service {
	return &Service{DB: db}
}

// Status pings the datastore. It returns the reported status and, when
// unhealthy, a detail string.
func (s *Service) Status(ctx context.Context) (string, string) {
	if s.DB == nil {
		return "ok", ""
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		return "error", "datastore unreachable: " + err.Error()
	}
	return "ok", ""
}

// Handler serves the health endpoint.
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status, detail := s.Status(c.Request.Context())
		if status != "ok" {
			respond.JSON(c, http.StatusServiceUnavailable, gin.H{
				"status": status,
				"detail": detail,
			})
			return
		}
		respond.JSON(c, http.StatusOK, gin.H{"status": status})
	}
}
