package jobs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"findoc-backend/internal/documents"
	"findoc-backend/internal/shared/server/middleware"
	"findoc-backend/internal/shared/server/respond"
)

// Handler wires the schedule endpoint to the Runner.
type Handler struct {
	Runner *Runner
}

// NewHandler constructs a Handler.
func NewHandler(runner *Runner) *Handler {
	return &Handler{Runner: runner}
}

// RegisterRoutes attaches job routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze/:id", h.analyze)
}

// analyzeRequest carries the optional run inputs. The body may be absent.
type analyzeRequest struct {
	InputField string `json:"inputField"`
	UserQuery  string `json:"userQuery"`
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")
	if documentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document id is required", nil)
		return
	}

	var req analyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}

	doc, err := h.Runner.Schedule(
		c.Request.Context(),
		documentID,
		userID,
		req.InputField,
		req.UserQuery,
		middleware.RequestIDFromContext(c),
	)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, documents.ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "not the document owner", nil)
		case errors.Is(err, ErrAlreadyRunning):
			respond.Error(c, http.StatusConflict, "conflict", "analysis already running", nil)
		case errors.Is(err, ErrAlreadyFinished):
			respond.Error(c, http.StatusConflict, "conflict", "analysis already finished", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to schedule analysis", nil)
		}
		return
	}

	c.Set("documentId", doc.ID)
	c.Set("statusTransition", "uploaded->running")
	respond.JSON(c, http.StatusAccepted, gin.H{
		"message":    "analysis scheduled",
		"documentId": doc.ID,
		"status":     doc.Status,
	})
}
