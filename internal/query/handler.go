// Package query exposes the synchronous direct-query endpoint: run the
// analysis pipeline against an already-uploaded document and return the
// answer inline, persisting nothing.
package query

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"findoc-backend/internal/analyzer"
	"findoc-backend/internal/documents"
	"findoc-backend/internal/shared/server/middleware"
	"findoc-backend/internal/shared/server/respond"
	"findoc-backend/internal/shared/storage/object"
)

// Handler runs ad hoc queries through the analyzer.
type Handler struct {
	Docs     *documents.Service
	Store    object.ObjectStore
	Analyzer analyzer.Client
}

// NewHandler constructs a Handler.
func NewHandler(docs *documents.Service, store object.ObjectStore, client analyzer.Client) *Handler {
	return &Handler{Docs: docs, Store: store, Analyzer: client}
}

// RegisterRoutes attaches the query route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/query", h.query)
}

// queryRequest is the validated request schema. The document is addressed by
// id, never by a raw server path.
type queryRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
	InputField string `json:"inputField"`
	UserQuery  string `json:"userQuery"`
}

func (h *Handler) query(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "documentId is required", nil)
		return
	}
	if req.InputField == "" && req.UserQuery == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "inputField or userQuery is required", nil)
		return
	}

	doc, err := h.Docs.GetOwned(c.Request.Context(), userID, req.DocumentID)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, documents.ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "not the document owner", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to run query", nil)
		}
		return
	}

	path, err := h.Store.Path(doc.StorageKey)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to resolve document", nil)
		return
	}

	out, err := h.Analyzer.Analyze(c.Request.Context(), analyzer.Input{
		DocumentPath: path,
		Keyword:      req.InputField,
		Query:        req.UserQuery,
	})
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "collaborator_error", "analysis pipeline failed", err.Error())
		return
	}

	c.Set("documentId", doc.ID)
	respond.JSON(c, http.StatusOK, gin.H{
		"documentId": doc.ID,
		"answer":     out.Summary,
		"log":        documents.TruncateLog(out.Log),
	})
}
