package documents

import (
	"context"
	"time"
)

// StatusUpdate is a partial merge applied to a document's analysis fields.
// Nil fields are left untouched. Owner and storage key are never updatable.
type StatusUpdate struct {
	Status      *string
	Summary     *string
	RunLog      *string
	ErrorText   *string
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Document, error)
	UpdateStatus(ctx context.Context, documentID string, update StatusUpdate) error
}
