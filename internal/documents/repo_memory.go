package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document // id -> document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Document)}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.Status == "" {
		doc.Status = StatusUploaded
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

// GetByID returns a document by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// ListByOwner returns an owner's documents, newest upload first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []Document
	for _, doc := range r.data {
		if doc.OwnerID == ownerID {
			out = append(out, doc)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

// UpdateStatus applies a partial merge, mirroring the pg semantics.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, documentID string, update StatusUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[documentID]
	if !ok {
		return ErrNotFound
	}
	if update.Status != nil {
		doc.Status = *update.Status
	}
	if update.Summary != nil {
		doc.Summary = *update.Summary
	}
	if update.RunLog != nil {
		doc.RunLog = *update.RunLog
	}
	if update.ErrorText != nil {
		doc.ErrorText = *update.ErrorText
	}
	if update.StartedAt != nil {
		t := *update.StartedAt
		doc.StartedAt = &t
	}
	if update.CompletedAt != nil {
		t := *update.CompletedAt
		doc.CompletedAt = &t
	}
	r.data[documentID] = doc
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
