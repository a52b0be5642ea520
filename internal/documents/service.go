package documents

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"findoc-backend/internal/shared/storage/object"
	"findoc-backend/internal/shared/telemetry"
)

// Service contains business logic for documents.
type Service struct {
	Store object.ObjectStore
	Repo  Repo
}

// Upload validates the file type, streams the bytes to storage, and records
// the document with status uploaded. Only PDF uploads are accepted.
func (s *Service) Upload(ctx context.Context, ownerID, fileName string, r io.Reader) (Document, error) {
	if ownerID == "" {
		return Document{}, errors.New("owner id required")
	}
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}
	if !strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		return Document{}, ErrUnsupportedType
	}

	storageKey, size, _, err := s.Store.Save(ctx, ownerID, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		FileName:   fileName,
		StorageKey: storageKey,
		Status:     StatusUploaded,
		UploadedAt: time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		telemetry.Error("document.create_failed", map[string]any{
			"storage_key": storageKey,
			"size_bytes":  size,
			"error":       err.Error(),
		})
		return Document{}, err
	}

	return doc, nil
}

// List returns the owner's documents, newest upload first.
func (s *Service) List(ctx context.Context, ownerID string) ([]Document, error) {
	if ownerID == "" {
		return nil, errors.New("owner id required")
	}
	return s.Repo.ListByOwner(ctx, ownerID)
}

// GetOwned fetches a document and enforces ownership: unknown ids are
// ErrNotFound, someone else's document is ErrForbidden.
func (s *Service) GetOwned(ctx context.Context, callerID, documentID string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.OwnerID != callerID {
		return Document{}, ErrForbidden
	}
	return doc, nil
}
