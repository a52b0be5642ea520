package documents

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryUpdateStatusMergesPartially(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, Document{
		ID:         "doc-1",
		OwnerID:    "user-1",
		FileName:   "statement.pdf",
		StorageKey: "key",
		UploadedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	running := StatusRunning
	startedAt := time.Now().UTC()
	if err := repo.UpdateStatus(ctx, "doc-1", StatusUpdate{Status: &running, StartedAt: &startedAt}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	done := StatusDone
	summary := "the answer"
	runLog := "step 1\nstep 2"
	completedAt := time.Now().UTC()
	if err := repo.UpdateStatus(ctx, "doc-1", StatusUpdate{
		Status:      &done,
		Summary:     &summary,
		RunLog:      &runLog,
		CompletedAt: &completedAt,
	}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	doc, err := repo.GetByID(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.Status != StatusDone || doc.Summary != summary || doc.RunLog != runLog {
		t.Fatalf("merge lost fields: %+v", doc)
	}
	// StartedAt from the first update survives the second.
	if doc.StartedAt == nil || !doc.StartedAt.Equal(startedAt) {
		t.Fatalf("expected startedAt preserved, got %v", doc.StartedAt)
	}
	// Identity fields are untouchable through UpdateStatus.
	if doc.OwnerID != "user-1" || doc.StorageKey != "key" {
		t.Fatalf("identity fields changed: %+v", doc)
	}
}

func TestMemoryUpdateStatusUnknownID(t *testing.T) {
	repo := NewMemoryRepo()
	done := StatusDone
	err := repo.UpdateStatus(context.Background(), "missing", StatusUpdate{Status: &done})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTruncateLog(t *testing.T) {
	short := "short log"
	if got := TruncateLog(short); got != short {
		t.Fatalf("short log modified: %q", got)
	}
	long := make([]byte, MaxLogChars+1)
	for i := range long {
		long[i] = 'a'
	}
	if got := TruncateLog(string(long)); len(got) != MaxLogChars {
		t.Fatalf("expected %d chars, got %d", MaxLogChars, len(got))
	}
}
