package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"findoc-backend/internal/analyzer"
	"findoc-backend/internal/documents"
	"findoc-backend/internal/queue"
	"findoc-backend/internal/shared/metrics"
	"findoc-backend/internal/shared/storage/object"
	"findoc-backend/internal/shared/telemetry"
)

var (
	// ErrAlreadyRunning is returned when an analysis is already in flight.
	ErrAlreadyRunning = errors.New("analysis already running")
	// ErrAlreadyFinished is returned for documents in a terminal state;
	// done/failed documents never re-enter running.
	ErrAlreadyFinished = errors.New("analysis already finished")
)

const (
	completionWriteAttempts = 3
	completionWriteBackoff  = 250 * time.Millisecond
)

// Runner owns the asynchronous analysis lifecycle: it accepts schedule
// requests on the request path and processes the resulting queue messages off
// it. Failures in processing never propagate to any caller; they end up in
// the document's failed status and log.
type Runner struct {
	Docs     documents.Repo
	Store    object.ObjectStore
	Analyzer analyzer.Client
	Queue    queue.Client
}

// Schedule validates ownership and state, synchronously marks the document
// running, and enqueues the background run. It does not wait for completion.
//
// Two concurrent calls can both pass the state check before either write
// lands; that window is accepted (last write wins) rather than locked away.
func (r *Runner) Schedule(ctx context.Context, documentID, callerID, keyword, query, requestID string) (documents.Document, error) {
	doc, err := r.Docs.GetByID(ctx, documentID)
	if err != nil {
		return documents.Document{}, err
	}
	if doc.OwnerID != callerID {
		return documents.Document{}, documents.ErrForbidden
	}
	if doc.Status == documents.StatusRunning {
		return documents.Document{}, ErrAlreadyRunning
	}
	if doc.IsFinal() {
		return documents.Document{}, ErrAlreadyFinished
	}

	startedAt := time.Now().UTC()
	running := documents.StatusRunning
	if err := r.Docs.UpdateStatus(ctx, documentID, documents.StatusUpdate{
		Status:    &running,
		StartedAt: &startedAt,
	}); err != nil {
		return documents.Document{}, err
	}

	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestID,
		"user_id":           callerID,
		"document_id":       documentID,
		"status":            documents.StatusRunning,
		"status_transition": "uploaded->running",
	})
	metrics.IncAnalysisStarted()

	msg := queue.Message{
		DocumentID: documentID,
		Keyword:    keyword,
		Query:      query,
		RequestID:  requestID,
		EnqueuedAt: startedAt.Format(time.RFC3339),
		Version:    1,
	}
	if err := r.Queue.Send(ctx, msg); err != nil {
		r.markFailed(context.Background(), documentID, fmt.Errorf("enqueue: %w", err), "", &startedAt, requestID)
		return documents.Document{}, err
	}

	doc.Status = documents.StatusRunning
	doc.StartedAt = &startedAt
	return doc, nil
}

// Process runs one analysis to completion. It is the queue handler and runs
// outside any request; errors are swallowed into the document record.
func (r *Runner) Process(ctx context.Context, msg queue.Message) {
	startedAt := time.Now().UTC()
	defer func() {
		if rec := recover(); rec != nil {
			r.markFailed(ctx, msg.DocumentID, fmt.Errorf("panic: %v", rec), "", &startedAt, msg.RequestID)
		}
	}()

	doc, err := r.Docs.GetByID(ctx, msg.DocumentID)
	if err != nil {
		r.markFailed(ctx, msg.DocumentID, fmt.Errorf("document lookup: %w", err), "", &startedAt, msg.RequestID)
		return
	}
	if doc.StartedAt != nil {
		startedAt = *doc.StartedAt
	}

	path, err := r.Store.Path(doc.StorageKey)
	if err != nil {
		r.markFailed(ctx, msg.DocumentID, fmt.Errorf("resolve storage key: %w", err), "", &startedAt, msg.RequestID)
		return
	}

	out, err := r.Analyzer.Analyze(ctx, analyzer.Input{
		DocumentPath: path,
		Keyword:      msg.Keyword,
		Query:        msg.Query,
	})
	if err != nil {
		r.markFailed(ctx, msg.DocumentID, err, out.Log, &startedAt, msg.RequestID)
		return
	}

	completedAt := time.Now().UTC()
	done := documents.StatusDone
	update := documents.StatusUpdate{
		Status:      &done,
		Summary:     &out.Summary,
		RunLog:      &out.Log,
		CompletedAt: &completedAt,
	}
	if r.writeCompletion(msg.DocumentID, update) {
		metrics.IncAnalysisCompleted()
		metrics.ObserveAnalysisDurationMs(durationMs(startedAt, completedAt))
		telemetry.Info("analysis.status", map[string]any{
			"request_id":        msg.RequestID,
			"user_id":           doc.OwnerID,
			"document_id":       msg.DocumentID,
			"status":            documents.StatusDone,
			"status_transition": "running->done",
			"duration_ms":       durationMs(startedAt, completedAt),
		})
	}
}

func (r *Runner) markFailed(ctx context.Context, documentID string, cause error, runLog string, startedAt *time.Time, requestID string) {
	_ = ctx
	completedAt := time.Now().UTC()
	failed := documents.StatusFailed
	errText := cause.Error()
	update := documents.StatusUpdate{
		Status:      &failed,
		ErrorText:   &errText,
		CompletedAt: &completedAt,
	}
	if runLog != "" {
		update.RunLog = &runLog
	}
	if r.writeCompletion(documentID, update) {
		metrics.IncAnalysisFailed()
		if startedAt != nil {
			metrics.ObserveAnalysisDurationMs(durationMs(*startedAt, completedAt))
		}
	}
	telemetry.Error("analysis.failed", map[string]any{
		"request_id":  requestID,
		"document_id": documentID,
		"error":       errText,
	})
}

// writeCompletion persists the final status with a bounded retry. If every
// attempt fails the event is logged and counted; the document stays in its
// previous status (most likely running) with no user-visible signal beyond
// that. No reconciliation sweep re-flags such documents.
func (r *Runner) writeCompletion(documentID string, update documents.StatusUpdate) bool {
	var lastErr error
	for attempt := 1; attempt <= completionWriteAttempts; attempt++ {
		// Fresh context: the scheduling request is long gone.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		lastErr = r.Docs.UpdateStatus(ctx, documentID, update)
		cancel()
		if lastErr == nil {
			return true
		}
		metrics.IncCompletionWriteRetry()
		time.Sleep(completionWriteBackoff * time.Duration(attempt))
	}
	metrics.IncCompletionWriteLost()
	telemetry.Error("analysis.completion_write_lost", map[string]any{
		"document_id": documentID,
		"error":       lastErr.Error(),
	})
	return false
}

func durationMs(startedAt, completedAt time.Time) float64 {
	return float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0
}
