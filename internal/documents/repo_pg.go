package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    owner_id,
    file_name,
    storage_key,
    status,
    uploaded_at
) VALUES ($1, $2, $3, $4, $5, $6)`

	status := doc.Status
	if status == "" {
		status = StatusUploaded
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OwnerID,
		doc.FileName,
		doc.StorageKey,
		status,
		doc.UploadedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	const query = `
SELECT id, owner_id, file_name, storage_key, status, summary, run_log, error_text, uploaded_at, started_at, completed_at
FROM documents
WHERE id = $1
LIMIT 1`
	var doc Document
	var summary, runLog, errorText sql.NullString
	var startedAt, completedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, documentID).Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.FileName,
		&doc.StorageKey,
		&doc.Status,
		&summary,
		&runLog,
		&errorText,
		&doc.UploadedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if summary.Valid {
		doc.Summary = summary.String
	}
	if runLog.Valid {
		doc.RunLog = runLog.String
	}
	if errorText.Valid {
		doc.ErrorText = errorText.String
	}
	if startedAt.Valid {
		doc.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		doc.CompletedAt = &completedAt.Time
	}
	return doc, nil
}

// ListByOwner lists documents for an owner, newest upload first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	const query = `
SELECT id, owner_id, file_name, storage_key, status, summary, run_log, error_text, uploaded_at, started_at, completed_at
FROM documents
WHERE owner_id = $1
ORDER BY uploaded_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		var summary, runLog, errorText sql.NullString
		var startedAt, completedAt sql.NullTime
		if err := rows.Scan(
			&doc.ID,
			&doc.OwnerID,
			&doc.FileName,
			&doc.StorageKey,
			&doc.Status,
			&summary,
			&runLog,
			&errorText,
			&doc.UploadedAt,
			&startedAt,
			&completedAt,
		); err != nil {
			return nil, err
		}
		if summary.Valid {
			doc.Summary = summary.String
		}
		if runLog.Valid {
			doc.RunLog = runLog.String
		}
		if errorText.Valid {
			doc.ErrorText = errorText.String
		}
		if startedAt.Valid {
			doc.StartedAt = &startedAt.Time
		}
		if completedAt.Valid {
			doc.CompletedAt = &completedAt.Time
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// UpdateStatus applies a partial merge of analysis fields. Owner and storage
// key are not part of the statement and can never be overwritten here.
func (r *PGRepo) UpdateStatus(ctx context.Context, documentID string, update StatusUpdate) error {
	const query = `
UPDATE documents
SET status       = COALESCE($1, status),
    summary      = COALESCE($2, summary),
    run_log      = COALESCE($3, run_log),
    error_text   = COALESCE($4, error_text),
    started_at   = COALESCE($5, started_at),
    completed_at = COALESCE($6, completed_at)
WHERE id = $7`
	res, err := r.DB.ExecContext(
		ctx,
		query,
		update.Status,
		update.Summary,
		update.RunLog,
		update.ErrorText,
		update.StartedAt,
		update.CompletedAt,
		documentID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
