package documents

import "time"

// MaxLogChars caps the run log returned by the results endpoint, regardless
// of how much output the analysis pipeline produced.
const MaxLogChars = 20000

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID string    `json:"documentId"`
	FileName   string    `json:"fileName"`
	StoredPath string    `json:"storedPath"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ResultResponse is the analysis status/result view of a document.
type ResultResponse struct {
	DocumentID  string     `json:"documentId"`
	Status      string     `json:"status"`
	Summary     string     `json:"summary,omitempty"`
	Log         string     `json:"log,omitempty"`
	Error       string     `json:"error,omitempty"`
	StoredPath  string     `json:"storedPath"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		StoredPath: doc.StorageKey,
		Status:     doc.Status,
		UploadedAt: doc.UploadedAt,
	}
}

func toResultResponse(doc Document) ResultResponse {
	return ResultResponse{
		DocumentID:  doc.ID,
		Status:      doc.Status,
		Summary:     doc.Summary,
		Log:         TruncateLog(doc.RunLog),
		Error:       doc.ErrorText,
		StoredPath:  doc.StorageKey,
		StartedAt:   doc.StartedAt,
		CompletedAt: doc.CompletedAt,
	}
}

// TruncateLog clips a run log to MaxLogChars.
func TruncateLog(log string) string {
	if len(log) <= MaxLogChars {
		return log
	}
	return log[:MaxLogChars]
}
