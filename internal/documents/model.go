package documents

import "time"

// Analysis status values. Transitions are monotonic:
// uploaded -> running -> done|failed, with no way back out of a final state.
const (
	StatusUploaded = "uploaded"
	StatusRunning  = "running"
	StatusDone     = "done"
	StatusFailed   = "failed"
)

// Document tracks one uploaded file and its analysis lifecycle.
type Document struct {
	ID          string
	OwnerID     string
	FileName    string
	StorageKey  string
	Status      string
	Summary     string
	RunLog      string
	ErrorText   string
	UploadedAt  time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// IsFinal reports whether the document reached a terminal analysis state.
func (d Document) IsFinal() bool {
	return d.Status == StatusDone || d.Status == StatusFailed
}
