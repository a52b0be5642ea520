package documents_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"findoc-backend/internal/bootstrap"
	"findoc-backend/internal/documents"
	"findoc-backend/internal/shared/config"
)

func newTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	app, err := bootstrap.Build(config.Config{
		Env:             "dev",
		LocalStoreDir:   t.TempDir(),
		MaxUploadMB:     5,
		JWTSecret:       "test-secret",
		JWTAlgorithm:    "HS256",
		TokenTTL:        time.Hour,
		AllowedUsers:    []string{"alice", "bob"},
		EnforcePassword: true,
	})
	if err != nil {
		t.Fatalf("bootstrap.Build: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func registerUser(t *testing.T, app *bootstrap.App, username string) string {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"username": username, "password": "secret"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", username, rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Token == "" {
		t.Fatalf("register %s: bad body %q", username, rec.Body.String())
	}
	return body.Token
}

func uploadFile(t *testing.T, app *bootstrap.App, token, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func getJSON(t *testing.T, app *bootstrap.App, path, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	var body map[string]any
	if strings.HasPrefix(rec.Body.String(), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec, body
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF")

func TestUploadStoresPDF(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "alice")

	rec := uploadFile(t, app, token, "statement.pdf", pdfBytes)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp documents.DocumentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.DocumentID == "" {
		t.Fatalf("missing documentId: %s", rec.Body.String())
	}
	if resp.Status != documents.StatusUploaded {
		t.Fatalf("expected status uploaded, got %q", resp.Status)
	}
	if resp.FileName != "statement.pdf" {
		t.Fatalf("unexpected fileName %q", resp.FileName)
	}

	// Stored bytes must match what was sent.
	f, err := app.Store.Open(context.Background(), resp.StoredPath)
	if err != nil {
		t.Fatalf("open stored object: %v", err)
	}
	defer f.Close()
	got, _ := io.ReadAll(f)
	if !bytes.Equal(got, pdfBytes) {
		t.Fatalf("stored bytes differ")
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "alice")

	rec := uploadFile(t, app, token, "notes.txt", []byte("plain text"))
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d: %s", rec.Code, rec.Body.String())
	}

	// No record was created for the rejected upload.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	app.Router.ServeHTTP(res, req)
	var list []documents.DocumentResponse
	if err := json.Unmarshal(res.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(list))
	}
}

func TestListReturnsOwnDocumentsNewestFirst(t *testing.T) {
	app := newTestApp(t)
	alice := registerUser(t, app, "alice")
	bob := registerUser(t, app, "bob")

	uploadFile(t, app, alice, "first.pdf", pdfBytes)
	time.Sleep(5 * time.Millisecond)
	uploadFile(t, app, alice, "second.pdf", pdfBytes)
	uploadFile(t, app, bob, "other.pdf", pdfBytes)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer "+alice)
	res := httptest.NewRecorder()
	app.Router.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var list []documents.DocumentResponse
	if err := json.Unmarshal(res.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(list))
	}
	if list[0].FileName != "second.pdf" || list[1].FileName != "first.pdf" {
		t.Fatalf("unexpected order: %s, %s", list[0].FileName, list[1].FileName)
	}
}

func TestResultsOwnershipAndExistence(t *testing.T) {
	app := newTestApp(t)
	alice := registerUser(t, app, "alice")
	bob := registerUser(t, app, "bob")

	rec := uploadFile(t, app, alice, "statement.pdf", pdfBytes)
	var doc documents.DocumentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	res, body := getJSON(t, app, "/api/v1/results/"+doc.DocumentID, alice)
	if res.Code != http.StatusOK {
		t.Fatalf("owner fetch: expected 200, got %d", res.Code)
	}
	if body["status"] != documents.StatusUploaded {
		t.Fatalf("expected status uploaded, got %v", body["status"])
	}

	res, _ = getJSON(t, app, "/api/v1/results/"+doc.DocumentID, bob)
	if res.Code != http.StatusForbidden {
		t.Fatalf("non-owner fetch: expected 403, got %d", res.Code)
	}

	res, _ = getJSON(t, app, "/api/v1/results/no-such-id", alice)
	if res.Code != http.StatusNotFound {
		t.Fatalf("unknown id: expected 404, got %d", res.Code)
	}
}

func TestResultsTruncatesLongRunLog(t *testing.T) {
	app := newTestApp(t)
	alice := registerUser(t, app, "alice")

	rec := uploadFile(t, app, alice, "statement.pdf", pdfBytes)
	var doc documents.DocumentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	longLog := strings.Repeat("x", documents.MaxLogChars+5000)
	done := documents.StatusDone
	summary := "summary"
	if err := app.DocsRepo.UpdateStatus(context.Background(), doc.DocumentID, documents.StatusUpdate{
		Status:  &done,
		Summary: &summary,
		RunLog:  &longLog,
	}); err != nil {
		t.Fatalf("seed run log: %v", err)
	}

	res, body := getJSON(t, app, "/api/v1/results/"+doc.DocumentID, alice)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	log, _ := body["log"].(string)
	if len(log) != documents.MaxLogChars {
		t.Fatalf("expected log clipped to %d chars, got %d", documents.MaxLogChars, len(log))
	}
}
