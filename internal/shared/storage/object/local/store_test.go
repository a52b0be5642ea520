package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundtrip(t *testing.T) {
	store := New(t.TempDir())
	content := []byte("%PDF-1.4 test content")

	key, size, mimeType, err := store.Save(context.Background(), "user-1", "statement.pdf", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len(content)) {
		t.Fatalf("size: got %d, want %d", size, len(content))
	}
	if mimeType == "" {
		t.Fatalf("expected detected mime type")
	}
	if !strings.HasSuffix(key, "_statement.pdf") {
		t.Fatalf("unexpected key format: %q", key)
	}

	f, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	got, _ := io.ReadAll(f)
	if !bytes.Equal(got, content) {
		t.Fatalf("content mismatch")
	}
}

func TestSaveKeysAreUniquePerUpload(t *testing.T) {
	store := New(t.TempDir())
	k1, _, _, err := store.Save(context.Background(), "user-1", "same.pdf", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	k2, _, _, err := store.Save(context.Background(), "user-1", "same.pdf", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if k1 == k2 {
		t.Fatalf("expected unique keys, both %q", k1)
	}
}

func TestSaveNamespacesUsers(t *testing.T) {
	store := New(t.TempDir())
	k1, _, _, _ := store.Save(context.Background(), "user-1", "a.pdf", strings.NewReader("x"))
	k2, _, _, _ := store.Save(context.Background(), "user-2", "a.pdf", strings.NewReader("x"))

	dir1 := filepath.Dir(k1)
	dir2 := filepath.Dir(k2)
	if dir1 == dir2 {
		t.Fatalf("expected per-user directories, both %q", dir1)
	}
	// The namespace is a digest, not the raw user id.
	if strings.Contains(k1, "user-1") {
		t.Fatalf("raw user id leaked into key: %q", k1)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("stream broke")
}

func TestSaveFailureLeavesNothingBehind(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	// A reader that fails mid-stream: first a valid sniff chunk, then an error.
	r := io.MultiReader(strings.NewReader(strings.Repeat("x", 600)), failingReader{})
	if _, _, _, err := store.Save(context.Background(), "user-1", "broken.pdf", r); err == nil {
		t.Fatalf("expected save to fail")
	}

	var leftover []string
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			leftover = append(leftover, path)
		}
		return nil
	})
	if len(leftover) != 0 {
		t.Fatalf("failed save left files: %v", leftover)
	}
}

func TestSaveRejectsTraversalNames(t *testing.T) {
	store := New(t.TempDir())
	if _, _, _, err := store.Save(context.Background(), "user-1", "../escape.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal name to be rejected")
	}
}

func TestPathRejectsTraversalKeys(t *testing.T) {
	store := New(t.TempDir())
	for _, key := range []string{"../outside", "/etc/passwd", "ns/../../outside"} {
		if _, err := store.Path(key); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}
