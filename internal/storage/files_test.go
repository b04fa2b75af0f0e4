package storage

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
)

func TestObjectPath(t *testing.T) {
	userID := uuid.New()

	path, err := ObjectPath(userID, "screenshots", "eod-2026-03-10.jpg")
	if err != nil {
		t.Fatal(err)
	}
	want := userID.String() + "/screenshots/eod-2026-03-10.jpg"
	if path != want {
		t.Fatalf("expected %q, got %q", want, path)
	}
}

func TestObjectPathRejectsTraversal(t *testing.T) {
	userID := uuid.New()
	bad := []string{
		"../secret.jpg",
		"..",
		"a/../b.jpg",
		"nested/file.jpg",
		`windows\style.jpg`,
		"",
	}
	for _, name := range bad {
		if _, err := ObjectPath(userID, "screenshots", name); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("expected %q to be rejected, got %v", name, err)
		}
	}
	if _, err := ObjectPath(userID, "../screenshots", "ok.jpg"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected traversal kind segment to be rejected")
	}
}

func TestUploadAndOpen(t *testing.T) {
	store := NewFileStore(t.TempDir())
	userID := uuid.New()

	path, err := ObjectPath(userID, "documents", "license.pdf")
	if err != nil {
		t.Fatal(err)
	}
	stored, err := store.Upload(path, bytes.NewReader([]byte("content")))
	if err != nil {
		t.Fatal(err)
	}
	if stored != path {
		t.Fatalf("expected stored path %q, got %q", path, stored)
	}

	f, err := store.Open(stored)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "content" {
		t.Fatalf("round trip mismatch: %q", data)
	}
}

func TestUploadRejectsTraversalPath(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if _, err := store.Upload("../outside.txt", bytes.NewReader(nil)); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected traversal rejection, got %v", err)
	}
	if _, err := store.Open("../outside.txt"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected traversal rejection on open, got %v", err)
	}
}
