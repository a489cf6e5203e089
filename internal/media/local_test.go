package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	ref, err := store.Upload(context.Background(), File{
		Name:        "poster.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("jpeg-bytes"),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if !strings.HasPrefix(ref, "/uploads/events/") {
		t.Errorf("ref = %q, want /uploads/events/ prefix", ref)
	}
	if !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("ref = %q, want .jpg suffix", ref)
	}

	path := filepath.Join(dir, strings.TrimPrefix(ref, "/uploads/"))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("stored data = %q, want %q", data, "jpeg-bytes")
	}

	if err := store.Delete(context.Background(), ref); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists after Delete")
	}
}

func TestLocalStoreRejectsNonImages(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	_, err = store.Upload(context.Background(), File{
		Name:        "notes.txt",
		ContentType: "text/plain",
		Data:        []byte("hello"),
	})
	if err != ErrNotAnImage {
		t.Errorf("Upload() error = %v, want ErrNotAnImage", err)
	}
}

func TestLocalStoreRejectsOversizedFiles(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	_, err = store.Upload(context.Background(), File{
		Name:        "huge.png",
		ContentType: "image/png",
		Data:        make([]byte, MaxFileSize+1),
	})
	if err != ErrFileTooBig {
		t.Errorf("Upload() error = %v, want ErrFileTooBig", err)
	}
}

func TestLocalStoreDeleteRejectsForeignRefs(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	for _, ref := range []string{
		"https://example.com/pic.jpg",
		"/uploads/../../etc/passwd",
		"pic.jpg",
	} {
		if err := store.Delete(context.Background(), ref); err != ErrUnknownRef {
			t.Errorf("Delete(%q) error = %v, want ErrUnknownRef", ref, err)
		}
	}
}
