package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestCleanStoragePath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"pdf/2020/01/01/a.pdf", "pdf/2020/01/01/a.pdf", false},
		{"/pdf/2020/a.pdf", "pdf/2020/a.pdf", false},
		{"pdf/./2020//a.pdf", "pdf/2020/a.pdf", false},
		{"../etc/passwd", "", true},
		{"pdf/../../secret", "", true},
		{"  ", "", true},
	}
	for _, tt := range tests {
		got, err := CleanStoragePath(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("CleanStoragePath(%q) = %q, want error", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("CleanStoragePath(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestLocalStorage(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "pdf", "2020"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pdf", "2020", "a.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := NewStorage(StorageConfig{Type: StorageTypeLocal, LocalPath: dir})
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	ctx := context.Background()

	ok, err := store.Exists(ctx, "/pdf/2020/a.pdf")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v; want true", ok, err)
	}
	ok, err = store.Exists(ctx, "pdf/2020/b.pdf")
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v; want false", ok, err)
	}

	rc, err := store.Download(ctx, "pdf/2020/a.pdf")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "%PDF-1.4" {
		t.Errorf("Download = %q", data)
	}

	if _, err := store.Download(ctx, "pdf/2020/b.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Download(missing) err = %v, want ErrNotFound", err)
	}
	if _, err := store.Download(ctx, "../outside"); err == nil {
		t.Error("Download escaped the storage root")
	}
}

func TestNewStorageErrors(t *testing.T) {
	if _, err := NewStorage(StorageConfig{Type: StorageTypeLocal, LocalPath: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("want error for missing local directory")
	}
	if _, err := NewStorage(StorageConfig{Type: StorageTypeS3}); err == nil {
		t.Error("want error for S3 without bucket")
	}
	if _, err := NewStorage(StorageConfig{Type: "ftp"}); err == nil {
		t.Error("want error for unknown type")
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"pdf/2020/a.pdf": "application/pdf",
		"a.txt":          "text/plain",
		"a.htm":          "text/html",
		"a.xml":          "application/xml",
		"a.bin":          "application/octet-stream",
		"a.docx":         "application/octet-stream",
	}
	for name, want := range tests {
		if got := ContentType(name); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", name, got, want)
		}
	}
}
