package tokenstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "auth"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	if err := store.Write(ctx, "file-token"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "file-token" {
		t.Errorf("Read = %q, want %q", got, "file-token")
	}

	info, err := os.Stat(store.filePath)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %04o, want 0600", perm)
	}
}

func TestFileStoreReadMissing(t *testing.T) {
	store := newTestFileStore(t)

	if _, err := store.Read(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Errorf("Read on missing file: %v, want ErrNoToken", err)
	}
}

func TestFileStoreReadInsecurePermissions(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	if err := store.Write(ctx, "file-token"); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(store.filePath, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Read(ctx); err == nil {
		t.Error("Read succeeded on world-readable token file, want error")
	}
}

func TestFileStoreClear(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	if err := store.Write(ctx, "file-token"); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Read(ctx); !errors.Is(err, ErrNoToken) {
		t.Errorf("Read after Clear: %v, want ErrNoToken", err)
	}

	// Idempotent on an already-missing file.
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}
