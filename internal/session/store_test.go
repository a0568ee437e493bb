package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smileynet/taigaterm/internal/taiga"
)

func TestFileStore_SaveAndLoad(t *testing.T) {
	// Given a session to persist
	path := filepath.Join(t.TempDir(), "taigaterm", "session.yaml")
	store := NewFileStore(path)
	store.now = func() time.Time { return time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) }
	auth := taiga.Auth{ID: 5, Username: "admin", FullName: "Administrator", AuthToken: "tok"}

	// When Save is called
	if err := store.Save(FromAuth("https://taiga.example.com", auth)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Then Load returns the same session for that host
	loaded, found, err := store.Load("https://taiga.example.com")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !found {
		t.Fatal("Load() found = false, want true")
	}
	if loaded.Auth() != auth {
		t.Errorf("Auth() = %+v, want %+v", loaded.Auth(), auth)
	}
	if !loaded.SavedAt.Equal(time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("SavedAt = %v", loaded.SavedAt)
	}
}

func TestFileStore_FileIsPrivate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	store := NewFileStore(path)

	if err := store.Save(Session{Host: "h", AuthToken: "tok"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissions = %o, want 600", perm)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Error("temporary file left behind")
	}
}

func TestFileStore_LoadNotFound(t *testing.T) {
	// Given an empty directory
	store := NewFileStore(filepath.Join(t.TempDir(), "session.yaml"))

	// When Load is called
	_, found, err := store.Load("h")

	// Then found is false with no error
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if found {
		t.Error("Load() found = true, want false")
	}
}

func TestFileStore_LoadOtherHost(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.yaml"))
	if err := store.Save(Session{Host: "https://a.example.com", AuthToken: "tok"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	_, found, err := store.Load("https://b.example.com")

	if err != nil || found {
		t.Errorf("Load(other host) = found %v, err %v; want not found", found, err)
	}
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(path, []byte("host: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, _, err := NewFileStore(path).Load("h")

	if err == nil {
		t.Fatal("Load() should fail on invalid YAML")
	}
}

func TestFileStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	store := NewFileStore(path)
	if err := store.Save(Session{Host: "h", AuthToken: "tok"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("session file still exists after Clear")
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestFileStore_Guards(t *testing.T) {
	if err := NewFileStore("").Save(Session{AuthToken: "tok"}); !errors.Is(err, ErrNoPath) {
		t.Errorf("Save without path error = %v, want ErrNoPath", err)
	}
	if err := NewFileStore(filepath.Join(t.TempDir(), "s.yaml")).Save(Session{Host: "h"}); err == nil {
		t.Error("Save without token should fail")
	}
	if _, found, err := NewFileStore("").Load("h"); found || err != nil {
		t.Errorf("Load without path = %v, %v", found, err)
	}
}
