package tokenstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemory_SaveLoadClear(t *testing.T) {
	store := NewMemory()

	if _, ok := store.Load(); ok {
		t.Fatal("empty store should report no pair")
	}

	pair := Pair{Access: "A1", Refresh: "R1"}
	if err := store.Save(pair); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, ok := store.Load()
	if !ok {
		t.Fatal("expected a stored pair")
	}
	if got != pair {
		t.Errorf("unexpected pair: %+v", got)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if got, ok := store.Load(); ok || got.Access != "" || got.Refresh != "" {
		t.Errorf("clear left residual state: %+v", got)
	}
}

func TestMemory_Subscribe(t *testing.T) {
	store := NewMemory()

	calls := 0
	cancel := store.Subscribe(func() { calls++ })

	store.Save(Pair{Access: "a", Refresh: "r"})
	store.Clear()

	if calls != 2 {
		t.Errorf("expected 2 notifications, got %d", calls)
	}

	cancel()
	store.Save(Pair{Access: "a", Refresh: "r"})
	if calls != 2 {
		t.Errorf("cancelled subscription still notified, calls=%d", calls)
	}
}

func TestFile_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")

	store, err := NewFile(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	pair := Pair{Access: "A1", Refresh: "R1"}
	if err := store.Save(pair); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Verify restrictive permissions on the credentials file.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat token file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file permissions = %o, want 600", perm)
	}

	// Reopen simulates a process restart.
	reopened, err := NewFile(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	got, ok := reopened.Load()
	if !ok || got != pair {
		t.Errorf("reopened store pair = %+v (ok=%v), want %+v", got, ok, pair)
	}
}

func TestFile_ClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")

	store, err := NewFile(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Save(Pair{Access: "a", Refresh: "r"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("token file still exists after clear")
	}
	if _, ok := store.Load(); ok {
		t.Error("store still reports a pair after clear")
	}
}

func TestFile_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store, err := NewFile(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, ok := store.Load(); ok {
		t.Error("corrupt file should load as logged out")
	}
}
