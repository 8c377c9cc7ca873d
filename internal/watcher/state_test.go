package watcher

import (
	"context"
	"path/filepath"
	"testing"
)

func TestFileStateStoreRoundTrip(t *testing.T) {
	store := &FileStateStore{Path: filepath.Join(t.TempDir(), "state.json")}
	ctx := context.Background()

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("fresh store: got ok=%v err=%v, want absent", ok, err)
	}

	if err := store.Save(ctx, 1756100000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ts, ok, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || ts != 1756100000 {
		t.Fatalf("load: got ts=%d ok=%v, want 1756100000", ts, ok)
	}
}

func TestFileStateStoreEmptyPath(t *testing.T) {
	store := &FileStateStore{}
	ctx := context.Background()

	if err := store.Save(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("empty path store should act as a no-op, got ok=%v err=%v", ok, err)
	}
}
