package testsupport

import (
	"context"
	"testing"
	"time"

	"vidscribe/internal/config"
	"vidscribe/internal/runstore"
)

// MustOpenStore opens a runstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runstore.Store {
	t.Helper()

	store, err := runstore.Open(cfg)
	if err != nil {
		t.Fatalf("runstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRun records a running run for tests using the provided store.
func NewRun(t testing.TB, store *runstore.Store, id, videoPath string, startedAt time.Time) *runstore.Run {
	t.Helper()

	run, err := store.Begin(context.Background(), runstore.Run{ID: id, VideoPath: videoPath, StartedAt: startedAt})
	if err != nil {
		t.Fatalf("store.Begin: %v", err)
	}
	return run
}
