package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeJobFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write job file: %v", err)
	}
	return path
}

func TestQueueProcessesSubmittedJob(t *testing.T) {
	ix, _, _ := newTestIndexer(t, 1000, 200)
	q := NewQueue(ix, 2, zap.NewNop())

	path := writeJobFile(t, "guide.txt", "router factory reset steps")
	q.Submit(Job{Path: path, Source: "guide.txt", Temporary: true})
	q.Shutdown()

	sources, err := ix.ListSources(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sources) != 1 || sources[0] != "guide.txt" {
		t.Errorf("expected guide.txt indexed, got %v", sources)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file must be removed after processing, got %v", err)
	}
}

func TestQueueSubmitAfterShutdownDropsJob(t *testing.T) {
	ix, _, _ := newTestIndexer(t, 1000, 200)
	q := NewQueue(ix, 2, zap.NewNop())
	q.Shutdown()

	path := writeJobFile(t, "late.txt", "arrived after shutdown")
	q.Submit(Job{Path: path, Source: "late.txt", Temporary: true})

	sources, err := ix.ListSources(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("dropped job must not be indexed, got %v", sources)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("dropped temporary job must remove its file, got %v", err)
	}
}

func TestQueueShutdownIsIdempotent(t *testing.T) {
	ix, _, _ := newTestIndexer(t, 1000, 200)
	q := NewQueue(ix, 1, zap.NewNop())
	q.Shutdown()
	q.Shutdown()
}
