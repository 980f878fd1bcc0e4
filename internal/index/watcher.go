package index

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher monitors a knowledge-base directory and keeps the index in
// sync: new or modified files are enqueued for ingestion, removed files
// are deleted from the index by their filename.
type Watcher struct {
	dir     string
	queue   *Queue
	indexer *Indexer
	fsw     *fsnotify.Watcher
	logger  *zap.Logger
}

func NewWatcher(dir string, queue *Queue, indexer *Indexer, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{dir: dir, queue: queue, indexer: indexer, fsw: fsw, logger: logger}, nil
}

// Run processes filesystem events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()
	w.logger.Info("watching knowledge directory", zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	source := filepath.Base(event.Name)

	switch {
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		w.queue.Submit(Job{Path: event.Name, Source: source})
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		if err := w.indexer.Delete(ctx, source); err != nil {
			w.logger.Error("failed to remove document from index",
				zap.Error(err), zap.String("source", source))
		}
	}
}
