package index

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Job is one document waiting to be indexed. When Temporary is set the
// job owns the file at Path and removes it once processing finishes,
// whether or not ingestion succeeded.
type Job struct {
	Path      string
	Source    string
	Temporary bool
}

// Queue runs ingestion jobs on a fixed pool of workers. Jobs are
// independent units of work with no ordering guarantee across documents.
type Queue struct {
	indexer *Indexer
	jobs    chan Job
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	logger  *zap.Logger
}

func NewQueue(indexer *Indexer, workers int, logger *zap.Logger) *Queue {
	if workers <= 0 {
		workers = 4
	}
	q := &Queue{
		indexer: indexer,
		jobs:    make(chan Job, workers*4),
		logger:  logger,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Submit enqueues a job for background processing. Jobs submitted after
// Shutdown are dropped, and dropped temporary files are still removed.
func (q *Queue) Submit(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue is shut down, dropping job", zap.String("source", job.Source))
		if job.Temporary {
			q.removeTemp(job.Path)
		}
		return
	}
	q.jobs <- job
}

// Shutdown stops accepting jobs and waits for in-flight work to drain.
// It is safe to call more than once.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.process(job)
	}
}

func (q *Queue) process(job Job) {
	if job.Temporary {
		defer q.removeTemp(job.Path)
	}

	content, err := os.ReadFile(job.Path)
	if err != nil {
		q.logger.Error("failed to read document",
			zap.Error(err), zap.String("path", job.Path), zap.String("source", job.Source))
		return
	}

	if _, err := q.indexer.Ingest(context.Background(), string(content), job.Source); err != nil {
		q.logger.Error("failed to index document",
			zap.Error(err), zap.String("source", job.Source))
	}
}

func (q *Queue) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		q.logger.Warn("failed to remove temp file",
			zap.Error(err), zap.String("path", path))
	}
}
