package vectorstore

import (
	"context"
	"sort"
	"sync"

	"github.com/xaenox/aidesk/internal/models"
)

// MemoryStore is a brute-force in-memory vector store.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks []models.Chunk
	byID   map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

func (s *MemoryStore) Upsert(ctx context.Context, chunks []models.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if i, ok := s.byID[c.ID]; ok {
			s.chunks[i] = c
			continue
		}
		s.byID[c.ID] = len(s.chunks)
		s.chunks = append(s.chunks, c)
	}
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, vector []float32, topK int) ([]models.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 {
		topK = 5
	}

	results := make([]models.SearchResult, 0, len(s.chunks))
	for _, c := range s.chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		results = append(results, models.SearchResult{
			Chunk: c,
			Score: cosineSimilarity(c.Embedding, vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *MemoryStore) All(ctx context.Context) ([]models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

func (s *MemoryStore) DeleteBySource(ctx context.Context, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0]
	removed := 0
	for _, c := range s.chunks {
		if c.Source == source {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.chunks = kept

	s.byID = make(map[string]int, len(s.chunks))
	for i, c := range s.chunks {
		s.byID[c.ID] = i
	}
	return removed, nil
}

func (s *MemoryStore) Close() error { return nil }
