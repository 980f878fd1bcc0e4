package ticket

import (
	"context"
	"sync"

	"github.com/xaenox/aidesk/internal/models"
)

// MemoryStore is the in-memory ticket log, used in tests and when no
// durable backend is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	tickets []models.Ticket
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, t models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = append(s.tickets, t)
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Ticket{}, ErrNotFound
}

func (s *MemoryStore) Update(ctx context.Context, t models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID == t.ID {
			s.tickets[i] = t
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ListByStatus(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Ticket
	for _, t := range s.tickets {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) All(ctx context.Context) ([]models.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Ticket, len(s.tickets))
	copy(out, s.tickets)
	return out, nil
}

func (s *MemoryStore) Rate(ctx context.Context, index int, rating string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.tickets) {
		return ErrNotFound
	}
	s.tickets[index].Rating = rating
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = nil
	return nil
}

func (s *MemoryStore) Close() error { return nil }
