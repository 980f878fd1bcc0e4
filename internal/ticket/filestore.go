package ticket

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/xaenox/aidesk/internal/models"
)

// FileStore keeps the log as a single JSON document. Every mutation is a
// whole-document read-modify-write guarded by an in-process mutex; two
// processes writing the same file remain last-writer-wins, a documented
// limitation of this backend.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() ([]models.Ticket, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ticket log: %w", err)
	}

	var tickets []models.Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, fmt.Errorf("parse ticket log: %w", err)
	}
	return tickets, nil
}

func (s *FileStore) save(tickets []models.Ticket) error {
	data, err := json.MarshalIndent(tickets, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal ticket log: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write ticket log: %w", err)
	}
	return nil
}

func (s *FileStore) Append(ctx context.Context, t models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(tickets, t))
}

func (s *FileStore) GetByID(ctx context.Context, id string) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return models.Ticket{}, err
	}
	for _, t := range tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Ticket{}, ErrNotFound
}

func (s *FileStore) Update(ctx context.Context, t models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return err
	}
	for i := range tickets {
		if tickets[i].ID == t.ID {
			tickets[i] = t
			return s.save(tickets)
		}
	}
	return ErrNotFound
}

func (s *FileStore) ListByStatus(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []models.Ticket
	for _, t := range tickets {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *FileStore) All(ctx context.Context) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Rate(ctx context.Context, index int, rating string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(tickets) {
		return ErrNotFound
	}
	tickets[index].Rating = rating
	return s.save(tickets)
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear ticket log: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
