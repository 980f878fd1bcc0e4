// Package ticket owns the ticket lifecycle and the persisted ticket log.
package ticket

import (
	"context"
	"errors"

	"github.com/xaenox/aidesk/internal/models"
)

var (
	// ErrNotFound is returned when a ticket id or log index does not exist.
	ErrNotFound = errors.New("ticket not found")
	// ErrAlreadyResolved rejects any transition on a resolved ticket.
	ErrAlreadyResolved = errors.New("ticket already resolved")
)

// Store is the durable ticket/feedback log. Records are appended on
// create and updated in place on resolve or rate; individual deletion is
// not supported, only a bulk clear.
type Store interface {
	// Append adds a record to the end of the log.
	Append(ctx context.Context, t models.Ticket) error

	// GetByID returns the ticket with the given id.
	GetByID(ctx context.Context, id string) (models.Ticket, error)

	// Update replaces the stored ticket with the same id.
	Update(ctx context.Context, t models.Ticket) error

	// ListByStatus returns every record with the given status, in log order.
	ListByStatus(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error)

	// All returns the full log in order.
	All(ctx context.Context) ([]models.Ticket, error)

	// Rate sets the rating of the record at the given log index.
	Rate(ctx context.Context, index int, rating string) error

	// Clear removes every record.
	Clear(ctx context.Context) error

	Close() error
}
