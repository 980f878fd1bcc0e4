package ticket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/models"
	"github.com/xaenox/aidesk/internal/translate"
)

// Machine owns the ticket lifecycle: pending -> resolved, one-directional
// and terminal at resolved.
type Machine struct {
	store      Store
	translator *translate.Service
	logger     *zap.Logger
}

func NewMachine(store Store, translator *translate.Service, logger *zap.Logger) *Machine {
	return &Machine{store: store, translator: translator, logger: logger}
}

// Create opens a pending ticket for an escalated or ticket-classified
// request. The text is translated best-effort into the operator
// languages; creation never fails on a translator error.
func (m *Machine) Create(ctx context.Context, text, source string, contactInfo map[string]string) (models.Ticket, error) {
	t := models.Ticket{
		ID:          uuid.New().String(),
		Text:        text,
		Source:      source,
		ContactInfo: contactInfo,
		Status:      models.StatusPending,
		Result: models.TicketResult{
			Action:   models.ActionEscalate,
			Response: "Ticket created",
		},
		CreatedAt: time.Now().UTC(),
	}

	if m.translator != nil {
		t.Translations = m.translator.TranslateAll(ctx, text)
	}

	if err := m.store.Append(ctx, t); err != nil {
		return models.Ticket{}, fmt.Errorf("create ticket: %w", err)
	}

	m.logger.Info("ticket created",
		zap.String("ticket_id", t.ID), zap.String("source", source))
	return t, nil
}

// Log appends a non-ticket record (auto-reply, spam) to the feedback log
// so analytics can see every handled request.
func (m *Machine) Log(ctx context.Context, text, source string, result models.TicketResult) error {
	t := models.Ticket{
		ID:        uuid.New().String(),
		Text:      text,
		Source:    source,
		Status:    models.StatusResolved,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.Append(ctx, t); err != nil {
		return fmt.Errorf("log request: %w", err)
	}
	return nil
}

// Resolve transitions a pending ticket to resolved with the operator's
// reply. Resolving a missing ticket is an error; a resolved ticket
// rejects any further transition.
func (m *Machine) Resolve(ctx context.Context, id, reply string) (models.Ticket, error) {
	t, err := m.store.GetByID(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if t.Status == models.StatusResolved {
		return models.Ticket{}, fmt.Errorf("resolve ticket %s: %w", id, ErrAlreadyResolved)
	}

	t.Status = models.StatusResolved
	t.Result.Response = reply
	t.Result.Action = models.ActionOperatorReply

	if err := m.store.Update(ctx, t); err != nil {
		return models.Ticket{}, fmt.Errorf("resolve ticket %s: %w", id, err)
	}

	m.logger.Info("ticket resolved", zap.String("ticket_id", id))
	return t, nil
}

// Pending lists every open ticket in log order.
func (m *Machine) Pending(ctx context.Context) ([]models.Ticket, error) {
	return m.store.ListByStatus(ctx, models.StatusPending)
}
