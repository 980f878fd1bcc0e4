package ticket

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/models"
	"github.com/xaenox/aidesk/internal/translate"
)

type mockTranslator struct {
	err error
}

func (m *mockTranslator) Translate(ctx context.Context, text, lang string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "[" + lang + "] " + text, nil
}

func newTestMachine(t *testing.T, translatorErr error) (*Machine, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	svc := translate.NewService(&mockTranslator{err: translatorErr}, zap.NewNop())
	return NewMachine(store, svc, zap.NewNop()), store
}

func TestCreateOpensPendingTicket(t *testing.T) {
	m, store := newTestMachine(t, nil)

	created, err := m.Create(context.Background(), "my printer is on fire", "telegram", map[string]string{"chat_id": "42"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" {
		t.Error("ticket must be assigned an id")
	}
	if created.Status != models.StatusPending {
		t.Errorf("new ticket must be pending, got %s", created.Status)
	}
	if created.Result.Action != models.ActionEscalate {
		t.Errorf("new ticket must record escalation, got %s", created.Result.Action)
	}

	stored, err := store.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("ticket not persisted: %v", err)
	}
	if stored.ContactInfo["chat_id"] != "42" {
		t.Errorf("contact info must survive persistence, got %v", stored.ContactInfo)
	}
}

func TestCreateTranslatesIntoAllSlots(t *testing.T) {
	m, _ := newTestMachine(t, nil)

	created, err := m.Create(context.Background(), "hello", "email", nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for _, lang := range []string{"en", "ru", "kk"} {
		if created.Translations[lang] != "["+lang+"] hello" {
			t.Errorf("missing %s translation, got %v", lang, created.Translations)
		}
	}
}

func TestCreateSurvivesTranslatorFailure(t *testing.T) {
	m, _ := newTestMachine(t, errors.New("provider down"))

	created, err := m.Create(context.Background(), "hello", "email", nil)
	if err != nil {
		t.Fatalf("translator failure must not block creation: %v", err)
	}
	for _, lang := range []string{"en", "ru", "kk"} {
		if created.Translations[lang] != "hello" {
			t.Errorf("failed slot must fall back to source text, got %v", created.Translations)
		}
	}
}

func TestResolveTransitionsToResolved(t *testing.T) {
	m, store := newTestMachine(t, nil)

	created, err := m.Create(context.Background(), "question", "telegram", nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	resolved, err := m.Resolve(context.Background(), created.ID, "here is the answer")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Status != models.StatusResolved {
		t.Errorf("expected resolved status, got %s", resolved.Status)
	}
	if resolved.Result.Action != models.ActionOperatorReply {
		t.Errorf("expected operator_reply action, got %s", resolved.Result.Action)
	}
	if resolved.Result.Response != "here is the answer" {
		t.Errorf("reply must be recorded, got %q", resolved.Result.Response)
	}

	stored, _ := store.GetByID(context.Background(), created.ID)
	if stored.Status != models.StatusResolved {
		t.Error("resolution must be persisted")
	}
}

func TestResolveIsTerminal(t *testing.T) {
	m, _ := newTestMachine(t, nil)

	created, _ := m.Create(context.Background(), "question", "telegram", nil)
	if _, err := m.Resolve(context.Background(), created.ID, "first reply"); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}

	_, err := m.Resolve(context.Background(), created.ID, "second reply")
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("second resolve must fail with ErrAlreadyResolved, got %v", err)
	}
}

func TestResolveMissingTicket(t *testing.T) {
	m, _ := newTestMachine(t, nil)
	if _, err := m.Resolve(context.Background(), "no-such-id", "reply"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPendingListsOnlyOpenTickets(t *testing.T) {
	m, _ := newTestMachine(t, nil)

	first, _ := m.Create(context.Background(), "one", "telegram", nil)
	second, _ := m.Create(context.Background(), "two", "telegram", nil)
	if err := m.Log(context.Background(), "spam", "telegram", models.TicketResult{Action: models.ActionIgnore}); err != nil {
		t.Fatalf("log failed: %v", err)
	}
	if _, err := m.Resolve(context.Background(), first.ID, "done"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	pending, err := m.Pending(context.Background())
	if err != nil {
		t.Fatalf("pending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Errorf("expected only the unresolved ticket, got %v", pending)
	}
}

func TestLogRecordsResolvedEntry(t *testing.T) {
	m, store := newTestMachine(t, nil)

	err := m.Log(context.Background(), "how do I reset?", "playground", models.TicketResult{
		Action:   models.ActionAutoReply,
		Response: "hold the button",
	})
	if err != nil {
		t.Fatalf("log failed: %v", err)
	}

	all, _ := store.All(context.Background())
	if len(all) != 1 {
		t.Fatalf("expected one log entry, got %d", len(all))
	}
	if all[0].Status != models.StatusResolved {
		t.Errorf("logged entries must be resolved, got %s", all[0].Status)
	}
}
