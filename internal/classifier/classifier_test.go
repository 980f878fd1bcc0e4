package classifier

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/models"
)

type mockStructured struct {
	result models.Classification
	err    error
	calls  int
}

func (m *mockStructured) GenerateStructured(ctx context.Context, prompt string, out any) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	*(out.(*models.Classification)) = m.result
	return nil
}

func TestClassifyValidResult(t *testing.T) {
	mock := &mockStructured{result: models.Classification{
		Type: models.TypeFAQ, Priority: models.PriorityLow, Category: "Network",
	}}
	c := New(mock, zap.NewNop())

	got := c.Classify(context.Background(), "how do I reset my router?")
	if got.Type != models.TypeFAQ || got.Priority != models.PriorityLow || got.Category != "Network" {
		t.Errorf("unexpected classification: %+v", got)
	}
}

func TestClassifyFailsOpenOnError(t *testing.T) {
	mock := &mockStructured{err: errors.New("provider down")}
	c := New(mock, zap.NewNop())

	got := c.Classify(context.Background(), "anything")
	want := models.DefaultClassification()
	if got != want {
		t.Errorf("failure must fail open to %+v, got %+v", want, got)
	}
	if mock.calls != 1 {
		t.Errorf("no retries allowed, got %d calls", mock.calls)
	}
}

func TestClassifyFailsOpenOnUnknownType(t *testing.T) {
	mock := &mockStructured{result: models.Classification{Type: "urgent-maybe"}}
	c := New(mock, zap.NewNop())

	got := c.Classify(context.Background(), "anything")
	if got != models.DefaultClassification() {
		t.Errorf("unknown type must fail open, got %+v", got)
	}
}

func TestClassifyNormalizesPartialResult(t *testing.T) {
	mock := &mockStructured{result: models.Classification{Type: models.TypeTicket, Priority: "critical!!"}}
	c := New(mock, zap.NewNop())

	got := c.Classify(context.Background(), "server room is flooding")
	if got.Type != models.TypeTicket {
		t.Errorf("valid type must be kept, got %s", got.Type)
	}
	if got.Priority != models.PriorityMedium {
		t.Errorf("invalid priority must normalize to medium, got %s", got.Priority)
	}
	if got.Category != "general" {
		t.Errorf("empty category must normalize to general, got %q", got.Category)
	}
}
