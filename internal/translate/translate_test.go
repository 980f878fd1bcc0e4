package translate

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type mockTranslator struct {
	failLangs map[string]bool
}

func (m *mockTranslator) Translate(ctx context.Context, text, lang string) (string, error) {
	if m.failLangs[lang] {
		return "", errors.New("provider down")
	}
	return lang + ": " + text, nil
}

func TestTranslateAllFillsEverySlot(t *testing.T) {
	s := NewService(&mockTranslator{}, zap.NewNop())

	got := s.TranslateAll(context.Background(), "hello")
	if len(got) != len(TargetLanguages) {
		t.Fatalf("expected %d slots, got %d", len(TargetLanguages), len(got))
	}
	for _, lang := range TargetLanguages {
		if got[lang] != lang+": hello" {
			t.Errorf("slot %s: got %q", lang, got[lang])
		}
	}
}

func TestTranslateAllPerSlotFallback(t *testing.T) {
	s := NewService(&mockTranslator{failLangs: map[string]bool{"ru": true}}, zap.NewNop())

	got := s.TranslateAll(context.Background(), "hello")
	if got["ru"] != "hello" {
		t.Errorf("failed slot must fall back to the source text, got %q", got["ru"])
	}
	if got["en"] != "en: hello" || got["kk"] != "kk: hello" {
		t.Errorf("other slots must still translate, got %v", got)
	}
}
