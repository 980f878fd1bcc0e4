// Package translate renders ticket text into the operator-facing
// languages on a best-effort basis.
package translate

import (
	"context"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/llm"
)

// TargetLanguages are the fixed operator-facing translation slots.
var TargetLanguages = []string{"en", "ru", "kk"}

// Service translates ticket text into every target language. Failure is
// non-fatal: the untranslated text fills every slot that could not be
// translated, and ticket creation never blocks on a translator error.
type Service struct {
	translator llm.Translator
	logger     *zap.Logger
}

func NewService(translator llm.Translator, logger *zap.Logger) *Service {
	return &Service{translator: translator, logger: logger}
}

// TranslateAll fills every target slot, falling back to the source text
// per slot when translation fails.
func (s *Service) TranslateAll(ctx context.Context, text string) map[string]string {
	out := make(map[string]string, len(TargetLanguages))
	for _, lang := range TargetLanguages {
		translated, err := s.translator.Translate(ctx, text, lang)
		if err != nil {
			s.logger.Warn("translation failed, using source text",
				zap.Error(err), zap.String("lang", lang))
			out[lang] = text
			continue
		}
		out[lang] = translated
	}
	return out
}
