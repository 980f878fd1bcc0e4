package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
)

// SystemConfig is the runtime settings document. It is loaded at startup,
// replaced wholesale on update and persisted verbatim; individual fields
// are never mutated while a copy is in use.
type SystemConfig struct {
	LLMModel       string `json:"llm_model"`
	EmbeddingModel string `json:"embedding_model"`
	RerankerModel  string `json:"reranker_model"`
	SystemPrompt   string `json:"system_prompt"`
	Temperature    float64 `json:"temperature"`
	TopK           int     `json:"top_k"`

	MaxAnswerLength    int    `json:"max_answer_length"`
	PreferSmallAnswers bool   `json:"prefer_small_answers"`
	EnableCriticLoop   bool   `json:"enable_critic_loop"`
	StyleMethod        string `json:"style_method"`
	StyleProfile       map[string]any `json:"style_profile"`
	StyleExampleText   string         `json:"style_example_text"`

	TelegramToken   string `json:"telegram_token"`
	TelegramEnabled bool   `json:"telegram_enabled"`
	GmailEmail      string `json:"gmail_email"`
	GmailPassword   string `json:"gmail_password"`
	GmailEnabled    bool   `json:"gmail_enabled"`
}

// DefaultSystemConfig mirrors the defaults shipped with the product.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		LLMModel:        "gpt-4o-mini",
		EmbeddingModel:  "text-embedding-3-small",
		RerankerModel:   "gpt-4o-mini",
		SystemPrompt:    "You are a helpful IT support assistant.",
		Temperature:     0.7,
		TopK:            3,
		MaxAnswerLength: 200,
		StyleMethod:     "rag",
	}
}

// SystemStore owns the current SystemConfig. Readers get a consistent
// snapshot; updates install a new document atomically and persist it.
type SystemStore struct {
	path    string
	current atomic.Pointer[SystemConfig]
}

// LoadSystemStore reads the settings document from path, falling back to
// defaults when the file does not exist or cannot be parsed.
func LoadSystemStore(path string) (*SystemStore, error) {
	s := &SystemStore{path: path}

	cfg := DefaultSystemConfig()
	data, err := os.ReadFile(path)
	if err == nil {
		loaded := &SystemConfig{}
		if jsonErr := json.Unmarshal(data, loaded); jsonErr == nil {
			cfg = loaded
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	s.current.Store(cfg)
	return s, nil
}

// Current returns the live settings snapshot. The returned value must be
// treated as read-only.
func (s *SystemStore) Current() *SystemConfig {
	return s.current.Load()
}

// Replace installs a new settings document and persists it verbatim.
func (s *SystemStore) Replace(cfg *SystemConfig) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings %s: %w", s.path, err)
	}
	s.current.Store(cfg)
	return nil
}
