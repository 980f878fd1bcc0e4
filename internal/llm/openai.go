package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/xaenox/aidesk/pkg/config"
)

// Client talks to an OpenAI-compatible API. Model names and temperature
// come from the live SystemConfig snapshot on every call, so a settings
// update takes effect without rebuilding the client.
type Client struct {
	api      *openai.Client
	settings *config.SystemStore
	logger   *zap.Logger
}

func NewClient(apiKey, baseURL string, settings *config.SystemStore, logger *zap.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:      openai.NewClientWithConfig(cfg),
		settings: settings,
		logger:   logger,
	}
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	sys := c.settings.Current()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: sys.LLMModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(sys.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) GenerateStructured(ctx context.Context, prompt string, out any) error {
	sys := c.settings.Current()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: sys.LLMModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return fmt.Errorf("structured completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("structured completion: empty response")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("parse structured completion: %w", err)
	}
	return nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	sys := c.settings.Current()
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(sys.EmbeddingModel),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

type scoreResponse struct {
	Scores []float64 `json:"scores"`
}

// Score asks the reranker model to rate every passage against the query.
// The cross-encoder contract: one float per passage, input order kept.
func (c *Client) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	sys := c.settings.Current()

	var sb strings.Builder
	sb.WriteString("Rate how relevant each passage is to the query on a 0.0-1.0 scale.\n")
	sb.WriteString("Query: ")
	sb.WriteString(query)
	sb.WriteString("\n\nPassages:\n")
	for i, p := range passages {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, p)
	}
	fmt.Fprintf(&sb, "\nOutput strictly valid JSON: {\"scores\": [s1, ..., s%d]} with exactly %d numbers in passage order.", len(passages), len(passages))

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: sys.RerankerModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("rerank scoring: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("rerank scoring: empty response")
	}

	var parsed scoreResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("parse rerank scores: %w", err)
	}
	if len(parsed.Scores) != len(passages) {
		return nil, fmt.Errorf("rerank scoring: got %d scores for %d passages", len(parsed.Scores), len(passages))
	}
	return parsed.Scores, nil
}

func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following text into %s. Output only the translation, nothing else.\n\n%s",
		targetLang, text)
	translated, err := c.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", targetLang, err)
	}
	return translated, nil
}
