package models

import "time"

// RequestType is the triage decision for an incoming message.
type RequestType string

const (
	TypeSpam   RequestType = "spam"
	TypeFAQ    RequestType = "faq"
	TypeTicket RequestType = "ticket"
)

// Priority of a classified request.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Classification is the result of routing an incoming message.
// Produced once per message and never mutated afterwards.
type Classification struct {
	Type     RequestType `json:"type"`
	Priority Priority    `json:"priority"`
	Category string      `json:"category"`
}

// DefaultClassification routes an unclassifiable message toward a human
// rather than toward auto-reply or auto-ignore.
func DefaultClassification() Classification {
	return Classification{
		Type:     TypeTicket,
		Priority: PriorityMedium,
		Category: "general",
	}
}

// Chunk is a piece of an indexed document. The embedding lives in the
// vector store alongside the content.
type Chunk struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// SearchResult is a retrieved chunk with its relevance score.
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Action taken by the pipeline for an incoming request.
type Action string

const (
	ActionIgnore        Action = "ignore"
	ActionAutoReply     Action = "auto_reply"
	ActionEscalate      Action = "escalate"
	ActionOperatorReply Action = "operator_reply"
)

// PipelineResult is the outcome of processing one incoming request.
type PipelineResult struct {
	Action         Action         `json:"action"`
	Response       string         `json:"response,omitempty"`
	Classification Classification `json:"classification"`
	Reason         string         `json:"reason,omitempty"`
}

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
	StatusPending  TicketStatus = "pending"
	StatusResolved TicketStatus = "resolved"
)

// TicketResult records how a ticket was answered.
type TicketResult struct {
	Action   Action `json:"action"`
	Response string `json:"response"`
}

// Ticket is an escalated request waiting for (or answered by) an operator.
// The status transition pending -> resolved is one-directional.
type Ticket struct {
	ID           string            `json:"id"`
	Text         string            `json:"text"`
	Source       string            `json:"source"`
	ContactInfo  map[string]string `json:"contact_info,omitempty"`
	Status       TicketStatus      `json:"status"`
	Translations map[string]string `json:"translations,omitempty"`
	Result       TicketResult      `json:"result"`
	Rating       string            `json:"rating,omitempty"`
	CreatedAt    time.Time         `json:"timestamp"`
}

// StyleProfile summarizes a reference corpus: scalar-metric averages and
// raw distributions, a derived tone label and keyword list, plus the
// embeddings of the reference texts when available. Read-only input to
// the style critic and the prompt strategies.
type StyleProfile struct {
	AvgLength         float64              `json:"avg_length"`
	EmojiDensity      float64              `json:"emoji_density"`
	ReadabilityScore  float64              `json:"readability_score"`
	SentenceCount     float64              `json:"sentence_count"`
	GradeLevel        float64              `json:"grade_level"`
	ReadingTime       float64              `json:"reading_time"`
	Tone              string               `json:"tone"`
	TopKeywords       []string             `json:"top_keywords"`
	StructureFeatures []string             `json:"structure_features"`
	Distributions     map[string][]float64 `json:"metrics_distribution"`
	Embeddings        [][]float32          `json:"-"`
}
