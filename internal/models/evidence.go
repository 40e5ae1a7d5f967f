package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceKind labels where a piece of evidence came from.
type SourceKind string

const (
	SourceLocalKnowledge  SourceKind = "local_knowledge"
	SourceWebSearch       SourceKind = "web_search"
	SourceOfficialWebsite SourceKind = "official_website"
	SourceUploadedFile    SourceKind = "user_files"
	SourceFallback        SourceKind = "fallback"
)

// QueryEvidence is one attributed piece of information contributing to an
// answer. Created per request and discarded afterwards, except inside the
// persisted conversation turn.
type QueryEvidence struct {
	SourceLabel string     `json:"source"`
	Kind        SourceKind `json:"type"`
	Relevance   float64    `json:"confidence"`
	URL         string     `json:"url,omitempty"`
	SnippetText string     `json:"-"`
}

// Evidence caps. Local results stay small because each carries a full
// serialized record; web snippets are cheap but still bounded.
const (
	MaxLocalEvidence = 3
	MaxWebEvidence   = 8
)

// RetrievalResult is an ordered set of evidence plus an aggregate confidence
// in [0, 1]. An empty result with zero confidence is a valid outcome, not an
// error.
type RetrievalResult struct {
	Evidence   []QueryEvidence
	Confidence float64
}

// ConversationTurn is the persisted record of one answered request.
// Append-only; never updated or deleted by this service.
type ConversationTurn struct {
	ID             uuid.UUID       `db:"id"`
	ConversationID string          `db:"conversation_id"`
	UserID         string          `db:"user_id"`
	Query          string          `db:"query"`
	Response       string          `db:"response"`
	Confidence     float64         `db:"confidence"`
	Sources        []QueryEvidence `db:"sources"`
	ProcessingTime float64         `db:"processing_time"`
	HasFiles       bool            `db:"has_files"`
	Timestamp      time.Time       `db:"timestamp"`
}
