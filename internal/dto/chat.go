package dto

import "glinax/internal/models"

// ChatRequest is the body of POST /respond. Only Message is required;
// UniversityName is an optional retrieval hint, UserContext is prepended to
// the evidence context verbatim.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	UniversityName string `json:"university_name,omitempty"`
	UserContext    string `json:"user_context,omitempty"`
}

type ChatResponse struct {
	Success        bool                   `json:"success"`
	Response       string                 `json:"response"`
	Sources        []models.QueryEvidence `json:"sources"`
	Confidence     float64                `json:"confidence"`
	Timestamp      string                 `json:"timestamp"`
	ProcessingTime float64                `json:"processing_time"`
	ModelUsed      string                 `json:"model_used"`
}

// ConversationSummary is one row of the conversation list: the first query
// as a title plus activity counters.
type ConversationSummary struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title"`
	LastActive     string `json:"last_active"`
	MessageCount   int    `json:"message_count"`
}

type ConversationListResponse struct {
	Success       bool                  `json:"success"`
	Conversations []ConversationSummary `json:"conversations"`
}

type HistoryTurn struct {
	ID             string                 `json:"id"`
	ConversationID string                 `json:"conversation_id"`
	Query          string                 `json:"query"`
	Response       string                 `json:"response"`
	Confidence     float64                `json:"confidence"`
	Sources        []models.QueryEvidence `json:"sources,omitempty"`
	HasFiles       bool                   `json:"has_files"`
	Timestamp      string                 `json:"timestamp"`
}

type HistoryResponse struct {
	Success bool          `json:"success"`
	History []HistoryTurn `json:"history"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
