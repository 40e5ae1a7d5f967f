package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"glinax/internal/models"
)

const conversationTitleLimit = 120

// ConversationRepository persists answered turns in the rag_logs table and
// serves the history endpoints.
type ConversationRepository struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ConversationRepository) Append(ctx context.Context, turn *models.ConversationTurn) error {
	sources, err := json.Marshal(turn.Sources)
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}

	query, args, err := r.sb.
		Insert("rag_logs").
		Columns("id", "conversation_id", "user_id", "query", "response", "confidence", "sources", "processing_time", "has_files", "timestamp").
		Values(turn.ID, turn.ConversationID, turn.UserID, turn.Query, turn.Response, turn.Confidence, sources, turn.ProcessingTime, turn.HasFiles, turn.Timestamp).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert conversation turn: %w", err)
	}
	return nil
}

// ConversationSummary is one conversation aggregated from its turns: the
// first query serves as the title.
type ConversationSummary struct {
	ConversationID string
	Title          string
	LastActive     time.Time
	MessageCount   int
}

func (r *ConversationRepository) ListConversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	query, args, err := r.sb.
		Select(
			"conversation_id",
			"(array_agg(query ORDER BY timestamp ASC))[1] AS title",
			"MAX(timestamp) AS last_active",
			"COUNT(*) AS message_count",
		).
		From("rag_logs").
		Where(sq.Eq{"user_id": userID}).
		GroupBy("conversation_id").
		OrderBy("last_active DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build conversations query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var summaries []ConversationSummary
	for rows.Next() {
		var s ConversationSummary
		if err := rows.Scan(&s.ConversationID, &s.Title, &s.LastActive, &s.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		if len(s.Title) > conversationTitleLimit {
			s.Title = s.Title[:conversationTitleLimit] + "..."
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read conversation rows: %w", err)
	}
	return summaries, nil
}

func (r *ConversationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.ConversationTurn, error) {
	builder := r.sb.
		Select("id", "conversation_id", "user_id", "query", "response", "confidence", "sources", "processing_time", "has_files", "timestamp").
		From("rag_logs").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("timestamp DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history query: %w", err)
	}
	return r.queryTurns(ctx, query, args)
}

func (r *ConversationRepository) GetThread(ctx context.Context, conversationID string) ([]models.ConversationTurn, error) {
	query, args, err := r.sb.
		Select("id", "conversation_id", "user_id", "query", "response", "confidence", "sources", "processing_time", "has_files", "timestamp").
		From("rag_logs").
		Where(sq.Eq{"conversation_id": conversationID}).
		OrderBy("timestamp ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build thread query: %w", err)
	}
	return r.queryTurns(ctx, query, args)
}

func (r *ConversationRepository) queryTurns(ctx context.Context, query string, args []interface{}) ([]models.ConversationTurn, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []models.ConversationTurn
	for rows.Next() {
		var (
			turn    models.ConversationTurn
			sources []byte
		)
		if err := rows.Scan(
			&turn.ID,
			&turn.ConversationID,
			&turn.UserID,
			&turn.Query,
			&turn.Response,
			&turn.Confidence,
			&sources,
			&turn.ProcessingTime,
			&turn.HasFiles,
			&turn.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan turn row: %w", err)
		}
		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &turn.Sources); err != nil {
				return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
			}
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read turn rows: %w", err)
	}
	return turns, nil
}
