package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"glinax/internal/dto"
	"glinax/internal/models"
	"glinax/internal/repository"
)

// HistoryHandler serves conversation history. The repository may be nil when
// the service runs without a database; history endpoints then return 503
// while the answer endpoints keep working.
type HistoryHandler struct {
	repo   *repository.ConversationRepository
	logger *zap.Logger
}

func NewHistoryHandler(repo *repository.ConversationRepository, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		repo:   repo,
		logger: logger,
	}
}

// ListConversations godoc
// @Summary List the authenticated user's conversations
// @Tags history
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.ConversationListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/chat/conversations [get]
func (h *HistoryHandler) ListConversations(c *fiber.Ctx) error {
	if h.repo == nil {
		return h.unavailable(c)
	}

	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: "Unauthorized",
		})
	}

	summaries, err := h.repo.ListConversations(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list conversations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to list conversations",
		})
	}

	conversations := make([]dto.ConversationSummary, 0, len(summaries))
	for _, s := range summaries {
		conversations = append(conversations, dto.ConversationSummary{
			ConversationID: s.ConversationID,
			Title:          s.Title,
			LastActive:     s.LastActive.UTC().Format(time.RFC3339),
			MessageCount:   s.MessageCount,
		})
	}
	return c.JSON(dto.ConversationListResponse{
		Success:       true,
		Conversations: conversations,
	})
}

// UserHistory godoc
// @Summary Get a user's recent turns
// @Tags history
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} dto.HistoryResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /history/{userID} [get]
func (h *HistoryHandler) UserHistory(c *fiber.Ctx) error {
	if h.repo == nil {
		return h.unavailable(c)
	}

	userID := c.Params("userID")
	turns, err := h.repo.ListByUser(c.Context(), userID, 50)
	if err != nil {
		h.logger.Error("Failed to load user history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to load history",
		})
	}
	return c.JSON(historyResponse(turns))
}

// ConversationHistory godoc
// @Summary Get one conversation thread
// @Tags history
// @Produce json
// @Param conversationID path string true "Conversation ID"
// @Success 200 {object} dto.HistoryResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /history/chat/{conversationID} [get]
func (h *HistoryHandler) ConversationHistory(c *fiber.Ctx) error {
	if h.repo == nil {
		return h.unavailable(c)
	}

	conversationID := c.Params("conversationID")
	turns, err := h.repo.GetThread(c.Context(), conversationID)
	if err != nil {
		h.logger.Error("Failed to load conversation thread", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to load history",
		})
	}
	return c.JSON(historyResponse(turns))
}

func (h *HistoryHandler) unavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
		Error: "History is unavailable: database is not configured",
	})
}

func historyResponse(turns []models.ConversationTurn) dto.HistoryResponse {
	history := make([]dto.HistoryTurn, 0, len(turns))
	for _, turn := range turns {
		history = append(history, dto.HistoryTurn{
			ID:             turn.ID.String(),
			ConversationID: turn.ConversationID,
			Query:          turn.Query,
			Response:       turn.Response,
			Confidence:     turn.Confidence,
			Sources:        turn.Sources,
			HasFiles:       turn.HasFiles,
			Timestamp:      turn.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return dto.HistoryResponse{
		Success: true,
		History: history,
	}
}
