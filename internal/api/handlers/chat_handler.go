package handlers

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"glinax/internal/dto"
	"glinax/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Health godoc
// @Summary Service health check
// @Tags system
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *ChatHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:  "healthy",
		Service: "glinax-rag",
		Version: "1.0.0",
	})
}

// Respond godoc
// @Summary Answer an admissions question
// @Description Answer a question about Ghanaian universities using local knowledge, web search, and generative synthesis
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Question"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /respond [post]
func (h *ChatHandler) Respond(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Message is required",
		})
	}
	if userID, ok := c.Locals("userID").(string); ok && userID != "" {
		req.UserID = userID
	}

	resp := h.chatService.Respond(c.Context(), &req)
	return c.JSON(resp)
}

// RespondWithFiles godoc
// @Summary Answer a question with uploaded documents
// @Description Answer a question using text extracted from uploaded files (PDF, DOCX, images, text) alongside local and web evidence
// @Tags chat
// @Accept multipart/form-data
// @Produce json
// @Param message formData string true "Question"
// @Param conversation_id formData string false "Conversation ID"
// @Param user_id formData string false "User ID"
// @Param university_name formData string false "University hint"
// @Param files formData file true "Documents to analyze"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /respond-with-files [post]
func (h *ChatHandler) RespondWithFiles(c *fiber.Ctx) error {
	req := dto.ChatRequest{
		Message:        c.FormValue("message"),
		ConversationID: c.FormValue("conversation_id"),
		UserID:         c.FormValue("user_id"),
		UniversityName: c.FormValue("university_name"),
		UserContext:    c.FormValue("user_context"),
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Message is required",
		})
	}
	if userID, ok := c.Locals("userID").(string); ok && userID != "" {
		req.UserID = userID
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid multipart form",
		})
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "At least one file is required",
		})
	}

	files := make([]service.UploadedFile, 0, len(headers))
	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			h.logger.Warn("Failed to open uploaded file",
				zap.String("file", header.Filename),
				zap.Error(err),
			)
			continue
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			h.logger.Warn("Failed to read uploaded file",
				zap.String("file", header.Filename),
				zap.Error(err),
			)
			continue
		}
		files = append(files, service.UploadedFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "None of the uploaded files could be read",
		})
	}

	resp := h.chatService.RespondWithFiles(c.Context(), &req, files)
	return c.JSON(resp)
}
