package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"glinax/internal/dto"
	"glinax/internal/knowledge"
	"glinax/internal/service"
	"glinax/pkg/config"
)

// newTestApp wires a Fiber app around real services with no LLM and no
// database. Queries that name a university resolve locally, so nothing
// leaves the process.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()

	store, err := knowledge.Load("", logger)
	require.NoError(t, err)

	searchCfg := &config.SearchConfig{
		Timeout:    time.Second,
		MaxResults: 8,
	}
	chatService := service.NewChatService(
		service.NewRetrievalService(store, logger),
		service.NewSearchService(searchCfg, logger),
		nil,
		service.NewAnswerService(store, logger),
		service.NewExtractService(logger),
		nil,
		logger,
	)
	handler := NewChatHandler(chatService, logger)

	app := fiber.New()
	app.Get("/health", handler.Health)
	app.Post("/respond", handler.Respond)
	app.Post("/respond-with-files", handler.RespondWithFiles)
	return app
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "glinax-rag", body.Service)
}

func TestRespond(t *testing.T) {
	app := newTestApp(t)

	t.Run("answers a direct university question", func(t *testing.T) {
		payload, _ := json.Marshal(dto.ChatRequest{Message: "What are the fees at University of Ghana?"})
		req := httptest.NewRequest(http.MethodPost, "/respond", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, 5000)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body dto.ChatResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		assert.NotEmpty(t, body.Response)
		assert.Equal(t, 0.98, body.Confidence)
		assert.NotEmpty(t, body.Sources)
		assert.Equal(t, "deterministic-fallback", body.ModelUsed)
	})

	t.Run("missing message is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/respond", bytes.NewReader([]byte(`{"message":"  "}`)))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/respond", bytes.NewReader([]byte("not json")))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRespondWithFilesValidation(t *testing.T) {
	app := newTestApp(t)

	t.Run("missing files", func(t *testing.T) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.WriteField("message", "review my transcript"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/respond-with-files", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing message", func(t *testing.T) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("files", "notes.txt")
		require.NoError(t, err)
		_, err = io.WriteString(part, "some notes")
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/respond-with-files", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
