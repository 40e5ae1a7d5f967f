package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"glinax/internal/dto"
	"glinax/internal/models"
)

type stubRetriever struct {
	result models.RetrievalResult
}

func (s *stubRetriever) Retrieve(query, entityName string) models.RetrievalResult {
	return s.result
}

type stubGateway struct {
	calls  int
	result models.RetrievalResult
}

func (s *stubGateway) Search(ctx context.Context, query string) models.RetrievalResult {
	s.calls++
	return s.result
}

type stubCompleter struct {
	answer string
	err    error
	calls  int
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	return s.answer, s.err
}

type stubSynthesizer struct {
	answer string
	err    error
}

func (s *stubSynthesizer) Synthesize(query string, evidence []models.QueryEvidence) (string, error) {
	return s.answer, s.err
}

type stubRecorder struct {
	turns []*models.ConversationTurn
	err   error
}

func (s *stubRecorder) Append(ctx context.Context, turn *models.ConversationTurn) error {
	if s.err != nil {
		return s.err
	}
	s.turns = append(s.turns, turn)
	return nil
}

func localResult(confidence float64) models.RetrievalResult {
	return models.RetrievalResult{
		Evidence: []models.QueryEvidence{
			{SourceLabel: "University of Ghana", Kind: models.SourceLocalKnowledge, Relevance: confidence, SnippetText: "record text"},
		},
		Confidence: confidence,
	}
}

func TestRespondConfidenceGate(t *testing.T) {
	t.Run("high local confidence skips web search", func(t *testing.T) {
		gateway := &stubGateway{}
		svc := NewChatService(
			&stubRetriever{result: localResult(0.71)},
			gateway,
			nil,
			&stubSynthesizer{answer: "templated"},
			NewExtractService(zap.NewNop()),
			nil,
			zap.NewNop(),
		)

		resp := svc.Respond(context.Background(), &dto.ChatRequest{Message: "fees at UG"})
		require.True(t, resp.Success)
		assert.Zero(t, gateway.calls)
		assert.Equal(t, 0.71, resp.Confidence)
	})

	t.Run("gate boundary triggers web search", func(t *testing.T) {
		gateway := &stubGateway{result: models.RetrievalResult{
			Evidence: []models.QueryEvidence{
				{SourceLabel: "Web", Kind: models.SourceWebSearch, Relevance: 0.7, SnippetText: "Web Result: news"},
			},
			Confidence: 0.75,
		}}
		svc := NewChatService(
			&stubRetriever{result: localResult(0.70)},
			gateway,
			nil,
			&stubSynthesizer{answer: "templated"},
			NewExtractService(zap.NewNop()),
			nil,
			zap.NewNop(),
		)

		resp := svc.Respond(context.Background(), &dto.ChatRequest{Message: "latest deadlines"})
		require.True(t, resp.Success)
		assert.Equal(t, 1, gateway.calls)
		assert.Equal(t, 0.75, resp.Confidence)
		assert.Len(t, resp.Sources, 2)
	})

	t.Run("gateway returning nothing keeps pipeline alive", func(t *testing.T) {
		svc := NewChatService(
			&stubRetriever{result: models.RetrievalResult{}},
			&stubGateway{},
			nil,
			&stubSynthesizer{answer: "templated"},
			NewExtractService(zap.NewNop()),
			nil,
			zap.NewNop(),
		)

		resp := svc.Respond(context.Background(), &dto.ChatRequest{Message: "anything"})
		assert.True(t, resp.Success)
		assert.Equal(t, "templated", resp.Response)
		require.Len(t, resp.Sources, 1)
		assert.Equal(t, models.SourceFallback, resp.Sources[0].Kind)
	})
}

func TestRespondSynthesisFallbacks(t *testing.T) {
	t.Run("generative answer when completer succeeds", func(t *testing.T) {
		completer := &stubCompleter{answer: "generated"}
		svc := NewChatService(
			&stubRetriever{result: localResult(0.9)},
			&stubGateway{},
			completer,
			&stubSynthesizer{answer: "templated"},
			NewExtractService(zap.NewNop()),
			nil,
			zap.NewNop(),
		)

		resp := svc.Respond(context.Background(), &dto.ChatRequest{Message: "fees"})
		require.True(t, resp.Success)
		assert.Equal(t, "generated", resp.Response)
		assert.Equal(t, "hybrid-rag", resp.ModelUsed)
		assert.Equal(t, 1, completer.calls)
	})

	t.Run("completer failure falls through to deterministic", func(t *testing.T) {
		completer := &stubCompleter{err: ErrLLMUnavailable}
		svc := NewChatService(
			&stubRetriever{result: localResult(0.9)},
			&stubGateway{},
			completer,
			&stubSynthesizer{answer: "templated"},
			NewExtractService(zap.NewNop()),
			nil,
			zap.NewNop(),
		)

		resp := svc.Respond(context.Background(), &dto.ChatRequest{Message: "fees"})
		require.True(t, resp.Success)
		assert.Equal(t, "templated", resp.Response)
		assert.Equal(t, "deterministic-fallback", resp.ModelUsed)
	})

	t.Run("both strategies failing yields the apology", func(t *testing.T) {
		svc := NewChatService(
			&stubRetriever{result: localResult(0.9)},
			&stubGateway{},
			&stubCompleter{err: ErrLLMUnavailable},
			&stubSynthesizer{err: errors.New("template broke")},
			NewExtractService(zap.NewNop()),
			nil,
			zap.NewNop(),
		)

		resp := svc.Respond(context.Background(), &dto.ChatRequest{Message: "fees"})
		assert.False(t, resp.Success)
		assert.Zero(t, resp.Confidence)
		assert.Equal(t, "minimal-fallback", resp.ModelUsed)
		assert.Contains(t, resp.Response, "technical difficulties")
	})

	t.Run("no completer means deterministic only", func(t *testing.T) {
		svc := NewChatService(
			&stubRetriever{result: localResult(0.9)},
			&stubGateway{},
			nil,
			&stubSynthesizer{answer: "templated"},
			NewExtractService(zap.NewNop()),
			nil,
			zap.NewNop(),
		)

		resp := svc.Respond(context.Background(), &dto.ChatRequest{Message: "fees"})
		require.True(t, resp.Success)
		assert.Equal(t, "deterministic-fallback", resp.ModelUsed)
	})
}

func TestRespondPersistence(t *testing.T) {
	t.Run("turn is recorded with request metadata", func(t *testing.T) {
		recorder := &stubRecorder{}
		svc := NewChatService(
			&stubRetriever{result: localResult(0.9)},
			&stubGateway{},
			nil,
			&stubSynthesizer{answer: "templated"},
			NewExtractService(zap.NewNop()),
			recorder,
			zap.NewNop(),
		)

		resp := svc.Respond(context.Background(), &dto.ChatRequest{
			Message:        "fees at UG",
			ConversationID: "conv-1",
			UserID:         "user-1",
		})
		require.True(t, resp.Success)
		require.Len(t, recorder.turns, 1)
		turn := recorder.turns[0]
		assert.Equal(t, "conv-1", turn.ConversationID)
		assert.Equal(t, "user-1", turn.UserID)
		assert.Equal(t, "fees at UG", turn.Query)
		assert.Equal(t, "templated", turn.Response)
		assert.False(t, turn.HasFiles)
	})

	t.Run("missing ids get defaults", func(t *testing.T) {
		recorder := &stubRecorder{}
		svc := NewChatService(
			&stubRetriever{result: localResult(0.9)},
			&stubGateway{},
			nil,
			&stubSynthesizer{answer: "templated"},
			NewExtractService(zap.NewNop()),
			recorder,
			zap.NewNop(),
		)

		svc.Respond(context.Background(), &dto.ChatRequest{Message: "fees"})
		require.Len(t, recorder.turns, 1)
		assert.NotEmpty(t, recorder.turns[0].ConversationID)
		assert.Equal(t, "anonymous", recorder.turns[0].UserID)
	})

	t.Run("persistence failure never fails the response", func(t *testing.T) {
		svc := NewChatService(
			&stubRetriever{result: localResult(0.9)},
			&stubGateway{},
			nil,
			&stubSynthesizer{answer: "templated"},
			NewExtractService(zap.NewNop()),
			&stubRecorder{err: errors.New("db down")},
			zap.NewNop(),
		)

		resp := svc.Respond(context.Background(), &dto.ChatRequest{Message: "fees"})
		assert.True(t, resp.Success)
	})
}

func TestRespondWithFiles(t *testing.T) {
	files := []UploadedFile{
		{Name: "notes.txt", ContentType: "text/plain", Data: []byte("I studied science at Accra Academy")},
	}

	t.Run("web search always runs with files", func(t *testing.T) {
		gateway := &stubGateway{}
		svc := NewChatService(
			&stubRetriever{result: localResult(0.98)},
			gateway,
			nil,
			&stubSynthesizer{answer: "templated"},
			NewExtractService(zap.NewNop()),
			nil,
			zap.NewNop(),
		)

		resp := svc.RespondWithFiles(context.Background(), &dto.ChatRequest{Message: "can I get in?"}, files)
		require.True(t, resp.Success)
		assert.Equal(t, 1, gateway.calls)
	})

	t.Run("confidence floored with files", func(t *testing.T) {
		svc := NewChatService(
			&stubRetriever{result: models.RetrievalResult{Confidence: 0.1}},
			&stubGateway{},
			nil,
			&stubSynthesizer{answer: "templated"},
			NewExtractService(zap.NewNop()),
			nil,
			zap.NewNop(),
		)

		resp := svc.RespondWithFiles(context.Background(), &dto.ChatRequest{Message: "can I get in?"}, files)
		require.True(t, resp.Success)
		assert.GreaterOrEqual(t, resp.Confidence, 0.8)
		require.NotEmpty(t, resp.Sources)
		assert.Equal(t, models.SourceUploadedFile, resp.Sources[0].Kind)
	})

	t.Run("deterministic answer gains document analysis", func(t *testing.T) {
		svc := NewChatService(
			&stubRetriever{result: localResult(0.9)},
			&stubGateway{},
			nil,
			&stubSynthesizer{answer: "templated"},
			NewExtractService(zap.NewNop()),
			nil,
			zap.NewNop(),
		)

		resp := svc.RespondWithFiles(context.Background(), &dto.ChatRequest{Message: "review my notes"}, files)
		require.True(t, resp.Success)
		assert.Equal(t, "deterministic-fallback-with-files", resp.ModelUsed)
		assert.Contains(t, resp.Response, "Document Analysis")
		assert.Contains(t, resp.Response, "notes.txt")
	})

	t.Run("generative answer keeps the files label", func(t *testing.T) {
		svc := NewChatService(
			&stubRetriever{result: localResult(0.9)},
			&stubGateway{},
			&stubCompleter{answer: "generated"},
			&stubSynthesizer{answer: "templated"},
			NewExtractService(zap.NewNop()),
			nil,
			zap.NewNop(),
		)

		resp := svc.RespondWithFiles(context.Background(), &dto.ChatRequest{Message: "review my notes"}, files)
		require.True(t, resp.Success)
		assert.Equal(t, "hybrid-rag-with-files", resp.ModelUsed)
		assert.Equal(t, "generated", resp.Response)
	})

	t.Run("recorded turn marks files", func(t *testing.T) {
		recorder := &stubRecorder{}
		svc := NewChatService(
			&stubRetriever{result: localResult(0.9)},
			&stubGateway{},
			nil,
			&stubSynthesizer{answer: "templated"},
			NewExtractService(zap.NewNop()),
			recorder,
			zap.NewNop(),
		)

		svc.RespondWithFiles(context.Background(), &dto.ChatRequest{Message: "review"}, files)
		require.Len(t, recorder.turns, 1)
		assert.True(t, recorder.turns[0].HasFiles)
	})
}
