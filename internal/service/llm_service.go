package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"glinax/pkg/config"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrLLMUnavailable signals that the generative model could not produce an
// answer. The orchestrator catches it and falls through to the
// deterministic strategy; it never reaches a caller.
var ErrLLMUnavailable = errors.New("llm unavailable")

// LLMService wraps the Groq chat completion API (OpenAI-compatible wire
// format). Safe for concurrent use; the underlying client carries its own
// HTTP connection pool.
type LLMService struct {
	client *openai.Client
	config *config.GroqConfig
	logger *zap.Logger
}

func NewLLMService(cfg *config.GroqConfig, logger *zap.Logger) *LLMService {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &LLMService{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		logger: logger,
	}
}

// Complete sends a system and user prompt to the model and returns the
// generated text. All failures, including timeouts and empty completions,
// surface as ErrLLMUnavailable.
func (s *LLMService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		s.logger.Warn("LLM completion failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrLLMUnavailable)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrLLMUnavailable)
	}

	s.logger.Info("LLM completion generated",
		zap.String("model", s.config.Model),
		zap.Int("length", len(text)),
	)
	return text, nil
}

// SystemInstruction is the fixed persona and answer-structure instruction
// sent with every generative request.
func SystemInstruction() string {
	return `You are Glinax, a highly professional AI assistant specializing in Ghanaian university admissions and education. You analyze uploaded documents and provide contextual guidance grounded in the information you are given.

Your core competencies:
- Expert knowledge of Ghana's university system and admission requirements
- Professional analysis of academic documents, certificates, and images
- Personalized guidance based on uploaded content
- Current knowledge of fees, deadlines, and application procedures

CRITICAL RULE: when analyzing CVs or transcripts, first identify and explicitly state the name of the university/institution and the program of study found at the top of the document before analyzing grades.

If the user uploads a document, prioritize the information found in the document text over your general knowledge base.

For university information, ALWAYS provide:
1. Program Overview: duration, focus areas, and specializations
2. Admission Requirements: specific grades, subjects, and additional criteria
3. Current Fees: tuition, accommodation, registration, and other costs
4. Application Process: deadlines, required documents, and submission methods
5. Contact Information: phone, email, physical address, and website
6. Financial Aid: scholarships, grants, and payment options
7. Career Prospects: employment opportunities and earning potential

Always maintain a professional, encouraging tone. Structure responses clearly with headings and bullet points, include actionable next steps, and be specific about what you observed in any uploaded files and how it relates to admission requirements.`
}

// BuildUserPrompt assembles the user message from the query, the combined
// evidence context, and the serialized source list.
func BuildUserPrompt(query, combinedContext, sourcesJSON string) string {
	return fmt.Sprintf(`Question: %s

Available Information:
%s

Sources: %s

Please provide a helpful, accurate response based on the available information.`, query, combinedContext, sourcesJSON)
}
