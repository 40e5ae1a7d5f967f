package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"glinax/internal/dto"
	"glinax/internal/models"
)

// Pipeline gates. Local confidence above the gate skips web search; the
// generative strategy only runs when it has something to ground on.
const (
	confidenceGateThreshold = 0.7
	generativeMinConfidence = 0.3
)

const apologyResponse = "I apologize, but I'm having technical difficulties. " +
	"Please try asking about specific universities like University of Ghana, KNUST, UCC, or UDS, " +
	"and I'll do my best to help with admissions information."

// Narrow views of the pipeline stages, in execution order. ChatService
// depends on these rather than the concrete services so each stage can be
// replaced in tests.
type (
	Retriever interface {
		Retrieve(query, entityName string) models.RetrievalResult
	}

	SearchGateway interface {
		Search(ctx context.Context, query string) models.RetrievalResult
	}

	Completer interface {
		Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	}

	Synthesizer interface {
		Synthesize(query string, evidence []models.QueryEvidence) (string, error)
	}

	TurnRecorder interface {
		Append(ctx context.Context, turn *models.ConversationTurn) error
	}
)

// ChatService orchestrates one question through retrieval, the confidence
// gate, synthesis, and persistence. Completer and TurnRecorder may be nil:
// without a completer every answer is deterministic, without a recorder
// nothing is persisted.
type ChatService struct {
	retriever   Retriever
	gateway     SearchGateway
	completer   Completer
	synthesizer Synthesizer
	extractor   *ExtractService
	recorder    TurnRecorder
	logger      *zap.Logger
}

func NewChatService(
	retriever Retriever,
	gateway SearchGateway,
	completer Completer,
	synthesizer Synthesizer,
	extractor *ExtractService,
	recorder TurnRecorder,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		retriever:   retriever,
		gateway:     gateway,
		completer:   completer,
		synthesizer: synthesizer,
		extractor:   extractor,
		recorder:    recorder,
		logger:      logger,
	}
}

// Respond answers a text-only question. Local retrieval runs first; web
// search only runs when local confidence is at or below the gate. The
// response always carries an answer: generative when available, templated
// otherwise, and a static apology only if both strategies fail.
func (s *ChatService) Respond(ctx context.Context, req *dto.ChatRequest) *dto.ChatResponse {
	started := time.Now()

	local := s.retriever.Retrieve(req.Message, req.UniversityName)

	var web models.RetrievalResult
	if local.Confidence <= confidenceGateThreshold {
		s.logger.Info("Local confidence below gate, searching web",
			zap.Float64("local_confidence", local.Confidence),
		)
		web = s.gateway.Search(ctx, req.Message)
	}

	evidence, combinedContext, confidence := Aggregate(local, web, nil)
	if req.UserContext != "" {
		combinedContext = req.UserContext + "\n\n" + combinedContext
	}

	answer, modelUsed, ok := s.synthesize(ctx, req.Message, evidence, combinedContext)
	if !ok {
		confidence = 0
	} else if len(evidence) == 0 {
		// Templated answer built without any retrieved evidence.
		evidence = []models.QueryEvidence{{
			SourceLabel: "Glinax Knowledge Base",
			Kind:        models.SourceFallback,
			Relevance:   0.5,
		}}
	}

	resp := &dto.ChatResponse{
		Success:        ok,
		Response:       answer,
		Sources:        evidence,
		Confidence:     confidence,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		ProcessingTime: time.Since(started).Seconds(),
		ModelUsed:      modelUsed,
	}

	s.persist(ctx, req, resp, false)
	return resp
}

// RespondWithFiles answers a question accompanied by uploaded documents.
// Both local and web retrieval always run; the extracted document text leads
// the context and floors the confidence.
func (s *ChatService) RespondWithFiles(ctx context.Context, req *dto.ChatRequest, files []UploadedFile) *dto.ChatResponse {
	started := time.Now()

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	uploaded := &UploadedEvidence{
		FileNames: names,
		Text:      s.extractor.ExtractAll(files),
	}

	local := s.retriever.Retrieve(req.Message, req.UniversityName)
	web := s.gateway.Search(ctx, req.Message)

	evidence, combinedContext, confidence := Aggregate(local, web, uploaded)
	if req.UserContext != "" {
		combinedContext = req.UserContext + "\n\n" + combinedContext
	}

	answer, modelUsed, ok := s.synthesize(ctx, req.Message, evidence, combinedContext)
	if !ok {
		confidence = 0
	} else if modelUsed == "deterministic-fallback" {
		answer += documentAnalysisSection(names)
		modelUsed = "deterministic-fallback-with-files"
	} else if modelUsed == "hybrid-rag" {
		modelUsed = "hybrid-rag-with-files"
	}

	resp := &dto.ChatResponse{
		Success:        ok,
		Response:       answer,
		Sources:        evidence,
		Confidence:     confidence,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		ProcessingTime: time.Since(started).Seconds(),
		ModelUsed:      modelUsed,
	}

	s.persist(ctx, req, resp, true)
	return resp
}

// synthesize tries the generative strategy, falls back to the templated one,
// and only fails when both do. Returns the answer, the model label, and
// whether any strategy succeeded.
func (s *ChatService) synthesize(ctx context.Context, query string, evidence []models.QueryEvidence, combinedContext string) (string, string, bool) {
	if s.completer != nil && (combinedContext != "" || confidenceFor(evidence) > generativeMinConfidence) {
		sourcesJSON, err := json.Marshal(evidence)
		if err != nil {
			sourcesJSON = []byte("[]")
		}
		answer, err := s.completer.Complete(ctx, SystemInstruction(), BuildUserPrompt(query, combinedContext, string(sourcesJSON)))
		if err == nil {
			return answer, "hybrid-rag", true
		}
		s.logger.Warn("Generative synthesis failed, using deterministic fallback", zap.Error(err))
	}

	answer, err := s.synthesizer.Synthesize(query, evidence)
	if err != nil {
		s.logger.Error("Deterministic synthesis failed", zap.Error(err))
		return apologyResponse, "minimal-fallback", false
	}
	return answer, "deterministic-fallback", true
}

func confidenceFor(evidence []models.QueryEvidence) float64 {
	var max float64
	for _, item := range evidence {
		if item.Relevance > max {
			max = item.Relevance
		}
	}
	return max
}

// persist records the turn best-effort. Persistence failure never affects
// the response.
func (s *ChatService) persist(ctx context.Context, req *dto.ChatRequest, resp *dto.ChatResponse, hasFiles bool) {
	if s.recorder == nil {
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}

	turn := &models.ConversationTurn{
		ID:             uuid.New(),
		ConversationID: conversationID,
		UserID:         userID,
		Query:          req.Message,
		Response:       resp.Response,
		Confidence:     resp.Confidence,
		Sources:        resp.Sources,
		ProcessingTime: resp.ProcessingTime,
		HasFiles:       hasFiles,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.recorder.Append(ctx, turn); err != nil {
		s.logger.Warn("Failed to persist conversation turn",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
	}
}

// documentAnalysisSection appends a templated analysis block when the
// deterministic strategy answered a request that carried files.
func documentAnalysisSection(fileNames []string) string {
	var b strings.Builder
	b.WriteString("\n\n## Document Analysis\n\nI received ")
	if len(fileNames) == 1 {
		b.WriteString("your document ")
	} else {
		b.WriteString("your documents ")
	}
	b.WriteString(strings.Join(fileNames, ", "))
	b.WriteString(".\n\n")

	var hasImage, hasPDF, hasDoc bool
	for _, name := range fileNames {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".png", ".jpg", ".jpeg", ".bmp", ".tiff":
			hasImage = true
		case ".pdf":
			hasPDF = true
		case ".doc", ".docx":
			hasDoc = true
		}
	}
	if hasImage {
		b.WriteString("For images of certificates or transcripts, I look for institution names, program titles, and grades.\n")
	}
	if hasPDF {
		b.WriteString("For PDF documents, I read the text content to match it against admission requirements.\n")
	}
	if hasDoc {
		b.WriteString("For Word documents such as CVs or personal statements, I review the academic background described.\n")
	}

	b.WriteString(`
**Recommendations:**
- Mention the specific program you are interested in so I can compare your documents against its requirements
- Ask about specific universities (UG, KNUST, UCC, UDS) for targeted fee and deadline information

**Next Steps:**
1. Confirm your results meet the program requirements
2. Note the application deadline for your target university
3. Prepare your application documents early
`)
	return b.String()
}
