package service

import (
	"encoding/json"
	"sort"
	"strings"

	"glinax/internal/knowledge"
	"glinax/internal/models"

	"go.uber.org/zap"
)

// Relevance scoring weights. The scorer is an additive heuristic, not a
// probabilistic model: every contribution is explainable in terms of what
// the query and the record share.
const (
	directHitScore   = 0.98
	nonExactScoreCap = 0.95
	programMatchStep = 0.4
	highKeywordStep  = 0.6
	stdKeywordStep   = 0.3
	tokenMatchStep   = 0.2
	keepThreshold    = 0.4
	minTokenLength   = 4
)

var highValueKeywords = []string{"computer science", "engineering", "medicine", "business"}

var standardKeywords = []string{"admission", "fee", "fees", "cost", "program", "scholarship", "contact", "requirement"}

type RetrievalService struct {
	store  *knowledge.Store
	logger *zap.Logger
}

func NewRetrievalService(store *knowledge.Store, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{
		store:  store,
		logger: logger,
	}
}

// Score computes the relevance of a query against one knowledge entry.
// An alias match on the institution name is a direct hit at 0.98; any other
// score is capped at 0.95. An empty query scores zero.
func (s *RetrievalService) Score(query string, entry *knowledge.Entry) float64 {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower == "" {
		return 0
	}

	for _, alias := range entry.Record.Aliases {
		if strings.Contains(queryLower, strings.ToLower(alias)) {
			return directHitScore
		}
	}

	queryTokens := strings.Fields(queryLower)
	var score float64

	// Program-level matching: only detailed catalogs have per-program text.
	// Name-only catalogs are covered by the generic token path below.
	for _, programText := range entry.ProgramTexts {
		for _, token := range queryTokens {
			if strings.Contains(programText, token) {
				score += programMatchStep
				break
			}
		}
	}

	for _, keyword := range highValueKeywords {
		if strings.Contains(queryLower, keyword) && strings.Contains(entry.SearchText, keyword) {
			score += highKeywordStep
		}
	}

	for _, keyword := range standardKeywords {
		if strings.Contains(queryLower, keyword) && strings.Contains(entry.SearchText, keyword) {
			score += stdKeywordStep
		}
	}

	for _, token := range queryTokens {
		if len(token) >= minTokenLength && strings.Contains(entry.SearchText, token) {
			score += tokenMatchStep
		}
	}

	if score > nonExactScoreCap {
		score = nonExactScoreCap
	}
	return score
}

// Retrieve scans the knowledge store for records relevant to the query.
// When entityName is empty, alias resolution on the raw query fills it in.
// A hinted record is always first at 0.98 and can never be displaced by a
// higher textual score elsewhere. Never fails: no matches means an empty
// result with zero confidence.
func (s *RetrievalService) Retrieve(query, entityName string) models.RetrievalResult {
	if entityName == "" {
		if resolved, ok := s.store.ResolveAlias(query); ok {
			entityName = resolved
		}
	}

	var result models.RetrievalResult

	if entityName != "" {
		if entry, ok := s.store.Get(entityName); ok {
			result.Evidence = append(result.Evidence, recordEvidence(entry, directHitScore))
			result.Confidence = directHitScore
		}
	}

	var scored []models.QueryEvidence
	for _, entry := range s.store.Entries() {
		if entityName != "" && entry.Record.Name == entityName {
			continue // already added above
		}
		if score := s.Score(query, entry); score > keepThreshold {
			scored = append(scored, recordEvidence(entry, score))
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Relevance > scored[j].Relevance
	})
	if len(scored) > models.MaxLocalEvidence {
		scored = scored[:models.MaxLocalEvidence]
	}
	result.Evidence = append(result.Evidence, scored...)
	if len(result.Evidence) > models.MaxLocalEvidence {
		result.Evidence = result.Evidence[:models.MaxLocalEvidence]
	}

	if result.Confidence == 0 && len(scored) > 0 {
		result.Confidence = scored[0].Relevance
	}

	s.logger.Debug("Local search completed",
		zap.String("query", query),
		zap.String("entity", entityName),
		zap.Int("results", len(result.Evidence)),
		zap.Float64("confidence", result.Confidence),
	)

	return result
}

func recordEvidence(entry *knowledge.Entry, relevance float64) models.QueryEvidence {
	serialized, err := json.MarshalIndent(entry.Record, "", "  ")
	if err != nil {
		serialized = []byte(entry.Record.Name)
	}
	return models.QueryEvidence{
		SourceLabel: entry.Record.Name,
		Kind:        models.SourceLocalKnowledge,
		Relevance:   relevance,
		SnippetText: "University: " + entry.Record.Name + "\n" + string(serialized),
	}
}
