package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"glinax/internal/models"
	"glinax/pkg/config"

	"go.uber.org/zap"
)

// Web evidence relevance. Official-domain hits rank slightly above generic
// snippets so descending-relevance ordering keeps them first.
const (
	webResultRelevance      = 0.7
	officialResultRelevance = 0.75
	webConfidence           = 0.75
	serpAPIConfidence       = 0.8
)

// SearchService performs live web search through SerpAPI when a key is
// configured, falling back to the DuckDuckGo instant answer API. Every
// failure mode (provider down, malformed payload, zero results, timeout)
// collapses to an empty result with zero confidence; nothing propagates.
type SearchService struct {
	config     *config.SearchConfig
	httpClient *http.Client
	logger     *zap.Logger

	serpAPIURL    string
	duckDuckGoURL string
}

func NewSearchService(cfg *config.SearchConfig, logger *zap.Logger) *SearchService {
	return &SearchService{
		config:        cfg,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		logger:        logger,
		serpAPIURL:    "https://serpapi.com/search",
		duckDuckGoURL: "https://api.duckduckgo.com/",
	}
}

// Search runs a provider query enhanced with the domain context and returns
// ranked, official-tagged snippets. Never returns an error past this
// boundary.
func (s *SearchService) Search(ctx context.Context, query string) models.RetrievalResult {
	year := time.Now().Year()

	var (
		result models.RetrievalResult
		err    error
	)
	if s.config.SerpAPIKey != "" {
		enhanced := fmt.Sprintf("%s Ghana universities admission %d latest", query, year)
		result, err = s.searchSerpAPI(ctx, enhanced)
	} else {
		enhanced := fmt.Sprintf("%s Ghana universities %d official site", query, year)
		result, err = s.searchDuckDuckGo(ctx, enhanced)
	}
	if err != nil {
		s.logger.Warn("Web search failed, continuing with local knowledge", zap.Error(err))
		return models.RetrievalResult{}
	}

	sort.SliceStable(result.Evidence, func(i, j int) bool {
		return result.Evidence[i].Relevance > result.Evidence[j].Relevance
	})
	if len(result.Evidence) > models.MaxWebEvidence {
		result.Evidence = result.Evidence[:models.MaxWebEvidence]
	}
	if len(result.Evidence) == 0 {
		result.Confidence = 0
	}

	s.logger.Info("Web search completed",
		zap.Int("results", len(result.Evidence)),
		zap.Float64("confidence", result.Confidence),
	)

	return result
}

func (s *SearchService) searchSerpAPI(ctx context.Context, query string) (models.RetrievalResult, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", s.config.SerpAPIKey)
	params.Set("num", strconv.Itoa(s.config.MaxResults))
	params.Set("location", "Ghana")
	params.Set("hl", "en")
	params.Set("gl", "gh")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.serpAPIURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.RetrievalResult{}, fmt.Errorf("failed to create SerpAPI request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.RetrievalResult{}, fmt.Errorf("SerpAPI request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.RetrievalResult{}, fmt.Errorf("SerpAPI returned status %d", resp.StatusCode)
	}

	var payload struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.RetrievalResult{}, fmt.Errorf("failed to decode SerpAPI response: %w", err)
	}

	var result models.RetrievalResult
	for _, item := range payload.OrganicResults {
		if item.Link == "" && item.Snippet == "" {
			continue
		}
		result.Evidence = append(result.Evidence, s.webEvidence(item.Title, item.Link, item.Snippet))
	}
	if len(result.Evidence) > 0 {
		result.Confidence = serpAPIConfidence
	}
	return result, nil
}

func (s *SearchService) searchDuckDuckGo(ctx context.Context, query string) (models.RetrievalResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("no_redirect", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.duckDuckGoURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.RetrievalResult{}, fmt.Errorf("failed to create DuckDuckGo request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.RetrievalResult{}, fmt.Errorf("DuckDuckGo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.RetrievalResult{}, fmt.Errorf("DuckDuckGo returned status %d", resp.StatusCode)
	}

	var payload struct {
		Heading       string `json:"Heading"`
		AbstractText  string `json:"AbstractText"`
		AbstractURL   string `json:"AbstractURL"`
		RelatedTopics []struct {
			Text     string `json:"Text"`
			FirstURL string `json:"FirstURL"`
		} `json:"RelatedTopics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.RetrievalResult{}, fmt.Errorf("failed to decode DuckDuckGo response: %w", err)
	}

	var result models.RetrievalResult
	if payload.AbstractText != "" {
		result.Evidence = append(result.Evidence, s.webEvidence(payload.Heading, payload.AbstractURL, payload.AbstractText))
	}
	for _, topic := range payload.RelatedTopics {
		if topic.Text == "" {
			continue
		}
		result.Evidence = append(result.Evidence, s.webEvidence("Web Result", topic.FirstURL, topic.Text))
	}
	if len(result.Evidence) > 0 {
		result.Confidence = webConfidence
	}
	return result, nil
}

func (s *SearchService) webEvidence(title, link, snippet string) models.QueryEvidence {
	kind := models.SourceWebSearch
	relevance := webResultRelevance
	if s.isOfficialDomain(link) {
		kind = models.SourceOfficialWebsite
		relevance = officialResultRelevance
	}
	if title == "" {
		title = "Web Result"
	}
	return models.QueryEvidence{
		SourceLabel: title,
		Kind:        kind,
		Relevance:   relevance,
		URL:         link,
		SnippetText: "Web Result: " + snippet,
	}
}

func (s *SearchService) isOfficialDomain(link string) bool {
	lower := strings.ToLower(link)
	for _, domain := range s.config.OfficialDomains {
		if domain != "" && strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}
