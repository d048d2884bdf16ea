package external

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/medichain-agent-server/internal/domain"
)

// PubMedClient handles interactions with NCBI PubMed via E-utilities
type PubMedClient struct {
	baseURL    string
	apiKey     string
	email      string // Required by NCBI for large-scale queries
	httpClient *http.Client
	limiter    *rate.Limiter
}

// PubMedConfig contains configuration for PubMed client
type PubMedConfig struct {
	BaseURL   string
	APIKey    string
	Email     string
	Timeout   time.Duration
	RateLimit int
}

// NewPubMedClient creates a new PubMed E-utilities client. NCBI allows
// 3 requests per second without an API key and 10 with one.
func NewPubMedClient(config PubMedConfig) *PubMedClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"
	}
	if config.RateLimit == 0 {
		config.RateLimit = 3
		if config.APIKey != "" {
			config.RateLimit = 10
		}
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	return &PubMedClient{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		email:   config.Email,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimit),
	}
}

// PubMedSearchResponse represents the XML response from PubMed search
type PubMedSearchResponse struct {
	XMLName xml.Name `xml:"eSearchResult"`
	Count   int      `xml:"Count"`
	IDList  struct {
		IDs []string `xml:"Id"`
	} `xml:"IdList"`
}

// PubMedSummaryResponse represents the XML response from PubMed summary
type PubMedSummaryResponse struct {
	XMLName         xml.Name          `xml:"eSummaryResult"`
	DocumentSummary []DocumentSummary `xml:"DocSum"`
}

// DocumentSummary represents a single publication summary from PubMed
type DocumentSummary struct {
	UID   string `xml:"Id"`
	Items []Item `xml:"Item"`
}

// Item represents individual fields in the document summary
type Item struct {
	Name  string `xml:"Name,attr"`
	Type  string `xml:"Type,attr"`
	Value string `xml:",chardata"`
}

// Search queries PubMed for articles matching the query and returns up to
// maxResults summaries
func (p *PubMedClient) Search(ctx context.Context, query string, maxResults int) ([]domain.Article, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	pmids, err := p.searchArticles(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search PubMed: %w", err)
	}
	if len(pmids) == 0 {
		return nil, nil
	}
	if len(pmids) > maxResults {
		pmids = pmids[:maxResults]
	}

	summaries, err := p.getArticleSummaries(ctx, pmids)
	if err != nil {
		return nil, fmt.Errorf("failed to get article summaries: %w", err)
	}

	return p.convertToArticles(summaries), nil
}

// searchArticles performs the initial search and returns PMIDs
func (p *PubMedClient) searchArticles(ctx context.Context, query string, maxResults int) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmode": {"xml"},
		"retmax":  {strconv.Itoa(maxResults)},
		"sort":    {"relevance"},
	}

	body, err := p.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var searchResponse PubMedSearchResponse
	if err := xml.Unmarshal(body, &searchResponse); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return searchResponse.IDList.IDs, nil
}

// getArticleSummaries retrieves summaries for given PMIDs
func (p *PubMedClient) getArticleSummaries(ctx context.Context, pmids []string) ([]DocumentSummary, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"xml"},
	}

	body, err := p.get(ctx, "esummary.fcgi", params)
	if err != nil {
		return nil, err
	}

	var summaryResponse PubMedSummaryResponse
	if err := xml.Unmarshal(body, &summaryResponse); err != nil {
		return nil, fmt.Errorf("failed to parse summary response: %w", err)
	}

	return summaryResponse.DocumentSummary, nil
}

// get issues one rate-limited E-utilities request
func (p *PubMedClient) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if p.apiKey != "" {
		params.Set("api_key", p.apiKey)
	}
	if p.email != "" {
		params.Set("email", p.email)
	}

	fullURL := fmt.Sprintf("%s%s?%s", p.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubMed returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// convertToArticles converts PubMed summaries to domain articles
func (p *PubMedClient) convertToArticles(summaries []DocumentSummary) []domain.Article {
	var articles []domain.Article

	for _, summary := range summaries {
		article := domain.Article{
			ID:     summary.UID,
			URL:    fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", summary.UID),
			Source: "PubMed",
		}

		for _, item := range summary.Items {
			if item.Name == "Title" {
				article.Title = cleanXMLValue(item.Value)
			}
		}

		articles = append(articles, article)
	}

	return articles
}

// cleanXMLValue removes inline formatting tags and cleans up text
func cleanXMLValue(value string) string {
	cleaners := []string{
		"<b>", "</b>",
		"<i>", "</i>",
		"<em>", "</em>",
		"<strong>", "</strong>",
	}

	result := value
	for _, cleaner := range cleaners {
		result = strings.ReplaceAll(result, cleaner, "")
	}

	return strings.TrimSpace(result)
}
