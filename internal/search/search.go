// Package search queries a SerpAPI-compatible search engine for public
// reputation signals about an advisor.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/branchaudit/internal/schema"
)

// serpAPIURL is a var to allow test overrides via httptest.
var serpAPIURL = "https://serpapi.com/search"

// SerpAPIURL returns the current search endpoint URL.
// Exposed for use by integration tests via httptest servers.
func SerpAPIURL() string { return serpAPIURL }

// SetSerpAPIURL overrides the search endpoint URL.
// Intended for use in tests only.
func SetSerpAPIURL(u string) { serpAPIURL = u }

// sharedHTTPClient is used for all search calls; the provider itself
// enforces its own internal timeout well under this bound.
var sharedHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// DefaultResultCount is the number of organic results requested when the
// caller does not specify one.
const DefaultResultCount = 5

// Provider is the interface for reputation-search backends.
type Provider interface {
	Search(ctx context.Context, query string, count int) ([]schema.SearchResult, error)
}

// NewProvider returns the SerpAPI-backed Provider. The API key is read
// from SERPAPI_API_KEY at construction time and validated immediately;
// a missing key fails here, before any network call is attempted.
func NewProvider() (Provider, error) {
	apiKey := os.Getenv("SERPAPI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("SERPAPI_API_KEY environment variable not set")
	}
	return &serpProvider{apiKey: apiKey}, nil
}

// BuildQuery assembles the fixed reputation query template. The city is
// omitted from the join when empty so the query carries no double spaces.
func BuildQuery(advisor, city string) string {
	parts := []string{advisor}
	if city != "" {
		parts = append(parts, city)
	}
	parts = append(parts, "financial advisor")
	return strings.Join(parts, " ")
}

type serpProvider struct {
	apiKey string // unexported; never serialized by encoding/json
}

type serpResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
	Error string `json:"error"`
}

func (p *serpProvider) Search(ctx context.Context, query string, count int) ([]schema.SearchResult, error) {
	if count <= 0 {
		count = DefaultResultCount
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", p.apiKey)
	params.Set("num", strconv.Itoa(count))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, serpAPIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	resp, err := sharedHTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	const maxBodyBytes = 10 * 1024 * 1024 // 10 MiB
	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var sr serpResponse
	if err := json.Unmarshal(respBytes, &sr); err != nil {
		return nil, fmt.Errorf("parsing response JSON (HTTP %d, body: %s): %w", resp.StatusCode, truncate(string(respBytes), 200), err)
	}

	// Check status code first, then the structured error field.
	if resp.StatusCode != http.StatusOK {
		if sr.Error != "" {
			return nil, fmt.Errorf("serpapi: %s", sr.Error)
		}
		return nil, fmt.Errorf("serpapi: HTTP %d: %s", resp.StatusCode, truncate(string(respBytes), 200))
	}
	if sr.Error != "" {
		return nil, fmt.Errorf("serpapi: %s", sr.Error)
	}

	// An empty organic list is a valid, non-error outcome.
	results := make([]schema.SearchResult, 0, len(sr.OrganicResults))
	for _, r := range sr.OrganicResults {
		results = append(results, schema.SearchResult{
			Title:   r.Title,
			Link:    r.Link,
			Snippet: r.Snippet,
		})
	}
	return results, nil
}

// truncate limits a string to maxLen runes, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
