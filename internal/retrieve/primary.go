package retrieve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// exaAPIURL is a var to allow test overrides via httptest.
var exaAPIURL = "https://api.exa.ai/contents"

// ExaAPIURL returns the current extraction endpoint URL.
// Exposed for use by integration tests via httptest servers.
func ExaAPIURL() string { return exaAPIURL }

// SetExaAPIURL overrides the extraction endpoint URL.
// Intended for use in tests only.
func SetExaAPIURL(u string) { exaAPIURL = u }

// extractionHTTPClient is used for all primary-extraction calls. The
// service renders bot-protected pages server-side, which can be slow.
var extractionHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
}

// Extractor is the interface for primary clean-text extraction backends.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// NewExtractor returns the Exa-backed Extractor. The API key is read from
// EXA_API_KEY at construction time and validated immediately.
func NewExtractor() (Extractor, error) {
	apiKey := os.Getenv("EXA_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("EXA_API_KEY environment variable not set")
	}
	return &exaExtractor{apiKey: apiKey}, nil
}

type exaExtractor struct {
	apiKey string // unexported; never serialized by encoding/json
}

type exaRequest struct {
	URLs []string `json:"urls"`
	Text bool     `json:"text"`
}

type exaResponse struct {
	Results []struct {
		URL  string `json:"url"`
		Text string `json:"text"`
	} `json:"results"`
	Error string `json:"error"`
}

func (e *exaExtractor) Extract(ctx context.Context, url string) (string, error) {
	bodyBytes, err := json.Marshal(exaRequest{URLs: []string{url}, Text: true})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, exaAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", e.apiKey)

	resp, err := extractionHTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	const maxBodyBytes = 10 * 1024 * 1024 // 10 MiB
	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	var er exaResponse
	if err := json.Unmarshal(respBytes, &er); err != nil {
		return "", fmt.Errorf("parsing response JSON (HTTP %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if er.Error != "" {
			return "", fmt.Errorf("exa: %s", er.Error)
		}
		return "", fmt.Errorf("exa: HTTP %d", resp.StatusCode)
	}
	if len(er.Results) == 0 || er.Results[0].Text == "" {
		return "", fmt.Errorf("exa: no text content for %s", url)
	}
	return er.Results[0].Text, nil
}
