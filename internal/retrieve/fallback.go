package retrieve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultFetchTimeout bounds the direct-fetch fallback path.
const DefaultFetchTimeout = 12 * time.Second

// browserHeaders mimic a real desktop browser. Many advisor and brokerage
// sites run bot protection that rejects bare Go user agents; this lowers
// the block rate but is best-effort only.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
}

// Fetcher performs the direct GET-and-strip fallback path.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher with the given timeout; zero or negative
// values select DefaultFetchTimeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch GETs the URL with browser-like headers. On any 2xx response it
// returns the status and the page's visible text; on other statuses it
// returns the status with empty text and no error (the caller decides
// blocked-vs-error semantics). Transport failures return a non-nil error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", fmt.Errorf("creating HTTP request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, "", nil
	}

	text, err := extractText(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("parsing HTML from %s: %w", url, err)
	}
	return resp.StatusCode, text, nil
}

// extractText parses HTML and returns whitespace-normalized visible text.
// Script, style, and noscript elements are removed first — their contents
// would pollute keyword matching with code and CSS tokens.
func extractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()

	sel := doc.Find("body")
	raw := sel.Text()
	if sel.Length() == 0 {
		raw = doc.Text()
	}
	return strings.Join(strings.Fields(raw), " "), nil
}
