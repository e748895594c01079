package retrieve

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dshills/branchaudit/internal/schema"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com"},
		{"http://x.com", "http://x.com"},
		{"https://x.com/page", "https://x.com/page"},
		{"www.strategiesforwealth.com", "https://www.strategiesforwealth.com"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// stubExtractor fakes the primary extraction service.
type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(ctx context.Context, url string) (string, error) {
	return s.text, s.err
}

func htmlServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" || strings.Contains(r.Header.Get("User-Agent"), "Go-http-client") {
			t.Errorf("fetch did not send a browser User-Agent: %q", r.Header.Get("User-Agent"))
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRetrieve_PrimarySuccess(t *testing.T) {
	r := &Retriever{
		Primary:  &stubExtractor{text: "clean page text"},
		Fallback: NewFetcher(0),
		Log:      zerolog.Nop(),
	}
	out := r.Retrieve(context.Background(), "example.com")
	if out.Status != schema.RetrievalSuccess || out.Source != schema.SourcePrimary {
		t.Fatalf("outcome = %+v, want primary success", out)
	}
	if out.Text != "clean page text" {
		t.Errorf("Text = %q", out.Text)
	}
}

func TestRetrieve_FallbackAfterPrimaryError(t *testing.T) {
	srv := htmlServer(t, http.StatusOK,
		`<html><head><style>body{color:red}</style></head>
		<body><script>var guaranteed = "nope";</script><h1>Guaranteed income for life</h1><p>Call us.</p></body></html>`)

	r := &Retriever{
		Primary:  &stubExtractor{err: errors.New("rate limited")},
		Fallback: NewFetcher(0),
		Log:      zerolog.Nop(),
	}
	out := r.Retrieve(context.Background(), srv.URL)
	if out.Status != schema.RetrievalSuccess || out.Source != schema.SourceFallback {
		t.Fatalf("outcome = %+v, want fallback success", out)
	}
	if !strings.Contains(out.Text, "Guaranteed income for life") {
		t.Errorf("Text missing visible content: %q", out.Text)
	}
	// Script and style bodies must not leak into the extracted text.
	if strings.Contains(out.Text, "var guaranteed") || strings.Contains(out.Text, "color:red") {
		t.Errorf("Text contains script/style content: %q", out.Text)
	}
}

func TestRetrieve_FallbackAfterEmptyPrimaryText(t *testing.T) {
	srv := htmlServer(t, http.StatusOK, `<html><body>hello</body></html>`)
	r := &Retriever{
		Primary:  &stubExtractor{text: ""},
		Fallback: NewFetcher(0),
		Log:      zerolog.Nop(),
	}
	out := r.Retrieve(context.Background(), srv.URL)
	if out.Status != schema.RetrievalSuccess || out.Source != schema.SourceFallback {
		t.Fatalf("outcome = %+v, want fallback success on empty primary text", out)
	}
}

func TestRetrieve_Blocked403(t *testing.T) {
	srv := htmlServer(t, http.StatusForbidden, "denied")
	r := &Retriever{Fallback: NewFetcher(0), Log: zerolog.Nop()}
	out := r.Retrieve(context.Background(), srv.URL)
	if out.Status != schema.RetrievalBlocked {
		t.Fatalf("Status = %q, want blocked", out.Status)
	}
	if out.HTTPStatus != http.StatusForbidden {
		t.Errorf("HTTPStatus = %d, want 403", out.HTTPStatus)
	}
}

func TestRetrieve_BlockedNon2xx(t *testing.T) {
	srv := htmlServer(t, http.StatusServiceUnavailable, "")
	r := &Retriever{Fallback: NewFetcher(0), Log: zerolog.Nop()}
	out := r.Retrieve(context.Background(), srv.URL)
	if out.Status != schema.RetrievalBlocked || out.HTTPStatus != http.StatusServiceUnavailable {
		t.Errorf("outcome = %+v, want blocked 503", out)
	}
}

func TestRetrieve_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	r := &Retriever{Fallback: NewFetcher(0), Log: zerolog.Nop()}
	out := r.Retrieve(context.Background(), srv.URL)
	if out.Status != schema.RetrievalError {
		t.Fatalf("Status = %q, want error", out.Status)
	}
	if out.Err == "" {
		t.Error("Err is empty for transport failure")
	}
}

func TestOutcome_RecordHashesAndRedacts(t *testing.T) {
	out := Outcome{
		Status: schema.RetrievalSuccess,
		Source: schema.SourceFallback,
		Text:   "Welcome. api_key = sk-abcdefghijklmnopqrstuvwxyz123456 end",
	}
	rec := out.Record()
	if !strings.HasPrefix(rec.TextHash, "sha256:") {
		t.Errorf("TextHash = %q, want sha256 prefix", rec.TextHash)
	}
	if rec.TextLength != len(out.Text) {
		t.Errorf("TextLength = %d, want %d", rec.TextLength, len(out.Text))
	}
	if strings.Contains(rec.Excerpt, "sk-abcdef") {
		t.Errorf("excerpt leaked a secret: %q", rec.Excerpt)
	}
}

func TestOutcome_RecordNonSuccessCarriesNoText(t *testing.T) {
	rec := Outcome{Status: schema.RetrievalBlocked, HTTPStatus: 403}.Record()
	if rec.TextHash != "" || rec.Excerpt != "" || rec.TextLength != 0 {
		t.Errorf("blocked record carries text fields: %+v", rec)
	}
}
