package retrieve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func withExaServer(t *testing.T, handler http.HandlerFunc) Extractor {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	orig := ExaAPIURL()
	SetExaAPIURL(srv.URL)
	t.Cleanup(func() { SetExaAPIURL(orig) })
	t.Setenv("EXA_API_KEY", "test-key")
	e, err := NewExtractor()
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	return e
}

func TestNewExtractor_NoKey(t *testing.T) {
	t.Setenv("EXA_API_KEY", "")
	_, err := NewExtractor()
	if err == nil {
		t.Error("expected error for missing API key, got nil")
	}
}

func TestExtract_Success(t *testing.T) {
	e := withExaServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		var req struct {
			URLs []string `json:"urls"`
			Text bool     `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(req.URLs) != 1 || req.URLs[0] != "https://example.com" || !req.Text {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Write([]byte(`{"results":[{"url":"https://example.com","text":"clean text"}]}`))
	})

	text, err := e.Extract(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "clean text" {
		t.Errorf("text = %q", text)
	}
}

func TestExtract_EmptyResults(t *testing.T) {
	e := withExaServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})
	_, err := e.Extract(context.Background(), "https://example.com")
	if err == nil {
		t.Error("expected error for empty result list, got nil")
	}
}

func TestExtract_ServiceError(t *testing.T) {
	e := withExaServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":"quota exhausted"}`))
	})
	_, err := e.Extract(context.Background(), "https://example.com")
	if err == nil {
		t.Error("expected service error, got nil")
	}
}
