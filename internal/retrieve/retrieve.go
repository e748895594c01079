// Package retrieve resolves best-effort clean text for a single URL,
// trying a primary extraction service and falling back to a direct
// fetch-and-strip path.
package retrieve

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dshills/branchaudit/internal/redact"
	"github.com/dshills/branchaudit/internal/schema"
)

// excerptRunes bounds the report excerpt taken from retrieved text.
const excerptRunes = 400

// Outcome is the tagged result of a retrieval attempt. Exactly one
// variant is populated, selected by Status. Text is always plain
// extracted text, never raw markup.
type Outcome struct {
	Status     schema.RetrievalStatus
	Source     schema.Source
	Text       string
	HTTPStatus int
	Err        string
}

// Retriever composes the primary extraction service with the direct-fetch
// fallback. Primary may be nil (e.g. no API key configured); the
// retriever then goes straight to the fallback path.
type Retriever struct {
	Primary  Extractor
	Fallback *Fetcher
	Log      zerolog.Logger
}

// Retrieve resolves page text for rawURL. Every path terminates in one of
// the three outcome variants; no error escapes this boundary. Primary
// failures are recoverable by design and only logged — the fallback
// result decides the final outcome.
func (r *Retriever) Retrieve(ctx context.Context, rawURL string) Outcome {
	url := Normalize(rawURL)

	if r.Primary != nil {
		text, err := r.Primary.Extract(ctx, url)
		if err == nil && text != "" {
			r.Log.Debug().Str("url", url).Int("chars", len(text)).Msg("primary extraction succeeded")
			return Outcome{Status: schema.RetrievalSuccess, Source: schema.SourcePrimary, Text: text}
		}
		r.Log.Debug().Str("url", url).Err(err).Msg("primary extraction failed, trying direct fetch")
	}

	status, text, err := r.Fallback.Fetch(ctx, url)
	if err != nil {
		return Outcome{Status: schema.RetrievalError, Err: err.Error()}
	}
	if status < 200 || status > 299 {
		r.Log.Debug().Str("url", url).Int("status", status).Msg("direct fetch blocked")
		return Outcome{Status: schema.RetrievalBlocked, HTTPStatus: status}
	}
	return Outcome{Status: schema.RetrievalSuccess, Source: schema.SourceFallback, Text: text}
}

// Record converts an Outcome to its report form. The full text is hashed
// for provenance but not carried in the report; the excerpt is
// secret-redacted before inclusion.
func (o Outcome) Record() schema.Retrieval {
	rec := schema.Retrieval{
		Status:     o.Status,
		Source:     o.Source,
		HTTPStatus: o.HTTPStatus,
		Error:      o.Err,
	}
	if o.Status == schema.RetrievalSuccess {
		sum := sha256.Sum256([]byte(o.Text))
		rec.TextHash = fmt.Sprintf("sha256:%x", sum)
		rec.TextLength = len(o.Text)
		rec.Excerpt = redact.Redact(truncateRunes(o.Text, excerptRunes))
	}
	return rec
}

// truncateRunes limits a string to maxLen runes, appending "..." if truncated.
func truncateRunes(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
