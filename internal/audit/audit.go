// Package audit sequences a single compliance-recon run:
//
//	START → SEARCH_REPUTATION → RESOLVE_TARGET_URL → RETRIEVE_CONTENT → CLASSIFY → DONE
//
// with terminal NO_TARGET when no URL can be resolved. Failures are
// captured as report data, never propagated: every reachable failure
// degrades to partial data rather than aborting the run.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/branchaudit/internal/classify"
	"github.com/dshills/branchaudit/internal/metrics"
	"github.com/dshills/branchaudit/internal/retrieve"
	"github.com/dshills/branchaudit/internal/review"
	"github.com/dshills/branchaudit/internal/rules"
	"github.com/dshills/branchaudit/internal/schema"
	"github.com/dshills/branchaudit/internal/search"
)

// Input is one audit request. Advisor is required by the CLI surface; the
// runner itself tolerates any combination and degrades to NO_TARGET when
// nothing resolves to a URL.
type Input struct {
	Advisor     string
	City        string
	TargetURL   string
	ResultCount int
}

// Runner holds the collaborators for audit runs. A Runner is read-only
// after construction and safe for concurrent runs: each Run operates on
// its own report, and the rule set is immutable.
type Runner struct {
	// Search may be nil when the provider could not be constructed
	// (missing API key); SearchErr then carries the reason, which is
	// surfaced per-run without failing the run.
	Search    search.Provider
	SearchErr string

	Retriever *retrieve.Retriever
	Rules     *rules.Set
	Metrics   *metrics.Collector // optional
	Log       zerolog.Logger

	Tool    string
	Version string
}

// Run executes the full state machine for one input and always returns a
// renderable report.
func (r *Runner) Run(ctx context.Context, in Input) *schema.Report {
	start := time.Now()
	rep := &schema.Report{
		Tool:        r.Tool,
		Version:     r.Version,
		RunID:       uuid.NewString(),
		GeneratedAt: start.UTC(),
		Input: schema.Input{
			Advisor:     in.Advisor,
			City:        in.City,
			TargetURL:   in.TargetURL,
			Profile:     r.Rules.Name,
			ResultCount: in.ResultCount,
		},
		SearchResults:      []schema.SearchResult{},
		Findings:           []schema.Finding{},
		MissingDisclosures: []string{},
	}

	r.searchReputation(ctx, in, rep)

	target := r.resolveTarget(in, rep)
	if target == "" {
		rep.State = schema.StateNoTarget
		rep.Retrieval = schema.Retrieval{Status: schema.RetrievalSkipped}
		rep.Note = "no target URL: none supplied and the reputation search returned no usable link"
		r.finish(rep, start)
		return rep
	}

	outcome := r.Retriever.Retrieve(ctx, target)
	rep.Retrieval = outcome.Record()

	// Classification runs only on retrieved text. Scanning an empty string
	// would report every disclosure missing, which is a false signal when
	// retrieval simply failed.
	switch outcome.Status {
	case schema.RetrievalSuccess:
		rep.Findings, rep.MissingDisclosures = classify.Scan(outcome.Text, r.Rules)
		if rep.Findings == nil {
			rep.Findings = []schema.Finding{}
		}
		if rep.MissingDisclosures == nil {
			rep.MissingDisclosures = []string{}
		}
	case schema.RetrievalBlocked:
		rep.Note = fmt.Sprintf("site actively blocked automated access (HTTP %d); classification skipped", outcome.HTTPStatus)
	case schema.RetrievalError:
		rep.Note = "could not reach site; classification skipped"
	}

	rep.State = schema.StateDone
	r.finish(rep, start)
	return rep
}

// searchReputation runs the non-fatal reputation step. Any failure lands
// in rep.SearchError and the run continues.
func (r *Runner) searchReputation(ctx context.Context, in Input, rep *schema.Report) {
	if r.Search == nil {
		if r.SearchErr != "" {
			rep.SearchError = r.SearchErr
		} else {
			rep.SearchError = "search provider not configured"
		}
		return
	}

	query := search.BuildQuery(in.Advisor, in.City)
	results, err := r.Search.Search(ctx, query, in.ResultCount)
	if err != nil {
		r.Log.Warn().Err(err).Str("query", query).Msg("reputation search failed; continuing without it")
		rep.SearchError = err.Error()
		return
	}
	rep.SearchResults = search.Flag(results, r.Rules)
}

// resolveTarget prefers an explicit URL, then the top search result link.
func (r *Runner) resolveTarget(in Input, rep *schema.Report) string {
	if in.TargetURL != "" {
		return in.TargetURL
	}
	if len(rep.SearchResults) > 0 && rep.SearchResults[0].Link != "" {
		return rep.SearchResults[0].Link
	}
	return ""
}

func (r *Runner) finish(rep *schema.Report, start time.Time) {
	score := review.Score(rep.Findings, rep.MissingDisclosures, rep.SearchResults)
	errs, warnings, infos := review.Counts(rep.Findings)
	rep.Summary = schema.Summary{
		RiskLevel:    review.Level(rep.Findings, rep.MissingDisclosures, score),
		Score:        score,
		ErrorCount:   errs,
		WarningCount: warnings,
		InfoCount:    infos,
	}

	elapsed := time.Since(start)
	r.Metrics.RecordAudit(rep, elapsed)
	r.Log.Info().
		Str("run_id", rep.RunID).
		Str("state", string(rep.State)).
		Str("risk_level", string(rep.Summary.RiskLevel)).
		Int("score", rep.Summary.Score).
		Dur("elapsed", elapsed).
		Msg("audit complete")
}
