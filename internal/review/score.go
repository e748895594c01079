// Package review derives the deterministic risk summary from a run's
// findings, missing disclosures, and search flags.
package review

import "github.com/dshills/branchaudit/internal/schema"

// Score computes the deterministic risk score from all classification
// output. Score is always computed before any --severity-threshold
// filtering. Start: 100, -20 per ERROR, -7 per WARNING, -2 per INFO,
// -10 per missing disclosure, -3 per reputation flag, -1 per OBA flag,
// clamped at 0.
func Score(findings []schema.Finding, missingDisclosures []string, results []schema.SearchResult) int {
	score := 100
	for _, f := range findings {
		switch f.Severity {
		case schema.SeverityError:
			score -= 20
		case schema.SeverityWarning:
			score -= 7
		case schema.SeverityInfo:
			score -= 2
		}
	}
	score -= 10 * len(missingDisclosures)
	for _, r := range results {
		for _, fl := range r.Flags {
			switch fl.Kind {
			case schema.FlagReputation:
				score -= 3
			case schema.FlagOBA:
				score -= 1
			}
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Level computes the deterministic risk level. Any ERROR finding, or a
// score below 50, escalates; any WARNING finding or missing disclosure
// marks the run for review. Level is always computed before any
// --severity-threshold filtering.
func Level(findings []schema.Finding, missingDisclosures []string, score int) schema.RiskLevel {
	for _, f := range findings {
		if f.Severity == schema.SeverityError {
			return schema.RiskEscalate
		}
	}
	if score < 50 {
		return schema.RiskEscalate
	}
	if len(missingDisclosures) > 0 {
		return schema.RiskNeedsReview
	}
	for _, f := range findings {
		if f.Severity == schema.SeverityWarning {
			return schema.RiskNeedsReview
		}
	}
	if len(findings) > 0 { // INFO-only
		return schema.RiskNeedsReview
	}
	return schema.RiskClean
}

// Counts returns the pre-filter error, warning, and info counts from all findings.
func Counts(findings []schema.Finding) (errs, warnings, infos int) {
	for _, f := range findings {
		switch f.Severity {
		case schema.SeverityError:
			errs++
		case schema.SeverityWarning:
			warnings++
		case schema.SeverityInfo:
			infos++
		}
	}
	return
}

// FilterBySeverity returns only findings at or above the given threshold
// severity. Display-only: summary counts are computed before filtering.
func FilterBySeverity(findings []schema.Finding, threshold schema.Severity) []schema.Finding {
	if threshold == schema.SeverityInfo {
		return findings
	}
	out := make([]schema.Finding, 0, len(findings))
	for _, f := range findings {
		if schema.SeverityOrdinal(f.Severity) >= schema.SeverityOrdinal(threshold) {
			out = append(out, f)
		}
	}
	return out
}
