package search

import (
	"strings"

	"github.com/dshills/branchaudit/internal/rules"
	"github.com/dshills/branchaudit/internal/schema"
)

// Flag annotates each result with OBA and reputation markers found in its
// title or snippet. Same substring-containment caveat as page
// classification: advisory, high false-positive rate. Flag order is
// deterministic (OBA terms in configured order, then reputation terms).
func Flag(results []schema.SearchResult, set *rules.Set) []schema.SearchResult {
	out := make([]schema.SearchResult, len(results))
	for i, r := range results {
		text := strings.ToLower(r.Title + " " + r.Snippet)
		var flags []schema.SearchFlag
		for _, term := range set.OBATerms {
			if strings.Contains(text, strings.ToLower(term)) {
				flags = append(flags, schema.SearchFlag{Kind: schema.FlagOBA, Term: term})
			}
		}
		for _, term := range set.ReputationTerms {
			if strings.Contains(text, strings.ToLower(term)) {
				flags = append(flags, schema.SearchFlag{Kind: schema.FlagReputation, Term: term})
			}
		}
		r.Flags = flags
		out[i] = r
	}
	return out
}
