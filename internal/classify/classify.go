// Package classify scans retrieved page text against a rule set.
//
// Matching is pure substring containment on lower-cased text: no
// tokenization, no stemming, no word boundaries. "crypto" matches inside
// "cryptography". That false-positive rate is accepted — findings are
// advisory leads for a human auditor, not determinations.
package classify

import (
	"strings"

	"github.com/dshills/branchaudit/internal/rules"
	"github.com/dshills/branchaudit/internal/schema"
)

// Scan checks text against the rule set and returns keyword findings and
// the list of mandatory disclosures absent from the text. Output order is
// deterministic: disclosures in configured order, then clusters in
// configured order with keywords in configured order within each.
func Scan(text string, set *rules.Set) (findings []schema.Finding, missing []string) {
	lower := strings.ToLower(text)

	for _, d := range set.Disclosures {
		if !strings.Contains(lower, strings.ToLower(d)) {
			missing = append(missing, d)
		}
	}

	for _, c := range set.Clusters {
		for _, kw := range c.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				findings = append(findings, schema.Finding{
					Category: c.Name,
					Term:     kw,
					Severity: c.Severity,
				})
			}
		}
	}
	return findings, missing
}
