package rules

import "github.com/dshills/branchaudit/internal/schema"

// strict extends the standard set for branches under heightened supervision:
// pressure-tactic language is flagged and the reputation term list is wider.
func strict() *Set {
	s := standard()
	s.Name = "strict"
	s.Clusters = append(s.Clusters, Cluster{
		Name:     "Pressure Tactics",
		Severity: schema.SeverityInfo,
		Keywords: []string{
			"act now", "limited time", "exclusive offer",
			"once in a lifetime", "don't miss out",
		},
	})
	s.Disclosures = append(s.Disclosures, "BrokerCheck")
	s.ReputationTerms = append(s.ReputationTerms,
		"lawsuit", "barred", "sanction", "fraud")
	return s
}
