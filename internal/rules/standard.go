package rules

import "github.com/dshills/branchaudit/internal/schema"

// standard is the default rule set used when no profile or rules file is given.
// Cluster order is significant: findings are emitted in this order.
func standard() *Set {
	return &Set{
		Name: "standard",
		Clusters: []Cluster{
			{
				Name:     "Promissory/Guarantees",
				Severity: schema.SeverityError,
				Keywords: []string{
					"guaranteed returns", "guaranteed income", "guaranteed profit",
					"risk-free", "no risk", "cannot lose", "can't lose",
					"safe as cash",
				},
			},
			{
				Name:     "Performance Claims",
				Severity: schema.SeverityWarning,
				Keywords: []string{
					"best returns", "top performing", "market-beating",
					"outperform the market", "#1 advisor",
				},
			},
			{
				Name:     "Testimonials/Ratings",
				Severity: schema.SeverityWarning,
				Keywords: []string{
					"testimonial", "five-star", "5-star", "client reviews",
					"rated best",
				},
			},
			{
				Name:     "Unapproved Products",
				Severity: schema.SeverityWarning,
				Keywords: []string{
					"crypto", "bitcoin", "ethereum", "nft",
					"private placement",
				},
			},
		},
		Disclosures: []string{
			"Member FINRA",
			"Member SIPC",
		},
		OBATerms:        []string{"board", "owner", "founder", "partner"},
		ReputationTerms: []string{"scam", "complaint"},
	}
}
