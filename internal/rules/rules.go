package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/branchaudit/internal/schema"
)

// Cluster is a named group of related prohibited phrases sharing one severity.
type Cluster struct {
	Name     string          `yaml:"name"`
	Severity schema.Severity `yaml:"severity"`
	Keywords []string        `yaml:"keywords"`
}

// Set is the full rule configuration for an audit run. Built once at
// startup and treated as immutable; safe to share across concurrent runs.
type Set struct {
	Name     string    `yaml:"name"`
	Clusters []Cluster `yaml:"clusters"`
	// Disclosures are mandatory strings expected somewhere on the page.
	Disclosures []string `yaml:"disclosures"`
	// OBATerms flag potential outside-business-activity language in
	// search snippets; ReputationTerms flag negative-press language.
	OBATerms        []string `yaml:"oba_terms"`
	ReputationTerms []string `yaml:"reputation_terms"`
}

// Get returns the built-in rule set for the given name.
func Get(name string) (*Set, error) {
	switch name {
	case "standard", "":
		return standard(), nil
	case "strict":
		return strict(), nil
	default:
		return nil, fmt.Errorf("unknown profile %q: valid profiles are standard, strict", name)
	}
}

// Load reads a rule set from a YAML file and validates it. Keyword lists
// differ between deployments, so overrides live in config rather than code.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks structural invariants: named, non-empty clusters with
// known severities and non-empty keywords.
func (s *Set) Validate() error {
	if len(s.Clusters) == 0 {
		return fmt.Errorf("at least one cluster is required")
	}
	for i, c := range s.Clusters {
		if c.Name == "" {
			return fmt.Errorf("cluster %d: missing name", i)
		}
		if !schema.IsValidSeverity(c.Severity) {
			return fmt.Errorf("cluster %s: invalid severity %q (must be INFO, WARNING, or ERROR)", c.Name, c.Severity)
		}
		if len(c.Keywords) == 0 {
			return fmt.Errorf("cluster %s: missing keywords", c.Name)
		}
		for j, kw := range c.Keywords {
			if kw == "" {
				return fmt.Errorf("cluster %s: keyword %d is empty", c.Name, j)
			}
		}
	}
	for i, d := range s.Disclosures {
		if d == "" {
			return fmt.Errorf("disclosure %d is empty", i)
		}
	}
	return nil
}
