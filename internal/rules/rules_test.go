package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/branchaudit/internal/schema"
)

func TestGet_Standard(t *testing.T) {
	s, err := Get("standard")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("standard set invalid: %v", err)
	}
	if len(s.Disclosures) == 0 {
		t.Error("standard set has no disclosures")
	}
}

func TestGet_EmptyNameDefaultsToStandard(t *testing.T) {
	s, err := Get("")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.Name != "standard" {
		t.Errorf("Name = %q, want standard", s.Name)
	}
}

func TestGet_StrictExtendsStandard(t *testing.T) {
	std, _ := Get("standard")
	str, err := Get("strict")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(str.Clusters) <= len(std.Clusters) {
		t.Errorf("strict has %d clusters, want more than standard's %d", len(str.Clusters), len(std.Clusters))
	}
	if err := str.Validate(); err != nil {
		t.Errorf("strict set invalid: %v", err)
	}
}

func TestGet_Unknown(t *testing.T) {
	_, err := Get("lenient")
	if err == nil {
		t.Error("expected error for unknown profile, got nil")
	}
}

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeRules(t, `
name: branch-override
clusters:
  - name: Promissory/Guarantees
    severity: ERROR
    keywords: ["guaranteed returns"]
disclosures: ["Member FINRA"]
oba_terms: ["board", "owner"]
reputation_terms: ["scam"]
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "branch-override" {
		t.Errorf("Name = %q", s.Name)
	}
	if s.Clusters[0].Severity != schema.SeverityError {
		t.Errorf("Severity = %q, want ERROR", s.Clusters[0].Severity)
	}
}

func TestLoad_InvalidSeverity(t *testing.T) {
	path := writeRules(t, `
clusters:
  - name: Bad
    severity: FATAL
    keywords: ["x"]
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "invalid severity") {
		t.Errorf("err = %v, want invalid severity", err)
	}
}

func TestLoad_EmptyClusters(t *testing.T) {
	path := writeRules(t, "disclosures: [\"Member SIPC\"]\n")
	_, err := Load(path)
	if err == nil {
		t.Error("expected error for empty clusters, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoad_MissingKeywords(t *testing.T) {
	path := writeRules(t, `
clusters:
  - name: Empty
    severity: INFO
    keywords: []
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "missing keywords") {
		t.Errorf("err = %v, want missing keywords", err)
	}
}
