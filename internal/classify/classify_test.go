package classify

import (
	"reflect"
	"testing"

	"github.com/dshills/branchaudit/internal/rules"
	"github.com/dshills/branchaudit/internal/schema"
)

func testSet() *rules.Set {
	return &rules.Set{
		Name: "test",
		Clusters: []rules.Cluster{
			{
				Name:     "Promissory/Guarantees",
				Severity: schema.SeverityError,
				Keywords: []string{"guaranteed returns", "guaranteed income", "risk-free"},
			},
			{
				Name:     "Unapproved Products",
				Severity: schema.SeverityWarning,
				Keywords: []string{"crypto", "ethereum"},
			},
		},
		Disclosures: []string{"Member FINRA", "Member SIPC"},
	}
}

func TestScan_CaseInsensitiveMatch(t *testing.T) {
	findings, _ := Scan("GUARANTEED RETURNS on your investment", testSet())
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	f := findings[0]
	if f.Category != "Promissory/Guarantees" || f.Term != "guaranteed returns" || f.Severity != schema.SeverityError {
		t.Errorf("unexpected finding: %+v", f)
	}
}

func TestScan_MissingDisclosures(t *testing.T) {
	_, missing := Scan("We are a proud Member FINRA firm.", testSet())
	want := []string{"Member SIPC"}
	if !reflect.DeepEqual(missing, want) {
		t.Errorf("missing = %v, want %v", missing, want)
	}
}

func TestScan_AllDisclosuresPresent(t *testing.T) {
	_, missing := Scan("member finra and member sipc", testSet())
	if len(missing) != 0 {
		t.Errorf("missing = %v, want none", missing)
	}
}

func TestScan_SubstringFalsePositiveAccepted(t *testing.T) {
	// "crypto" matches inside "cryptography" on purpose.
	findings, _ := Scan("We use modern cryptography to protect your data.", testSet())
	if len(findings) != 1 || findings[0].Term != "crypto" {
		t.Errorf("findings = %+v, want single crypto match", findings)
	}
}

func TestScan_OrderStableAndIdempotent(t *testing.T) {
	text := "Risk-free ethereum strategies with guaranteed income."
	f1, m1 := Scan(text, testSet())
	f2, m2 := Scan(text, testSet())
	if !reflect.DeepEqual(f1, f2) || !reflect.DeepEqual(m1, m2) {
		t.Fatal("repeated scans differ")
	}
	// Cluster order first, keyword order within cluster.
	wantTerms := []string{"guaranteed income", "risk-free", "ethereum"}
	if len(f1) != len(wantTerms) {
		t.Fatalf("findings = %+v, want terms %v", f1, wantTerms)
	}
	for i, term := range wantTerms {
		if f1[i].Term != term {
			t.Errorf("finding %d term = %q, want %q", i, f1[i].Term, term)
		}
	}
}

func TestScan_EmptyTextMissesEverything(t *testing.T) {
	findings, missing := Scan("", testSet())
	if len(findings) != 0 {
		t.Errorf("findings = %+v, want none", findings)
	}
	if len(missing) != 2 {
		t.Errorf("missing = %v, want both disclosures", missing)
	}
}
