package schema

import "testing"

func TestSeverityOrdinal_Ordering(t *testing.T) {
	if !(SeverityOrdinal(SeverityInfo) < SeverityOrdinal(SeverityWarning) &&
		SeverityOrdinal(SeverityWarning) < SeverityOrdinal(SeverityError)) {
		t.Error("severity ordinals are not strictly increasing")
	}
	if SeverityOrdinal("FATAL") != -1 {
		t.Error("unknown severity should map to -1")
	}
}

func TestRiskOrdinal_Ordering(t *testing.T) {
	if !(RiskOrdinal(RiskClean) < RiskOrdinal(RiskNeedsReview) &&
		RiskOrdinal(RiskNeedsReview) < RiskOrdinal(RiskEscalate)) {
		t.Error("risk ordinals are not strictly increasing")
	}
	if RiskOrdinal("UNKNOWN") != -1 {
		t.Error("unknown risk level should map to -1")
	}
}
