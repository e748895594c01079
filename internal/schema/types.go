package schema

import "time"

// Report is the top-level output structure for a single audit run.
type Report struct {
	Tool        string    `json:"tool"`
	Version     string    `json:"version"`
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	State       RunState  `json:"state"`
	Input       Input     `json:"input"`

	SearchResults []SearchResult `json:"search_results"`
	// SearchError records a reputation-search failure. The run continues;
	// an empty string means the search step completed (possibly with zero hits).
	SearchError string `json:"search_error,omitempty"`

	Retrieval          Retrieval `json:"retrieval"`
	Findings           []Finding `json:"findings"`
	MissingDisclosures []string  `json:"missing_disclosures"`

	Summary Summary `json:"summary"`
	// Note carries a human-readable explanation for degraded runs
	// (NO_TARGET, blocked retrieval), empty otherwise.
	Note string `json:"note,omitempty"`
}

// Input captures the parameters used for this run.
type Input struct {
	Advisor           string `json:"advisor"`
	City              string `json:"city,omitempty"`
	TargetURL         string `json:"target_url,omitempty"`
	Profile           string `json:"profile"`
	RulesFile         string `json:"rules_file,omitempty"`
	ResultCount       int    `json:"result_count"`
	SeverityThreshold string `json:"severity_threshold"`
}

// Summary holds the computed risk level and finding counts.
// Counts always reflect all findings before any --severity-threshold filtering.
type Summary struct {
	RiskLevel    RiskLevel `json:"risk_level"`
	Score        int       `json:"score"`
	ErrorCount   int       `json:"error_count"`
	WarningCount int       `json:"warning_count"`
	InfoCount    int       `json:"info_count"`
}

// RunState is the terminal state of the orchestrator.
type RunState string

const (
	// StateDone is the normal terminal state, possibly with partial data.
	StateDone RunState = "DONE"
	// StateNoTarget means no target URL could be resolved; retrieval and
	// classification sections are empty.
	StateNoTarget RunState = "NO_TARGET"
)

// Severity levels for findings.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// SeverityOrdinal returns the numeric ordering for a severity.
// INFO(0) < WARNING(1) < ERROR(2). Returns -1 for an unrecognised value.
func SeverityOrdinal(s Severity) int {
	switch s {
	case SeverityInfo:
		return 0
	case SeverityWarning:
		return 1
	case SeverityError:
		return 2
	default:
		return -1
	}
}

// IsValidSeverity reports whether s is one of the three defined severities.
func IsValidSeverity(s Severity) bool {
	return SeverityOrdinal(s) >= 0
}

// RiskLevel is the overall assessment of the audited branch presence.
type RiskLevel string

const (
	RiskClean       RiskLevel = "CLEAN"
	RiskNeedsReview RiskLevel = "NEEDS_REVIEW"
	RiskEscalate    RiskLevel = "ESCALATE"
)

// RiskOrdinal returns the numeric ordering for a risk level, used by the
// --fail-on comparison. CLEAN(0) < NEEDS_REVIEW(1) < ESCALATE(2).
// Returns -1 for an unrecognised level.
func RiskOrdinal(r RiskLevel) int {
	switch r {
	case RiskClean:
		return 0
	case RiskNeedsReview:
		return 1
	case RiskEscalate:
		return 2
	default:
		return -1
	}
}

// Finding is a single rule-set match in the retrieved page text.
type Finding struct {
	Category string   `json:"category"`
	Term     string   `json:"term"`
	Severity Severity `json:"severity"`
}

// SearchResult is one organic hit from the reputation search.
type SearchResult struct {
	Title   string       `json:"title"`
	Link    string       `json:"link"`
	Snippet string       `json:"snippet"`
	Flags   []SearchFlag `json:"flags,omitempty"`
}

// FlagKind classifies a search-result flag.
type FlagKind string

const (
	// FlagOBA marks a potential undisclosed outside business activity.
	FlagOBA FlagKind = "oba"
	// FlagReputation marks negative-reputation language in a snippet.
	FlagReputation FlagKind = "reputation"
)

// SearchFlag is an advisory marker attached to a search result by
// snippet heuristics. High false-positive rate by design.
type SearchFlag struct {
	Kind FlagKind `json:"kind"`
	Term string   `json:"term"`
}

// RetrievalStatus tags the variant of a Retrieval.
type RetrievalStatus string

const (
	// RetrievalSuccess means clean text was obtained from some source.
	RetrievalSuccess RetrievalStatus = "success"
	// RetrievalBlocked means the direct fetch got a non-2xx response;
	// 403 is the canonical "actively blocked" case.
	RetrievalBlocked RetrievalStatus = "blocked"
	// RetrievalError covers transport-level failures (DNS, TLS, timeout).
	RetrievalError RetrievalStatus = "error"
	// RetrievalSkipped means the run never attempted retrieval (NO_TARGET).
	RetrievalSkipped RetrievalStatus = "skipped"
)

// Source identifies which extraction path produced the text.
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

// Retrieval is the tagged outcome of content retrieval. Status selects
// the variant: Source/TextHash/TextLength/Excerpt are set only on
// success, HTTPStatus only when blocked, Error only on error.
type Retrieval struct {
	Status     RetrievalStatus `json:"status"`
	Source     Source          `json:"source,omitempty"`
	HTTPStatus int             `json:"http_status,omitempty"`
	Error      string          `json:"error,omitempty"`
	// TextHash is "sha256:<hex>" of the full retrieved text, kept for
	// audit-evidence provenance; the full text itself is not persisted.
	TextHash   string `json:"text_hash,omitempty"`
	TextLength int    `json:"text_length,omitempty"`
	// Excerpt is a short, secret-redacted slice of the retrieved text.
	Excerpt string `json:"excerpt,omitempty"`
}
