package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/dshills/branchaudit/internal/audit"
	"github.com/dshills/branchaudit/internal/batch"
	"github.com/dshills/branchaudit/internal/metrics"
	"github.com/dshills/branchaudit/internal/render"
	"github.com/dshills/branchaudit/internal/retrieve"
	"github.com/dshills/branchaudit/internal/review"
	"github.com/dshills/branchaudit/internal/rules"
	"github.com/dshills/branchaudit/internal/schema"
	"github.com/dshills/branchaudit/internal/search"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// runFlags holds the parsed flags for the run command.
type runFlags struct {
	advisor           string
	city              string
	url               string
	profileName       string
	rulesFile         string
	format            string
	out               string
	failOn            string
	severityThreshold string
	resultCount       int
	fetchTimeout      time.Duration
	verbose           bool
	debug             bool
}

// batchFlags holds the parsed flags for the batch command.
type batchFlags struct {
	profileName   string
	rulesFile     string
	format        string
	interval      time.Duration
	metricsListen string
	fetchTimeout  time.Duration
	verbose       bool
	debug         bool
}

func main() {
	// A .env in the working directory is a convenience for local use;
	// absence is not an error.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "branchaudit",
		Short: "Compliance pre-audit recon for advisor branch sites",
		Long:  "branchaudit gathers public reputation signals for a financial advisor and scans the branch website for prohibited language and missing disclosures.",
	}

	var rf runFlags
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Audit a single advisor and produce a risk report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(rf)
		},
	}
	f := runCmd.Flags()
	f.StringVar(&rf.advisor, "advisor", "", "Advisor name (required)")
	f.StringVar(&rf.city, "city", "", "Advisor city, used in the reputation query")
	f.StringVar(&rf.url, "url", "", "Target website; when empty, the top search result is used")
	f.StringVar(&rf.profileName, "profile", "standard", "Built-in rule profile")
	f.StringVar(&rf.rulesFile, "rules", "", "YAML rules file overriding the built-in profile")
	f.StringVar(&rf.format, "format", "json", "Output format: json or md")
	f.StringVar(&rf.out, "out", "", "Write output to file instead of stdout")
	f.StringVar(&rf.failOn, "fail-on", "", "Exit 2 if risk level >= this level (NEEDS_REVIEW or ESCALATE)")
	f.StringVar(&rf.severityThreshold, "severity-threshold", "info", "Minimum severity to emit: info, warning, or error")
	f.IntVar(&rf.resultCount, "results", search.DefaultResultCount, "Number of organic search results to request")
	f.DurationVar(&rf.fetchTimeout, "timeout", retrieve.DefaultFetchTimeout, "Direct-fetch timeout")
	f.BoolVar(&rf.verbose, "verbose", false, "Info-level processing logs on stderr")
	f.BoolVar(&rf.debug, "debug", false, "Debug-level logs including per-source retrieval detail")

	var bf batchFlags
	batchCmd := &cobra.Command{
		Use:   "batch <manifest.yaml>",
		Short: "Run audits for every entry in a YAML manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(args[0], bf)
		},
	}
	b := batchCmd.Flags()
	b.StringVar(&bf.profileName, "profile", "standard", "Built-in rule profile")
	b.StringVar(&bf.rulesFile, "rules", "", "YAML rules file overriding the built-in profile")
	b.StringVar(&bf.format, "format", "json", "Report format: json or md")
	b.DurationVar(&bf.interval, "interval", 2*time.Second, "Minimum spacing between runs")
	b.StringVar(&bf.metricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address for the batch duration")
	b.DurationVar(&bf.fetchTimeout, "timeout", retrieve.DefaultFetchTimeout, "Direct-fetch timeout")
	b.BoolVar(&bf.verbose, "verbose", false, "Info-level processing logs on stderr")
	b.BoolVar(&bf.debug, "debug", false, "Debug-level logs including per-source retrieval detail")

	root.AddCommand(runCmd)
	root.AddCommand(batchCmd)

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		// cobra already printed the error
		os.Exit(1)
	}
}

func runAudit(flags runFlags) error {
	if err := validateRunFlags(flags); err != nil {
		return codeError(3, "invalid flags: %s", err)
	}
	log := newLogger(flags.verbose, flags.debug)

	set, err := loadRules(flags.profileName, flags.rulesFile)
	if err != nil {
		return codeError(3, "loading rules: %s", err)
	}

	runner := newRunner(set, flags.fetchTimeout, log)

	report := runner.Run(context.Background(), audit.Input{
		Advisor:     flags.advisor,
		City:        flags.city,
		TargetURL:   flags.url,
		ResultCount: flags.resultCount,
	})
	report.Input.RulesFile = flags.rulesFile
	report.Input.SeverityThreshold = flags.severityThreshold

	// Threshold filtering affects output only; summary counts stay pre-filter.
	report.Findings = review.FilterBySeverity(report.Findings, parseSeverityThreshold(flags.severityThreshold))

	renderer, err := render.NewRenderer(flags.format)
	if err != nil {
		return codeError(3, "invalid format: %s", err)
	}
	outputBytes, err := renderer.Render(report)
	if err != nil {
		return codeError(3, "rendering output: %s", err)
	}

	if flags.out != "" {
		if err := os.WriteFile(flags.out, outputBytes, 0o644); err != nil {
			return codeError(3, "writing output file: %s", err)
		}
	} else {
		if _, err := os.Stdout.Write(outputBytes); err != nil {
			return codeError(3, "writing output: %s", err)
		}
		// Ensure output ends with a newline for terminal friendliness.
		if len(outputBytes) > 0 && outputBytes[len(outputBytes)-1] != '\n' {
			fmt.Fprintln(os.Stdout)
		}
	}

	if flags.failOn != "" {
		threshold := schema.RiskLevel(flags.failOn)
		if schema.RiskOrdinal(report.Summary.RiskLevel) >= schema.RiskOrdinal(threshold) {
			return codeError(2, "risk level %s meets or exceeds --fail-on threshold %s", report.Summary.RiskLevel, threshold)
		}
	}
	return nil
}

func runBatch(manifestPath string, flags batchFlags) error {
	switch flags.format {
	case "json", "md":
	default:
		return codeError(3, "--format must be json or md, got %q", flags.format)
	}
	log := newLogger(flags.verbose, flags.debug)

	set, err := loadRules(flags.profileName, flags.rulesFile)
	if err != nil {
		return codeError(3, "loading rules: %s", err)
	}

	manifest, err := batch.LoadManifest(manifestPath)
	if err != nil {
		return codeError(3, "loading manifest: %s", err)
	}

	runner := newRunner(set, flags.fetchTimeout, log)

	collector := metrics.NewCollector()
	runner.Metrics = collector
	if flags.metricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(flags.metricsListen, mux); err != nil {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		log.Info().Str("addr", flags.metricsListen).Msg("serving metrics")
	}

	renderer, err := render.NewRenderer(flags.format)
	if err != nil {
		return codeError(3, "invalid format: %s", err)
	}

	p := &batch.Processor{
		Runner:   runner,
		Limiter:  rate.NewLimiter(rate.Every(flags.interval), 1),
		Renderer: renderer,
		Ext:      flags.format,
		Log:      log,
	}
	results, err := p.Run(context.Background(), manifest)
	if err != nil {
		return codeError(1, "batch aborted: %s", err)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		fmt.Fprintf(os.Stdout, "%s\t%s\n", res.RiskLevel, res.ReportPath)
	}
	if failed > 0 {
		return codeError(1, "%d of %d batch entries failed", failed, len(results))
	}
	return nil
}

// newRunner wires the collaborators for audit runs. Missing provider keys
// degrade the respective path instead of failing the command.
func newRunner(set *rules.Set, fetchTimeout time.Duration, log zerolog.Logger) *audit.Runner {
	runner := &audit.Runner{
		Rules:   set,
		Log:     log,
		Tool:    "branchaudit",
		Version: version,
	}

	provider, err := search.NewProvider()
	if err != nil {
		log.Warn().Err(err).Msg("reputation search disabled")
		runner.SearchErr = err.Error()
	} else {
		runner.Search = provider
	}

	retriever := &retrieve.Retriever{
		Fallback: retrieve.NewFetcher(fetchTimeout),
		Log:      log,
	}
	extractor, err := retrieve.NewExtractor()
	if err != nil {
		log.Warn().Err(err).Msg("primary extraction disabled; direct fetch only")
	} else {
		retriever.Primary = extractor
	}
	runner.Retriever = retriever
	return runner
}

func loadRules(profileName, rulesFile string) (*rules.Set, error) {
	if rulesFile != "" {
		return rules.Load(rulesFile)
	}
	return rules.Get(profileName)
}

// validateRunFlags returns an error if any flag value is invalid.
func validateRunFlags(flags runFlags) error {
	if flags.advisor == "" {
		return fmt.Errorf("--advisor is required")
	}

	switch flags.format {
	case "json", "md":
	default:
		return fmt.Errorf("--format must be json or md, got %q", flags.format)
	}

	if flags.failOn != "" {
		switch schema.RiskLevel(flags.failOn) {
		case schema.RiskNeedsReview, schema.RiskEscalate:
		default:
			return fmt.Errorf("--fail-on must be NEEDS_REVIEW or ESCALATE, got %q", flags.failOn)
		}
	}

	switch flags.severityThreshold {
	case "info", "warning", "error":
	default:
		return fmt.Errorf("--severity-threshold must be info, warning, or error, got %q", flags.severityThreshold)
	}

	if flags.resultCount <= 0 {
		return fmt.Errorf("--results must be > 0, got %d", flags.resultCount)
	}

	if flags.fetchTimeout <= 0 {
		return fmt.Errorf("--timeout must be > 0, got %s", flags.fetchTimeout)
	}
	return nil
}

// parseSeverityThreshold converts a flag string to a schema.Severity.
func parseSeverityThreshold(s string) schema.Severity {
	switch s {
	case "warning":
		return schema.SeverityWarning
	case "error":
		return schema.SeverityError
	default:
		return schema.SeverityInfo
	}
}

// newLogger builds the stderr console logger. Default level is warn so
// normal runs emit only the report itself on stdout.
func newLogger(verbose, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
