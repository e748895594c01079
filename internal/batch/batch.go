// Package batch runs a sequence of audits from a YAML manifest. Runs are
// strictly sequential and limiter-gated out of politeness to the search
// and extraction providers; each run is otherwise fully isolated.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/dshills/branchaudit/internal/audit"
	"github.com/dshills/branchaudit/internal/render"
	"github.com/dshills/branchaudit/internal/schema"
)

// Entry is one audit request in a manifest.
type Entry struct {
	Advisor string `yaml:"advisor"`
	City    string `yaml:"city"`
	URL     string `yaml:"url"`
}

// Manifest is the YAML batch file.
type Manifest struct {
	Audits []Entry `yaml:"audits"`
	OutDir string  `yaml:"out_dir"`
}

// LoadManifest reads and validates a batch manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks that every entry can resolve to something auditable.
func (m *Manifest) Validate() error {
	if len(m.Audits) == 0 {
		return fmt.Errorf("manifest has no audits")
	}
	for i, e := range m.Audits {
		if e.Advisor == "" && e.URL == "" {
			return fmt.Errorf("audit %d: needs an advisor or a url", i)
		}
	}
	return nil
}

// Runner is the audit-run dependency, satisfied by *audit.Runner.
type Runner interface {
	Run(ctx context.Context, in audit.Input) *schema.Report
}

// Result records the outcome of one manifest entry.
type Result struct {
	Entry      Entry
	ReportPath string
	RiskLevel  schema.RiskLevel
	Err        error
}

// Processor executes manifests.
type Processor struct {
	Runner   Runner
	Limiter  *rate.Limiter // nil disables pacing
	Renderer render.Renderer
	// Ext is the report filename extension, matching the renderer format.
	Ext string
	Log zerolog.Logger
}

// Run executes every entry in order, writing one report file per entry
// under the manifest's out_dir. Entry failures are recorded and the batch
// continues; only context cancellation aborts early.
func (p *Processor) Run(ctx context.Context, m *Manifest) ([]Result, error) {
	outDir := m.OutDir
	if outDir == "" {
		outDir = "reports"
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	results := make([]Result, 0, len(m.Audits))
	for _, e := range m.Audits {
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx); err != nil {
				return results, err
			}
		}

		rep := p.Runner.Run(ctx, audit.Input{
			Advisor:   e.Advisor,
			City:      e.City,
			TargetURL: e.URL,
		})

		path := filepath.Join(outDir, fmt.Sprintf("%s-%s.%s", slug(e), rep.RunID, p.Ext))
		res := Result{Entry: e, ReportPath: path, RiskLevel: rep.Summary.RiskLevel}
		if err := p.writeReport(rep, path); err != nil {
			res.Err = err
			res.ReportPath = ""
			p.Log.Error().Err(err).Str("advisor", e.Advisor).Msg("writing batch report failed")
		}
		results = append(results, res)
	}
	return results, nil
}

func (p *Processor) writeReport(rep *schema.Report, path string) error {
	out, err := p.Renderer.Render(rep)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// slug derives a filesystem-safe name from an entry.
func slug(e Entry) string {
	base := e.Advisor
	if base == "" {
		base = e.URL
	}
	var sb strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	return strings.Trim(sb.String(), "-")
}
