package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/dshills/branchaudit/internal/schema"
)

type markdownRenderer struct{}

var mdTemplate = template.Must(template.New("report").Parse(`# Branch Pre-Audit Report

**Advisor:** {{ .Input.Advisor }}{{ if .Input.City }} ({{ .Input.City }}){{ end }}
**State:** {{ .State }}
**Risk Level:** {{ .Summary.RiskLevel }}
**Score:** {{ .Summary.Score }}/100
**Error:** {{ .Summary.ErrorCount }} | **Warning:** {{ .Summary.WarningCount }} | **Info:** {{ .Summary.InfoCount }}
> Note: counts reflect all findings; --severity-threshold may hide some from this output.
{{ if .Note }}
> {{ .Note }}
{{ end }}{{ if .SearchError }}
**Search unavailable:** {{ .SearchError }}
{{ end }}{{ if .SearchResults }}
---

## Reputation Search
{{ range .SearchResults }}
### {{ .Title }}
{{ .Snippet }}

[{{ .Link }}]({{ .Link }})
{{ range .Flags }}- flag: {{ .Kind }} ({{ .Term }})
{{ end }}{{ end }}{{ end }}
---

## Site Retrieval

Status: {{ .Retrieval.Status }}{{ if .Retrieval.Source }} (source: {{ .Retrieval.Source }}){{ end }}{{ if .Retrieval.HTTPStatus }}
HTTP status: {{ .Retrieval.HTTPStatus }} — the site actively blocked automated access.{{ end }}{{ if .Retrieval.Error }}
Error: {{ .Retrieval.Error }}{{ end }}{{ if .Retrieval.TextHash }}
Content hash: {{ .Retrieval.TextHash }} ({{ .Retrieval.TextLength }} chars){{ end }}
{{ if .Findings }}
---

## Findings
{{ range .Findings }}
- **{{ .Severity }}** · {{ .Category }} · matched "{{ .Term }}"
{{ end }}{{ end }}{{ if .MissingDisclosures }}
---

## Missing Disclosures
{{ range .MissingDisclosures }}
- {{ . }}
{{ end }}{{ end }}
---
*Run: {{ .RunID }} | Profile: {{ .Input.Profile }}*
`))

func (r *markdownRenderer) Render(report *schema.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := mdTemplate.Execute(&buf, report); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}
