package renderer

import (
	"bytes"
	"html/template"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glt-tools/glt/pkg/domain/model"
)

// reportTmpl is kept email-friendly: inline styles, table layout, no
// scripts.
var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family: sans-serif; color: #222; max-width: 960px; margin: 0 auto;">
<h1>{{.Title}}</h1>
<p>Period: {{.Window.Since.Format "2006-01-02"}} - {{.Window.Until.Format "2006-01-02"}}<br>
Generated: {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</p>

<h2>Summary</h2>
<ul>
<li>Commits: {{.Totals.Commits}} (+{{.Totals.Additions}} / -{{.Totals.Deletions}} lines)</li>
<li>Contributors: {{len .Totals.Authors}}</li>
<li>Issues: {{.Totals.IssuesOpened}} opened, {{.Totals.IssuesClosed}} closed</li>
<li>Merge requests: {{.Totals.MROpened}} opened, {{.Totals.MRMerged}} merged</li>
</ul>

<h2>Projects</h2>
<table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
<tr><th>Project</th><th>Commits</th><th>+/-</th><th>Contributors</th><th>Issues</th><th>MRs</th></tr>
{{range .Projects}}
{{if .FetchError}}
<tr><td>{{.Project.PathWithNamespace}}</td><td colspan="5">fetch failed: {{.FetchError}}</td></tr>
{{else}}
<tr>
<td>{{.Project.PathWithNamespace}}</td>
<td>{{.Commits}}</td>
<td>+{{.Additions}}/-{{.Deletions}}</td>
<td>{{len .Authors}}</td>
<td>{{.IssuesOpened}}/{{.IssuesClosed}}</td>
<td>{{.MROpened}}/{{.MRMerged}}</td>
</tr>
{{end}}
{{end}}
</table>

{{range .Projects}}{{if .Branches}}
<h3>Branches of {{.Project.PathWithNamespace}}</h3>
<table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
<tr><th>Branch</th><th>Owned</th><th>Inherited</th></tr>
{{range .Branches}}<tr><td>{{.Name}}</td><td>{{.Owned}}</td><td>{{.Inherited}}</td></tr>
{{end}}
</table>
{{end}}{{end}}
</body>
</html>
`))

type HTML struct{}

func (x *HTML) Format() string { return "html" }

func (x *HTML) Render(report *model.ActivityReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, report); err != nil {
		return nil, goerr.Wrap(err, "failed to render HTML report")
	}
	return buf.Bytes(), nil
}
