package renderer

import (
	"fmt"
	"strings"

	"github.com/glt-tools/glt/pkg/domain/model"
)

type Markdown struct{}

func (x *Markdown) Format() string { return "markdown" }

func (x *Markdown) Render(report *model.ActivityReport) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", report.Title)
	fmt.Fprintf(&b, "Period: %s - %s  \n",
		report.Window.Since.Format("2006-01-02"),
		report.Window.Until.Format("2006-01-02"))
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Commits: %d (+%d / -%d lines)\n",
		report.Totals.Commits, report.Totals.Additions, report.Totals.Deletions)
	fmt.Fprintf(&b, "- Contributors: %d\n", len(report.Totals.Authors))
	fmt.Fprintf(&b, "- Issues: %d opened, %d closed\n",
		report.Totals.IssuesOpened, report.Totals.IssuesClosed)
	fmt.Fprintf(&b, "- Merge requests: %d opened, %d merged\n\n",
		report.Totals.MROpened, report.Totals.MRMerged)

	b.WriteString("## Projects\n\n")
	b.WriteString("| Project | Commits | +/- | Contributors | Issues (open/closed) | MRs (open/merged) |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, p := range report.Projects {
		if p.FetchError != "" {
			fmt.Fprintf(&b, "| %s | - | - | - | fetch failed: %s | - |\n",
				p.Project.PathWithNamespace, p.FetchError)
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | +%d/-%d | %d | %d/%d | %d/%d |\n",
			p.Project.PathWithNamespace, p.Commits, p.Additions, p.Deletions,
			len(p.Authors), p.IssuesOpened, p.IssuesClosed, p.MROpened, p.MRMerged)
	}

	for _, p := range report.Projects {
		if len(p.Branches) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### Branches of %s\n\n", p.Project.PathWithNamespace)
		b.WriteString("| Branch | Owned commits | Inherited commits |\n")
		b.WriteString("|---|---|---|\n")
		for _, br := range p.Branches {
			fmt.Fprintf(&b, "| %s | %d | %d |\n", br.Name, br.Owned, br.Inherited)
		}
	}

	return []byte(b.String()), nil
}
