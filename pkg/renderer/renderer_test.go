package renderer_test

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/renderer"
)

func sampleReport() *model.ActivityReport {
	report := &model.ActivityReport{
		Title:       "Weekly Activity",
		GeneratedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Window: model.Window{
			Since: time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC),
			Until: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		Projects: []*model.ProjectActivity{
			{
				Project:      &model.Project{ID: 1, PathWithNamespace: "org/app"},
				Commits:      12,
				Authors:      []string{"ann", "bob"},
				Additions:    340,
				Deletions:    120,
				IssuesOpened: 3,
				IssuesClosed: 2,
				MROpened:     4,
				MRMerged:     3,
				Branches: []*model.BranchActivity{
					{Name: "main", Owned: 10, Inherited: 0},
					{Name: "feature/x", Owned: 2, Inherited: 10},
				},
			},
			{
				Project:    &model.Project{ID: 2, PathWithNamespace: "org/lib"},
				FetchError: "resource not found",
			},
		},
	}
	report.Finalize()
	return report
}

func TestNewSelector(t *testing.T) {
	cases := map[string]string{
		"markdown": "markdown",
		"md":       "markdown",
		"html":     "html",
		"csv":      "csv",
		"json":     "json",
		"fancy":    "markdown", // unknown falls back to plain text
		"":         "markdown",
	}
	for in, want := range cases {
		gt.V(t, renderer.New(in).Format()).Equal(want)
	}
}

func TestMarkdown(t *testing.T) {
	out := gt.R1(renderer.New("markdown").Render(sampleReport())).NoError(t)
	text := string(out)

	gt.True(t, strings.Contains(text, "# Weekly Activity"))
	gt.True(t, strings.Contains(text, "| org/app | 12 | +340/-120 | 2 | 3/2 | 4/3 |"))
	gt.True(t, strings.Contains(text, "fetch failed: resource not found"))
	gt.True(t, strings.Contains(text, "| feature/x | 2 | 10 |"))
}

func TestHTML(t *testing.T) {
	out := gt.R1(renderer.New("html").Render(sampleReport())).NoError(t)
	text := string(out)

	gt.True(t, strings.Contains(text, "<h1>Weekly Activity</h1>"))
	gt.True(t, strings.Contains(text, "<td>org/app</td>"))
	gt.True(t, strings.Contains(text, "Branches of org/app"))
}

func TestCSV(t *testing.T) {
	out := gt.R1(renderer.New("csv").Render(sampleReport())).NoError(t)

	rows := gt.R1(csv.NewReader(strings.NewReader(string(out))).ReadAll()).NoError(t)
	gt.A(t, rows).Length(3) // header + 2 projects
	gt.V(t, rows[1][0]).Equal("org/app")
	gt.V(t, rows[1][1]).Equal("12")
	gt.V(t, rows[1][4]).Equal("2") // contributor count, same as markdown and HTML
	gt.V(t, rows[2][9]).Equal("resource not found")
}

func TestJSON(t *testing.T) {
	out := gt.R1(renderer.New("json").Render(sampleReport())).NoError(t)
	gt.True(t, strings.Contains(string(out), `"generated_at"`))
	gt.True(t, strings.Contains(string(out), `"org/app"`))
}

func TestFinalizeTotals(t *testing.T) {
	report := sampleReport()
	gt.V(t, report.Totals.Commits).Equal(12)
	gt.V(t, report.Totals.Authors).Equal([]string{"ann", "bob"})
}
