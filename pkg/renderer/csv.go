package renderer

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glt-tools/glt/pkg/domain/model"
)

// CSV emits one row per project, suitable for spreadsheet imports.
type CSV struct{}

func (x *CSV) Format() string { return "csv" }

func (x *CSV) Render(report *model.ActivityReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"project", "commits", "additions", "deletions", "contributors",
		"issues_opened", "issues_closed", "mr_opened", "mr_merged", "fetch_error",
	}
	if err := w.Write(header); err != nil {
		return nil, goerr.Wrap(err, "failed to write CSV header")
	}

	for _, p := range report.Projects {
		row := []string{
			p.Project.PathWithNamespace,
			strconv.Itoa(p.Commits),
			strconv.Itoa(p.Additions),
			strconv.Itoa(p.Deletions),
			strconv.Itoa(len(p.Authors)),
			strconv.Itoa(p.IssuesOpened),
			strconv.Itoa(p.IssuesClosed),
			strconv.Itoa(p.MROpened),
			strconv.Itoa(p.MRMerged),
			p.FetchError,
		}
		if err := w.Write(row); err != nil {
			return nil, goerr.Wrap(err, "failed to write CSV row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, goerr.Wrap(err, "failed to flush CSV")
	}
	return buf.Bytes(), nil
}
