package usecase

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/domain/types"
	"github.com/glt-tools/glt/pkg/utils/safe"
)

var hashtagPtn = regexp.MustCompile(`#(\w+)`)
var headingPtn = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// LoadIssueRecords reads issue records from CSV and markdown files. A file
// that cannot be opened fails the whole call; a row that cannot be turned
// into a draft becomes a failed record so the batch keeps going.
func LoadIssueRecords(files []string, templateName string) ([]*model.IssueRecord, error) {
	var tmpl *model.IssueTemplate
	if templateName != "" {
		t, ok := model.BuiltinTemplates()[templateName]
		if !ok {
			return nil, goerr.Wrap(types.ErrInvalidOption, "unknown template", goerr.V("template", templateName))
		}
		tmpl = t
	}

	var records []*model.IssueRecord
	for _, path := range files {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			recs, err := loadCSV(path, tmpl)
			if err != nil {
				return nil, err
			}
			records = append(records, recs...)
		case ".md", ".markdown":
			records = append(records, loadMarkdown(path))
		default:
			return nil, goerr.Wrap(types.ErrInvalidOption, "unsupported issue file type",
				goerr.V("path", path),
			)
		}
	}
	return records, nil
}

// loadCSV reads one record per row. Without a template the columns map
// directly onto the draft (title, description, labels, assignee, due_date,
// weight); with a template every column is a substitution variable.
func loadCSV(path string, tmpl *model.IssueTemplate) ([]*model.IssueRecord, error) {
	fd, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open CSV file", goerr.V("path", path))
	}
	defer safe.Close(fd)

	reader := csv.NewReader(fd)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse CSV file", goerr.V("path", path))
	}
	if len(rows) < 2 {
		return nil, goerr.Wrap(types.ErrValidation, "CSV file has no data rows", goerr.V("path", path))
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var records []*model.IssueRecord
	for i, row := range rows[1:] {
		source := fmt.Sprintf("%s:%d", filepath.Base(path), i+2)
		vars := map[string]string{}
		for j, cell := range row {
			if j < len(header) {
				vars[header[j]] = strings.TrimSpace(cell)
			}
		}

		rec := &model.IssueRecord{Source: source}
		if tmpl != nil {
			draft, err := tmpl.Render(vars)
			if err != nil {
				rec.Err = err.Error()
			} else {
				applyLabelColumn(draft, vars)
				rec.Draft = draft
			}
		} else {
			draft, err := draftFromRow(vars)
			if err != nil {
				rec.Err = err.Error()
			} else {
				rec.Draft = draft
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func applyLabelColumn(draft *model.IssueDraft, vars map[string]string) {
	if extra := vars["labels"]; extra != "" {
		draft.Labels = append(draft.Labels, splitLabels(extra)...)
	}
}

func draftFromRow(vars map[string]string) (*model.IssueDraft, error) {
	title := vars["title"]
	if title == "" {
		return nil, goerr.Wrap(types.ErrValidation, "row has no title")
	}

	draft := &model.IssueDraft{
		Title:       title,
		Description: vars["description"],
		Labels:      splitLabels(vars["labels"]),
		Assignee:    vars["assignee"],
		DueDate:     vars["due_date"],
	}
	if w := vars["weight"]; w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return nil, goerr.Wrap(types.ErrValidation, "weight is not a number", goerr.V("weight", w))
		}
		draft.Weight = n
	}
	return draft, nil
}

func splitLabels(s string) []string {
	if s == "" {
		return nil
	}
	var labels []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

// loadMarkdown turns one markdown file into one issue: optional YAML-style
// frontmatter for title and labels, first heading as title fallback, and
// #hashtags collected as extra labels.
func loadMarkdown(path string) *model.IssueRecord {
	rec := &model.IssueRecord{Source: filepath.Base(path)}

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		rec.Err = err.Error()
		return rec
	}
	content := string(raw)

	title := ""
	var labels []string
	description := content

	if strings.HasPrefix(content, "---") {
		parts := strings.SplitN(content, "---", 3)
		if len(parts) >= 3 {
			description = strings.TrimSpace(parts[2])
			for _, line := range strings.Split(parts[1], "\n") {
				key, value, ok := strings.Cut(line, ":")
				if !ok {
					continue
				}
				value = strings.TrimSpace(value)
				switch strings.ToLower(strings.TrimSpace(key)) {
				case "title":
					title = strings.Trim(value, `"'`)
				case "labels":
					labels = append(labels, splitLabels(strings.Trim(value, "[]"))...)
				}
			}
		}
	}

	if title == "" {
		if m := headingPtn.FindStringSubmatch(description); m != nil {
			title = strings.TrimSpace(m[1])
			description = strings.TrimSpace(strings.Replace(description, m[0], "", 1))
		}
	}
	if title == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		title = strings.ReplaceAll(strings.ReplaceAll(base, "-", " "), "_", " ")
	}

	for _, m := range hashtagPtn.FindAllStringSubmatch(description, -1) {
		labels = append(labels, m[1])
	}

	rec.Draft = &model.IssueDraft{
		Title:       title,
		Description: description,
		Labels:      dedupeLabels(labels),
	}
	return rec
}

func dedupeLabels(labels []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}
