package model

import (
	"regexp"
	"strings"

	"github.com/glt-tools/glt/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

var placeholderPtn = regexp.MustCompile(`\{([a-z_]+)\}`)

// IssueTemplate renders an IssueDraft from named variables. Required
// variables must be present, optional ones default to empty.
type IssueTemplate struct {
	Name          string
	TitleTmpl     string
	DescTmpl      string
	DefaultLabels []string
	Required      []string
	Optional      []string
}

func (x *IssueTemplate) Render(vars map[string]string) (*IssueDraft, error) {
	for _, name := range x.Required {
		if v, ok := vars[name]; !ok || strings.TrimSpace(v) == "" {
			return nil, goerr.Wrap(types.ErrMissingVariable, "required variable is not filled",
				goerr.V("template", x.Name),
				goerr.V("variable", name),
			)
		}
	}

	expand := func(s string) string {
		return placeholderPtn.ReplaceAllStringFunc(s, func(m string) string {
			name := placeholderPtn.FindStringSubmatch(m)[1]
			return vars[name]
		})
	}

	return &IssueDraft{
		Title:       strings.TrimSpace(expand(x.TitleTmpl)),
		Description: strings.TrimSpace(expand(x.DescTmpl)),
		Labels:      append([]string{}, x.DefaultLabels...),
	}, nil
}

// BuiltinTemplates mirrors the issue templates shipped with the tool:
// feature, bug and task.
func BuiltinTemplates() map[string]*IssueTemplate {
	return map[string]*IssueTemplate{
		"feature": {
			Name:      "feature",
			TitleTmpl: "[Feature] {feature_name}",
			DescTmpl: "## Description\n{description}\n\n" +
				"## Acceptance Criteria\n{acceptance_criteria}\n\n" +
				"## Technical Details\n{technical_details}\n\n" +
				"## Related Issues\n{related_issues}\n",
			DefaultLabels: []string{"feature", "needs-review"},
			Required:      []string{"feature_name", "description", "acceptance_criteria"},
			Optional:      []string{"technical_details", "related_issues"},
		},
		"bug": {
			Name:      "bug",
			TitleTmpl: "[Bug] {bug_title}",
			DescTmpl: "## Bug Description\n{description}\n\n" +
				"## Steps to Reproduce\n{steps_to_reproduce}\n\n" +
				"## Expected Behavior\n{expected_behavior}\n\n" +
				"## Actual Behavior\n{actual_behavior}\n\n" +
				"## Additional Context\n{additional_context}\n",
			DefaultLabels: []string{"bug", "needs-triage"},
			Required:      []string{"bug_title", "description", "steps_to_reproduce", "expected_behavior", "actual_behavior"},
			Optional:      []string{"additional_context"},
		},
		"task": {
			Name:      "task",
			TitleTmpl: "{task_name}",
			DescTmpl: "## Task Description\n{description}\n\n" +
				"## Subtasks\n{subtasks}\n\n" +
				"## Definition of Done\n{definition_of_done}\n\n" +
				"## Notes\n{notes}\n",
			DefaultLabels: []string{"task"},
			Required:      []string{"task_name", "description"},
			Optional:      []string{"subtasks", "definition_of_done", "notes"},
		},
	}
}
