package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/domain/types"
	"github.com/glt-tools/glt/pkg/utils/logging"
)

type CreateIssueInput struct {
	Project  string
	Template string
	Vars     map[string]string
	Draft    *model.IssueDraft // used when Template is empty
	DryRun   bool
}

// CreateIssue builds one issue draft (from a template or directly) and
// submits it once. The platform assigns the issue IID.
func (x *UseCase) CreateIssue(ctx context.Context, input *CreateIssueInput) (*model.Issue, error) {
	draft := input.Draft
	if input.Template != "" {
		tmpl, ok := model.BuiltinTemplates()[input.Template]
		if !ok {
			return nil, goerr.Wrap(types.ErrInvalidOption, "unknown template", goerr.V("template", input.Template))
		}
		rendered, err := tmpl.Render(input.Vars)
		if err != nil {
			return nil, err
		}
		draft = rendered
	}
	if draft == nil {
		return nil, goerr.Wrap(types.ErrValidation, "no issue content given")
	}

	project, err := x.clients.GitLab().GetProject(ctx, input.Project)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve project", goerr.V("project", input.Project))
	}

	if input.DryRun {
		logging.From(ctx).Info("[DRY RUN] would create issue",
			slog.String("project", project.PathWithNamespace),
			slog.String("title", draft.Title),
			slog.Any("labels", draft.Labels),
		)
		return nil, nil
	}

	issue, err := x.clients.GitLab().CreateIssue(ctx, project.ID, draft)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create issue", goerr.V("title", draft.Title))
	}

	logging.From(ctx).Info("created issue",
		slog.Int64("iid", issue.IID),
		slog.String("title", issue.Title),
		slog.String("url", issue.WebURL),
	)
	return issue, nil
}

type SyncIssuesInput struct {
	Project  string
	Files    []string
	Template string // when set, CSV rows are template variables
	DryRun   bool
}

// SyncIssuesFromFiles creates issues from CSV and markdown files. Records
// are independent: one record's failure is reported and the batch moves on.
func (x *UseCase) SyncIssuesFromFiles(ctx context.Context, input *SyncIssuesInput) (*model.IssueBatchSummary, error) {
	logger := logging.From(ctx)

	project, err := x.clients.GitLab().GetProject(ctx, input.Project)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve project", goerr.V("project", input.Project))
	}

	records, err := LoadIssueRecords(input.Files, input.Template)
	if err != nil {
		return nil, err
	}

	summary := &model.IssueBatchSummary{DryRun: input.DryRun}
	for _, record := range records {
		summary.Total++
		result := &model.IssueResult{Source: record.Source}
		summary.Results = append(summary.Results, result)

		if record.Err != "" {
			// Parse and render failures travel with the record so the
			// report points at the offending row.
			summary.Failed++
			result.Err = record.Err
			continue
		}
		result.Title = record.Draft.Title

		if input.DryRun {
			logger.Info("[DRY RUN] would create issue",
				slog.String("source", record.Source),
				slog.String("title", record.Draft.Title),
			)
			summary.Created++
			continue
		}

		issue, err := x.clients.GitLab().CreateIssue(ctx, project.ID, record.Draft)
		if err != nil {
			summary.Failed++
			result.Err = err.Error()
			logger.Warn("failed to create issue",
				slog.String("source", record.Source),
				slog.String("title", record.Draft.Title),
				slog.Any("error", err),
			)
			continue
		}

		summary.Created++
		result.Created = issue
		logger.Info("created issue",
			slog.String("source", record.Source),
			slog.Int64("iid", issue.IID),
		)
	}

	logger.Info("issue sync finished",
		slog.Int("total", summary.Total),
		slog.Int("created", summary.Created),
		slog.Int("failed", summary.Failed),
	)
	return summary, nil
}
