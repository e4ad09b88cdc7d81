package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/glt-tools/glt/pkg/cli/config"
	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/usecase"
	"github.com/glt-tools/glt/pkg/utils/logging"
)

func createIssuesCommand() *cli.Command {
	var (
		gitlabConfig config.GitLab
		cacheConfig  config.Cache
		input        usecase.CreateIssueInput
		draft        model.IssueDraft
		labels       []string
		varPairs     map[string]string
	)

	return &cli.Command{
		Name:    "create-issues",
		Aliases: []string{"ci"},
		Usage:   "Create a single issue from a template or explicit fields",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "project",
				Aliases:     []string{"p"},
				Usage:       "Target project path",
				Destination: &input.Project,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "template",
				Aliases:     []string{"t"},
				Usage:       "Issue template [feature|bug|task]",
				Destination: &input.Template,
			},
			&cli.StringMapFlag{
				Name:        "var",
				Usage:       "Template variable as name=value (repeatable)",
				Destination: &varPairs,
			},
			&cli.StringFlag{
				Name:        "title",
				Usage:       "Issue title (when no template is used)",
				Destination: &draft.Title,
			},
			&cli.StringFlag{
				Name:        "description",
				Usage:       "Issue description",
				Destination: &draft.Description,
			},
			&cli.StringSliceFlag{
				Name:        "label",
				Usage:       "Issue label (repeatable)",
				Destination: &labels,
			},
			&cli.StringFlag{
				Name:        "assignee",
				Usage:       "Assignee username",
				Destination: &draft.Assignee,
			},
			&cli.StringFlag{
				Name:        "due-date",
				Usage:       "Due date as YYYY-MM-DD",
				Destination: &draft.DueDate,
			},
			&cli.IntFlag{
				Name:        "weight",
				Usage:       "Issue weight",
				Destination: &draft.Weight,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Show the would-be issue without creating it",
				Destination: &input.DryRun,
			},
		}, gitlabConfig.Flags(), cacheConfig.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			if input.Template == "" && draft.Title == "" {
				return goerr.New("either --template or --title is required")
			}

			uc, err := buildUseCase(ctx, &gitlabConfig, &cacheConfig)
			if err != nil {
				return err
			}

			input.Vars = varPairs
			if input.Template == "" {
				draft.Labels = labels
				input.Draft = &draft
			}

			issue, err := uc.CreateIssue(ctx, &input)
			if err != nil {
				return err
			}
			if issue != nil {
				logging.From(ctx).Info("done", slog.String("url", issue.WebURL))
			}
			return nil
		},
	}
}

func syncIssuesCommand() *cli.Command {
	var (
		gitlabConfig config.GitLab
		cacheConfig  config.Cache
		input        usecase.SyncIssuesInput
	)

	return &cli.Command{
		Name:    "sync-issues",
		Aliases: []string{"si"},
		Usage:   "Create issues in bulk from CSV or markdown files",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "project",
				Aliases:     []string{"p"},
				Usage:       "Target project path",
				Destination: &input.Project,
				Required:    true,
			},
			&cli.StringSliceFlag{
				Name:        "file",
				Usage:       "Issue source file, .csv or .md (repeatable)",
				Destination: &input.Files,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "template",
				Aliases:     []string{"t"},
				Usage:       "Render CSV rows through this template [feature|bug|task]",
				Destination: &input.Template,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Parse and report without creating issues",
				Destination: &input.DryRun,
			},
		}, gitlabConfig.Flags(), cacheConfig.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := buildUseCase(ctx, &gitlabConfig, &cacheConfig)
			if err != nil {
				return err
			}

			summary, err := uc.SyncIssuesFromFiles(ctx, &input)
			if err != nil {
				return err
			}

			for _, result := range summary.Results {
				if !result.OK() {
					logging.From(ctx).Error("record failed",
						slog.String("source", result.Source),
						slog.String("error", result.Err),
					)
				}
			}

			if summary.Failed > 0 {
				return goerr.New("some issue records failed",
					goerr.V("failed", summary.Failed),
					goerr.V("total", summary.Total),
				)
			}
			return nil
		},
	}
}
