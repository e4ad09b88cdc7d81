package cli

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/glt-tools/glt/pkg/cli/config"
	"github.com/glt-tools/glt/pkg/usecase"
	"github.com/glt-tools/glt/pkg/utils/logging"
)

func renameBranchesCommand() *cli.Command {
	var (
		gitlabConfig config.GitLab
		cacheConfig  config.Cache
		input        usecase.RenameBranchesInput
		output       string
	)

	return &cli.Command{
		Name:    "rename-branches",
		Aliases: []string{"rb"},
		Usage:   "Rename a branch across every project of a group",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "group",
				Aliases:     []string{"g"},
				Usage:       "Group path whose projects are targeted",
				Sources:     cli.EnvVars("GLT_GROUP"),
				Destination: &input.Group,
			},
			&cli.StringSliceFlag{
				Name:        "project",
				Aliases:     []string{"p"},
				Usage:       "Explicit project path (repeatable)",
				Destination: &input.Projects,
			},
			&cli.StringFlag{
				Name:        "old-branch",
				Usage:       "Branch name to rename from",
				Sources:     cli.EnvVars("GLT_OLD_BRANCH"),
				Destination: &input.OldBranch,
				Value:       "trunk",
			},
			&cli.StringFlag{
				Name:        "new-branch",
				Usage:       "Branch name to rename to",
				Sources:     cli.EnvVars("GLT_NEW_BRANCH"),
				Destination: &input.NewBranch,
				Value:       "main",
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Report what would change without mutating anything",
				Destination: &input.DryRun,
			},
			&cli.BoolFlag{
				Name:        "skip-protected",
				Usage:       "Skip branches marked protected instead of failing",
				Sources:     cli.EnvVars("GLT_SKIP_PROTECTED"),
				Destination: &input.SkipProtected,
				Value:       true,
			},
			&cli.BoolFlag{
				Name:        "retarget-mrs",
				Usage:       "Move open merge requests onto the new branch",
				Destination: &input.RetargetMRs,
				Value:       true,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Write the JSON operation report to this path (- for stdout)",
				Destination: &output,
			},
		}, gitlabConfig.Flags(), cacheConfig.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			if input.OldBranch == input.NewBranch {
				return goerr.New("old and new branch names are identical",
					goerr.V("branch", input.OldBranch))
			}

			uc, err := buildUseCase(ctx, &gitlabConfig, &cacheConfig)
			if err != nil {
				return err
			}

			summary, err := uc.RenameBranches(ctx, &input)
			if err != nil {
				return err
			}

			if output != "" {
				report, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return goerr.Wrap(err, "failed to encode rename report")
				}
				if err := writeOutput(output, append(report, '\n')); err != nil {
					return err
				}
			}

			if summary.Failed > 0 {
				return goerr.New("some projects failed to rename",
					goerr.V("failed", summary.Failed),
					goerr.V("total", summary.Total),
				)
			}

			logging.From(ctx).Info("done",
				slog.Int("renamed", summary.Renamed),
				slog.Int("skipped", summary.Skipped),
			)
			return nil
		},
	}
}
