package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/glt-tools/glt/pkg/cli/config"
	"github.com/glt-tools/glt/pkg/infra"
	"github.com/glt-tools/glt/pkg/renderer"
	"github.com/glt-tools/glt/pkg/usecase"
)

func reportFlags(input *usecase.ReportInput, since, until *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "title",
			Usage:       "Report title",
			Destination: &input.Title,
			Value:       "Activity Report",
		},
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
		&cli.IntFlag{
			Name:        "days",
			Usage:       "Window length in days ending now (ignored with --since)",
			Destination: &input.Days,
			Value:       7,
		},
		&cli.StringFlag{
			Name:        "since",
			Usage:       "Window start as YYYY-MM-DD",
			Destination: since,
		},
		&cli.StringFlag{
			Name:        "until",
			Usage:       "Window end as YYYY-MM-DD, exclusive",
			Destination: until,
		},
		&cli.BoolFlag{
			Name:        "with-branches",
			Usage:       "Break down commit activity per branch",
			Destination: &input.WithBranches,
		},
	}
}

func applyWindow(input *usecase.ReportInput, since, until string) error {
	if since != "" {
		t, err := time.Parse("2006-01-02", since)
		if err != nil {
			return goerr.Wrap(err, "invalid --since date", goerr.V("since", since))
		}
		input.Since = t
	}
	if until != "" {
		t, err := time.Parse("2006-01-02", until)
		if err != nil {
			return goerr.Wrap(err, "invalid --until date", goerr.V("until", until))
		}
		input.Until = t
	}
	return nil
}

func generateReportCommand() *cli.Command {
	var (
		gitlabConfig config.GitLab
		cacheConfig  config.Cache
		input        usecase.ReportInput
		since, until string
		format       string
		output       string
	)

	return &cli.Command{
		Name:    "generate-report",
		Aliases: []string{"gr"},
		Usage:   "Aggregate commit, issue and MR activity into a report",
		Flags: slice.Flatten(reportFlags(&input, &since, &until), []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "Output format [markdown|html|csv|json]",
				Destination: &format,
				Value:       "markdown",
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output path (- for stdout)",
				Destination: &output,
				Value:       "-",
			},
		}, gitlabConfig.Flags(), cacheConfig.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := applyWindow(&input, since, until); err != nil {
				return err
			}

			uc, err := buildUseCase(ctx, &gitlabConfig, &cacheConfig)
			if err != nil {
				return err
			}

			report, err := uc.GenerateReport(ctx, &input)
			if err != nil {
				return err
			}

			doc, err := renderer.New(format).Render(report)
			if err != nil {
				return err
			}
			if err := writeOutput(output, doc); err != nil {
				return err
			}

			for _, p := range report.Projects {
				if p.FetchError != "" {
					return goerr.New("some projects could not be aggregated",
						goerr.V("project", p.Project.PathWithNamespace),
					)
				}
			}
			return nil
		},
	}
}

func sendReportCommand() *cli.Command {
	var (
		gitlabConfig config.GitLab
		cacheConfig  config.Cache
		smtpConfig   config.SMTP
		input        usecase.ReportInput
		since, until string
		to           []string
		subject      string
		dryRun       bool
	)

	return &cli.Command{
		Name:    "send-report",
		Aliases: []string{"sr"},
		Usage:   "Generate the activity report and email it",
		Flags: slice.Flatten(reportFlags(&input, &since, &until), []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "to",
				Usage:       "Recipient address (repeatable)",
				Destination: &to,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "subject",
				Usage:       "Mail subject (defaults to the report title)",
				Destination: &subject,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Log the mail instead of submitting it",
				Destination: &dryRun,
			},
		}, gitlabConfig.Flags(), cacheConfig.Flags(), smtpConfig.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := applyWindow(&input, since, until); err != nil {
				return err
			}

			m, err := smtpConfig.NewMailer(dryRun)
			if err != nil {
				return err
			}

			uc, err := buildUseCase(ctx, &gitlabConfig, &cacheConfig, infra.WithMailer(m))
			if err != nil {
				return err
			}

			report, err := uc.GenerateReport(ctx, &input)
			if err != nil {
				return err
			}

			from, fromName := smtpConfig.From()
			return uc.SendReport(ctx, &usecase.SendReportInput{
				Report:   report,
				From:     from,
				FromName: fromName,
				To:       to,
				Subject:  subject,
			})
		},
	}
}
