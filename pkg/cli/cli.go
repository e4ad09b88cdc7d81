package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/glt-tools/glt/pkg/cli/config"
	"github.com/glt-tools/glt/pkg/utils/errutil"
	"github.com/glt-tools/glt/pkg/utils/logging"
)

// ConfigureLogging is exported for testing purposes
var ConfigureLogging = logging.Configure

type CLI struct {
}

func New() *CLI {
	return &CLI{}
}

func (x *CLI) Run(argv []string) error {
	var (
		logLevel     string
		logFormat    string
		logOutput    string
		sentryConfig config.Sentry
	)

	// .env values act as environment defaults; real env vars win.
	_ = godotenv.Load()

	app := &cli.Command{
		Name:  "glt",
		Usage: "Batch tooling for GitLab: branch renames, issue sync and activity reports",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Log level [debug|info|warn|error]",
				Aliases:     []string{"l"},
				Sources:     cli.EnvVars("GLT_LOG_LEVEL"),
				Destination: &logLevel,
				Value:       "info",
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "Log format [text|json]",
				Aliases:     []string{"f"},
				Sources:     cli.EnvVars("GLT_LOG_FORMAT"),
				Destination: &logFormat,
				Value:       "text",
			},
			&cli.StringFlag{
				Name:        "log-output",
				Usage:       "Log output [-|stdout|stderr|<file>]",
				Sources:     cli.EnvVars("GLT_LOG_OUTPUT"),
				Destination: &logOutput,
				Value:       "-",
			},
		}, sentryConfig.Flags()),
		Commands: []*cli.Command{
			renameBranchesCommand(),
			createIssuesCommand(),
			syncIssuesCommand(),
			generateReportCommand(),
			sendReportCommand(),
			shellCommand(),
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := ConfigureLogging(logFormat, logLevel, logOutput); err != nil {
				return ctx, err
			}
			runID, ctx := logging.CtxRunID(ctx)
			ctx = logging.With(ctx, logging.Default().With("run_id", runID))
			if err := sentryConfig.Configure(ctx); err != nil {
				return ctx, err
			}
			return ctx, nil
		},
	}

	if err := app.Run(context.Background(), argv); err != nil {
		errutil.HandleError(context.Background(), "command failed", err)
		logging.Default().Error("fatal error", "error", err)
		return err
	}

	return nil
}
