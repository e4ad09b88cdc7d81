package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/glt-tools/glt/pkg/domain/interfaces"
	"github.com/glt-tools/glt/pkg/domain/types"
	"github.com/glt-tools/glt/pkg/infra/mailer"
)

type SMTP struct {
	host     string
	port     int64
	username string
	password types.SMTPPassword `masq:"secret"`
	fromAddr string
	fromName string
	startTLS bool
}

func (x *SMTP) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "smtp-server",
			Usage:       "SMTP server host",
			Category:    "SMTP",
			Sources:     cli.EnvVars("SMTP_SERVER"),
			Destination: &x.host,
			Value:       "smtp.gmail.com",
		},
		&cli.Int64Flag{
			Name:        "smtp-port",
			Usage:       "SMTP server port",
			Category:    "SMTP",
			Sources:     cli.EnvVars("SMTP_PORT"),
			Destination: &x.port,
			Value:       587,
		},
		&cli.StringFlag{
			Name:        "smtp-username",
			Usage:       "SMTP username",
			Category:    "SMTP",
			Sources:     cli.EnvVars("SMTP_USERNAME"),
			Destination: &x.username,
		},
		&cli.StringFlag{
			Name:        "smtp-password",
			Usage:       "SMTP password",
			Category:    "SMTP",
			Sources:     cli.EnvVars("SMTP_PASSWORD"),
			Destination: (*string)(&x.password),
		},
		&cli.StringFlag{
			Name:        "smtp-from",
			Usage:       "Sender address (defaults to the SMTP username)",
			Category:    "SMTP",
			Sources:     cli.EnvVars("SMTP_FROM_EMAIL"),
			Destination: &x.fromAddr,
		},
		&cli.StringFlag{
			Name:        "smtp-from-name",
			Usage:       "Sender display name",
			Category:    "SMTP",
			Sources:     cli.EnvVars("SMTP_FROM_NAME"),
			Destination: &x.fromName,
			Value:       "GitLab Analytics",
		},
		&cli.BoolFlag{
			Name:        "smtp-starttls",
			Usage:       "Use STARTTLS for the SMTP session",
			Category:    "SMTP",
			Sources:     cli.EnvVars("SMTP_STARTTLS"),
			Destination: &x.startTLS,
			Value:       true,
		},
	}
}

func (x *SMTP) From() (addr, name string) {
	addr = x.fromAddr
	if addr == "" {
		addr = x.username
	}
	return addr, x.fromName
}

// NewMailer builds the SMTP mailer, or the logging stand-in when dry-run is
// requested.
func (x *SMTP) NewMailer(dryRun bool) (interfaces.Mailer, error) {
	if dryRun {
		return &mailer.DryRun{}, nil
	}
	return mailer.New(x.host, int(x.port), x.username, x.password, x.startTLS)
}

func (x *SMTP) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", x.host),
		slog.Int64("port", x.port),
		slog.String("username", x.username),
		slog.Int("password.len", len(x.password)),
		slog.String("from", x.fromAddr),
		slog.Bool("startTLS", x.startTLS),
	)
}
