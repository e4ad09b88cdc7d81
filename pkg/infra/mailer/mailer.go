// Package mailer delivers report emails over SMTP. Delivery is fail-loud:
// one attempt, no retry, the error goes straight back to the caller.
package mailer

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	gomail "github.com/wneessen/go-mail"

	"github.com/glt-tools/glt/pkg/domain/interfaces"
	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/domain/types"
	"github.com/glt-tools/glt/pkg/utils/logging"
)

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password types.SMTPPassword
	StartTLS bool
}

var _ interfaces.Mailer = (*SMTP)(nil)

func New(host string, port int, username string, password types.SMTPPassword, startTLS bool) (*SMTP, error) {
	if host == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "SMTP host is empty")
	}
	return &SMTP{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		StartTLS: startTLS,
	}, nil
}

func buildMessage(msg *model.Email) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.FromFormat(msg.FromName, msg.From); err != nil {
		return nil, goerr.Wrap(err, "invalid sender address", goerr.V("from", msg.From))
	}
	if err := m.To(msg.To...); err != nil {
		return nil, goerr.Wrap(err, "invalid recipient address", goerr.V("to", msg.To))
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	}
	return m, nil
}

func (x *SMTP) Send(ctx context.Context, msg *model.Email) error {
	m, err := buildMessage(msg)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(x.Port),
	}
	if x.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(x.Username),
			gomail.WithPassword(x.Password.Secret()),
		)
	}
	if x.StartTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}

	client, err := gomail.NewClient(x.Host, opts...)
	if err != nil {
		return goerr.Wrap(err, "failed to create SMTP client", goerr.V("host", x.Host))
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return goerr.Wrap(err, "failed to send email",
			goerr.V("host", x.Host),
			goerr.V("to", msg.To),
			goerr.V("subject", msg.Subject),
		)
	}

	logging.From(ctx).Info("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// DryRun logs the message instead of submitting it.
type DryRun struct{}

var _ interfaces.Mailer = (*DryRun)(nil)

func (x *DryRun) Send(ctx context.Context, msg *model.Email) error {
	logging.From(ctx).Info("[DRY RUN] would send email",
		"to", msg.To,
		"subject", msg.Subject,
		"text_bytes", len(msg.TextBody),
		"html_bytes", len(msg.HTMLBody),
	)
	return nil
}
