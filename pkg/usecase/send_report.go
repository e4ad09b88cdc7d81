package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/domain/types"
	"github.com/glt-tools/glt/pkg/renderer"
	"github.com/glt-tools/glt/pkg/utils/logging"
)

type SendReportInput struct {
	Report   *model.ActivityReport
	From     string
	FromName string
	To       []string
	Subject  string
}

// SendReport renders the report as a plain-text body with an HTML
// alternative and hands it to the mailer. Delivery failures propagate to
// the caller; there is no retry around SMTP.
func (x *UseCase) SendReport(ctx context.Context, input *SendReportInput) error {
	if input.Report == nil {
		return goerr.Wrap(types.ErrValidation, "report is required")
	}
	if len(input.To) == 0 {
		return goerr.Wrap(types.ErrValidation, "at least one recipient is required")
	}

	text, err := renderer.New("markdown").Render(input.Report)
	if err != nil {
		return goerr.Wrap(err, "failed to render text body")
	}
	html, err := renderer.New("html").Render(input.Report)
	if err != nil {
		return goerr.Wrap(err, "failed to render html body")
	}

	subject := input.Subject
	if subject == "" {
		subject = input.Report.Title
	}

	email := &model.Email{
		From:     input.From,
		FromName: input.FromName,
		To:       input.To,
		Subject:  subject,
		TextBody: string(text),
		HTMLBody: string(html),
	}

	if err := x.clients.Mailer().Send(ctx, email); err != nil {
		return goerr.Wrap(err, "failed to send report", goerr.V("to", input.To))
	}

	logging.From(ctx).Info("report sent",
		slog.Any("to", input.To),
		slog.String("subject", subject),
	)
	return nil
}
