package infra

import (
	"github.com/glt-tools/glt/pkg/domain/interfaces"
	"github.com/glt-tools/glt/pkg/infra/mailer"
)

// Clients bundles the external dependencies handed to the usecases. It is
// built once at the CLI entry point; there is no ambient global state.
type Clients struct {
	gitlab interfaces.GitLab
	mailer interfaces.Mailer
}

type Option func(*Clients)

func New(options ...Option) *Clients {
	client := &Clients{
		mailer: &mailer.DryRun{},
	}

	for _, opt := range options {
		opt(client)
	}

	return client
}

func (x *Clients) GitLab() interfaces.GitLab {
	return x.gitlab
}

func (x *Clients) Mailer() interfaces.Mailer {
	return x.mailer
}

func WithGitLab(client interfaces.GitLab) Option {
	return func(x *Clients) {
		x.gitlab = client
	}
}

func WithMailer(m interfaces.Mailer) Option {
	return func(x *Clients) {
		x.mailer = m
	}
}
