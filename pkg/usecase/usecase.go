package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/infra"
	"github.com/glt-tools/glt/pkg/utils/logging"
)

type UseCase struct {
	clients *infra.Clients
}

func New(clients *infra.Clients) *UseCase {
	return &UseCase{
		clients: clients,
	}
}

// VerifyAuth resolves the authenticated user before batch work starts.
// Authentication failures abort the whole run; nothing else does.
func (x *UseCase) VerifyAuth(ctx context.Context) (*model.User, error) {
	user, err := x.clients.GitLab().Verify(ctx)
	if err != nil {
		return nil, err
	}
	logging.From(ctx).Debug("authenticated", slog.String("username", user.Username))
	return user, nil
}

// ResolveProjects expands a group path and explicit project paths into the
// target project list. Archived projects are skipped with a log line; the
// result is de-duplicated by project ID.
func (x *UseCase) ResolveProjects(ctx context.Context, group string, projectPaths []string) ([]*model.Project, error) {
	logger := logging.From(ctx)
	seen := map[int64]bool{}
	var targets []*model.Project

	add := func(p *model.Project) {
		if seen[int64(p.ID)] {
			return
		}
		seen[int64(p.ID)] = true
		if p.Archived {
			logger.Info("skipping archived project", slog.String("project", p.PathWithNamespace))
			return
		}
		targets = append(targets, p)
	}

	if group != "" {
		g, err := x.clients.GitLab().SearchGroup(ctx, group)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve group", goerr.V("group", group))
		}
		projects, err := x.clients.GitLab().ListGroupProjects(ctx, g.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list group projects", goerr.V("group", group))
		}
		for _, p := range projects {
			add(p)
		}
	}

	for _, path := range projectPaths {
		p, err := x.clients.GitLab().GetProject(ctx, path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve project", goerr.V("project", path))
		}
		add(p)
	}

	if len(targets) == 0 {
		return nil, goerr.New("no target projects resolved",
			goerr.V("group", group),
			goerr.V("projects", projectPaths),
		)
	}

	return targets, nil
}
