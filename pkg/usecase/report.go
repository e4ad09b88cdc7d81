package usecase

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/domain/types"
	"github.com/glt-tools/glt/pkg/utils/logging"
)

type ReportInput struct {
	Title        string
	Group        string
	Projects     []string
	Days         int       // window length ending now; ignored when Since is set
	Since        time.Time // explicit window start
	Until        time.Time // explicit window end, exclusive
	WithBranches bool      // include per-branch commit attribution
}

// GenerateReport aggregates commits, issues and merge requests for every
// target project within the date window. Filtering happens client-side on
// the fetched snapshots; the API's date params only pre-narrow the fetch.
// A project whose fetch fails is reported with FetchError, not dropped.
func (x *UseCase) GenerateReport(ctx context.Context, input *ReportInput) (*model.ActivityReport, error) {
	logger := logging.From(ctx)
	now := logging.CtxTime(ctx)

	window := model.Window{Since: input.Since, Until: input.Until}
	if window.Until.IsZero() {
		window.Until = now
	}
	if window.Since.IsZero() {
		days := input.Days
		if days <= 0 {
			days = 7
		}
		window.Since = window.Until.AddDate(0, 0, -days)
	}
	if !window.Since.Before(window.Until) {
		return nil, goerr.Wrap(types.ErrValidation, "report window is empty",
			goerr.V("since", window.Since),
			goerr.V("until", window.Until),
		)
	}

	projects, err := x.ResolveProjects(ctx, input.Group, input.Projects)
	if err != nil {
		return nil, err
	}

	title := input.Title
	if title == "" {
		title = "Activity Report"
	}
	report := &model.ActivityReport{
		Title:       title,
		GeneratedAt: now,
		Window:      window,
	}

	for _, project := range projects {
		activity, err := x.projectActivity(ctx, project, window, input.WithBranches)
		if err != nil {
			logger.Warn("failed to aggregate project activity",
				slog.String("project", project.PathWithNamespace),
				slog.Any("error", err),
			)
			activity = &model.ProjectActivity{Project: project, FetchError: err.Error()}
		}
		report.Projects = append(report.Projects, activity)
	}

	report.Finalize()
	return report, nil
}

func (x *UseCase) projectActivity(ctx context.Context, project *model.Project, window model.Window, withBranches bool) (*model.ProjectActivity, error) {
	gl := x.clients.GitLab()
	activity := &model.ProjectActivity{Project: project}

	commits, err := gl.ListCommits(ctx, project.ID, project.DefaultBranch, window.Since, window.Until)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list commits")
	}
	authors := map[string]struct{}{}
	for _, c := range commits {
		if !window.Contains(c.CreatedAt) {
			continue
		}
		activity.Commits++
		authors[c.AuthorName] = struct{}{}
		if c.Stats != nil {
			activity.Additions += c.Stats.Additions
			activity.Deletions += c.Stats.Deletions
		}
	}
	for a := range authors {
		activity.Authors = append(activity.Authors, a)
	}
	sort.Strings(activity.Authors)

	issues, err := gl.ListIssues(ctx, project.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list issues")
	}
	for _, iss := range issues {
		if window.Contains(iss.CreatedAt) {
			activity.IssuesOpened++
		}
		if iss.ClosedAt != nil && window.Contains(*iss.ClosedAt) {
			activity.IssuesClosed++
		}
	}

	mrs, err := gl.ListMergeRequests(ctx, project.ID, model.MergeRequestQuery{})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list merge requests")
	}
	for _, mr := range mrs {
		if window.Contains(mr.CreatedAt) {
			activity.MROpened++
		}
		if mr.MergedAt != nil && window.Contains(*mr.MergedAt) {
			activity.MRMerged++
		}
	}

	if withBranches {
		branches, err := x.branchActivity(ctx, project, window)
		if err != nil {
			return nil, err
		}
		activity.Branches = branches
	}

	return activity, nil
}

// branchActivity attributes each commit to exactly one branch: the first
// branch in iteration order that contains it owns the commit, every later
// branch inherits it. Iteration order is stable by construction (default
// branch first, the rest sorted by name) so repeated runs attribute
// identically.
func (x *UseCase) branchActivity(ctx context.Context, project *model.Project, window model.Window) ([]*model.BranchActivity, error) {
	gl := x.clients.GitLab()

	branches, err := gl.ListBranches(ctx, project.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list branches")
	}

	names := make([]string, 0, len(branches))
	for _, b := range branches {
		if b.Name != project.DefaultBranch {
			names = append(names, b.Name)
		}
	}
	sort.Strings(names)
	if project.DefaultBranch != "" {
		names = append([]string{project.DefaultBranch}, names...)
	}

	owned := map[string]string{} // commit ID -> owning branch
	var result []*model.BranchActivity

	for _, name := range names {
		commits, err := gl.ListCommits(ctx, project.ID, name, window.Since, window.Until)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list branch commits", goerr.V("branch", name))
		}

		ba := &model.BranchActivity{Name: name}
		authors := map[string]struct{}{}
		for _, c := range commits {
			if !window.Contains(c.CreatedAt) {
				continue
			}
			if _, taken := owned[c.ID]; taken {
				ba.Inherited++
				continue
			}
			owned[c.ID] = name
			ba.Owned++
			authors[c.AuthorName] = struct{}{}
		}
		for a := range authors {
			ba.Authors = append(ba.Authors, a)
		}
		sort.Strings(ba.Authors)
		result = append(result, ba)
	}

	return result, nil
}
