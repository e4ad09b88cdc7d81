package interfaces

import (
	"context"
	"time"

	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/domain/types"
)

// GitLab is the API surface the services depend on. The production
// implementation lives in pkg/infra/gitlabapi; tests use the mock package.
type GitLab interface {
	// Verify resolves the authenticated user. It maps 401/403 to
	// ErrAuthentication so callers can fail fast before batch work.
	Verify(ctx context.Context) (*model.User, error)

	SearchGroup(ctx context.Context, path string) (*model.Group, error)
	ListGroupProjects(ctx context.Context, groupID types.GroupID) ([]*model.Project, error)
	GetProject(ctx context.Context, path string) (*model.Project, error)

	ListBranches(ctx context.Context, projectID types.ProjectID) ([]*model.Branch, error)
	GetBranch(ctx context.Context, projectID types.ProjectID, name string) (*model.Branch, error)
	CreateBranch(ctx context.Context, projectID types.ProjectID, name, ref string) (*model.Branch, error)
	DeleteBranch(ctx context.Context, projectID types.ProjectID, name string) error
	UpdateDefaultBranch(ctx context.Context, projectID types.ProjectID, name string) error

	ListMergeRequests(ctx context.Context, projectID types.ProjectID, q model.MergeRequestQuery) ([]*model.MergeRequest, error)
	UpdateMergeRequestTarget(ctx context.Context, projectID types.ProjectID, iid int64, target string) error

	ListCommits(ctx context.Context, projectID types.ProjectID, ref string, since, until time.Time) ([]*model.Commit, error)

	ListIssues(ctx context.Context, projectID types.ProjectID) ([]*model.Issue, error)
	CreateIssue(ctx context.Context, projectID types.ProjectID, draft *model.IssueDraft) (*model.Issue, error)
}

// Mailer submits one message. Implementations must not retry: a send failure
// is reported to the user, never swallowed.
type Mailer interface {
	Send(ctx context.Context, msg *model.Email) error
}
