// Package mock provides hand-maintained test doubles for the interfaces
// package. Each method delegates to an optional func field and panics when
// a test triggers a call it did not arrange.
package mock

import (
	"context"
	"time"

	"github.com/glt-tools/glt/pkg/domain/interfaces"
	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/domain/types"
)

type GitLabMock struct {
	VerifyFunc                   func(ctx context.Context) (*model.User, error)
	SearchGroupFunc              func(ctx context.Context, path string) (*model.Group, error)
	ListGroupProjectsFunc        func(ctx context.Context, groupID types.GroupID) ([]*model.Project, error)
	GetProjectFunc               func(ctx context.Context, path string) (*model.Project, error)
	ListBranchesFunc             func(ctx context.Context, projectID types.ProjectID) ([]*model.Branch, error)
	GetBranchFunc                func(ctx context.Context, projectID types.ProjectID, name string) (*model.Branch, error)
	CreateBranchFunc             func(ctx context.Context, projectID types.ProjectID, name, ref string) (*model.Branch, error)
	DeleteBranchFunc             func(ctx context.Context, projectID types.ProjectID, name string) error
	UpdateDefaultBranchFunc      func(ctx context.Context, projectID types.ProjectID, name string) error
	ListMergeRequestsFunc        func(ctx context.Context, projectID types.ProjectID, q model.MergeRequestQuery) ([]*model.MergeRequest, error)
	UpdateMergeRequestTargetFunc func(ctx context.Context, projectID types.ProjectID, iid int64, target string) error
	ListCommitsFunc              func(ctx context.Context, projectID types.ProjectID, ref string, since, until time.Time) ([]*model.Commit, error)
	ListIssuesFunc               func(ctx context.Context, projectID types.ProjectID) ([]*model.Issue, error)
	CreateIssueFunc              func(ctx context.Context, projectID types.ProjectID, draft *model.IssueDraft) (*model.Issue, error)
}

var _ interfaces.GitLab = (*GitLabMock)(nil)

func (x *GitLabMock) Verify(ctx context.Context) (*model.User, error) {
	if x.VerifyFunc == nil {
		return &model.User{ID: 1, Username: "tester"}, nil
	}
	return x.VerifyFunc(ctx)
}

func (x *GitLabMock) SearchGroup(ctx context.Context, path string) (*model.Group, error) {
	if x.SearchGroupFunc == nil {
		panic("GitLabMock.SearchGroupFunc is not set")
	}
	return x.SearchGroupFunc(ctx, path)
}

func (x *GitLabMock) ListGroupProjects(ctx context.Context, groupID types.GroupID) ([]*model.Project, error) {
	if x.ListGroupProjectsFunc == nil {
		panic("GitLabMock.ListGroupProjectsFunc is not set")
	}
	return x.ListGroupProjectsFunc(ctx, groupID)
}

func (x *GitLabMock) GetProject(ctx context.Context, path string) (*model.Project, error) {
	if x.GetProjectFunc == nil {
		panic("GitLabMock.GetProjectFunc is not set")
	}
	return x.GetProjectFunc(ctx, path)
}

func (x *GitLabMock) ListBranches(ctx context.Context, projectID types.ProjectID) ([]*model.Branch, error) {
	if x.ListBranchesFunc == nil {
		panic("GitLabMock.ListBranchesFunc is not set")
	}
	return x.ListBranchesFunc(ctx, projectID)
}

func (x *GitLabMock) GetBranch(ctx context.Context, projectID types.ProjectID, name string) (*model.Branch, error) {
	if x.GetBranchFunc == nil {
		panic("GitLabMock.GetBranchFunc is not set")
	}
	return x.GetBranchFunc(ctx, projectID, name)
}

func (x *GitLabMock) CreateBranch(ctx context.Context, projectID types.ProjectID, name, ref string) (*model.Branch, error) {
	if x.CreateBranchFunc == nil {
		panic("GitLabMock.CreateBranchFunc is not set")
	}
	return x.CreateBranchFunc(ctx, projectID, name, ref)
}

func (x *GitLabMock) DeleteBranch(ctx context.Context, projectID types.ProjectID, name string) error {
	if x.DeleteBranchFunc == nil {
		panic("GitLabMock.DeleteBranchFunc is not set")
	}
	return x.DeleteBranchFunc(ctx, projectID, name)
}

func (x *GitLabMock) UpdateDefaultBranch(ctx context.Context, projectID types.ProjectID, name string) error {
	if x.UpdateDefaultBranchFunc == nil {
		panic("GitLabMock.UpdateDefaultBranchFunc is not set")
	}
	return x.UpdateDefaultBranchFunc(ctx, projectID, name)
}

func (x *GitLabMock) ListMergeRequests(ctx context.Context, projectID types.ProjectID, q model.MergeRequestQuery) ([]*model.MergeRequest, error) {
	if x.ListMergeRequestsFunc == nil {
		panic("GitLabMock.ListMergeRequestsFunc is not set")
	}
	return x.ListMergeRequestsFunc(ctx, projectID, q)
}

func (x *GitLabMock) UpdateMergeRequestTarget(ctx context.Context, projectID types.ProjectID, iid int64, target string) error {
	if x.UpdateMergeRequestTargetFunc == nil {
		panic("GitLabMock.UpdateMergeRequestTargetFunc is not set")
	}
	return x.UpdateMergeRequestTargetFunc(ctx, projectID, iid, target)
}

func (x *GitLabMock) ListCommits(ctx context.Context, projectID types.ProjectID, ref string, since, until time.Time) ([]*model.Commit, error) {
	if x.ListCommitsFunc == nil {
		panic("GitLabMock.ListCommitsFunc is not set")
	}
	return x.ListCommitsFunc(ctx, projectID, ref, since, until)
}

func (x *GitLabMock) ListIssues(ctx context.Context, projectID types.ProjectID) ([]*model.Issue, error) {
	if x.ListIssuesFunc == nil {
		panic("GitLabMock.ListIssuesFunc is not set")
	}
	return x.ListIssuesFunc(ctx, projectID)
}

func (x *GitLabMock) CreateIssue(ctx context.Context, projectID types.ProjectID, draft *model.IssueDraft) (*model.Issue, error) {
	if x.CreateIssueFunc == nil {
		panic("GitLabMock.CreateIssueFunc is not set")
	}
	return x.CreateIssueFunc(ctx, projectID, draft)
}

// MailerMock records sent messages.
type MailerMock struct {
	SendFunc func(ctx context.Context, msg *model.Email) error
	Sent     []*model.Email
}

var _ interfaces.Mailer = (*MailerMock)(nil)

func (x *MailerMock) Send(ctx context.Context, msg *model.Email) error {
	x.Sent = append(x.Sent, msg)
	if x.SendFunc == nil {
		return nil
	}
	return x.SendFunc(ctx, msg)
}
