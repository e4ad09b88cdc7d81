package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/glt-tools/glt/pkg/domain/mock"
	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/domain/types"
	"github.com/glt-tools/glt/pkg/infra"
	"github.com/glt-tools/glt/pkg/usecase"
	"github.com/glt-tools/glt/pkg/utils/testutil"
)

func TestCreateIssueFromTemplate(t *testing.T) {
	glMock := &mock.GitLabMock{
		GetProjectFunc: func(ctx context.Context, path string) (*model.Project, error) {
			return testProject(), nil
		},
		CreateIssueFunc: func(ctx context.Context, projectID types.ProjectID, draft *model.IssueDraft) (*model.Issue, error) {
			gt.V(t, projectID).Equal(types.ProjectID(42))
			gt.V(t, draft.Title).Equal("[Bug] login fails")
			gt.A(t, draft.Labels).Has("bug")
			return &model.Issue{IID: 3, Title: draft.Title, State: model.IssueStateOpened}, nil
		},
	}

	uc := usecase.New(infra.New(infra.WithGitLab(glMock)))
	issue := gt.R1(uc.CreateIssue(context.Background(), &usecase.CreateIssueInput{
		Project:  "org/app",
		Template: "bug",
		Vars: map[string]string{
			"bug_title":          "login fails",
			"description":        "login broken since v2",
			"steps_to_reproduce": "1. open login page",
			"expected_behavior":  "session starts",
			"actual_behavior":    "500 response",
		},
	})).NoError(t)

	gt.V(t, issue.IID).Equal(int64(3))
}

func TestCreateIssueMissingVariable(t *testing.T) {
	uc := usecase.New(infra.New(infra.WithGitLab(&mock.GitLabMock{})))
	_, err := uc.CreateIssue(context.Background(), &usecase.CreateIssueInput{
		Project:  "org/app",
		Template: "bug",
		Vars:     map[string]string{"bug_title": "login fails"},
	})
	gt.Error(t, err).Is(types.ErrMissingVariable)
}

func TestCreateIssueDryRun(t *testing.T) {
	glMock := &mock.GitLabMock{
		GetProjectFunc: func(ctx context.Context, path string) (*model.Project, error) {
			return testProject(), nil
		},
		// CreateIssueFunc is not arranged: a submit would panic.
	}

	uc := usecase.New(infra.New(infra.WithGitLab(glMock)))
	issue := gt.R1(uc.CreateIssue(context.Background(), &usecase.CreateIssueInput{
		Project: "org/app",
		Draft:   &model.IssueDraft{Title: "manual"},
		DryRun:  true,
	})).NoError(t)
	gt.V(t, issue).Nil()
}

func TestSyncIssuesContinuesAfterRecordFailure(t *testing.T) {
	csvPath := testutil.WriteTempFile(t, "issues.csv",
		"bug_title,description,steps_to_reproduce,expected_behavior,actual_behavior\n"+
			"first,desc,open app,works,crashes\n"+
			",desc,open app,works,crashes\n"+
			"third,desc,open app,works,crashes\n")

	var created []string
	glMock := &mock.GitLabMock{
		GetProjectFunc: func(ctx context.Context, path string) (*model.Project, error) {
			return testProject(), nil
		},
		CreateIssueFunc: func(ctx context.Context, projectID types.ProjectID, draft *model.IssueDraft) (*model.Issue, error) {
			created = append(created, draft.Title)
			return &model.Issue{IID: int64(len(created)), Title: draft.Title}, nil
		},
	}

	uc := usecase.New(infra.New(infra.WithGitLab(glMock)))
	summary := gt.R1(uc.SyncIssuesFromFiles(context.Background(), &usecase.SyncIssuesInput{
		Project:  "org/app",
		Files:    []string{csvPath},
		Template: "bug",
	})).NoError(t)

	// Row 3 has an empty bug_title, so the required variable is unfilled.
	// The batch keeps going and reports exactly one failure.
	gt.V(t, summary.Total).Equal(3)
	gt.V(t, summary.Created).Equal(2)
	gt.V(t, summary.Failed).Equal(1)
	gt.A(t, created).Length(2)
	gt.V(t, summary.Results[1].Source).Equal("issues.csv:3")
	gt.False(t, summary.Results[1].OK())
}

func TestSyncIssuesContinuesAfterAPIFailure(t *testing.T) {
	csvPath := testutil.WriteTempFile(t, "issues.csv",
		"title,description\nalpha,first\nbeta,second\n")

	glMock := &mock.GitLabMock{
		GetProjectFunc: func(ctx context.Context, path string) (*model.Project, error) {
			return testProject(), nil
		},
		CreateIssueFunc: func(ctx context.Context, projectID types.ProjectID, draft *model.IssueDraft) (*model.Issue, error) {
			if draft.Title == "alpha" {
				return nil, goerr.Wrap(types.ErrTransient, "server error")
			}
			return &model.Issue{IID: 1, Title: draft.Title}, nil
		},
	}

	uc := usecase.New(infra.New(infra.WithGitLab(glMock)))
	summary := gt.R1(uc.SyncIssuesFromFiles(context.Background(), &usecase.SyncIssuesInput{
		Project: "org/app",
		Files:   []string{csvPath},
	})).NoError(t)

	gt.V(t, summary.Created).Equal(1)
	gt.V(t, summary.Failed).Equal(1)
}

func TestSyncIssuesDryRunSubmitsNothing(t *testing.T) {
	csvPath := testutil.WriteTempFile(t, "issues.csv",
		"title,description\nalpha,first\n")

	glMock := &mock.GitLabMock{
		GetProjectFunc: func(ctx context.Context, path string) (*model.Project, error) {
			return testProject(), nil
		},
		// CreateIssueFunc is not arranged: a submit would panic.
	}

	uc := usecase.New(infra.New(infra.WithGitLab(glMock)))
	summary := gt.R1(uc.SyncIssuesFromFiles(context.Background(), &usecase.SyncIssuesInput{
		Project: "org/app",
		Files:   []string{csvPath},
		DryRun:  true,
	})).NoError(t)

	gt.V(t, summary.Created).Equal(1)
	gt.V(t, summary.DryRun).Equal(true)
}
