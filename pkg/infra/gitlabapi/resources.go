package gitlabapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glt-tools/glt/pkg/domain/interfaces"
	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/domain/types"
)

var _ interfaces.GitLab = (*Client)(nil)

// escapePath encodes a namespaced path ("group/sub/project") the way the
// v4 API expects it inside a URL segment.
func escapePath(path string) string {
	return strings.ReplaceAll(url.PathEscape(path), "/", "%2F")
}

func projectPath(id types.ProjectID, rest string) string {
	if rest == "" {
		return fmt.Sprintf("projects/%d", id)
	}
	return fmt.Sprintf("projects/%d/%s", id, rest)
}

func (x *Client) Verify(ctx context.Context) (*model.User, error) {
	var user model.User
	if _, err := x.do(ctx, http.MethodGet, "user", nil, nil, &user); err != nil {
		return nil, goerr.Wrap(err, "token verification failed")
	}
	if user.State != "" && user.State != "active" {
		return nil, goerr.Wrap(types.ErrAuthentication, "user is not active",
			goerr.V("username", user.Username),
			goerr.V("state", user.State),
		)
	}
	return &user, nil
}

func (x *Client) SearchGroup(ctx context.Context, path string) (*model.Group, error) {
	query := url.Values{"search": {path}}
	groups, err := listPages[*model.Group](ctx, x, "groups", query)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g.FullPath == path || g.Path == path || g.Name == path {
			return g, nil
		}
	}
	return nil, goerr.Wrap(types.ErrNotFound, "group not found", goerr.V("path", path))
}

func (x *Client) ListGroupProjects(ctx context.Context, groupID types.GroupID) ([]*model.Project, error) {
	query := url.Values{"include_subgroups": {"true"}}
	return listPages[*model.Project](ctx, x, fmt.Sprintf("groups/%d/projects", groupID), query)
}

func (x *Client) GetProject(ctx context.Context, path string) (*model.Project, error) {
	var project model.Project
	if _, err := x.do(ctx, http.MethodGet, "projects/"+escapePath(path), nil, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (x *Client) ListBranches(ctx context.Context, projectID types.ProjectID) ([]*model.Branch, error) {
	return listPages[*model.Branch](ctx, x, projectPath(projectID, "repository/branches"), nil)
}

func (x *Client) GetBranch(ctx context.Context, projectID types.ProjectID, name string) (*model.Branch, error) {
	var branch model.Branch
	path := projectPath(projectID, "repository/branches/"+escapePath(name))
	if _, err := x.do(ctx, http.MethodGet, path, nil, nil, &branch); err != nil {
		return nil, err
	}
	return &branch, nil
}

func (x *Client) CreateBranch(ctx context.Context, projectID types.ProjectID, name, ref string) (*model.Branch, error) {
	var branch model.Branch
	query := url.Values{"branch": {name}, "ref": {ref}}
	path := projectPath(projectID, "repository/branches")
	if _, err := x.do(ctx, http.MethodPost, path, query, nil, &branch); err != nil {
		return nil, err
	}
	return &branch, nil
}

func (x *Client) DeleteBranch(ctx context.Context, projectID types.ProjectID, name string) error {
	path := projectPath(projectID, "repository/branches/"+escapePath(name))
	_, err := x.do(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}

func (x *Client) UpdateDefaultBranch(ctx context.Context, projectID types.ProjectID, name string) error {
	body := map[string]string{"default_branch": name}
	_, err := x.do(ctx, http.MethodPut, projectPath(projectID, ""), nil, body, nil)
	return err
}

type mergeRequestDTO struct {
	model.MergeRequest
	Author struct {
		Username string `json:"username"`
	} `json:"author"`
}

func (x *Client) ListMergeRequests(ctx context.Context, projectID types.ProjectID, q model.MergeRequestQuery) ([]*model.MergeRequest, error) {
	query := url.Values{}
	if q.State != "" {
		query.Set("state", q.State)
	}
	if q.TargetBranch != "" {
		query.Set("target_branch", q.TargetBranch)
	}

	dtos, err := listPages[*mergeRequestDTO](ctx, x, projectPath(projectID, "merge_requests"), query)
	if err != nil {
		return nil, err
	}

	mrs := make([]*model.MergeRequest, 0, len(dtos))
	for _, dto := range dtos {
		mr := dto.MergeRequest
		mr.Author = dto.Author.Username
		mrs = append(mrs, &mr)
	}
	return mrs, nil
}

func (x *Client) UpdateMergeRequestTarget(ctx context.Context, projectID types.ProjectID, iid int64, target string) error {
	body := map[string]string{"target_branch": target}
	path := projectPath(projectID, fmt.Sprintf("merge_requests/%d", iid))
	_, err := x.do(ctx, http.MethodPut, path, nil, body, nil)
	return err
}

func (x *Client) ListCommits(ctx context.Context, projectID types.ProjectID, ref string, since, until time.Time) ([]*model.Commit, error) {
	query := url.Values{"with_stats": {"true"}}
	if ref != "" {
		query.Set("ref_name", ref)
	}
	// The window is passed server-side as a pre-filter, but callers must
	// still filter client-side: the API's date params have been observed
	// to miss boundary commits.
	if !since.IsZero() {
		query.Set("since", since.Format(time.RFC3339))
	}
	if !until.IsZero() {
		query.Set("until", until.Format(time.RFC3339))
	}
	return listPages[*model.Commit](ctx, x, projectPath(projectID, "repository/commits"), query)
}

type issueDTO struct {
	model.Issue
	Author struct {
		Username string `json:"username"`
	} `json:"author"`
}

func (x *Client) ListIssues(ctx context.Context, projectID types.ProjectID) ([]*model.Issue, error) {
	dtos, err := listPages[*issueDTO](ctx, x, projectPath(projectID, "issues"), nil)
	if err != nil {
		return nil, err
	}

	issues := make([]*model.Issue, 0, len(dtos))
	for _, dto := range dtos {
		iss := dto.Issue
		iss.Author = dto.Author.Username
		issues = append(issues, &iss)
	}
	return issues, nil
}

func (x *Client) CreateIssue(ctx context.Context, projectID types.ProjectID, draft *model.IssueDraft) (*model.Issue, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, goerr.Wrap(types.ErrValidation, "issue title is required")
	}

	body := map[string]any{
		"title":       draft.Title,
		"description": draft.Description,
	}
	if len(draft.Labels) > 0 {
		body["labels"] = strings.Join(draft.Labels, ",")
	}
	if draft.DueDate != "" {
		body["due_date"] = draft.DueDate
	}
	if draft.Weight > 0 {
		body["weight"] = draft.Weight
	}
	if draft.Assignee != "" {
		id, err := x.lookupUserID(ctx, draft.Assignee)
		if err != nil {
			return nil, err
		}
		body["assignee_ids"] = []int64{id}
	}

	var issue model.Issue
	if _, err := x.do(ctx, http.MethodPost, projectPath(projectID, "issues"), nil, body, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (x *Client) lookupUserID(ctx context.Context, username string) (int64, error) {
	var users []model.User
	query := url.Values{"username": {username}}
	if _, err := x.do(ctx, http.MethodGet, "users", query, nil, &users); err != nil {
		return 0, err
	}
	if len(users) == 0 {
		return 0, goerr.Wrap(types.ErrNotFound, "assignee not found", goerr.V("username", username))
	}
	return users[0].ID, nil
}
