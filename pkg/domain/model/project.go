package model

import "github.com/glt-tools/glt/pkg/domain/types"

// Project is the subset of GitLab project metadata the services need.
// It is fetched per run and never persisted.
type Project struct {
	ID                types.ProjectID `json:"id"`
	Name              string          `json:"name"`
	Path              string          `json:"path"`
	PathWithNamespace string          `json:"path_with_namespace"`
	DefaultBranch     string          `json:"default_branch"`
	Archived          bool            `json:"archived"`
	WebURL            string          `json:"web_url"`
}

type Group struct {
	ID       types.GroupID `json:"id"`
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	FullPath string        `json:"full_path"`
	ParentID types.GroupID `json:"parent_id"`
}

// User is returned by the token verification call.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	State    string `json:"state"`
}
