package model

import "time"

type Branch struct {
	Name      string  `json:"name"`
	Protected bool    `json:"protected"`
	Default   bool    `json:"default"`
	Commit    *Commit `json:"commit,omitempty"`
}

type Commit struct {
	ID          string       `json:"id"`
	ShortID     string       `json:"short_id"`
	Title       string       `json:"title"`
	AuthorName  string       `json:"author_name"`
	AuthorEmail string       `json:"author_email"`
	CreatedAt   time.Time    `json:"created_at"`
	Stats       *CommitStats `json:"stats,omitempty"`
}

type CommitStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Total     int `json:"total"`
}

type MergeRequest struct {
	IID          int64      `json:"iid"`
	Title        string     `json:"title"`
	State        string     `json:"state"`
	SourceBranch string     `json:"source_branch"`
	TargetBranch string     `json:"target_branch"`
	Author       string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	MergedAt     *time.Time `json:"merged_at,omitempty"`
	WebURL       string     `json:"web_url"`
}

// MergeRequestQuery narrows list calls. Zero values mean "no filter".
type MergeRequestQuery struct {
	State        string
	TargetBranch string
}

const (
	MergeRequestStateOpened = "opened"
	MergeRequestStateMerged = "merged"
	MergeRequestStateClosed = "closed"
)
