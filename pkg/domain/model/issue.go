package model

import "time"

// Issue is a snapshot fetched from the API. The platform assigns IID.
type Issue struct {
	IID       int64      `json:"iid"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	Labels    []string   `json:"labels"`
	Author    string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	WebURL    string     `json:"web_url"`
}

const (
	IssueStateOpened = "opened"
	IssueStateClosed = "closed"
)

// IssueDraft is an issue constructed locally, to be submitted once.
type IssueDraft struct {
	Title       string
	Description string
	Labels      []string
	Assignee    string
	DueDate     string // ISO 8601 date, empty for none
	Weight      int
}

// IssueRecord ties a draft to where it came from, so batch reports can
// point at the offending row or file. A record that failed to parse or
// render carries the failure in Err and a nil Draft.
type IssueRecord struct {
	Draft  *IssueDraft
	Source string
	Err    string
}

type IssueResult struct {
	Source  string
	Title   string
	Created *Issue
	Err     string
}

func (x *IssueResult) OK() bool {
	return x.Err == ""
}

type IssueBatchSummary struct {
	Total   int
	Created int
	Failed  int
	DryRun  bool
	Results []*IssueResult
}
