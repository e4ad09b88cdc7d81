package model

import (
	"sort"
	"time"
)

// Window is the date range of an activity report. Until is exclusive.
type Window struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
}

func (x Window) Contains(t time.Time) bool {
	return !t.Before(x.Since) && t.Before(x.Until)
}

// BranchActivity carries per-branch commit attribution. A commit is "owned"
// by the first branch in iteration order that contains it and "inherited" by
// every later branch, so rollups never double-count shared history.
type BranchActivity struct {
	Name      string   `json:"name"`
	Owned     int      `json:"owned_commits"`
	Inherited int      `json:"inherited_commits"`
	Authors   []string `json:"authors"`
}

type ProjectActivity struct {
	Project      *Project          `json:"project"`
	Commits      int               `json:"commits"`
	Authors      []string          `json:"authors"`
	Additions    int               `json:"additions"`
	Deletions    int               `json:"deletions"`
	IssuesOpened int               `json:"issues_opened"`
	IssuesClosed int               `json:"issues_closed"`
	MROpened     int               `json:"merge_requests_opened"`
	MRMerged     int               `json:"merge_requests_merged"`
	Branches     []*BranchActivity `json:"branches,omitempty"`
	FetchError   string            `json:"fetch_error,omitempty"`
}

// MergeRate is merged MRs over opened MRs within the window, 0 when nothing
// was opened.
func (x *ProjectActivity) MergeRate() float64 {
	if x.MROpened == 0 {
		return 0
	}
	return float64(x.MRMerged) / float64(x.MROpened)
}

type ActivityTotals struct {
	Commits      int      `json:"commits"`
	Additions    int      `json:"additions"`
	Deletions    int      `json:"deletions"`
	Authors      []string `json:"authors"`
	IssuesOpened int      `json:"issues_opened"`
	IssuesClosed int      `json:"issues_closed"`
	MROpened     int      `json:"merge_requests_opened"`
	MRMerged     int      `json:"merge_requests_merged"`
}

type ActivityReport struct {
	Title       string             `json:"title"`
	GeneratedAt time.Time          `json:"generated_at"`
	Window      Window             `json:"window"`
	Projects    []*ProjectActivity `json:"projects"`
	Totals      ActivityTotals     `json:"totals"`
}

// Finalize computes rollup totals from the per-project sections.
func (x *ActivityReport) Finalize() {
	authors := map[string]struct{}{}
	totals := ActivityTotals{}
	for _, p := range x.Projects {
		totals.Commits += p.Commits
		totals.Additions += p.Additions
		totals.Deletions += p.Deletions
		totals.IssuesOpened += p.IssuesOpened
		totals.IssuesClosed += p.IssuesClosed
		totals.MROpened += p.MROpened
		totals.MRMerged += p.MRMerged
		for _, a := range p.Authors {
			authors[a] = struct{}{}
		}
	}
	for a := range authors {
		totals.Authors = append(totals.Authors, a)
	}
	sort.Strings(totals.Authors)
	x.Totals = totals
}

// Email is a message handed to the mailer. TextBody is always set; HTMLBody
// is an optional alternative part.
type Email struct {
	From     string
	FromName string
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}
