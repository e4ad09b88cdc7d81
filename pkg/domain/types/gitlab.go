package types

import "log/slog"

type (
	AccessToken  string
	SMTPPassword string
	ProjectID    int64
	GroupID      int64
	IssueIID     int64
	MergeReqIID  int64
	BranchName   string
	CommitSHA    string
	RunID        string
)

func (x AccessToken) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x AccessToken) String() string {
	return "***********"
}

// Secret returns the raw token for use in request headers.
func (x AccessToken) Secret() string {
	return string(x)
}

func (x SMTPPassword) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x SMTPPassword) String() string {
	return "***********"
}

func (x SMTPPassword) Secret() string {
	return string(x)
}
