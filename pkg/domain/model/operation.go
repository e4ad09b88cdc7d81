package model

// RenameStatus is the final state of one (project, branch pair) operation.
type RenameStatus string

const (
	RenameStatusRenamed RenameStatus = "renamed"
	RenameStatusSkipped RenameStatus = "skipped"
	RenameStatusFailed  RenameStatus = "failed"
)

// RenameStep identifies how far the state machine progressed. A FAILED
// record keeps the step it failed at; there is no rollback of earlier steps,
// so failed operations need manual inspection.
type RenameStep string

const (
	StepCheckExists   RenameStep = "check_exists"
	StepCreateNew     RenameStep = "create_new"
	StepUpdateDefault RenameStep = "update_default"
	StepDeleteOld     RenameStep = "delete_old"
	StepRetargetMRs   RenameStep = "retarget_mrs"
	StepDone          RenameStep = "done"
)

// Skip reasons reported in OperationRecord.Reason.
const (
	SkipNoOldBranch = "old branch not found"
	SkipNewExists   = "new branch already exists"
	SkipProtected   = "old branch is protected"
	SkipArchived    = "project is archived"
)

// OperationRecord is the outcome of one attempted branch rename. Created at
// operation start, finalized at operation end, then written to the report.
type OperationRecord struct {
	Project   *Project     `json:"project"`
	OldBranch string       `json:"old_branch"`
	NewBranch string       `json:"new_branch"`
	Status    RenameStatus `json:"status"`
	Step      RenameStep   `json:"step"`
	Reason    string       `json:"reason,omitempty"`
	DryRun    bool         `json:"dry_run"`
}

type RenameSummary struct {
	Total   int                `json:"total"`
	Renamed int                `json:"renamed"`
	Skipped int                `json:"skipped"`
	Failed  int                `json:"failed"`
	DryRun  bool               `json:"dry_run"`
	Records []*OperationRecord `json:"records"`
}

func (x *RenameSummary) Add(rec *OperationRecord) {
	x.Total++
	x.Records = append(x.Records, rec)
	switch rec.Status {
	case RenameStatusRenamed:
		x.Renamed++
	case RenameStatusSkipped:
		x.Skipped++
	case RenameStatusFailed:
		x.Failed++
	}
}
