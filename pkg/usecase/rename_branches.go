package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/domain/types"
	"github.com/glt-tools/glt/pkg/utils/logging"
)

type RenameBranchesInput struct {
	Group         string
	Projects      []string
	OldBranch     string
	NewBranch     string
	DryRun        bool
	SkipProtected bool
	RetargetMRs   bool
}

// RenameBranches renames OldBranch to NewBranch across every target
// project. Projects are processed sequentially; one project's failure is
// recorded and the batch continues.
func (x *UseCase) RenameBranches(ctx context.Context, input *RenameBranchesInput) (*model.RenameSummary, error) {
	logger := logging.From(ctx)

	projects, err := x.ResolveProjects(ctx, input.Group, input.Projects)
	if err != nil {
		return nil, err
	}

	logger.Info("starting branch rename",
		slog.String("old", input.OldBranch),
		slog.String("new", input.NewBranch),
		slog.Int("projects", len(projects)),
		slog.Bool("dry_run", input.DryRun),
	)

	summary := &model.RenameSummary{DryRun: input.DryRun}
	for i, project := range projects {
		logger.Info("renaming branch",
			slog.Int("progress", i+1),
			slog.Int("total", len(projects)),
			slog.String("project", project.PathWithNamespace),
		)
		rec := x.renameOne(ctx, project, input)
		summary.Add(rec)

		switch rec.Status {
		case model.RenameStatusFailed:
			// No rollback: a failure after CREATE_NEW can leave both
			// branches present. The record points at the failing step.
			logger.Error("rename failed, project needs manual inspection",
				slog.String("project", project.PathWithNamespace),
				slog.String("step", string(rec.Step)),
				slog.String("reason", rec.Reason),
			)
		case model.RenameStatusSkipped:
			logger.Info("skipped",
				slog.String("project", project.PathWithNamespace),
				slog.String("reason", rec.Reason),
			)
		}
	}

	logger.Info("branch rename finished",
		slog.Int("total", summary.Total),
		slog.Int("renamed", summary.Renamed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
	)

	return summary, nil
}

// renameOne walks the per-project state machine:
// CHECK_EXISTS → CREATE_NEW → UPDATE_DEFAULT → DELETE_OLD → DONE.
// Dry-run short-circuits after the checks with the same record shape.
func (x *UseCase) renameOne(ctx context.Context, project *model.Project, input *RenameBranchesInput) *model.OperationRecord {
	gl := x.clients.GitLab()
	rec := &model.OperationRecord{
		Project:   project,
		OldBranch: input.OldBranch,
		NewBranch: input.NewBranch,
		DryRun:    input.DryRun,
		Step:      model.StepCheckExists,
	}

	fail := func(step model.RenameStep, err error) *model.OperationRecord {
		rec.Status = model.RenameStatusFailed
		rec.Step = step
		rec.Reason = err.Error()
		return rec
	}
	skip := func(reason string) *model.OperationRecord {
		rec.Status = model.RenameStatusSkipped
		rec.Reason = reason
		return rec
	}

	oldBranch, err := gl.GetBranch(ctx, project.ID, input.OldBranch)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return skip(model.SkipNoOldBranch)
		}
		return fail(model.StepCheckExists, err)
	}

	if _, err := gl.GetBranch(ctx, project.ID, input.NewBranch); err == nil {
		return skip(model.SkipNewExists)
	} else if !errors.Is(err, types.ErrNotFound) {
		return fail(model.StepCheckExists, err)
	}

	// Protected branches are never touched, dry-run or not.
	if input.SkipProtected && oldBranch.Protected {
		return skip(model.SkipProtected)
	}

	if input.DryRun {
		rec.Status = model.RenameStatusRenamed
		rec.Step = model.StepDone
		return rec
	}

	if _, err := gl.CreateBranch(ctx, project.ID, input.NewBranch, input.OldBranch); err != nil {
		return fail(model.StepCreateNew, err)
	}

	if oldBranch.Default {
		if err := gl.UpdateDefaultBranch(ctx, project.ID, input.NewBranch); err != nil {
			return fail(model.StepUpdateDefault, err)
		}
	}

	if err := gl.DeleteBranch(ctx, project.ID, input.OldBranch); err != nil {
		return fail(model.StepDeleteOld, err)
	}

	if input.RetargetMRs {
		x.retargetMergeRequests(ctx, project, input.OldBranch, input.NewBranch)
	}

	rec.Status = model.RenameStatusRenamed
	rec.Step = model.StepDone
	return rec
}

// retargetMergeRequests moves open MRs off the old branch. Failures here are
// warnings only: the rename itself already completed.
func (x *UseCase) retargetMergeRequests(ctx context.Context, project *model.Project, oldBranch, newBranch string) {
	logger := logging.From(ctx)
	gl := x.clients.GitLab()

	mrs, err := gl.ListMergeRequests(ctx, project.ID, model.MergeRequestQuery{
		State:        model.MergeRequestStateOpened,
		TargetBranch: oldBranch,
	})
	if err != nil {
		logger.Warn("failed to list merge requests for retarget",
			slog.String("project", project.PathWithNamespace),
			slog.Any("error", err),
		)
		return
	}

	for _, mr := range mrs {
		if err := gl.UpdateMergeRequestTarget(ctx, project.ID, mr.IID, newBranch); err != nil {
			logger.Warn("failed to retarget merge request",
				slog.String("project", project.PathWithNamespace),
				slog.Int64("iid", mr.IID),
				slog.Any("error", err),
			)
			continue
		}
		logger.Info("retargeted merge request",
			slog.String("project", project.PathWithNamespace),
			slog.Int64("iid", mr.IID),
			slog.String("target", newBranch),
		)
	}
}
