package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/glt-tools/glt/pkg/cli/config"
	"github.com/glt-tools/glt/pkg/domain/model"
	"github.com/glt-tools/glt/pkg/infra"
	"github.com/glt-tools/glt/pkg/renderer"
	"github.com/glt-tools/glt/pkg/usecase"
	"github.com/glt-tools/glt/pkg/utils/safe"
)

func shellCommand() *cli.Command {
	var (
		gitlabConfig config.GitLab
		cacheConfig  config.Cache
		smtpConfig   config.SMTP
	)

	return &cli.Command{
		Name:  "shell",
		Usage: "Interactive numbered menu over the batch operations",
		Flags: slice.Flatten(gitlabConfig.Flags(), cacheConfig.Flags(), smtpConfig.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			sh := &shell{
				in:           bufio.NewReader(os.Stdin),
				out:          os.Stdout,
				gitlabConfig: &gitlabConfig,
				cacheConfig:  &cacheConfig,
				smtpConfig:   &smtpConfig,
			}
			if dir, err := cacheConfig.Dir(); err == nil {
				sh.historyPath = filepath.Join(dir, "shell_history")
			}
			return sh.run(ctx)
		},
	}
}

type shell struct {
	in           *bufio.Reader
	out          io.Writer
	gitlabConfig *config.GitLab
	cacheConfig  *config.Cache
	smtpConfig   *config.SMTP
	dryRun       bool
	historyPath  string
}

type menuEntry struct {
	name    string
	desc    string
	handler func(ctx context.Context) error
}

func (x *shell) run(ctx context.Context) error {
	entries := []menuEntry{
		{"Rename Branches", "Rename a branch across projects in a group", x.menuRename},
		{"Sync Issues from Files", "Create issues from CSV or markdown files", x.menuSyncIssues},
		{"Create Issue", "Create one issue from a built-in template", x.menuCreateIssue},
		{"Generate Report", "Aggregate activity into a report file", x.menuGenerateReport},
		{"Generate and Send Report", "Generate the report and email it in one step", x.menuSendReport},
		{"Toggle Dry-Run Mode", "Flip the safety switch for mutating operations", x.menuToggleDryRun},
		{"Exit", "Leave the shell", nil},
	}

	title := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow)

	for {
		_, _ = title.Fprintln(x.out, "\nGitLab Batch Tools")
		if x.dryRun {
			_, _ = warn.Fprintln(x.out, "DRY-RUN MODE: no changes will be made")
		}
		for i, e := range entries {
			fmt.Fprintf(x.out, "  %2d. %s\n      %s\n", i+1, e.name, color.HiBlackString(e.desc))
		}

		line, err := x.prompt(fmt.Sprintf("Enter your choice (1-%d): ", len(entries)))
		if err != nil {
			return nil // EOF ends the session
		}
		choice, err := strconv.Atoi(line)
		if err != nil || choice < 1 || choice > len(entries) {
			fmt.Fprintln(x.out, "Invalid choice.")
			continue
		}

		entry := entries[choice-1]
		x.appendHistory(entry.name)
		if entry.handler == nil {
			return nil
		}
		if err := entry.handler(ctx); err != nil {
			_, _ = color.New(color.FgRed).Fprintf(x.out, "operation failed: %v\n", err)
		}
	}
}

func (x *shell) prompt(msg string) (string, error) {
	fmt.Fprint(x.out, msg)
	line, err := x.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (x *shell) promptDefault(msg, fallback string) string {
	line, err := x.prompt(fmt.Sprintf("%s [%s]: ", msg, fallback))
	if err != nil || line == "" {
		return fallback
	}
	return line
}

// appendHistory records the chosen action under the cache dir. Best effort:
// a read-only cache dir never blocks the session.
func (x *shell) appendHistory(action string) {
	if x.historyPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(x.historyPath), 0700); err != nil {
		return
	}
	fd, err := os.OpenFile(x.historyPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer safe.Close(fd)
	fmt.Fprintf(fd, "%s\t%s\n", time.Now().Format(time.RFC3339), action)
}

func (x *shell) useCase(ctx context.Context) (*usecase.UseCase, error) {
	return buildUseCase(ctx, x.gitlabConfig, x.cacheConfig)
}

func (x *shell) menuRename(ctx context.Context) error {
	group, err := x.prompt("Group path: ")
	if err != nil {
		return err
	}
	oldBranch := x.promptDefault("Old branch", "trunk")
	newBranch := x.promptDefault("New branch", "main")

	uc, err := x.useCase(ctx)
	if err != nil {
		return err
	}
	summary, err := uc.RenameBranches(ctx, &usecase.RenameBranchesInput{
		Group:         group,
		OldBranch:     oldBranch,
		NewBranch:     newBranch,
		DryRun:        x.dryRun,
		SkipProtected: true,
		RetargetMRs:   true,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(x.out, "renamed %d, skipped %d, failed %d\n",
		summary.Renamed, summary.Skipped, summary.Failed)
	return nil
}

func (x *shell) menuSyncIssues(ctx context.Context) error {
	project, err := x.prompt("Project path: ")
	if err != nil {
		return err
	}
	files, err := x.prompt("Issue files (comma-separated): ")
	if err != nil {
		return err
	}

	uc, err := x.useCase(ctx)
	if err != nil {
		return err
	}
	summary, err := uc.SyncIssuesFromFiles(ctx, &usecase.SyncIssuesInput{
		Project: project,
		Files:   splitList(files),
		DryRun:  x.dryRun,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(x.out, "created %d, failed %d\n", summary.Created, summary.Failed)
	return nil
}

func (x *shell) menuCreateIssue(ctx context.Context) error {
	project, err := x.prompt("Project path: ")
	if err != nil {
		return err
	}
	template := x.promptDefault("Template (feature|bug|task)", "task")

	vars := map[string]string{}
	for {
		pair, err := x.prompt("Variable name=value (empty to finish): ")
		if err != nil || pair == "" {
			break
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			fmt.Fprintln(x.out, "expected name=value")
			continue
		}
		vars[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	uc, err := x.useCase(ctx)
	if err != nil {
		return err
	}
	issue, err := uc.CreateIssue(ctx, &usecase.CreateIssueInput{
		Project:  project,
		Template: template,
		Vars:     vars,
		DryRun:   x.dryRun,
	})
	if err != nil {
		return err
	}
	if issue != nil {
		fmt.Fprintf(x.out, "created %s\n", issue.WebURL)
	}
	return nil
}

func (x *shell) menuGenerateReport(ctx context.Context) error {
	report, err := x.buildReport(ctx)
	if err != nil {
		return err
	}

	format := x.promptDefault("Format (markdown|html|csv|json)", "markdown")
	output := x.promptDefault("Output path", "report.md")

	doc, err := renderer.New(format).Render(report)
	if err != nil {
		return err
	}
	if err := writeOutput(output, doc); err != nil {
		return err
	}
	fmt.Fprintf(x.out, "wrote %s\n", output)
	return nil
}

func (x *shell) menuSendReport(ctx context.Context) error {
	report, err := x.buildReport(ctx)
	if err != nil {
		return err
	}

	to, err := x.prompt("Recipients (comma-separated): ")
	if err != nil {
		return err
	}

	m, err := x.smtpConfig.NewMailer(x.dryRun)
	if err != nil {
		return err
	}
	uc, err := buildUseCase(ctx, x.gitlabConfig, x.cacheConfig, infra.WithMailer(m))
	if err != nil {
		return err
	}

	from, fromName := x.smtpConfig.From()
	return uc.SendReport(ctx, &usecase.SendReportInput{
		Report:   report,
		From:     from,
		FromName: fromName,
		To:       splitList(to),
	})
}

func (x *shell) buildReport(ctx context.Context) (*model.ActivityReport, error) {
	group, err := x.prompt("Group path: ")
	if err != nil {
		return nil, err
	}
	days, err := strconv.Atoi(x.promptDefault("Days to analyze", "7"))
	if err != nil {
		days = 7
	}

	uc, err := x.useCase(ctx)
	if err != nil {
		return nil, err
	}
	return uc.GenerateReport(ctx, &usecase.ReportInput{
		Group: group,
		Days:  days,
	})
}

func (x *shell) menuToggleDryRun(ctx context.Context) error {
	x.dryRun = !x.dryRun
	if x.dryRun {
		fmt.Fprintln(x.out, "dry-run mode enabled")
	} else {
		fmt.Fprintln(x.out, "dry-run mode disabled")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
