package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DarrenTsung/checkout-pr/internal/claude"
	"github.com/DarrenTsung/checkout-pr/internal/github"
	"github.com/DarrenTsung/checkout-pr/internal/log"
	"github.com/DarrenTsung/checkout-pr/internal/output"
	"github.com/DarrenTsung/checkout-pr/internal/registry"
	"github.com/DarrenTsung/checkout-pr/internal/ui/progress"
	"github.com/DarrenTsung/checkout-pr/internal/ui/styles"
	"github.com/DarrenTsung/checkout-pr/internal/worktree"
)

func newPRCmd() *cobra.Command {
	var (
		noClaude bool
		repoPath string
		copyPath bool
	)

	cmd := &cobra.Command{
		Use:     "pr <number|url>",
		Short:   "Create a worktree for a pull request and start a session",
		GroupID: GroupWorktree,
		Args:    cobra.ExactArgs(1),
		Long: `Fetch the pull request head and check it out in a dedicated
worktree under the configured root, then start a Claude Code session
inside it.

Accepts a PR number or a full GitHub PR URL. Running it again for the
same PR reuses the existing worktree.`,
		Example: `  checkout pr 123
  checkout pr https://github.com/figma/figma/pull/123
  checkout pr 123 --no-claude       # worktree only, no session`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := registry.ParsePR(args[0])
			if err != nil {
				return err
			}
			if err := github.CheckGH(); err != nil {
				return err
			}

			mgr, err := buildManager(ctx, repoPath)
			if err != nil {
				return err
			}

			res, err := createWithSpinner(ctx, mgr, id,
				fmt.Sprintf("Fetching PR #%d...", id.Number()))
			if err != nil {
				return err
			}
			reportCreated(ctx, res, copyPath)

			return newLauncher(noClaude).Launch(ctx, claude.LaunchOptions{
				Dir:  res.Record.Path,
				Mode: claude.ModePlain,
			})
		},
	}

	cmd.Flags().BoolVar(&noClaude, "no-claude", false, "Don't start a Claude Code session")
	cmd.Flags().StringVar(&repoPath, "repo", "", "Main repository path (overrides config)")
	cmd.Flags().BoolVar(&copyPath, "copy", false, "Copy the worktree path to the clipboard")

	return cmd
}

// createWithSpinner runs Create with a progress spinner on stderr.
func createWithSpinner(ctx context.Context, mgr *worktree.Manager, id registry.Identifier, msg string) (*worktree.CreateResult, error) {
	sp := progress.New(msg)
	sp.Start()
	res, err := mgr.Create(ctx, id)
	sp.Stop()
	return res, err
}

// reportCreated prints the worktree path to stdout (pipeable) and a
// summary to stderr.
func reportCreated(ctx context.Context, res *worktree.CreateResult, copyPath bool) {
	logger := log.FromContext(ctx)

	colored := styles.WorktreeStyle(res.Record.Color).Render(res.Record.Branch)
	if res.Existed {
		logger.Printf("Worktree for %s already exists\n", colored)
	} else {
		logger.Printf("Created worktree for %s\n", colored)
	}

	output.FromContext(ctx).Println(res.Record.Path)

	if copyPath {
		copyPathToClipboard(ctx, res.Record.Path)
	}
}
