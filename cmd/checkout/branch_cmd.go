package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DarrenTsung/checkout-pr/internal/claude"
	"github.com/DarrenTsung/checkout-pr/internal/registry"
)

func newBranchCmd() *cobra.Command {
	var (
		noClaude   bool
		repoPath   string
		copyPath   bool
		promptFile string
	)

	cmd := &cobra.Command{
		Use:     "branch <name>",
		Short:   "Create a worktree on a new namespaced branch",
		GroupID: GroupWorktree,
		Args:    cobra.ExactArgs(1),
		Long: `Create a worktree on a new branch under your configured owner
prefix, starting from the default branch, then start a Claude Code
session inside it.

'checkout branch feature-x' with owner 'darren' creates the branch
darren/feature-x in <root>/feature-x.`,
		Example: `  checkout branch feature-x
  checkout branch fix/login-flow
  checkout branch feature-x --claude-prompt task.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := registry.NewBranch(args[0])
			if err != nil {
				return err
			}

			mgr, err := buildManager(ctx, repoPath)
			if err != nil {
				return err
			}

			res, err := createWithSpinner(ctx, mgr, id,
				fmt.Sprintf("Creating worktree for %s...", args[0]))
			if err != nil {
				return err
			}
			reportCreated(ctx, res, copyPath)

			return newLauncher(noClaude).Launch(ctx, claude.LaunchOptions{
				Dir:        res.Record.Path,
				Mode:       claude.ModePlain,
				PromptFile: promptFile,
			})
		},
	}

	cmd.Flags().BoolVar(&noClaude, "no-claude", false, "Don't start a Claude Code session")
	cmd.Flags().StringVar(&repoPath, "repo", "", "Main repository path (overrides config)")
	cmd.Flags().BoolVar(&copyPath, "copy", false, "Copy the worktree path to the clipboard")
	cmd.Flags().StringVar(&promptFile, "claude-prompt", "", "File whose content seeds the session prompt")

	return cmd
}
