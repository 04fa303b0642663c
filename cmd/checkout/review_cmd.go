package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DarrenTsung/checkout-pr/internal/claude"
	"github.com/DarrenTsung/checkout-pr/internal/github"
	"github.com/DarrenTsung/checkout-pr/internal/registry"
)

func newReviewCmd() *cobra.Command {
	var (
		noClaude bool
		repoPath string
		copyPath bool
	)

	cmd := &cobra.Command{
		Use:     "review <number|url>",
		Short:   "Create a worktree for a pull request and start a review session",
		GroupID: GroupWorktree,
		Args:    cobra.ExactArgs(1),
		Long: `Like 'checkout pr', but the Claude Code session starts with the
configured review prompt so it immediately begins reviewing the PR.`,
		Example: `  checkout review 123
  checkout review https://github.com/figma/figma/pull/123`,
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
				Dir:          res.Record.Path,
				Mode:         claude.ModeReview,
				PRNumber:     id.Number(),
				ReviewPrompt: cfg.Claude.ReviewPrompt,
			})
		},
	}

	cmd.Flags().BoolVar(&noClaude, "no-claude", false, "Don't start a Claude Code session")
	cmd.Flags().StringVar(&repoPath, "repo", "", "Main repository path (overrides config)")
	cmd.Flags().BoolVar(&copyPath, "copy", false, "Copy the worktree path to the clipboard")

	return cmd
}
