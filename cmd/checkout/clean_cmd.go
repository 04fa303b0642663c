package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/DarrenTsung/checkout-pr/internal/log"
	"github.com/DarrenTsung/checkout-pr/internal/output"
	"github.com/DarrenTsung/checkout-pr/internal/registry"
	"github.com/DarrenTsung/checkout-pr/internal/ui/prompt"
	"github.com/DarrenTsung/checkout-pr/internal/ui/styles"
	"github.com/DarrenTsung/checkout-pr/internal/worktree"
)

func newCleanCmd() *cobra.Command {
	var (
		repoPath string
		yes      bool
		force    bool
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:     "clean [target]",
		Short:   "Remove worktrees",
		GroupID: GroupUtility,
		Args:    cobra.MaximumNArgs(1),
		Long: `Remove every worktree under the configured root that has no
uncommitted changes, then prune stale worktree references.

Dirty worktrees are skipped and reported; pass --force to remove them
too. A failure on one worktree doesn't stop the rest.

With a target (a PR number, PR URL, or branch name), only that
worktree is removed.`,
		Example: `  checkout clean
  checkout clean -n               # show what would be removed
  checkout clean -y --force       # remove everything, no prompt
  checkout clean 123              # just PR 123's worktree
  checkout clean feature-x`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)
			out := output.FromContext(ctx)

			mgr, err := buildManager(ctx, repoPath)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				return cleanTarget(cmd, mgr, args[0], yes, force, dryRun)
			}

			if !yes && !dryRun {
				confirmed, err := confirmClean(force)
				if err != nil {
					return err
				}
				if !confirmed {
					logger.Println("Aborted")
					return nil
				}
			}

			result, err := mgr.Clean(ctx, worktree.CleanOptions{Force: force, DryRun: dryRun})
			if err != nil {
				return err
			}

			verb := "Removed"
			if dryRun {
				verb = "Would remove"
			}
			for _, rec := range result.Removed {
				out.Printf("%s %s (%s)\n", verb,
					styles.WorktreeStyle(rec.Color).Render(rec.Identifier.String()), rec.Path)
			}
			for _, rec := range result.SkippedDirty {
				logger.Warnf("skipped %s: uncommitted changes (use --force)", rec.Path)
			}
			for _, f := range result.Failed {
				logger.Warnf("failed to remove %s: %v", f.Record.Path, f.Err)
			}

			if len(result.Removed) == 0 && len(result.SkippedDirty) == 0 && len(result.Failed) == 0 {
				out.Println("No worktrees to remove")
			}

			if len(result.Failed) > 0 {
				return fmt.Errorf("failed to remove %d worktree(s)", len(result.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repoPath, "repo", "", "Main repository path (overrides config)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&force, "force", false, "Remove dirty worktrees too")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be removed without removing")

	return cmd
}

// cleanTarget removes the single worktree named by target.
func cleanTarget(cmd *cobra.Command, mgr *worktree.Manager, target string, yes, force, dryRun bool) error {
	ctx := cmd.Context()
	out := output.FromContext(ctx)

	id, err := parseTarget(target)
	if err != nil {
		return err
	}

	if dryRun {
		rec := registry.Derive(id, mgr.Root, mgr.Owner)
		if _, err := os.Stat(rec.Path); os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", worktree.ErrNotFound, rec.Path)
		}
		out.Printf("Would remove %s (%s)\n",
			styles.WorktreeStyle(rec.Color).Render(id.String()), rec.Path)
		return nil
	}

	if !yes {
		confirmed, err := confirmTarget(target)
		if err != nil {
			return err
		}
		if !confirmed {
			log.FromContext(ctx).Println("Aborted")
			return nil
		}
	}

	rec, err := mgr.Remove(ctx, id, force)
	if err != nil {
		return err
	}

	out.Printf("Removed %s (%s)\n",
		styles.WorktreeStyle(rec.Color).Render(id.String()), rec.Path)
	return nil
}

// parseTarget resolves a clean target: a PR number or URL, falling back
// to a branch name.
func parseTarget(target string) (registry.Identifier, error) {
	if id, err := registry.ParsePR(target); err == nil {
		return id, nil
	}
	return registry.NewBranch(target)
}

func confirmTarget(target string) (bool, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return false, fmt.Errorf("confirmation required: pass -y when stdin is not a terminal")
	}
	res, err := prompt.Confirm(fmt.Sprintf("Remove the worktree for %s?", target))
	if err != nil {
		return false, err
	}
	return res.Confirmed && !res.Cancelled, nil
}

// confirmClean previews the removal and asks for confirmation. Without
// a terminal there is nobody to ask, so it requires -y instead of
// hanging in a pipeline.
func confirmClean(force bool) (bool, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return false, fmt.Errorf("confirmation required: pass -y when stdin is not a terminal")
	}

	question := "Remove all clean worktrees?"
	if force {
		question = "Remove ALL worktrees, including dirty ones?"
	}

	res, err := prompt.Confirm(question)
	if err != nil {
		return false, err
	}
	return res.Confirmed && !res.Cancelled, nil
}
