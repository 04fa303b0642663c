package main

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/DarrenTsung/checkout-pr/internal/claude"
	"github.com/DarrenTsung/checkout-pr/internal/config"
	"github.com/DarrenTsung/checkout-pr/internal/git"
	"github.com/DarrenTsung/checkout-pr/internal/log"
	"github.com/DarrenTsung/checkout-pr/internal/worktree"
)

// buildManager resolves the repo and worktree root (flag > env > config
// file, env already applied by config.Load) and validates the repo.
func buildManager(ctx context.Context, repoFlag string) (*worktree.Manager, error) {
	repoPath := cfg.Repo
	if repoFlag != "" {
		var err error
		if repoPath, err = config.ExpandPath(repoFlag); err != nil {
			return nil, err
		}
	}

	if !git.IsRepo(ctx, repoPath) {
		return nil, fmt.Errorf("%s is not a git repository (set repo in config or pass --repo)", repoPath)
	}

	return &worktree.Manager{
		RepoPath: repoPath,
		Root:     cfg.WorktreeDir,
		Owner:    cfg.Owner,
		Setup:    cfg.Setup,
		PRs:      worktree.GHViewer{},
	}, nil
}

// newLauncher picks the session launcher based on config and --no-claude.
func newLauncher(noClaude bool) claude.Launcher {
	if noClaude || cfg.Claude.Skip {
		return claude.NopLauncher{}
	}
	return claude.CLILauncher{Command: cfg.Claude.Command}
}

// copyPathToClipboard copies path to the system clipboard. Failure is a
// warning: the path has already been printed.
func copyPathToClipboard(ctx context.Context, path string) {
	if err := clipboard.WriteAll(path); err != nil {
		log.FromContext(ctx).Warnf("copy to clipboard: %v", err)
	}
}
