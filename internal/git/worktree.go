package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WorktreeInfo describes one entry from `git worktree list --porcelain`.
type WorktreeInfo struct {
	Path       string
	Branch     string
	CommitHash string
}

// ListWorktreesFromRepo returns all worktrees registered with the repo,
// including the main working tree (always the first entry).
func ListWorktreesFromRepo(ctx context.Context, repoPath string) ([]WorktreeInfo, error) {
	output, err := outputGit(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %v", err)
	}
	return parseWorktreePorcelain(output), nil
}

// parseWorktreePorcelain parses `git worktree list --porcelain` output.
func parseWorktreePorcelain(output []byte) []WorktreeInfo {
	var worktrees []WorktreeInfo
	var current WorktreeInfo

	for _, line := range strings.Split(string(output), "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			// Start of new worktree entry
			if current.Path != "" {
				worktrees = append(worktrees, current)
			}
			current = WorktreeInfo{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "HEAD "):
			current.CommitHash = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch refs/heads/"):
			current.Branch = strings.TrimPrefix(line, "branch refs/heads/")
		case line == "detached":
			current.Branch = "(detached)"
		}
	}

	// Don't forget the last entry
	if current.Path != "" {
		worktrees = append(worktrees, current)
	}

	return worktrees
}

// AddWorktree creates a worktree at path for an existing local branch.
func AddWorktree(ctx context.Context, repoPath, path, branch string) error {
	if err := runGit(ctx, repoPath, "worktree", "add", path, branch); err != nil {
		return fmt.Errorf("failed to create worktree: %v", err)
	}
	return nil
}

// AddWorktreeNewBranch creates a worktree at path with a new branch
// starting at ref.
func AddWorktreeNewBranch(ctx context.Context, repoPath, path, branch, ref string) error {
	if err := runGit(ctx, repoPath, "worktree", "add", path, "-b", branch, ref); err != nil {
		return fmt.Errorf("failed to create worktree: %v", err)
	}
	return nil
}

// RemoveWorktree removes the worktree at path.
// With force, uncommitted changes are discarded.
func RemoveWorktree(ctx context.Context, repoPath, path string, force bool) error {
	args := []string{"worktree", "remove", path}
	if force {
		args = append(args, "--force")
	}
	if err := runGit(ctx, repoPath, args...); err != nil {
		return fmt.Errorf("failed to remove worktree: %v", err)
	}
	return nil
}

// PruneWorktrees prunes stale worktree references.
func PruneWorktrees(ctx context.Context, repoPath string) error {
	return runGit(ctx, repoPath, "worktree", "prune")
}

// IsWorktree returns true if path is a linked git worktree.
// Worktrees have .git as a file pointing to the main repo,
// while main repos have .git as a directory.
func IsWorktree(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	if err != nil {
		return false
	}
	return !info.IsDir()
}
