package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// GetDefaultBranch returns the default branch name for origin
// (e.g. "main" or "master").
func GetDefaultBranch(ctx context.Context, repoPath string) string {
	// Try to get default branch from remote HEAD
	output, err := outputGit(ctx, repoPath, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err == nil {
		// Output is like "refs/remotes/origin/main"
		ref := strings.TrimSpace(string(output))
		if parts := strings.Split(ref, "/"); len(parts) > 0 {
			return parts[len(parts)-1]
		}
	}

	// Fallback: check if origin/main exists
	if runGit(ctx, repoPath, "rev-parse", "--verify", "origin/main") == nil {
		return "main"
	}

	// Fallback: check if origin/master exists
	if runGit(ctx, repoPath, "rev-parse", "--verify", "origin/master") == nil {
		return "master"
	}

	return "main"
}

// GetCurrentBranch returns the current branch name at path.
// Returns "(detached)" for detached HEAD state.
func GetCurrentBranch(ctx context.Context, path string) (string, error) {
	output, err := outputGit(ctx, path, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("failed to get branch: %v", err)
	}
	branch := strings.TrimSpace(string(output))
	if branch == "" {
		return "(detached)", nil
	}
	return branch, nil
}

// BranchExists reports whether a local branch exists in the repo.
func BranchExists(ctx context.Context, repoPath, branch string) bool {
	return runGit(ctx, repoPath, "rev-parse", "--verify", "refs/heads/"+branch) == nil
}

// RefExists reports whether ref resolves in the repo (branch, remote
// ref, tag, or commit).
func RefExists(ctx context.Context, repoPath, ref string) bool {
	return runGit(ctx, repoPath, "rev-parse", "--verify", "--quiet", ref) == nil
}

// IsDirty returns true if the worktree at path has uncommitted changes
// or untracked files.
func IsDirty(ctx context.Context, path string) bool {
	output, err := outputGit(ctx, path, "status", "--porcelain")
	if err != nil {
		return false // Treat error as clean (safe default)
	}
	return strings.TrimSpace(string(output)) != ""
}

// FetchBranch fetches a specific branch from origin.
func FetchBranch(ctx context.Context, repoPath, branch string) error {
	if err := runGit(ctx, repoPath, "fetch", "origin", branch, "--quiet"); err != nil {
		return fmt.Errorf("failed to fetch origin/%s: %v", branch, err)
	}
	return nil
}

// FetchPRHead fetches the head ref of a GitHub PR into FETCH_HEAD.
func FetchPRHead(ctx context.Context, repoPath string, number int) error {
	ref := "pull/" + strconv.Itoa(number) + "/head"
	if err := runGit(ctx, repoPath, "fetch", "origin", ref, "--quiet"); err != nil {
		return fmt.Errorf("failed to fetch %s: %v", ref, err)
	}
	return nil
}

// ForceBranch points branch at ref, creating it if needed.
// Fails if the branch is checked out in any worktree.
func ForceBranch(ctx context.Context, repoPath, branch, ref string) error {
	return runGit(ctx, repoPath, "branch", "-f", branch, ref)
}

// GetMainRepoPath extracts the main repo path from the .git file in a
// linked worktree.
func GetMainRepoPath(worktreePath string) (string, error) {
	gitFile := filepath.Join(worktreePath, ".git")
	content, err := os.ReadFile(gitFile)
	if err != nil {
		return "", fmt.Errorf("failed to read .git file: %w", err)
	}

	// Parse: "gitdir: /path/to/repo/.git/worktrees/name"
	line := strings.TrimSpace(string(content))
	if idx := strings.Index(line, "\n"); idx != -1 {
		line = strings.TrimSpace(line[:idx])
	}
	if !strings.HasPrefix(line, "gitdir: ") {
		return "", fmt.Errorf("invalid .git file format: expected 'gitdir: <path>'")
	}

	gitDir := strings.TrimPrefix(line, "gitdir: ")
	// Strip "/.git/worktrees/<name>" to get the main repo path
	idx := strings.Index(gitDir, "/.git/worktrees/")
	if idx == -1 {
		return "", fmt.Errorf("unexpected gitdir format: %q", gitDir)
	}
	return gitDir[:idx], nil
}
