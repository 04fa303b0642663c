// Package git provides git operations via shell commands.
//
// All operations use the git CLI through [internal/cmd] rather than Go
// git libraries. This keeps behavior identical to what the user gets on
// the command line and respects their configuration (SSH keys,
// credential helpers, aliases).
//
// # Worktree Operations
//
//   - [AddWorktree], [AddWorktreeNewBranch]: create worktrees
//   - [RemoveWorktree], [PruneWorktrees]: remove worktrees
//   - [ListWorktreesFromRepo]: enumerate a repo's worktrees
//   - [IsWorktree], [GetMainRepoPath]: identify linked worktrees
//
// # Branch and Status Queries
//
//   - [BranchExists], [GetCurrentBranch], [GetDefaultBranch]
//   - [IsDirty]: uncommitted changes or untracked files
//   - [FetchBranch], [FetchPRHead]: update refs from origin
package git
