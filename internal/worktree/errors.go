package worktree

import "errors"

var (
	// ErrNotFound indicates no managed worktree exists for the identifier.
	ErrNotFound = errors.New("worktree not found")

	// ErrDirty indicates the worktree has uncommitted changes or
	// untracked files.
	ErrDirty = errors.New("worktree has uncommitted changes")

	// ErrPathOccupied indicates the derived path exists but is not a
	// worktree of the repository.
	ErrPathOccupied = errors.New("path exists but is not a worktree")
)
