package claude

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EncodeProjectPath maps an absolute path to the directory name Claude
// Code uses under <config>/projects/: every separator becomes a hyphen,
// so "/home/user/myproject" encodes to "-home-user-myproject".
func EncodeProjectPath(absPath string) string {
	absPath = filepath.Clean(absPath)
	absPath = strings.TrimRight(absPath, string(filepath.Separator))
	return strings.ReplaceAll(absPath, string(filepath.Separator), "-")
}

// ConfigDir returns Claude Code's config directory, honoring
// CLAUDE_CONFIG_DIR before defaulting to ~/.claude.
func ConfigDir() (string, error) {
	if dir := os.Getenv("CLAUDE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".claude"), nil
}

// SymlinkProjectDir links the worktree's Claude project directory to the
// main repo's, so sessions and auto-memory carry over into the worktree:
//
//	<config>/projects/<worktree-encoded> -> <config>/projects/<main-repo-encoded>
//
// Paths are run through filepath.EvalSymlinks first; on macOS /tmp and
// /var are themselves symlinks into /private, and Claude Code encodes
// the resolved form. A pre-existing real directory at the worktree slot
// is left alone rather than clobbering session data.
func SymlinkProjectDir(mainRepoPath, worktreePath string) error {
	mainResolved, err := filepath.EvalSymlinks(mainRepoPath)
	if err != nil {
		return fmt.Errorf("resolve main repo path: %w", err)
	}
	wtResolved, err := filepath.EvalSymlinks(worktreePath)
	if err != nil {
		return fmt.Errorf("resolve worktree path: %w", err)
	}
	if mainResolved == wtResolved {
		return nil
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	projectsDir := filepath.Join(configDir, "projects")
	mainDir := filepath.Join(projectsDir, EncodeProjectPath(mainResolved))
	wtDir := filepath.Join(projectsDir, EncodeProjectPath(wtResolved))

	if err := os.MkdirAll(mainDir, 0755); err != nil {
		return fmt.Errorf("create main project dir: %w", err)
	}

	switch info, err := os.Lstat(wtDir); {
	case err != nil:
		// nothing there yet
	case info.Mode()&os.ModeSymlink == 0:
		// real directory with session data, keep it
		return nil
	default:
		if target, err := os.Readlink(wtDir); err == nil && target == mainDir {
			return nil
		}
		// stale link, repoint it
		if err := os.Remove(wtDir); err != nil {
			return fmt.Errorf("remove stale symlink: %w", err)
		}
	}

	return os.Symlink(mainDir, wtDir)
}

// RemoveProjectDirSymlink deletes the worktree's project-directory
// symlink if one exists. A real directory there means genuine session
// data and is never removed.
func RemoveProjectDirSymlink(worktreePath string) error {
	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	// The worktree may already be gone, in which case EvalSymlinks
	// fails and the raw cleaned path is the best guess.
	resolved, err := filepath.EvalSymlinks(worktreePath)
	if err != nil {
		resolved = filepath.Clean(worktreePath)
	}

	wtDir := filepath.Join(configDir, "projects", EncodeProjectPath(resolved))

	info, err := os.Lstat(wtDir)
	if err != nil {
		return nil
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return os.Remove(wtDir)
	}
	return nil
}
