package worktree

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/DarrenTsung/checkout-pr/internal/claude"
	"github.com/DarrenTsung/checkout-pr/internal/cmd"
	"github.com/DarrenTsung/checkout-pr/internal/log"
	"github.com/DarrenTsung/checkout-pr/internal/registry"
)

// runSetup performs the auxiliary steps after a worktree is created:
// symlinks, file copies, the trust command, and session-dir sharing.
// Every step is best-effort; a failure is logged and the rest proceed.
func (m *Manager) runSetup(ctx context.Context, rec registry.Record) {
	logger := log.FromContext(ctx)

	for _, name := range m.Setup.Links {
		if err := linkFromRepo(m.RepoPath, rec.Path, name); err != nil {
			logger.Warnf("link %s: %v", name, err)
		}
	}

	for _, name := range m.Setup.Copy {
		if err := copyFromRepo(m.RepoPath, rec.Path, name); err != nil {
			logger.Warnf("copy %s: %v", name, err)
		}
	}

	if m.Setup.TrustCommand != "" {
		if err := runTrustCommand(ctx, rec.Path, m.Setup.TrustCommand); err != nil {
			logger.Warnf("trust command: %v", err)
		}
	}

	if err := claude.SymlinkProjectDir(m.RepoPath, rec.Path); err != nil {
		logger.Warnf("share claude sessions: %v", err)
	}
}

// cleanupSession removes the session-dir symlink for a removed
// worktree. Best-effort.
func (m *Manager) cleanupSession(ctx context.Context, path string) {
	if err := claude.RemoveProjectDirSymlink(path); err != nil {
		log.FromContext(ctx).Warnf("remove claude session link: %v", err)
	}
}

// linkFromRepo symlinks <repo>/<name> into the worktree. Skips names
// missing from the repo and never clobbers an existing entry.
func linkFromRepo(repoPath, wtPath, name string) error {
	src := filepath.Join(repoPath, name)
	dst := filepath.Join(wtPath, name)

	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if _, err := os.Lstat(dst); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.Symlink(src, dst)
}

// copyFromRepo copies <repo>/<name> into the worktree, preserving the
// file mode. Skips names missing from the repo and existing targets.
func copyFromRepo(repoPath, wtPath, name string) error {
	src := filepath.Join(repoPath, name)
	dst := filepath.Join(wtPath, name)

	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, use links instead", name)
	}
	if _, err := os.Lstat(dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// runTrustCommand executes the configured command inside the worktree
// (e.g. "mise trust").
func runTrustCommand(ctx context.Context, wtPath, command string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}
	return cmd.RunContext(ctx, wtPath, fields[0], fields[1:]...)
}
