package claude

import (
	"os"
	"path/filepath"
	"testing"
)

// resolvePath resolves symlinks (needed on macOS where /var -> /private/var).
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve path %s: %v", path, err)
	}
	return resolved
}

func TestEncodeProjectPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want string
	}{
		{"simple absolute path", "/home/user/myproject", "-home-user-myproject"},
		{"path with trailing slash", "/home/user/myproject/", "-home-user-myproject"},
		{"deeply nested path", "/home/user/repos/org/myproject", "-home-user-repos-org-myproject"},
		{"path with hyphens", "/home/user/my-project", "-home-user-my-project"},
		{"root path", "/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := EncodeProjectPath(tt.path)
			if got != tt.want {
				t.Errorf("EncodeProjectPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func setupProjectDirs(t *testing.T) (claudeDir, mainRepo, worktree string) {
	t.Helper()

	tmpDir := resolvePath(t, t.TempDir())
	claudeDir = filepath.Join(tmpDir, ".claude")
	t.Setenv("CLAUDE_CONFIG_DIR", claudeDir)

	mainRepo = filepath.Join(tmpDir, "repos", "myapp")
	worktree = filepath.Join(tmpDir, "repos", "myapp-feature")

	if err := os.MkdirAll(mainRepo, 0755); err != nil {
		t.Fatalf("create main repo dir: %v", err)
	}
	if err := os.MkdirAll(worktree, 0755); err != nil {
		t.Fatalf("create worktree dir: %v", err)
	}
	return claudeDir, mainRepo, worktree
}

func TestSymlinkProjectDir(t *testing.T) {
	claudeDir, mainRepo, worktree := setupProjectDirs(t)

	if err := SymlinkProjectDir(mainRepo, worktree); err != nil {
		t.Fatalf("SymlinkProjectDir() error = %v", err)
	}

	projectsDir := filepath.Join(claudeDir, "projects")
	symlinkPath := filepath.Join(projectsDir, EncodeProjectPath(worktree))
	targetPath := filepath.Join(projectsDir, EncodeProjectPath(mainRepo))

	info, err := os.Lstat(symlinkPath)
	if err != nil {
		t.Fatalf("Lstat symlink: %v", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Fatal("expected symlink, got regular file/dir")
	}

	link, err := os.Readlink(symlinkPath)
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if link != targetPath {
		t.Errorf("symlink target = %q, want %q", link, targetPath)
	}
}

func TestSymlinkProjectDir_Idempotent(t *testing.T) {
	_, mainRepo, worktree := setupProjectDirs(t)

	if err := SymlinkProjectDir(mainRepo, worktree); err != nil {
		t.Fatalf("first SymlinkProjectDir() error = %v", err)
	}
	if err := SymlinkProjectDir(mainRepo, worktree); err != nil {
		t.Errorf("second SymlinkProjectDir() error = %v", err)
	}
}

func TestSymlinkProjectDir_ExistingDirUntouched(t *testing.T) {
	claudeDir, mainRepo, worktree := setupProjectDirs(t)

	// Pre-create a real project dir for the worktree
	wtDir := filepath.Join(claudeDir, "projects", EncodeProjectPath(worktree))
	if err := os.MkdirAll(wtDir, 0755); err != nil {
		t.Fatalf("create project dir: %v", err)
	}

	if err := SymlinkProjectDir(mainRepo, worktree); err != nil {
		t.Fatalf("SymlinkProjectDir() error = %v", err)
	}

	info, err := os.Lstat(wtDir)
	if err != nil {
		t.Fatalf("Lstat: %v", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Error("existing session dir was replaced with a symlink")
	}
}

func TestRemoveProjectDirSymlink(t *testing.T) {
	claudeDir, mainRepo, worktree := setupProjectDirs(t)

	if err := SymlinkProjectDir(mainRepo, worktree); err != nil {
		t.Fatalf("SymlinkProjectDir() error = %v", err)
	}

	if err := RemoveProjectDirSymlink(worktree); err != nil {
		t.Fatalf("RemoveProjectDirSymlink() error = %v", err)
	}

	wtDir := filepath.Join(claudeDir, "projects", EncodeProjectPath(worktree))
	if _, err := os.Lstat(wtDir); !os.IsNotExist(err) {
		t.Error("symlink still exists after removal")
	}

	// Removing again is a no-op
	if err := RemoveProjectDirSymlink(worktree); err != nil {
		t.Errorf("second RemoveProjectDirSymlink() error = %v", err)
	}
}
