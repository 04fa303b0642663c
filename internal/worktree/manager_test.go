package worktree

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DarrenTsung/checkout-pr/internal/github"
	"github.com/DarrenTsung/checkout-pr/internal/log"
	"github.com/DarrenTsung/checkout-pr/internal/registry"
)

func logCtx() context.Context {
	l := log.New(&bytes.Buffer{}, false, false)
	return log.WithLogger(context.Background(), l)
}

// setupFixture creates a main repo and an empty worktree root in a temp
// directory, pointing CLAUDE_CONFIG_DIR into the sandbox so session
// symlinks never touch the real home directory.
func setupFixture(t *testing.T) *Manager {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	t.Setenv("CLAUDE_CONFIG_DIR", filepath.Join(dir, "claude-config"))

	repoPath := filepath.Join(dir, "repo")
	if err := os.MkdirAll(repoPath, 0755); err != nil {
		t.Fatalf("failed to create repo dir: %v", err)
	}

	cmds := [][]string{
		{"git", "init", "-b", "main"},
		{"git", "config", "user.email", "test@test.com"},
		{"git", "config", "user.name", "Test User"},
		{"git", "config", "commit.gpgsign", "false"},
	}
	for _, args := range cmds {
		runTestCmd(t, repoPath, args...)
	}

	readmePath := filepath.Join(repoPath, "README.md")
	if err := os.WriteFile(readmePath, []byte("# repo\n"), 0644); err != nil {
		t.Fatalf("failed to write README: %v", err)
	}
	runTestCmd(t, repoPath, "git", "add", "README.md")
	runTestCmd(t, repoPath, "git", "commit", "-m", "Initial commit")

	return &Manager{
		RepoPath: repoPath,
		Root:     filepath.Join(dir, "worktrees"),
		Owner:    "darren",
	}
}

// addPRRef publishes the repo's HEAD as pull/<n>/head on a local
// "origin" remote, mimicking how GitHub exposes PR heads.
func addPRRef(t *testing.T, m *Manager, number int) {
	t.Helper()

	originPath := filepath.Join(filepath.Dir(m.RepoPath), "origin.git")
	if _, err := os.Stat(originPath); os.IsNotExist(err) {
		runTestCmd(t, filepath.Dir(m.RepoPath), "git", "clone", "--bare", m.RepoPath, originPath)
		runTestCmd(t, m.RepoPath, "git", "remote", "add", "origin", originPath)
	}
	runTestCmd(t, originPath, "git", "update-ref",
		fmt.Sprintf("refs/pull/%d/head", number), "refs/heads/main")
}

func runTestCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to run %v: %v\n%s", args, err, out)
	}
}

func mustBranch(t *testing.T, name string) registry.Identifier {
	t.Helper()
	id, err := registry.NewBranch(name)
	if err != nil {
		t.Fatalf("NewBranch(%q): %v", name, err)
	}
	return id
}

func mustPR(t *testing.T, raw string) registry.Identifier {
	t.Helper()
	id, err := registry.ParsePR(raw)
	if err != nil {
		t.Fatalf("ParsePR(%q): %v", raw, err)
	}
	return id
}

// fakeViewer is a canned PRViewer for tests.
type fakeViewer struct {
	prs map[int]*github.PRDetails
	err error
}

func (f *fakeViewer) ViewPR(_ context.Context, _ string, number int) (*github.PRDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	pr, ok := f.prs[number]
	if !ok {
		return nil, errors.New("no such pr")
	}
	return pr, nil
}

func TestManagerCreateBranch(t *testing.T) {
	m := setupFixture(t)
	ctx := logCtx()

	res, err := m.Create(ctx, mustBranch(t, "feature-x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if res.Existed {
		t.Error("Existed = true for a fresh worktree")
	}

	wantPath := filepath.Join(m.Root, "feature-x")
	if res.Record.Path != wantPath {
		t.Errorf("path = %q, want %q", res.Record.Path, wantPath)
	}
	if res.Record.Branch != "darren/feature-x" {
		t.Errorf("branch = %q, want %q", res.Record.Branch, "darren/feature-x")
	}
	if _, err := os.Stat(wantPath); err != nil {
		t.Fatalf("worktree directory missing: %v", err)
	}

	out, err := exec.Command("git", "-C", wantPath, "branch", "--show-current").Output()
	if err != nil {
		t.Fatalf("git branch failed: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "darren/feature-x" {
		t.Errorf("checked out branch = %q, want %q", got, "darren/feature-x")
	}
}

func TestManagerCreateIdempotent(t *testing.T) {
	m := setupFixture(t)
	ctx := logCtx()
	id := mustBranch(t, "feature-x")

	first, err := m.Create(ctx, id)
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	second, err := m.Create(ctx, id)
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if !second.Existed {
		t.Error("second Create should report Existed")
	}
	if second.Record.Path != first.Record.Path {
		t.Errorf("path changed between calls: %q vs %q", second.Record.Path, first.Record.Path)
	}
}

func TestManagerCreatePathOccupied(t *testing.T) {
	m := setupFixture(t)
	ctx := logCtx()

	blocked := filepath.Join(m.Root, "feature-x")
	if err := os.MkdirAll(blocked, 0755); err != nil {
		t.Fatal(err)
	}

	_, err := m.Create(ctx, mustBranch(t, "feature-x"))
	if !errors.Is(err, ErrPathOccupied) {
		t.Errorf("err = %v, want ErrPathOccupied", err)
	}
}

func TestManagerCreatePR(t *testing.T) {
	m := setupFixture(t)
	ctx := logCtx()
	addPRRef(t, m, 123)

	res, err := m.Create(ctx, mustPR(t, "123"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	wantPath := filepath.Join(m.Root, "pr-123")
	if res.Record.Path != wantPath {
		t.Errorf("path = %q, want %q", res.Record.Path, wantPath)
	}
	if res.Record.Branch != "pr-123" {
		t.Errorf("branch = %q, want %q", res.Record.Branch, "pr-123")
	}

	out, err := exec.Command("git", "-C", wantPath, "branch", "--show-current").Output()
	if err != nil {
		t.Fatalf("git branch failed: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "pr-123" {
		t.Errorf("checked out branch = %q, want %q", got, "pr-123")
	}
}

func TestManagerCreateRunsSetup(t *testing.T) {
	m := setupFixture(t)
	ctx := logCtx()

	// Seed repo files the setup steps reference
	if err := os.MkdirAll(filepath.Join(m.RepoPath, "node_modules"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(m.RepoPath, ".envrc"), []byte("export FOO=1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m.Setup.Links = []string{"node_modules"}
	m.Setup.Copy = []string{".envrc"}

	res, err := m.Create(ctx, mustBranch(t, "feature-x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	link := filepath.Join(res.Record.Path, "node_modules")
	info, err := os.Lstat(link)
	if err != nil {
		t.Fatalf("node_modules link missing: %v", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Error("node_modules should be a symlink")
	}

	data, err := os.ReadFile(filepath.Join(res.Record.Path, ".envrc"))
	if err != nil {
		t.Fatalf(".envrc copy missing: %v", err)
	}
	if string(data) != "export FOO=1\n" {
		t.Errorf(".envrc content = %q", data)
	}
}

func TestManagerList(t *testing.T) {
	m := setupFixture(t)
	ctx := logCtx()
	addPRRef(t, m, 7)

	if _, err := m.Create(ctx, mustPR(t, "7")); err != nil {
		t.Fatalf("Create pr failed: %v", err)
	}
	if _, err := m.Create(ctx, mustBranch(t, "feature-x")); err != nil {
		t.Fatalf("Create branch failed: %v", err)
	}

	// Dirty the branch worktree
	dirtyFile := filepath.Join(m.Root, "feature-x", "wip.txt")
	if err := os.WriteFile(dirtyFile, []byte("wip"), 0644); err != nil {
		t.Fatal(err)
	}

	m.PRs = &fakeViewer{prs: map[int]*github.PRDetails{
		7: {Number: 7, Title: "Fix the thing", State: "MERGED"},
	}}

	statuses, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}

	// Sorted by path: feature-x before pr-7
	branch, pr := statuses[0], statuses[1]

	if branch.Record.Branch != "darren/feature-x" {
		t.Errorf("statuses[0].Branch = %q, want darren/feature-x", branch.Record.Branch)
	}
	if !branch.Dirty {
		t.Error("branch worktree should be dirty")
	}
	if branch.Stale != StaleUnknown {
		t.Errorf("branch Stale = %v, want StaleUnknown", branch.Stale)
	}

	if pr.Record.Identifier.Number() != 7 {
		t.Errorf("statuses[1].Number = %d, want 7", pr.Record.Identifier.Number())
	}
	if pr.Dirty {
		t.Error("pr worktree should be clean")
	}
	if pr.Stale != StaleYes {
		t.Errorf("pr Stale = %v, want StaleYes", pr.Stale)
	}
	if pr.PRTitle != "Fix the thing" {
		t.Errorf("pr title = %q", pr.PRTitle)
	}
	if pr.CommitHash == "" {
		t.Error("pr CommitHash should be set")
	}
}

func TestManagerListViewerFailure(t *testing.T) {
	m := setupFixture(t)
	ctx := logCtx()
	addPRRef(t, m, 7)

	if _, err := m.Create(ctx, mustPR(t, "7")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	m.PRs = &fakeViewer{err: errors.New("network down")}

	statuses, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List should not fail on viewer errors: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("got %d statuses, want 1", len(statuses))
	}
	if statuses[0].Stale != StaleUnknown {
		t.Errorf("Stale = %v, want StaleUnknown", statuses[0].Stale)
	}
}

func TestManagerListEmptyRoot(t *testing.T) {
	m := setupFixture(t)

	statuses, err := m.List(logCtx())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(statuses) != 0 {
		t.Errorf("got %d statuses, want 0", len(statuses))
	}
}

func TestManagerCleanSkipsDirty(t *testing.T) {
	m := setupFixture(t)
	ctx := logCtx()

	if _, err := m.Create(ctx, mustBranch(t, "clean-one")); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Create(ctx, mustBranch(t, "dirty-one")); err != nil {
		t.Fatal(err)
	}
	dirtyFile := filepath.Join(m.Root, "dirty-one", "wip.txt")
	if err := os.WriteFile(dirtyFile, []byte("wip"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := m.Clean(ctx, CleanOptions{})
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if len(result.Removed) != 1 || result.Removed[0].Branch != "darren/clean-one" {
		t.Errorf("Removed = %+v, want only clean-one", result.Removed)
	}
	if len(result.SkippedDirty) != 1 || result.SkippedDirty[0].Branch != "darren/dirty-one" {
		t.Errorf("SkippedDirty = %+v, want only dirty-one", result.SkippedDirty)
	}

	if _, err := os.Stat(filepath.Join(m.Root, "clean-one")); !os.IsNotExist(err) {
		t.Error("clean-one should have been removed")
	}
	if _, err := os.Stat(filepath.Join(m.Root, "dirty-one")); err != nil {
		t.Error("dirty-one should still exist")
	}
}

func TestManagerCleanForce(t *testing.T) {
	m := setupFixture(t)
	ctx := logCtx()

	if _, err := m.Create(ctx, mustBranch(t, "dirty-one")); err != nil {
		t.Fatal(err)
	}
	dirtyFile := filepath.Join(m.Root, "dirty-one", "wip.txt")
	if err := os.WriteFile(dirtyFile, []byte("wip"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := m.Clean(ctx, CleanOptions{Force: true})
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if len(result.Removed) != 1 {
		t.Fatalf("Removed = %+v, want one entry", result.Removed)
	}
	if len(result.SkippedDirty) != 0 {
		t.Errorf("SkippedDirty = %+v, want none", result.SkippedDirty)
	}
	if _, err := os.Stat(filepath.Join(m.Root, "dirty-one")); !os.IsNotExist(err) {
		t.Error("dirty-one should have been removed")
	}
}

func TestManagerCleanDryRun(t *testing.T) {
	m := setupFixture(t)
	ctx := logCtx()

	if _, err := m.Create(ctx, mustBranch(t, "feature-x")); err != nil {
		t.Fatal(err)
	}

	result, err := m.Clean(ctx, CleanOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if len(result.Removed) != 1 {
		t.Fatalf("Removed = %+v, want one entry", result.Removed)
	}
	if _, err := os.Stat(filepath.Join(m.Root, "feature-x")); err != nil {
		t.Error("dry run should not remove anything")
	}
}

func TestManagerNestedAndDashedBranchesCoexist(t *testing.T) {
	m := setupFixture(t)
	ctx := logCtx()

	nested, err := m.Create(ctx, mustBranch(t, "fix/parser"))
	if err != nil {
		t.Fatalf("Create fix/parser failed: %v", err)
	}
	dashed, err := m.Create(ctx, mustBranch(t, "fix-parser"))
	if err != nil {
		t.Fatalf("Create fix-parser failed: %v", err)
	}

	if dashed.Existed {
		t.Error("fix-parser reported Existed after only fix/parser was created")
	}
	if nested.Record.Path == dashed.Record.Path {
		t.Fatalf("both branches derived the same path %q", nested.Record.Path)
	}
	if want := filepath.Join(m.Root, "fix", "parser"); nested.Record.Path != want {
		t.Errorf("nested path = %q, want %q", nested.Record.Path, want)
	}

	statuses, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}
	branches := map[string]bool{}
	for _, st := range statuses {
		branches[st.Record.Branch] = true
	}
	if !branches["darren/fix/parser"] || !branches["darren/fix-parser"] {
		t.Errorf("listed branches = %v, want darren/fix/parser and darren/fix-parser", branches)
	}

	// Removing the nested worktree also clears the now-empty fix/ dir
	if _, err := m.Remove(ctx, nested.Record.Identifier, false); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(m.Root, "fix")); !os.IsNotExist(err) {
		t.Error("empty parent directory should have been removed")
	}
	if _, err := os.Stat(dashed.Record.Path); err != nil {
		t.Error("fix-parser worktree should be untouched")
	}
}

func TestManagerRemove(t *testing.T) {
	m := setupFixture(t)
	ctx := logCtx()
	id := mustBranch(t, "feature-x")

	if _, err := m.Create(ctx, id); err != nil {
		t.Fatal(err)
	}

	rec, err := m.Remove(ctx, id, false)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(rec.Path); !os.IsNotExist(err) {
		t.Error("worktree should have been removed")
	}
}

func TestManagerRemoveNotFound(t *testing.T) {
	m := setupFixture(t)

	_, err := m.Remove(logCtx(), mustBranch(t, "never-created"), false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestManagerRemoveDirty(t *testing.T) {
	m := setupFixture(t)
	ctx := logCtx()
	id := mustBranch(t, "feature-x")

	res, err := m.Create(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	dirtyFile := filepath.Join(res.Record.Path, "wip.txt")
	if err := os.WriteFile(dirtyFile, []byte("wip"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Remove(ctx, id, false); !errors.Is(err, ErrDirty) {
		t.Errorf("err = %v, want ErrDirty", err)
	}
	if _, err := os.Stat(res.Record.Path); err != nil {
		t.Error("dirty worktree should survive Remove without force")
	}

	if _, err := m.Remove(ctx, id, true); err != nil {
		t.Fatalf("forced Remove failed: %v", err)
	}
	if _, err := os.Stat(res.Record.Path); !os.IsNotExist(err) {
		t.Error("worktree should have been removed with force")
	}
}

func TestStaleStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state StaleState
		want  string
	}{
		{StaleUnknown, "unknown"},
		{StaleNo, "open"},
		{StaleYes, "stale"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
