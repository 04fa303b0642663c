// Package worktree manages the lifecycle of git worktrees under a
// single configured root directory: creating them for PRs and
// branches, enumerating their state, and removing them in bulk.
//
// The manager holds no state of its own. The filesystem and git are
// the source of truth, so every call re-reads them and tolerates
// concurrent external mutation (a worktree vanishing mid-run is
// recoverable, not an error).
package worktree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DarrenTsung/checkout-pr/internal/config"
	"github.com/DarrenTsung/checkout-pr/internal/git"
	"github.com/DarrenTsung/checkout-pr/internal/github"
	"github.com/DarrenTsung/checkout-pr/internal/log"
	"github.com/DarrenTsung/checkout-pr/internal/registry"
)

// PRViewer fetches PR metadata. Satisfied by the gh-backed client;
// tests substitute a fake.
type PRViewer interface {
	ViewPR(ctx context.Context, repoPath string, number int) (*github.PRDetails, error)
}

// GHViewer is the gh-CLI-backed PRViewer.
type GHViewer struct{}

func (GHViewer) ViewPR(ctx context.Context, repoPath string, number int) (*github.PRDetails, error) {
	return github.ViewPR(ctx, repoPath, number)
}

// Manager creates, lists, and removes worktrees under Root.
type Manager struct {
	RepoPath string // main repository
	Root     string // worktree root directory
	Owner    string // branch namespace prefix
	Setup    config.SetupConfig
	PRs      PRViewer // nil disables PR metadata lookups
}

// CreateResult reports the outcome of Create.
type CreateResult struct {
	Record  registry.Record
	Existed bool // the worktree already existed; nothing was created
}

// Create materializes the worktree for id. If the derived path already
// holds a worktree, Create is a no-op returning the existing record
// with Existed set. Auxiliary setup failures are logged, never fatal.
func (m *Manager) Create(ctx context.Context, id registry.Identifier) (*CreateResult, error) {
	rec := registry.Derive(id, m.Root, m.Owner)
	logger := log.FromContext(ctx)

	if _, err := os.Stat(rec.Path); err == nil {
		if !git.IsWorktree(rec.Path) {
			return nil, fmt.Errorf("%w: %s", ErrPathOccupied, rec.Path)
		}
		return &CreateResult{Record: rec, Existed: true}, nil
	}

	if err := os.MkdirAll(m.Root, 0755); err != nil {
		return nil, fmt.Errorf("create worktree root: %w", err)
	}

	switch id.Kind() {
	case registry.KindPR:
		if err := git.FetchPRHead(ctx, m.RepoPath, id.Number()); err != nil {
			return nil, err
		}
		if git.BranchExists(ctx, m.RepoPath, rec.Branch) {
			// Repoint at the freshly fetched head so a recreated
			// worktree sees the PR's current state
			if err := git.ForceBranch(ctx, m.RepoPath, rec.Branch, "FETCH_HEAD"); err != nil {
				return nil, fmt.Errorf("update branch %s: %v", rec.Branch, err)
			}
			if err := git.AddWorktree(ctx, m.RepoPath, rec.Path, rec.Branch); err != nil {
				return nil, err
			}
		} else {
			if err := git.AddWorktreeNewBranch(ctx, m.RepoPath, rec.Path, rec.Branch, "FETCH_HEAD"); err != nil {
				return nil, err
			}
		}

	case registry.KindBranch:
		if git.BranchExists(ctx, m.RepoPath, rec.Branch) {
			if err := git.AddWorktree(ctx, m.RepoPath, rec.Path, rec.Branch); err != nil {
				return nil, err
			}
		} else {
			ref := m.branchBase(ctx, logger)
			if err := git.AddWorktreeNewBranch(ctx, m.RepoPath, rec.Path, rec.Branch, ref); err != nil {
				return nil, err
			}
		}
	}

	m.runSetup(ctx, rec)

	return &CreateResult{Record: rec}, nil
}

// branchBase picks the starting point for a new branch: the remote
// default branch when reachable, the local one otherwise.
func (m *Manager) branchBase(ctx context.Context, logger *log.Logger) string {
	def := git.GetDefaultBranch(ctx, m.RepoPath)
	if err := git.FetchBranch(ctx, m.RepoPath, def); err != nil {
		logger.Warnf("%v", err)
	}
	if remote := "origin/" + def; git.RefExists(ctx, m.RepoPath, remote) {
		return remote
	}
	return def
}

// StaleState classifies whether the PR behind a worktree is finished.
type StaleState int

const (
	// StaleUnknown means PR metadata was unavailable (no collaborator,
	// network failure, or a branch worktree with no PR).
	StaleUnknown StaleState = iota
	// StaleNo means the PR is still open.
	StaleNo
	// StaleYes means the PR is merged or closed.
	StaleYes
)

func (s StaleState) String() string {
	switch s {
	case StaleNo:
		return "open"
	case StaleYes:
		return "stale"
	default:
		return "unknown"
	}
}

// Status describes one managed worktree at enumeration time.
type Status struct {
	Record     registry.Record
	CommitHash string
	Dirty      bool
	Stale      StaleState
	PRState    string // OPEN, MERGED, CLOSED; empty for branch worktrees
	PRTitle    string
}

// List enumerates the worktrees under Root, annotating each with live
// dirty state and best-effort PR staleness. Results are recomputed on
// every call and sorted by path.
func (m *Manager) List(ctx context.Context) ([]Status, error) {
	statuses, err := m.list(ctx)
	if err != nil {
		return nil, err
	}

	for i := range statuses {
		m.annotatePR(ctx, &statuses[i])
	}

	return statuses, nil
}

// list enumerates without PR metadata. Clean uses this directly since
// removal only depends on dirty state.
func (m *Manager) list(ctx context.Context) ([]Status, error) {
	infos, err := git.ListWorktreesFromRepo(ctx, m.RepoPath)
	if err != nil {
		return nil, err
	}

	root, err := filepath.EvalSymlinks(m.Root)
	if err != nil {
		// Root doesn't exist yet: no worktrees
		return nil, nil
	}

	logger := log.FromContext(ctx)
	var statuses []Status
	for _, info := range infos {
		path, err := filepath.EvalSymlinks(info.Path)
		if err != nil {
			continue // vanished since git listed it
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue // the main worktree, or not ours
		}

		id, ok := registry.ParseDirName(rel)
		if !ok {
			logger.Warnf("ignoring unrecognized directory %s", path)
			continue
		}

		rec := registry.Derive(id, m.Root, m.Owner)
		rec.Path = path
		statuses = append(statuses, Status{
			Record:     rec,
			CommitHash: info.CommitHash,
			Dirty:      git.IsDirty(ctx, path),
		})
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Record.Path < statuses[j].Record.Path
	})
	return statuses, nil
}

// annotatePR fills in PR metadata for PR worktrees. Collaborator
// failure leaves the status at StaleUnknown; it never fails List.
func (m *Manager) annotatePR(ctx context.Context, st *Status) {
	if m.PRs == nil || st.Record.Identifier.Kind() != registry.KindPR {
		return
	}

	pr, err := m.PRs.ViewPR(ctx, m.RepoPath, st.Record.Identifier.Number())
	if err != nil {
		log.FromContext(ctx).Warnf("pr %d: %v", st.Record.Identifier.Number(), err)
		return
	}

	st.PRState = pr.State
	st.PRTitle = pr.Title
	if pr.State == "MERGED" || pr.State == "CLOSED" {
		st.Stale = StaleYes
	} else {
		st.Stale = StaleNo
	}
}

// Remove deletes the single worktree for id. Returns ErrNotFound if no
// worktree exists at the derived path, and ErrDirty if it has
// uncommitted changes and force is not set.
func (m *Manager) Remove(ctx context.Context, id registry.Identifier, force bool) (registry.Record, error) {
	rec := registry.Derive(id, m.Root, m.Owner)

	if _, err := os.Stat(rec.Path); os.IsNotExist(err) {
		return rec, fmt.Errorf("%w: %s", ErrNotFound, rec.Path)
	}

	dirty := git.IsDirty(ctx, rec.Path)
	if dirty && !force {
		return rec, fmt.Errorf("%w: %s (use --force)", ErrDirty, rec.Path)
	}

	if err := git.RemoveWorktree(ctx, m.RepoPath, rec.Path, dirty); err != nil {
		return rec, err
	}
	m.cleanupSession(ctx, rec.Path)
	m.removeEmptyParents(rec.Path)

	if err := git.PruneWorktrees(ctx, m.RepoPath); err != nil {
		log.FromContext(ctx).Warnf("worktree prune: %v", err)
	}
	return rec, nil
}

// CleanOptions controls Clean.
type CleanOptions struct {
	Force  bool // remove dirty worktrees too
	DryRun bool // report what would be removed without removing
}

// CleanFailure records a worktree that could not be removed.
type CleanFailure struct {
	Record registry.Record
	Err    error
}

// CleanResult reports the outcome of Clean.
type CleanResult struct {
	Removed      []registry.Record
	SkippedDirty []registry.Record
	Failed       []CleanFailure
}

// Clean removes every worktree under Root. Dirty worktrees are skipped
// unless Force. A failure on one worktree does not abort the batch;
// partial completion is a valid terminal state.
func (m *Manager) Clean(ctx context.Context, opts CleanOptions) (*CleanResult, error) {
	statuses, err := m.list(ctx)
	if err != nil {
		return nil, err
	}

	result := &CleanResult{}
	for _, st := range statuses {
		if st.Dirty && !opts.Force {
			result.SkippedDirty = append(result.SkippedDirty, st.Record)
			continue
		}
		if opts.DryRun {
			result.Removed = append(result.Removed, st.Record)
			continue
		}
		if err := m.remove(ctx, st); err != nil {
			result.Failed = append(result.Failed, CleanFailure{Record: st.Record, Err: err})
			continue
		}
		result.Removed = append(result.Removed, st.Record)
	}

	if !opts.DryRun {
		if err := git.PruneWorktrees(ctx, m.RepoPath); err != nil {
			log.FromContext(ctx).Warnf("worktree prune: %v", err)
		}
	}

	return result, nil
}

// remove deletes one worktree and its session-dir symlink.
func (m *Manager) remove(ctx context.Context, st Status) error {
	if err := git.RemoveWorktree(ctx, m.RepoPath, st.Record.Path, st.Dirty); err != nil {
		// Already gone is success for our purposes
		if _, statErr := os.Stat(st.Record.Path); os.IsNotExist(statErr) {
			return nil
		}
		return err
	}
	m.cleanupSession(ctx, st.Record.Path)
	m.removeEmptyParents(st.Record.Path)
	return nil
}

// removeEmptyParents deletes directories left empty between a removed
// nested worktree (like <root>/fix/parser) and the root. Stops at the
// first non-empty directory.
func (m *Manager) removeEmptyParents(path string) {
	root := filepath.Clean(m.Root)
	for dir := filepath.Dir(filepath.Clean(path)); dir != root; dir = filepath.Dir(dir) {
		if !strings.HasPrefix(dir, root+string(filepath.Separator)) {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
	}
}
