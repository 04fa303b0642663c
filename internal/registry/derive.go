package registry

import (
	"hash/fnv"
	"path/filepath"
	"strconv"
)

// Color is a palette color name assigned to a worktree.
type Color string

// Palette is the fixed set of colors assigned to worktrees.
// Rendering (terminal colors) lives in the ui package; the registry
// only deals in stable names.
var Palette = []Color{
	"red",
	"green",
	"yellow",
	"blue",
	"magenta",
	"cyan",
	"orange",
	"violet",
}

// Record is the derived metadata for a worktree identifier.
type Record struct {
	Identifier Identifier
	Path       string // absolute worktree location under the configured root
	Branch     string // branch checked out at Path
	Color      Color  // stable palette assignment
}

// Derive computes the worktree record for id under root.
// PR identifiers map to <root>/pr-<n> with a generated local branch
// pr-<n> tracking the PR head. Branch identifiers map to <root>/<name>,
// slashes intact, so the directory tree mirrors the branch name and
// distinct names can never share a path. The branch itself is
// namespaced as <owner>/<name>.
//
// Derive is a pure function: same inputs, same record, every run.
func Derive(id Identifier, root, owner string) Record {
	rec := Record{
		Identifier: id,
		Color:      assignColor(id),
	}

	switch id.kind {
	case KindPR:
		dir := "pr-" + strconv.Itoa(id.number)
		rec.Path = filepath.Join(root, dir)
		rec.Branch = dir
	case KindBranch:
		rec.Path = filepath.Join(root, filepath.FromSlash(id.branch))
		rec.Branch = owner + "/" + id.branch
	}

	return rec
}

// ParseDirName maps a worktree path, relative to the root, back to its
// identifier. pr-<n> becomes a PR identifier; any other valid branch
// name (possibly nested, like fix/parser) becomes a branch identifier.
// Returns false for paths that could never have been derived.
func ParseDirName(rel string) (Identifier, bool) {
	rel = filepath.ToSlash(rel)
	if m := prDirPattern.FindStringSubmatch(rel); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return Identifier{}, false
		}
		return Identifier{kind: KindPR, number: n}, true
	}
	if _, err := NewBranch(rel); err != nil {
		return Identifier{}, false
	}
	return Identifier{kind: KindBranch, branch: rel}, true
}

// assignColor hashes the identifier into the fixed palette.
func assignColor(id Identifier) Color {
	h := fnv.New32a()
	h.Write([]byte(id.String()))
	return Palette[h.Sum32()%uint32(len(Palette))]
}
