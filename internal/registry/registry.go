// Package registry derives worktree records from identifiers.
//
// All derivation is pure computation: given an identifier, a worktree
// root and an owner prefix, the path, branch name and color assignment
// are fully determined, with no I/O. Stability across runs is what lets
// status and clean recognize worktrees created by earlier invocations.
package registry

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidIdentifier indicates a malformed PR reference or branch name.
// It is returned before any I/O happens.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Kind distinguishes the two identifier variants.
type Kind int

const (
	// KindPR identifies a worktree by GitHub PR number.
	KindPR Kind = iota
	// KindBranch identifies a worktree by branch name.
	KindBranch
)

// Identifier names a worktree: either a PR number or a branch name,
// mutually exclusive.
type Identifier struct {
	kind   Kind
	number int
	branch string
}

// Kind returns the identifier variant.
func (id Identifier) Kind() Kind { return id.kind }

// Number returns the PR number. Only meaningful for KindPR.
func (id Identifier) Number() int { return id.number }

// BranchName returns the requested branch name. Only meaningful for KindBranch.
func (id Identifier) BranchName() string { return id.branch }

// String returns the canonical string form: the PR number or branch name.
func (id Identifier) String() string {
	if id.kind == KindPR {
		return strconv.Itoa(id.number)
	}
	return id.branch
}

var prURLPattern = regexp.MustCompile(`/pull/(\d+)(?:[/?#]|$)`)

// ParsePR parses a PR reference: a decimal number or a GitHub PR URL
// like https://github.com/figma/figma/pull/123.
func ParsePR(raw string) (Identifier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identifier{}, fmt.Errorf("%w: empty PR reference", ErrInvalidIdentifier)
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if n <= 0 {
			return Identifier{}, fmt.Errorf("%w: PR number must be positive, got %d", ErrInvalidIdentifier, n)
		}
		return Identifier{kind: KindPR, number: n}, nil
	}

	if m := prURLPattern.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return Identifier{}, fmt.Errorf("%w: could not parse PR number from %q", ErrInvalidIdentifier, raw)
		}
		return Identifier{kind: KindPR, number: n}, nil
	}

	return Identifier{}, fmt.Errorf("%w: %q is neither a PR number nor a PR URL", ErrInvalidIdentifier, raw)
}

// prDirPattern matches directory names produced for PR worktrees.
var prDirPattern = regexp.MustCompile(`^pr-(\d+)$`)

// NewBranch validates name as a branch identifier.
// The rules are a subset of git check-ref-format: no empty name, no
// leading dash, no "..", no control characters or the characters
// space ~ ^ : ? * [ \, no ".lock" suffix, no leading/trailing or double
// slash. Names whose leading path segment matches the reserved pr-<n>
// directory form are rejected so PR and branch worktrees can never
// collide on the same path.
func NewBranch(name string) (Identifier, error) {
	if name == "" {
		return Identifier{}, fmt.Errorf("%w: empty branch name", ErrInvalidIdentifier)
	}
	if strings.HasPrefix(name, "-") {
		return Identifier{}, fmt.Errorf("%w: branch name %q starts with a dash", ErrInvalidIdentifier, name)
	}
	if strings.Contains(name, "..") {
		return Identifier{}, fmt.Errorf("%w: branch name %q contains %q", ErrInvalidIdentifier, name, "..")
	}
	if strings.HasSuffix(name, ".lock") {
		return Identifier{}, fmt.Errorf("%w: branch name %q ends with .lock", ErrInvalidIdentifier, name)
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") || strings.Contains(name, "//") {
		return Identifier{}, fmt.Errorf("%w: branch name %q has invalid slashes", ErrInvalidIdentifier, name)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(" ~^:?*[\\", r) {
			return Identifier{}, fmt.Errorf("%w: branch name %q contains invalid character %q", ErrInvalidIdentifier, name, r)
		}
	}
	if prDirPattern.MatchString(strings.SplitN(name, "/", 2)[0]) {
		return Identifier{}, fmt.Errorf("%w: branch name %q is reserved for PR worktrees", ErrInvalidIdentifier, name)
	}
	return Identifier{kind: KindBranch, branch: name}, nil
}
