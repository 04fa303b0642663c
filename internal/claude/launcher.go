// Package claude integrates with the Claude Code CLI: spawning review
// and working sessions inside worktrees, and sharing session data
// between a worktree and its main repository.
package claude

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Mode selects how a session is started.
type Mode string

const (
	// ModePlain starts an interactive session with no initial prompt.
	ModePlain Mode = "plain"
	// ModeReview starts a session with the configured review prompt,
	// which consumes the PR number.
	ModeReview Mode = "review"
)

// LaunchOptions describes a session to start.
type LaunchOptions struct {
	Dir          string // working directory (the worktree path)
	Mode         Mode
	PRNumber     int    // consumed by the review prompt
	ReviewPrompt string // template, {pr} is substituted
	PromptFile   string // optional file whose content is the initial prompt (plain mode)
}

// Launcher starts an assistant session. A failure to launch never rolls
// back worktree creation: the worktree is a valid artifact on its own.
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) error
}

// CLILauncher spawns the claude CLI with inherited stdio.
type CLILauncher struct {
	Command string // binary name, default "claude"
}

// Launch runs the assistant in opts.Dir, blocking until it exits.
func (l CLILauncher) Launch(ctx context.Context, opts LaunchOptions) error {
	bin := l.Command
	if bin == "" {
		bin = "claude"
	}

	args, err := launchArgs(opts)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = opts.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", bin, err)
	}
	return nil
}

// launchArgs builds the CLI arguments for a session.
func launchArgs(opts LaunchOptions) ([]string, error) {
	switch opts.Mode {
	case ModeReview:
		prompt := strings.ReplaceAll(opts.ReviewPrompt, "{pr}", strconv.Itoa(opts.PRNumber))
		return []string{"--prompt", prompt}, nil
	case ModePlain:
		if opts.PromptFile == "" {
			return nil, nil
		}
		content, err := os.ReadFile(opts.PromptFile)
		if err != nil {
			return nil, fmt.Errorf("read prompt file: %w", err)
		}
		prompt := strings.TrimSpace(string(content))
		if prompt == "" {
			return nil, nil
		}
		return []string{"--prompt", prompt}, nil
	default:
		return nil, fmt.Errorf("unknown session mode %q", opts.Mode)
	}
}

// NopLauncher never starts a session. Used when --no-claude is set and
// as a stand-in for tests.
type NopLauncher struct{}

// Launch does nothing.
func (NopLauncher) Launch(context.Context, LaunchOptions) error { return nil }
