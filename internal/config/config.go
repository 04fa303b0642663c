package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ClaudeConfig holds settings for the external coding assistant.
type ClaudeConfig struct {
	Command      string `toml:"command"`       // binary to spawn (default "claude")
	ReviewPrompt string `toml:"review_prompt"` // initial prompt for review sessions, {pr} is substituted
	Skip         bool   `toml:"skip"`          // never spawn a session (same as --no-claude everywhere)
}

// SetupConfig holds the auxiliary steps run after a worktree is created.
// Each step is best-effort: failures are logged, never fatal.
type SetupConfig struct {
	Links        []string `toml:"links"`         // dirs symlinked from the main repo (e.g. "node_modules")
	Copy         []string `toml:"copy"`          // files copied from the main repo (e.g. ".envrc")
	TrustCommand string   `toml:"trust_command"` // e.g. "mise trust", run inside the new worktree
}

// Config holds the checkout configuration.
type Config struct {
	Repo        string       `toml:"repo"`         // main repository path
	WorktreeDir string       `toml:"worktree_dir"` // root directory for worktrees
	Owner       string       `toml:"owner"`        // branch namespace prefix for `checkout branch`
	Claude      ClaudeConfig `toml:"claude"`
	Setup       SetupConfig  `toml:"setup"`
}

// DefaultOwner is the branch namespace prefix used when none is configured.
const DefaultOwner = "darren"

// DefaultReviewPrompt is the assistant prompt used by `checkout review`.
// {pr} is replaced with the PR number.
const DefaultReviewPrompt = "/darren:checkout-pr {pr}"

// Default returns the default configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Repo:        filepath.Join(home, "figma", "figma"),
		WorktreeDir: filepath.Join(home, "figma-worktrees"),
		Owner:       DefaultOwner,
		Claude: ClaudeConfig{
			Command:      "claude",
			ReviewPrompt: DefaultReviewPrompt,
		},
	}
}

// ValidatePath checks that the path is absolute or starts with ~.
// Returns an error if the path is relative (like "." or "..").
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil // Empty is allowed (means not configured)
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// configPath returns the path to the config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "checkout", "config.toml"), nil
}

// Load reads config from ~/.config/checkout/config.toml and applies
// environment overrides (CHECKOUT_REPO, CHECKOUT_WORKTREE_DIR,
// CHECKOUT_OWNER). Returns Default() if the file doesn't exist.
// Returns an error if the file exists but is invalid, or if an
// override path fails validation.
func Load() (Config, error) {
	path, err := configPath()
	if err != nil {
		return finalize(applyEnv(Default()))
	}
	return loadFrom(path)
}

// loadFrom reads and validates the config file at path (split out for tests).
func loadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return finalize(applyEnv(cfg))
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return finalize(applyEnv(cfg))
}

// finalize validates and tilde-expands paths and fills in defaults.
// Every Load path goes through here, so env overrides get the same
// treatment whether or not a config file exists.
func finalize(cfg Config) (Config, error) {
	if err := ValidatePath(cfg.Repo, "repo"); err != nil {
		return Default(), err
	}
	if err := ValidatePath(cfg.WorktreeDir, "worktree_dir"); err != nil {
		return Default(), err
	}

	// The shell doesn't expand ~ inside config files or env values
	var err error
	if cfg.Repo, err = ExpandPath(cfg.Repo); err != nil {
		return Default(), fmt.Errorf("expand repo: %w", err)
	}
	if cfg.WorktreeDir, err = ExpandPath(cfg.WorktreeDir); err != nil {
		return Default(), fmt.Errorf("expand worktree_dir: %w", err)
	}

	if cfg.Owner == "" {
		cfg.Owner = DefaultOwner
	}
	if cfg.Claude.Command == "" {
		cfg.Claude.Command = "claude"
	}
	if cfg.Claude.ReviewPrompt == "" {
		cfg.Claude.ReviewPrompt = DefaultReviewPrompt
	}

	return cfg, nil
}

// applyEnv overlays environment variables onto cfg.
// CLI flags take precedence over both; that happens at the command layer.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("CHECKOUT_REPO"); v != "" {
		cfg.Repo = v
	}
	if v := os.Getenv("CHECKOUT_WORKTREE_DIR"); v != "" {
		cfg.WorktreeDir = v
	}
	if v := os.Getenv("CHECKOUT_OWNER"); v != "" {
		cfg.Owner = v
	}
	return cfg
}
