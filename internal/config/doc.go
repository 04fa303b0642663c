// Package config loads the checkout configuration.
//
// Configuration is resolved in precedence order:
//
//  1. CLI flags (handled at the command layer)
//  2. Environment variables (CHECKOUT_REPO, CHECKOUT_WORKTREE_DIR, CHECKOUT_OWNER)
//  3. ~/.config/checkout/config.toml
//  4. Built-in defaults
//
// A missing config file is not an error; an invalid one is.
package config
