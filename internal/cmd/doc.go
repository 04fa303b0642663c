// Package cmd provides helpers for executing external commands with
// proper error handling.
//
// This package wraps [os/exec.Cmd] to capture stderr and include it in
// error messages, making command failures more informative for users.
//
// checkout shells out to the git/gh/claude CLIs rather than using Go
// libraries. This approach is simpler, more reliable, and ensures
// compatibility with user configurations (SSH keys, credential helpers,
// aliases).
package cmd
