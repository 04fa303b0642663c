package github

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// ErrGHNotFound indicates the gh CLI is not installed or not in PATH.
var ErrGHNotFound = fmt.Errorf("gh not found: please install GitHub CLI (https://cli.github.com)")

// ErrGHNotAuthenticated indicates gh is installed but not logged in.
var ErrGHNotAuthenticated = fmt.Errorf("gh not authenticated: please run 'gh auth login'")

// CheckGH verifies the gh CLI is installed and authenticated. PR
// commands call this up front so the failure is a clear instruction
// instead of a mid-create error.
func CheckGH() error {
	if _, err := exec.LookPath("gh"); err != nil {
		return ErrGHNotFound
	}

	// gh auth status exits non-zero without a logged-in account and
	// explains itself on stderr
	cmd := exec.Command("gh", "auth", "status")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		switch {
		case strings.Contains(msg, "not logged"), strings.Contains(msg, "no accounts"):
			return ErrGHNotAuthenticated
		case msg != "":
			return fmt.Errorf("gh auth check failed: %s", msg)
		default:
			return ErrGHNotAuthenticated
		}
	}
	return nil
}
