// Package github fetches PR metadata via the gh CLI.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/DarrenTsung/checkout-pr/internal/cmd"
)

// PRDetails holds the PR fields consumed by the worktree manager.
type PRDetails struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	HeadRefName string `json:"headRefName"`
	State       string `json:"state"` // OPEN, MERGED, CLOSED
	URL         string `json:"url"`
}

// prViewFields is the --json field list for gh pr view.
const prViewFields = "number,title,headRefName,state,url"

// ViewPR fetches PR details using the gh CLI, run from repoPath so gh
// resolves the repository from the local origin remote.
func ViewPR(ctx context.Context, repoPath string, number int) (*PRDetails, error) {
	output, err := cmd.OutputContext(ctx, repoPath, "gh", "pr", "view",
		strconv.Itoa(number), "--json", prViewFields)
	if err != nil {
		return nil, fmt.Errorf("gh pr view failed: %w", err)
	}
	return decodePRDetails(output)
}

// decodePRDetails parses the gh pr view JSON output.
func decodePRDetails(data []byte) (*PRDetails, error) {
	var pr PRDetails
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil, fmt.Errorf("failed to parse gh output: %w", err)
	}
	if pr.Number == 0 {
		return nil, fmt.Errorf("gh returned no PR number")
	}
	return &pr, nil
}
