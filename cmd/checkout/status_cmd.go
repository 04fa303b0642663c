package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/DarrenTsung/checkout-pr/internal/output"
	"github.com/DarrenTsung/checkout-pr/internal/registry"
	"github.com/DarrenTsung/checkout-pr/internal/ui/progress"
	"github.com/DarrenTsung/checkout-pr/internal/ui/static"
	"github.com/DarrenTsung/checkout-pr/internal/ui/styles"
	"github.com/DarrenTsung/checkout-pr/internal/worktree"
)

func newStatusCmd() *cobra.Command {
	var (
		repoPath   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "status [filter]",
		Short:   "Show all worktrees and their state",
		GroupID: GroupUtility,
		Args:    cobra.MaximumNArgs(1),
		Long: `List every worktree under the configured root with its branch,
dirty state, and (for PR worktrees) whether the PR is still open.

An optional filter argument fuzzy-matches against branch names.`,
		Example: `  checkout status
  checkout status feat           # fuzzy filter
  checkout status --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			mgr, err := buildManager(ctx, repoPath)
			if err != nil {
				return err
			}

			sp := progress.New("Scanning worktrees...")
			sp.Start()
			statuses, err := mgr.List(ctx)
			sp.Stop()
			if err != nil {
				return err
			}

			if len(args) > 0 {
				statuses = filterStatuses(statuses, args[0])
			}

			if jsonOutput {
				return printStatusJSON(ctx, statuses)
			}
			printStatusTable(ctx, statuses)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoPath, "repo", "", "Main repository path (overrides config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// filterStatuses keeps statuses whose branch fuzzy-matches the filter.
func filterStatuses(statuses []worktree.Status, filter string) []worktree.Status {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = st.Record.Branch
	}

	matches := fuzzy.Find(filter, names)
	filtered := make([]worktree.Status, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, statuses[m.Index])
	}
	return filtered
}

// statusJSON is the machine-readable view of one worktree.
type statusJSON struct {
	Path    string `json:"path"`
	Branch  string `json:"branch"`
	Kind    string `json:"kind"`
	Number  int    `json:"number,omitempty"`
	Color   string `json:"color"`
	Commit  string `json:"commit"`
	Dirty   bool   `json:"dirty"`
	Stale   string `json:"stale"`
	PRState string `json:"pr_state,omitempty"`
	PRTitle string `json:"pr_title,omitempty"`
}

func printStatusJSON(ctx context.Context, statuses []worktree.Status) error {
	views := make([]statusJSON, len(statuses))
	for i, st := range statuses {
		kind := "branch"
		if st.Record.Identifier.Kind() == registry.KindPR {
			kind = "pr"
		}
		views[i] = statusJSON{
			Path:    st.Record.Path,
			Branch:  st.Record.Branch,
			Kind:    kind,
			Number:  st.Record.Identifier.Number(),
			Color:   string(st.Record.Color),
			Commit:  st.CommitHash,
			Dirty:   st.Dirty,
			Stale:   st.Stale.String(),
			PRState: st.PRState,
			PRTitle: st.PRTitle,
		}
	}

	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	output.FromContext(ctx).Println(string(data))
	return nil
}

// printStatusTable renders the human-readable worktree table.
func printStatusTable(ctx context.Context, statuses []worktree.Status) {
	out := output.FromContext(ctx)

	if len(statuses) == 0 {
		out.Println("No worktrees")
		return
	}

	rows := make([][]string, len(statuses))
	for i, st := range statuses {
		name := styles.WorktreeStyle(st.Record.Color).Render(st.Record.Identifier.String())

		state := "clean"
		if st.Dirty {
			state = styles.WarningStyle.Render("dirty")
		}

		pr := ""
		switch {
		case st.Stale == worktree.StaleYes:
			pr = styles.WarningStyle.Render(st.PRState)
		case st.PRState != "":
			pr = st.PRState
		case st.Record.Identifier.Kind() == registry.KindPR:
			pr = styles.MutedStyle.Render("unknown")
		}

		commit := st.CommitHash
		if len(commit) > 7 {
			commit = commit[:7]
		}

		rows[i] = []string{name, st.Record.Branch, commit, state, pr}
	}

	out.Println(static.RenderTable(
		[]string{"WORKTREE", "BRANCH", "COMMIT", "STATE", "PR"},
		rows,
	))
}
