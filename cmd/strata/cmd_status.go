package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			entries, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			branch, _ := r.CurrentBranch()
			if branch == "" {
				branch = "HEAD"
			}
			head, err := r.CurrentCommit()
			if err == nil && head == "" {
				fmt.Fprintf(out, "on %s (no commits yet)\n", branch)
			} else {
				fmt.Fprintf(out, "on %s\n", branch)
			}

			var conflicts, staged, unstaged, untracked []string

			for _, e := range entries {
				if e.IndexStatus == repo.StatusConflict || e.WorkStatus == repo.StatusConflict {
					conflicts = append(conflicts, fmt.Sprintf("  ! %s", e.Path))
					continue
				}

				// Staged: changes in the index relative to HEAD.
				switch e.IndexStatus {
				case repo.StatusNew:
					staged = append(staged, fmt.Sprintf("  + %s", e.Path))
				case repo.StatusModified:
					staged = append(staged, fmt.Sprintf("  ~ %s", e.Path))
				case repo.StatusDeleted:
					staged = append(staged, fmt.Sprintf("  - %s", e.Path))
				}

				// Unstaged: working tree relative to the index.
				switch e.WorkStatus {
				case repo.StatusDirty:
					unstaged = append(unstaged, fmt.Sprintf("  ~ %s", e.Path))
				case repo.StatusDeleted:
					unstaged = append(unstaged, fmt.Sprintf("  - %s", e.Path))
				case repo.StatusUntracked:
					untracked = append(untracked, fmt.Sprintf("  %s", e.Path))
				}
			}

			for _, section := range []struct {
				name  string
				lines []string
			}{
				{"conflicts", conflicts},
				{"staged", staged},
				{"unstaged", unstaged},
				{"untracked", untracked},
			} {
				if len(section.lines) == 0 {
					continue
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "%s:\n", section.name)
				for _, s := range section.lines {
					fmt.Fprintln(out, s)
				}
			}

			return nil
		},
	}
}
