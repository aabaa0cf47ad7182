package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/diff"
	"github.com/strata-vcs/strata/pkg/repo"
)

func newDiffCmd() *cobra.Command {
	var staged bool
	var explain bool

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show changes between working tree, index and HEAD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			var patch string
			if staged {
				patch, err = stagedPatch(r)
			} else {
				patch, err = workingPatch(r)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if patch == "" {
				fmt.Fprintln(out, "no changes found")
				return nil
			}

			fmt.Fprint(out, patch)

			st := diff.PatchStats(patch)
			fmt.Fprintf(out, "\n%d addition(s), %d deletion(s)\n", st.Additions, st.Deletions)

			if explain {
				client, err := newAIClient(r)
				if err != nil {
					return err
				}
				explanation, err := client.ExplainDiff(cmd.Context(), patch)
				if err != nil {
					return fmt.Errorf("explain changes: %w", err)
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, explanation)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&staged, "staged", false, "diff the index against HEAD instead of the working tree")
	cmd.Flags().BoolVar(&explain, "explain", false, "ask the model to explain the changes")

	return cmd
}
