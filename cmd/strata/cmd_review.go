package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/repo"
)

func newReviewCmd() *cobra.Command {
	var staged bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Ask the model to review pending changes",
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
			if patch == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no changes to review")
				return nil
			}

			client, err := newAIClient(r)
			if err != nil {
				return err
			}
			review, err := client.ReviewCode(cmd.Context(), patch)
			if err != nil {
				return fmt.Errorf("review changes: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), review)
			return nil
		},
	}

	cmd.Flags().BoolVar(&staged, "staged", false, "review the index against HEAD instead of the working tree")

	return cmd
}
