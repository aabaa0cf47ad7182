package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/repo"
)

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Ask the model for improvement suggestions on staged changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			patch, err := stagedPatch(r)
			if err != nil {
				return err
			}
			if patch == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing staged to analyze")
				return nil
			}

			client, err := newAIClient(r)
			if err != nil {
				return err
			}
			suggestions, err := client.SuggestImprovements(cmd.Context(), patch)
			if err != nil {
				return fmt.Errorf("suggest improvements: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), suggestions)
			return nil
		},
	}
}
