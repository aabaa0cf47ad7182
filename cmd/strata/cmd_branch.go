package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/repo"
)

func newBranchCmd() *cobra.Command {
	var deleteBranch string
	var suggest bool

	cmd := &cobra.Command{
		Use:   "branch [name]",
		Short: "List, create, or delete branches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if suggest {
				return suggestBranches(cmd, r)
			}

			if deleteBranch != "" {
				if err := r.DeleteBranch(deleteBranch); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted branch '%s'\n", deleteBranch)
				return nil
			}

			if len(args) == 1 {
				return r.CreateBranchAtHead(args[0])
			}

			branches, err := r.ListBranches()
			if err != nil {
				return err
			}
			current, _ := r.CurrentBranch()

			for _, b := range branches {
				if b == current {
					fmt.Fprintf(out, "* %s\n", b)
				} else {
					fmt.Fprintf(out, "  %s\n", b)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&deleteBranch, "delete", "d", "", "delete the named branch")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "ask the model for branch name ideas")

	return cmd
}

// suggestBranches asks the model for branch names, feeding it the
// staged paths and existing branches as context.
func suggestBranches(cmd *cobra.Command, r *repo.Repo) error {
	idx, err := r.LoadIndex()
	if err != nil {
		return err
	}
	branches, err := r.ListBranches()
	if err != nil {
		return err
	}

	context := "Existing branches:\n"
	for _, b := range branches {
		context += "  " + b + "\n"
	}
	context += "Staged files:\n"
	for _, p := range idx.Paths() {
		context += "  " + p + "\n"
	}

	client, err := newAIClient(r)
	if err != nil {
		return err
	}
	names, err := client.SuggestBranchNames(cmd.Context(), context)
	if err != nil {
		return fmt.Errorf("suggest branch names: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}
