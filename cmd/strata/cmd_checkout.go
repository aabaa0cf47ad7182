package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/repo"
)

func newCheckoutCmd() *cobra.Command {
	var createBranch bool

	cmd := &cobra.Command{
		Use:   "checkout <branch|commit>",
		Short: "Switch branches or detach HEAD at a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if createBranch {
				if err := r.CreateBranchAtHead(target); err != nil {
					return err
				}
			}

			if err := r.Checkout(target); err != nil {
				return err
			}

			if createBranch {
				fmt.Fprintf(cmd.OutOrStdout(), "switched to new branch '%s'\n", target)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "switched to '%s'\n", target)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&createBranch, "branch", "b", false, "create and switch to a new branch")

	return cmd
}
