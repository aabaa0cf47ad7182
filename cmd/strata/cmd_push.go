package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/repo"
)

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <branch>",
		Short: "Record a push of the current branch (local simulation)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			report, err := r.SimulatePush(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "pushed %s (%s): %d commit(s)\n",
				report.Branch, shortRef(report.Head), report.CommitCount)
			return nil
		},
	}
}
