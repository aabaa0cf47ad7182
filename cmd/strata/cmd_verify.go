package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/repo"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify object store integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			all, err := r.Store.List()
			if err != nil {
				return err
			}
			corrupt, err := r.Store.VerifyAll()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(corrupt) == 0 {
				fmt.Fprintf(out, "ok: verified %d object(s)\n", len(all))
				return nil
			}

			for _, h := range corrupt {
				fmt.Fprintf(out, "corrupt: %s\n", h)
			}
			return fmt.Errorf("%d of %d object(s) failed verification", len(corrupt), len(all))
		},
	}
}
