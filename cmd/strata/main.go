package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/object"
)

func main() {
	root := &cobra.Command{
		Use:   "strata",
		Short: "Content-addressed version control with AI assistance",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newRmCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newCommitCmd())
	root.AddCommand(newLogCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newBranchCmd())
	root.AddCommand(newCheckoutCmd())
	root.AddCommand(newMergeCmd())
	root.AddCommand(newTagCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newPushCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newReviewCmd())
	root.AddCommand(newSuggestCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// shortRef abbreviates a hash for display.
func shortRef(h object.Hash) string {
	s := string(h)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("strata 0.1.0-dev")
		},
	}
}
