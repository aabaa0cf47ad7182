package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/repo"
)

func newMergeCmd() *cobra.Command {
	var allowUnrelated bool
	var analyze bool

	cmd := &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch := args[0]

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			current, err := r.CurrentBranch()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if analyze {
				if err := analyzeMerge(cmd, r, current, branch); err != nil {
					return err
				}
			}

			fmt.Fprintf(out, "merging %s into %s...\n", branch, current)

			result, err := r.Merge(branch, repo.MergeOptions{AllowUnrelated: allowUnrelated})
			if err != nil {
				return err
			}

			switch result.Kind {
			case repo.MergeAlreadyUpToDate:
				fmt.Fprintln(out, "already up to date")
			case repo.MergeFastForward:
				fmt.Fprintf(out, "fast-forwarded %s to %s\n", current, shortRef(result.Head))
			default:
				fmt.Fprintf(out, "[%s %s] Merge branch '%s' into %s\n",
					current, shortRef(result.Commit), branch, current)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allowUnrelated, "allow-unrelated", false, "merge branches with no common ancestor")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "ask the model to assess the merge first")

	return cmd
}

// analyzeMerge describes both branch tips to the model and prints its
// assessment. Failures here never block the merge itself.
func analyzeMerge(cmd *cobra.Command, r *repo.Repo, current, branch string) error {
	out := cmd.OutOrStdout()

	currentTip, err := r.CurrentCommit()
	if err != nil {
		return err
	}
	targetTip, err := r.ResolveCommitish(branch)
	if err != nil {
		return err
	}

	context := fmt.Sprintf("Merging branch %q (commit %s) into %q (commit %s).\n",
		branch, targetTip, current, currentTip)
	if base, err := r.MergeBase(currentTip, targetTip); err == nil && base != "" {
		context += fmt.Sprintf("Common ancestor: %s.\n", base)
	} else {
		context += "The branches share no common ancestor.\n"
	}

	client, err := newAIClient(r)
	if err != nil {
		return err
	}
	assessment, err := client.AnalyzeMerge(cmd.Context(), context)
	if err != nil {
		fmt.Fprintf(out, "merge analysis unavailable: %v\n", err)
		return nil
	}
	fmt.Fprintln(out, assessment)
	fmt.Fprintln(out)
	return nil
}
