package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/repo"
)

func newCommitCmd() *cobra.Command {
	var message string
	var useAI bool
	var signature string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record staged changes to the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if message == "" && useAI {
				message, err = aiCommitMessage(cmd, r)
				if err != nil {
					return err
				}
			}
			if message == "" {
				return fmt.Errorf("commit message is required (-m or --ai)")
			}

			h, err := r.Commit(message, repo.CommitOptions{Signature: signature})
			if err != nil {
				return err
			}

			branch, _ := r.CurrentBranch()
			if branch == "" {
				branch = "HEAD"
			}

			short := string(h)
			if len(short) > 8 {
				short = short[:8]
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, short, message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().BoolVar(&useAI, "ai", false, "generate the commit message from the staged diff")
	cmd.Flags().StringVar(&signature, "signature", "", "hex signature to record on the commit")

	return cmd
}

// aiCommitMessage generates a one-line message from the staged diff.
func aiCommitMessage(cmd *cobra.Command, r *repo.Repo) (string, error) {
	patch, err := stagedPatch(r)
	if err != nil {
		return "", err
	}
	if patch == "" {
		return "", fmt.Errorf("nothing staged to describe")
	}

	client, err := newAIClient(r)
	if err != nil {
		return "", err
	}
	msg, err := client.CommitMessage(cmd.Context(), patch)
	if err != nil {
		return "", fmt.Errorf("generate commit message: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "generated message: %s\n", msg)
	return msg, nil
}
