package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/repo"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			head, err := r.CurrentCommit()
			if err != nil {
				return fmt.Errorf("cannot resolve HEAD: %w", err)
			}

			out := cmd.OutOrStdout()

			if head == "" {
				fmt.Fprintln(out, "no commits yet")
				return nil
			}

			entries, err := r.Log(head, limit)
			if err != nil {
				return err
			}

			branch, _ := r.CurrentBranch()

			for _, entry := range entries {
				decoration := ""
				if entry.Hash == head {
					if branch != "" {
						decoration = " (HEAD -> " + branch + ")"
					} else {
						decoration = " (HEAD)"
					}
				}

				c := entry.Commit
				if oneline {
					short := string(entry.Hash)
					if len(short) > 8 {
						short = short[:8]
					}
					subject, _, _ := strings.Cut(c.Message, "\n")
					fmt.Fprintf(out, "%s%s %s\n", short, decoration, subject)
					continue
				}

				fmt.Fprintf(out, "commit %s%s\n", entry.Hash, decoration)
				fmt.Fprintf(out, "Author: %s\n", c.Author)
				fmt.Fprintf(out, "Date:   %s\n",
					time.Unix(c.Author.Timestamp, 0).Format("2006-01-02 15:04:05"))
				fmt.Fprintln(out)
				for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of commits to show")

	return cmd
}
