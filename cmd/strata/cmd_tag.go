package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/object"
	"github.com/strata-vcs/strata/pkg/repo"
)

func newTagCmd() *cobra.Command {
	var deleteTag string
	var force bool
	var showHash bool
	var annotate bool
	var message string

	cmd := &cobra.Command{
		Use:   "tag [name] [target]",
		Short: "List, create, or delete tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if strings.TrimSpace(deleteTag) != "" {
				if len(args) > 0 {
					return fmt.Errorf("tag --delete does not accept positional args")
				}
				return r.DeleteTag(deleteTag)
			}

			if len(args) == 0 {
				tags, err := r.ListTagsWithHashes()
				if err != nil {
					return err
				}
				names := make([]string, 0, len(tags))
				for name := range tags {
					names = append(names, name)
				}
				sort.Strings(names)

				for _, name := range names {
					if showHash {
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", tags[name], name)
					} else {
						fmt.Fprintln(cmd.OutOrStdout(), name)
					}
				}
				return nil
			}

			name := args[0]
			var target object.Hash
			if len(args) == 2 {
				target, err = r.ResolveCommitish(strings.TrimSpace(args[1]))
				if err != nil {
					return err
				}
			} else {
				target, err = r.CurrentCommit()
				if err != nil {
					return fmt.Errorf("resolve HEAD: %w", err)
				}
				if target == "" {
					return fmt.Errorf("cannot tag: no commits yet")
				}
			}

			if annotate {
				taggerName, taggerEmail, err := r.AuthorIdentity()
				if err != nil {
					return err
				}
				tagger := fmt.Sprintf("%s <%s>", taggerName, taggerEmail)
				_, err = r.CreateAnnotatedTag(name, target, tagger, message, force)
				return err
			}
			return r.CreateTag(name, target, force)
		},
	}

	cmd.Flags().StringVarP(&deleteTag, "delete", "d", "", "delete the named tag")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing tag")
	cmd.Flags().BoolVar(&showHash, "show-hash", false, "show tag target hashes when listing")
	cmd.Flags().BoolVarP(&annotate, "annotate", "a", false, "create an annotated tag object")
	cmd.Flags().StringVarP(&message, "message", "m", "", "annotation message")

	return cmd
}
