package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/strata-vcs/strata/pkg/repo"
)

func newConfigCmd() *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "Get and set configuration values",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			load := func() (repo.Config, error) {
				if global {
					return repo.LoadGlobalConfig()
				}
				r, err := repo.Open(".")
				if err != nil {
					return nil, err
				}
				return r.LoadConfig()
			}
			save := func(cfg repo.Config) error {
				if global {
					return repo.SaveGlobalConfig(cfg)
				}
				r, err := repo.Open(".")
				if err != nil {
					return err
				}
				return r.SaveConfig(cfg)
			}

			cfg, err := load()
			if err != nil {
				return err
			}

			switch len(args) {
			case 0:
				// Dump every section.key = value, sorted.
				var lines []string
				for section, kv := range cfg {
					for key, value := range kv {
						lines = append(lines, fmt.Sprintf("%s.%s = %s", section, key, value))
					}
				}
				sort.Strings(lines)
				for _, line := range lines {
					fmt.Fprintln(out, line)
				}
				return nil

			case 1:
				value, ok := cfg.Get(args[0])
				if !ok {
					return fmt.Errorf("config key %q is not set", args[0])
				}
				fmt.Fprintln(out, value)
				return nil

			default:
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				return save(cfg)
			}
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "use ~/.strataconfig.toml instead of the repository config")

	return cmd
}
