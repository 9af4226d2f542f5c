// FILE: lixenwraith/logsink/cmd/logsink/config.go
package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/logsink"
)

// resolveConfig layers file, environment and --set overrides, in that order
func resolveConfig(opts *rootOptions, lookup func(string) (string, bool)) (*logsink.Config, error) {
	cfg, err := logsink.NewConfigFromFile(opts.configPath)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv(lookup)

	if err := cfg.ApplyOverride(opts.overrides...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts, os.LookupEnv)
			if err != nil {
				return err
			}

			dumper := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
			dumper.Fdump(cmd.OutOrStdout(), cfg)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init PATH",
		Short: "Write the effective configuration to a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts, os.LookupEnv)
			if err != nil {
				return err
			}
			if err := cfg.Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", args[0])
			return nil
		},
	})

	return cmd
}
