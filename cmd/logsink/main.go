// FILE: lixenwraith/logsink/cmd/logsink/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	configPath string
	overrides  []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "logsink",
		Short: "Centralized log ingestion server",
		Long: `logsink accepts log entries over HTTP (and optionally raw TCP), queues
them in a bounded in-memory buffer and appends them to one file per
calendar day. Pending entries are drained to disk before exit.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate(fmt.Sprintf(
		"logsink version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "logsink.toml",
		"TOML configuration file ([logsink] table); missing file means defaults")
	cmd.PersistentFlags().StringArrayVar(&opts.overrides, "set", nil,
		"configuration override as key=value (repeatable)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newStressCmd())
	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}
