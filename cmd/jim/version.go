package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newVersionCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]string{
				"version": version,
				"commit":  commit,
				"date":    date,
			}
			if *jsonOutput {
				return print(cmd.OutOrStdout(), true, info, "")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "jim %s\ncommit: %s\nbuilt at: %s\n", version, commit, date)
			return nil
		},
	}
}
