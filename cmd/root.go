package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfields/gst/internal/ui"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:           "gst",
	Short:         "Interactive git status with staging, diffs and remote operations",
	Long:          "A keyboard-driven terminal UI for the repository in the current directory: stage, unstage, discard, commit, branch, push, pull and stash without leaving the status view.",
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ui.Run(".")
	},
}

func Execute() error {
	return rootCmd.Execute()
}
