package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for userclean.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "userclean",
		Short: "Clean and aggregate user record datasets",
		Long: `userclean reads a JSON array of user records, rejects incomplete or
malformed entries, normalizes the rest and writes the cleaned dataset.

It also counts email domains and cities and reports the most common ones.
Records are processed in fixed-size chunks so large inputs never need a
second full copy in memory.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
