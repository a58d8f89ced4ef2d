package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for spiderkit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spiderkit",
		Short: "Crawl-strategy and page-classification toolkit for e-commerce sites",
		Long: `Spiderkit crawls e-commerce sites and classifies every fetched page as an
item, navigation, mixed, or unknown page. A crawl strategy decides which
pages are handed to extraction and which links are followed.

Crawl results are saved to a local SQLite database so past runs can be
listed and inspected with the runs command.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewRunsCmd())
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
