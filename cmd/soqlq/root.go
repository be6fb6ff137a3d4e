package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for soqlq.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "soqlq",
		Short: "Run SOQL queries and render the results",
		Long: `soqlq runs SOQL queries against an org through the REST API.

Query results are classified into plain columns, parent relationship columns,
subqueries and aggregate functions, then rendered as a table (human), CSV,
JSON or Markdown. Executions are recorded in a local history database.

Connection settings come from the .soqlq configuration file, the
SOQLQ_INSTANCE_URL and SOQLQ_ACCESS_TOKEN environment variables and flags.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewQueryCmd())
	cmd.AddCommand(NewRenderCmd())
	cmd.AddCommand(NewHistoryCmd())
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
