package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scanctl",
	Short: "Developer tools for the Sentinel Red scan backend",
	Long: `scanctl runs the scan simulator locally and prints the reference
attack graph, without starting the HTTP server.

EXAMPLES
  # Watch one scan run to completion
  $ scanctl simulate --project proj-1 --tick 50ms

  # Render the attack graph with graphviz
  $ scanctl graph --format dot | dot -Tsvg > graph.svg

  # Print the primary attack path
  $ scanctl graph --format path`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newSimulateCmd(), newGraphCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
