package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sentinel-red/sentinel-backend/internal/attackgraph"
	"github.com/sentinel-red/sentinel-backend/internal/fixtures"
)

func newGraphCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the reference attack graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printGraph(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "dot", "output format: dot, json or path")
	return cmd
}

func printGraph(out io.Writer, format string) error {
	g, err := fixtures.AttackGraph()
	if err != nil {
		return err
	}
	if err := attackgraph.Validate(g); err != nil {
		return err
	}

	switch format {
	case "dot":
		_, err = io.WriteString(out, attackgraph.ToDOT(g, "Attack Graph "+g.ScanID))
		return err
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	case "path":
		path, err := attackgraph.Path(g)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, strings.Join(path, " -> "))
		return err
	default:
		return fmt.Errorf("unsupported format %q (want dot, json or path)", format)
	}
}
