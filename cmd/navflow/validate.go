package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the flow graph for consistency",
	Long:  `Loads the flow file, validates every graph in it, and reports nodes unreachable from the first node and cycles.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if unreachable := g.UnreachableNodes(); len(unreachable) > 0 {
			fmt.Fprintf(out, "warning: unreachable nodes: %v\n", unreachable)
		}
		if cycle := g.FindCycle(); cycle != nil {
			fmt.Fprintf(out, "note: cycle %v\n", cycle)
		}
		fmt.Fprintf(out, "graph %s is valid (%d nodes)\n", g.Name(), g.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
