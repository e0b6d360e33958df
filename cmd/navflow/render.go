package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/navflow/pkg/navflow"
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Print an indented outline of the flow graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cmd)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), g.PrettyPrintOutline())
		return nil
	},
}

var mermaidCmd = &cobra.Command{
	Use:   "mermaid",
	Short: "Export the flow graph as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD) with subgraphs rendered as nested blocks.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cmd)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), g.Mermaid())
		return nil
	},
}

var pathCmd = &cobra.Command{
	Use:   "path <from> <to>",
	Short: "Print the shortest edge path between two nodes of the root graph",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cmd)
		if err != nil {
			return err
		}
		path, ok := g.FindPath(args[0], args[1])
		if !ok {
			return fmt.Errorf("no path from %s to %s", args[0], args[1])
		}
		if len(path) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), args[0])
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), navflow.PrettyPrintPath(path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd, mermaidCmd, pathCmd)
}
