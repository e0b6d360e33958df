package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/navflow/pkg/navflow"
	"github.com/randalmurphal/navflow/pkg/navflow/flowfile"
)

var rootCmd = &cobra.Command{
	Use:           "navflow",
	Short:         "Inspect navigation flow files",
	Long:          `navflow loads a YAML flow file and checks, renders, or simulates the navigation graph it declares.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("file", "f", "flow.yaml", "Flow file to load")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Settings file (YAML or JSON)")
}

// loadGraph loads the flow file named by --file. Node and edge refs become
// placeholders since the CLI has no application catalog.
func loadGraph(cmd *cobra.Command) (*navflow.Graph, error) {
	path, _ := cmd.Flags().GetString("file")
	g, err := flowfile.LoadFile(path, flowfile.Placeholders())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return g, nil
}
