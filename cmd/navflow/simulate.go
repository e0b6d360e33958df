package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/navflow/pkg/navflow"
	"github.com/randalmurphal/navflow/pkg/navflow/config"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <start>",
	Short: "Dry-run the flow graph from a start node",
	Long: `Walks the flow graph from <start> without a UI. Every screen outputs the
value given with --output node=value, or its own ID when none is given.
Edges with a when condition are tested against that value; the first
eligible edge out of each node is taken.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringToString("output", nil, "Synthetic screen output as node=value (repeatable)")
	simulateCmd.Flags().Int("max-hops", 0, "Hop cap (overrides the settings file)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	g, err := loadGraph(cmd)
	if err != nil {
		return err
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if hops, _ := cmd.Flags().GetInt("max-hops"); hops > 0 {
		settings.MaxHops = hops
	}
	rt, err := navflow.OptionsFromSettings(settings, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	given, _ := cmd.Flags().GetStringToString("output")
	outputs := navflow.OutputFunc(func(_ context.Context, n navflow.Node, _ any) (any, bool) {
		if v, ok := given[n.ID()]; ok {
			return v, true
		}
		return n.ID(), true
	})

	sim, err := navflow.DryRun(cmd.Context(), g, args[0], nil, outputs, rt.DryRun...)
	out := cmd.OutOrStdout()
	if sim != nil {
		for _, st := range sim.Steps {
			via := ""
			if st.EdgeID != "" {
				via = fmt.Sprintf(" via %s [%s]", st.EdgeID, st.Transition)
			}
			fmt.Fprintf(out, "%3d %s%s %s%s\n", st.Hop, strings.Repeat("  ", st.Depth), st.NodeID, st.Trail, via)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "stopped: %s after %d hops\n", sim.Stop, sim.Hops())
	return nil
}

// loadSettings reads --config when given, otherwise the defaults.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.DefaultSettings(), nil
	}
	cfg, err := config.FromFile(path)
	if err != nil {
		return config.Settings{}, err
	}
	return config.LoadSettings(cfg)
}
