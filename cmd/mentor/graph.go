package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/mentor/internal/presentation/graph"
	flow "github.com/aretw0/mentor/pkg/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph [section]",
	Short: "Export the flow graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the section flow, optionally colored with the progress of a stored session.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		trainer, closeStore, err := openTrainer(nil)
		if err != nil {
			return err
		}
		defer closeStore()

		section, err := trainer.Load(cmd.Context(), sectionArg(args))
		if err != nil {
			return err
		}
		g, err := flow.Build(*section)
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if sessionID != "" {
			snap, err := trainer.Manager().Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("failed to load session '%s': %w", sessionID, err)
			}
			overlay = graph.OverlayFromSnapshot(snap)
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Color the nodes with the progress of this session")
}
