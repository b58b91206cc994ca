package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/mentor/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [section]",
	Short: "Check a section for consistency",
	Long:  `Builds the flow of a section and reports dangling references, cycles, unreachable cases and missing assets.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trainer, closeStore, err := openTrainer(nil)
		if err != nil {
			return err
		}
		defer closeStore()

		report, err := validator.ValidateSection(cmd.Context(), trainer, sectionArg(args))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range report.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		for _, e := range report.Errors {
			fmt.Fprintf(out, "error: %s\n", e)
		}
		if !report.OK() {
			return report.Err()
		}
		fmt.Fprintf(out, "Section '%s' is valid (%d cases).\n", report.Section.ID, len(report.Section.Cases))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
