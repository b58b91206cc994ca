package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/mentor"
	"github.com/aretw0/mentor/internal/cli"
)

var exportCmd = &cobra.Command{
	Use:   "export <archive>",
	Short: "Export the solution of a session to a zip archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTaskCmd(cmd, args[0], cli.RunExport)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <archive>",
	Short: "Merge the answers of a zip archive into a session",
	Long:  `Cases already answered in the session keep their answers; the rest are taken from the archive.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTaskCmd(cmd, args[0], cli.RunImport)
	},
}

func runTaskCmd(cmd *cobra.Command, archive string, run func(context.Context, *mentor.Trainer, cli.TaskOptions) error) error {
	section, _ := cmd.Flags().GetString("section")
	sessionID, _ := cmd.Flags().GetString("session")

	trainer, closeStore, err := openTrainer(nil)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, trainer, cli.TaskOptions{
		Path:      cli.ResolvePath(settings, section),
		SessionID: sessionID,
		Archive:   archive,
		Out:       cmd.OutOrStdout(),
	})
}

func init() {
	for _, c := range []*cobra.Command{exportCmd, importCmd} {
		rootCmd.AddCommand(c)
		c.Flags().String("section", "", "Section of the session")
		c.Flags().String("session", "", "Session ID")
		_ = c.MarkFlagRequired("session")
	}
}
