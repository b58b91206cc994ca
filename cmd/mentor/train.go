package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/mentor/internal/cli"
)

var trainCmd = &cobra.Command{
	Use:   "train [section]",
	Short: "Train a section interactively",
	Long: `Opens a section and reads answers and commands from standard input.
Type :help inside the session for the list of commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		jsonMode, _ := cmd.Flags().GetBool("json")
		fresh, _ := cmd.Flags().GetBool("fresh")

		trainer, closeStore, err := openTrainer(nil)
		if err != nil {
			return err
		}
		defer closeStore()

		err = cli.RunTrain(cmd.Context(), trainer, cli.TrainOptions{
			Path:      sectionArg(args),
			SessionID: sessionID,
			JSON:      jsonMode,
			Fresh:     fresh,
			In:        os.Stdin,
			Out:       os.Stdout,
		}, logger)
		return errors.Join(err, touchSettings(cmd))
	},
}

// touchSettings records the login time in an existing settings file.
func touchSettings(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	settings.Touch(time.Now())
	return settings.Save(path)
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().String("session", "", "Resume or create the session with this ID")
	trainCmd.Flags().Bool("json", false, "Run in JSON mode (JSON lines output)")
	trainCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")
}
