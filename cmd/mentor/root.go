package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mentor"
	"github.com/aretw0/mentor/internal/cli"
	"github.com/aretw0/mentor/internal/config"
	"github.com/aretw0/mentor/pkg/observability"
)

var (
	settings config.Settings
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mentor",
	Short: "Mentor runs guided training sections",
	Long: `Mentor walks a learner through a section of cases: read the question,
write an answer, compare it with the mentor's answer and move on.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		settings = loaded

		if cmd.Flags().Changed("sections") {
			settings.SectionsPath, _ = cmd.Flags().GetString("sections")
		}
		if cmd.Flags().Changed("store") {
			settings.Store.Driver, _ = cmd.Flags().GetString("store")
		}
		if cmd.Flags().Changed("log-level") {
			settings.LogLevel, _ = cmd.Flags().GetString("log-level")
		}
		logger = cli.NewLogger(settings.LogLevel)
		return settings.Validate()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.FileName, "Settings file")
	rootCmd.PersistentFlags().String("sections", "", "Directory containing the sections")
	rootCmd.PersistentFlags().String("store", "", "Session store driver: memory, file, sqlite or redis")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error or off")
}

// openTrainer opens the configured store and builds a Trainer on it.
// The returned func closes the store.
func openTrainer(metrics *observability.Metrics) (*mentor.Trainer, func(), error) {
	backend, err := cli.OpenBackend(settings, os.LookupEnv)
	if err != nil {
		return nil, nil, err
	}
	trainer, err := cli.NewTrainer(settings, backend, logger, metrics)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	return trainer, func() {
		if err := backend.Close(); err != nil {
			logger.Warn("failed to close store", "err", err)
		}
	}, nil
}

func sectionArg(args []string) string {
	if len(args) > 0 {
		return cli.ResolvePath(settings, args[0])
	}
	return cli.ResolvePath(settings, "")
}
