package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/mentor/internal/logging"
)

// NewLogger configures the application logger from a level name.
// Unknown names fall back to info; "off" discards everything.
func NewLogger(level string) *slog.Logger {
	switch strings.ToLower(level) {
	case "off", "none":
		return logging.NewNop()
	case "debug":
		return logging.New(slog.LevelDebug)
	case "warn", "warning":
		return logging.New(slog.LevelWarn)
	case "error":
		return logging.New(slog.LevelError)
	}
	return logging.New(slog.LevelInfo)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
