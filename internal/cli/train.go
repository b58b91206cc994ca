package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/mentor"
	"github.com/aretw0/mentor/internal/presentation/tui"
	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/runner"
)

// TrainOptions configures an interactive training session.
type TrainOptions struct {
	Path      string
	SessionID string
	JSON      bool
	Fresh     bool
	In        io.Reader
	Out       io.Writer
}

// RunTrain opens the section at opts.Path and drives it from opts.In until
// the learner quits or the input ends.
func RunTrain(ctx context.Context, trainer *mentor.Trainer, opts TrainOptions, logger *slog.Logger) error {
	if opts.Fresh && opts.SessionID != "" {
		err := trainer.Manager().Delete(ctx, opts.SessionID)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	sess, err := trainer.Open(ctx, opts.Path, opts.SessionID)
	if err != nil {
		return err
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	} else {
		var renderer runner.ContentRenderer
		if runner.IsTerminal(opts.Out) {
			tui.PrintBanner(opts.Out)
			if r, err := tui.NewRenderer(100); err == nil {
				renderer = runner.ContentRenderer(r)
			} else {
				logger.Warn("markdown renderer unavailable", "err", err)
			}
		}
		handler = runner.NewTextHandler(opts.In, opts.Out, runner.WithTextHandlerRenderer(renderer))
		printSystemMessage(opts.Out, "Session '%s' active. Type :help for commands.", sess.ID())
	}

	r := runner.NewRunner(sess,
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
	)
	runErr := r.Run(ctx)

	if !opts.JSON {
		summary := sess.Summary()
		printSystemMessage(opts.Out, "Answered %d of %d cases.", summary.Answered, summary.Total)
	}
	return errors.Join(handleExecutionError(runErr), trainer.Close(context.WithoutCancel(ctx)))
}
