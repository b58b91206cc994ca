package cli

import (
	"context"
	"errors"
	"io"

	"github.com/aretw0/mentor"
	"github.com/aretw0/mentor/pkg/export"
	"github.com/aretw0/mentor/pkg/session"
)

// TaskOptions names the session and the archive of an export or import.
type TaskOptions struct {
	Path      string
	SessionID string
	Archive   string
	Out       io.Writer
}

// RunExport writes the solution of a session to opts.Archive.
func RunExport(ctx context.Context, trainer *mentor.Trainer, opts TaskOptions) error {
	return runTask(ctx, trainer, opts, func(sess *session.Session) (*export.Task, error) {
		return sess.ExportSolution(ctx, opts.Archive)
	})
}

// RunImport merges the answers of opts.Archive into a session.
func RunImport(ctx context.Context, trainer *mentor.Trainer, opts TaskOptions) error {
	return runTask(ctx, trainer, opts, func(sess *session.Session) (*export.Task, error) {
		return sess.ImportSolution(ctx, opts.Archive)
	})
}

func runTask(ctx context.Context, trainer *mentor.Trainer, opts TaskOptions, start func(*session.Session) (*export.Task, error)) error {
	sess, err := trainer.Open(ctx, opts.Path, opts.SessionID)
	if err != nil {
		return err
	}

	task, err := start(sess)
	if err != nil {
		return errors.Join(err, trainer.Close(ctx))
	}

	waitErr := task.Wait(ctx)
	if waitErr != nil && ctx.Err() != nil {
		// Interrupted: cancel the task and let it clean up before closing.
		closeErr := trainer.Manager().CloseAll(context.WithoutCancel(ctx), session.CloseCancel)
		return errors.Join(ctx.Err(), closeErr)
	}

	status := task.Status()
	printSystemMessage(opts.Out, "%s %s: %s", status.Kind, status.State, status.Path)
	if waitErr == nil && status.Kind == export.KindImport {
		summary := sess.Summary()
		printSystemMessage(opts.Out, "Answered %d of %d cases.", summary.Answered, summary.Total)
	}
	return errors.Join(waitErr, trainer.Close(ctx))
}
