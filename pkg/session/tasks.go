package session

import (
	"context"

	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/export"
)

// ExportSolution archives the current solution at dest in the background.
// The solution is captured now; answers given while the task runs are not exported.
// It fails with domain.ErrExportInProgress while another task is outstanding.
func (s *Session) ExportSolution(ctx context.Context, dest string) (*export.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	section := s.section
	solution := s.engine.Solution()
	return s.startTask(ctx, export.KindExport, dest, domain.ErrExportInProgress, func(ctx context.Context) error {
		return s.exporter.Export(ctx, section, solution, dest)
	})
}

// ImportSolution recovers the answers stored in archive and merges them into
// the session in the background. Nothing is merged when the archive does not
// match the section or the task is cancelled.
// It fails with domain.ErrImportInProgress while another task is outstanding.
func (s *Session) ImportSolution(ctx context.Context, archive string) (*export.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.startTask(ctx, export.KindImport, archive, domain.ErrImportInProgress, func(ctx context.Context) error {
		recovered, err := s.exporter.Import(ctx, archive, s.section)
		if err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if err := ctx.Err(); err != nil {
			return &domain.ImportError{Path: archive, Err: err}
		}
		merged, effects, err := s.engine.Merge(ctx, recovered)
		if err != nil {
			return &domain.ImportError{Path: archive, Err: err}
		}
		if len(merged) > 0 {
			s.persist(ctx)
			s.notify(ctx, effects)
		}
		s.logger.InfoContext(ctx, "import merged", "cases", len(merged), "skipped", recovered.Len()-len(merged))
		return nil
	})
}

// startTask registers a new task unless one is outstanding. Must hold s.mu.
func (s *Session) startTask(ctx context.Context, kind export.Kind, path string, busy error, fn func(context.Context) error) (*export.Task, error) {
	if s.closed || s.closing {
		return nil, domain.ErrSessionClosed
	}
	if s.task != nil && s.task.Running() {
		return nil, busy
	}

	s.task = export.Start(context.WithoutCancel(ctx), kind, path, fn, s.observers...)
	s.logger.InfoContext(ctx, "task started", "kind", kind, "path", path, "task_id", s.task.ID())
	return s.task, nil
}

// TryClose closes the session. With CloseWait an outstanding task runs to
// completion first; with CloseCancel it is cancelled and its cleanup awaited.
// If ctx ends before the task does, the session stays open and ctx.Err() is returned.
// Closing an already closed session is a no-op.
func (s *Session) TryClose(ctx context.Context, mode CloseMode) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	task := s.task
	s.mu.Unlock()

	if task != nil && task.Running() {
		if mode == CloseCancel {
			task.Cancel()
		}
		select {
		case <-task.Done():
		case <-ctx.Done():
			s.mu.Lock()
			s.closing = false
			s.mu.Unlock()
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.persist(ctx)
	s.closed = true
	s.closing = false
	s.logger.InfoContext(ctx, "session closed")
	return nil
}
