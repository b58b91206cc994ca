package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/export"
	"github.com/aretw0/mentor/pkg/session"
)

// Runner drives one session from line-based input.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on stdin/stdout.
	Handler IOHandler

	// Renderer is used by the default TextHandler.
	Renderer ContentRenderer

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// CloseTimeout bounds the cleanup wait after an interrupt.
	CloseTimeout time.Duration

	session  *session.Session
	reported *export.Task
}

// NewRunner creates a runner for sess.
func NewRunner(sess *session.Session, opts ...Option) *Runner {
	r := &Runner{
		session:      sess,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		CloseTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout, WithTextHandlerRenderer(r.Renderer))
	}
	return r
}

// Run renders the current node and processes input until :quit, end of
// input or cancellation. On :quit and end of input the session is closed
// after any outstanding task finishes; on cancellation the task is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	signals := NewSignalManager(ctx)
	defer signals.Stop()

	if err := r.Handler.Render(ctx, domain.EffectSet{r.session.View()}); err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	for {
		inputCtx := signals.Context()
		if err := r.reportTask(inputCtx); err != nil {
			return err
		}

		line, err := r.Handler.Input(inputCtx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return r.close(ctx, session.CloseWait)
			}
			signals.CheckRace()
			if inputCtx.Err() != nil {
				r.Logger.Debug("runner interrupted", "err", inputCtx.Err())
				closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.CloseTimeout)
				defer cancel()
				if cerr := r.close(closeCtx, session.CloseCancel); cerr != nil {
					r.Logger.Warn("failed to close session", "err", cerr)
				}
				return inputCtx.Err()
			}
			return fmt.Errorf("input error: %w", err)
		}

		cmd, err := ParseCommand(line)
		if err != nil {
			if err := r.Handler.SystemOutput(inputCtx, err.Error()); err != nil {
				return err
			}
			continue
		}
		if cmd.Kind == CmdQuit {
			return r.close(ctx, session.CloseWait)
		}
		if err := r.Execute(inputCtx, cmd); err != nil {
			return err
		}
	}
}

// Execute applies one command. Illegal transitions are rendered, not returned.
func (r *Runner) Execute(ctx context.Context, cmd Command) error {
	view := r.session.View()
	atInstruction := view.Node != nil && view.Node.Kind == domain.KindInstruction

	switch cmd.Kind {
	case CmdAnswer:
		if atInstruction && strings.TrimSpace(cmd.Arg) == "" {
			return r.dispatch(ctx, domain.StartEvent())
		}
		if strings.TrimSpace(cmd.Arg) == "" {
			return nil
		}
		return r.dispatch(ctx, domain.SubmitEvent(cmd.Arg))
	case CmdMentor:
		return r.dispatch(ctx, domain.ShowMentorEvent())
	case CmdBack:
		return r.dispatch(ctx, domain.BackToQuestionEvent())
	case CmdNext:
		if atInstruction {
			return r.dispatch(ctx, domain.StartEvent())
		}
		return r.dispatch(ctx, domain.AdvanceEvent())
	case CmdTotal:
		return r.dispatch(ctx, domain.SelectEvent(r.session.Graph().Total().ID))
	case CmdGoto:
		id, ok := r.resolveNode(cmd.Arg)
		if !ok {
			return r.Handler.SystemOutput(ctx, fmt.Sprintf("no node '%s' (see :list)", cmd.Arg))
		}
		return r.dispatch(ctx, domain.SelectEvent(id))
	case CmdList:
		return r.Handler.SystemOutput(ctx, r.listing())
	case CmdExport:
		task, err := r.session.ExportSolution(ctx, cmd.Arg)
		return r.taskStarted(ctx, task, err)
	case CmdImport:
		task, err := r.session.ImportSolution(ctx, cmd.Arg)
		return r.taskStarted(ctx, task, err)
	case CmdStatus:
		task := r.session.CurrentTask()
		if task == nil {
			return r.Handler.SystemOutput(ctx, "no export or import yet")
		}
		return r.Handler.SystemOutput(ctx, describeTask(task.Status()))
	case CmdHelp:
		return r.Handler.SystemOutput(ctx, helpText)
	}
	return nil
}

func (r *Runner) dispatch(ctx context.Context, ev domain.Event) error {
	effects, err := r.session.Dispatch(ctx, ev)
	if err != nil && !errors.Is(err, domain.ErrIllegalTransition) {
		return err
	}
	return r.Handler.Render(ctx, effects)
}

// resolveNode accepts a :list number or a node key.
func (r *Runner) resolveNode(arg string) (domain.NodeID, bool) {
	g := r.session.Graph()
	if n, err := strconv.Atoi(arg); err == nil {
		node, ok := g.Node(domain.NodeID(n))
		return node.ID, ok
	}
	node, ok := g.Lookup(arg)
	return node.ID, ok
}

func (r *Runner) listing() string {
	states := r.session.States()
	current := r.session.View().Node
	var sb strings.Builder
	for _, n := range r.session.Graph().Nodes() {
		marker := " "
		if current != nil && current.ID == n.ID {
			marker = "*"
		}
		fmt.Fprintf(&sb, "\n%s %2d. %-20s", marker, n.ID, n.Key)
		if n.IsCase() {
			sb.WriteString(" ")
			sb.WriteString(string(states[n.Key]))
			if !r.session.Graph().Reachable(n.ID) {
				sb.WriteString(" (off path)")
			}
		}
	}
	return strings.TrimPrefix(sb.String(), "\n")
}

func (r *Runner) taskStarted(ctx context.Context, task *export.Task, err error) error {
	switch {
	case errors.Is(err, domain.ErrExportInProgress), errors.Is(err, domain.ErrImportInProgress):
		return r.Handler.SystemOutput(ctx, err.Error())
	case err != nil:
		return err
	}
	return r.Handler.SystemOutput(ctx, fmt.Sprintf("%s started: %s", task.Kind(), task.Path()))
}

// reportTask announces a finished task once.
func (r *Runner) reportTask(ctx context.Context) error {
	task := r.session.CurrentTask()
	if task == nil || task == r.reported || task.Running() {
		return nil
	}
	r.reported = task
	if err := r.Handler.SystemOutput(ctx, describeTask(task.Status())); err != nil {
		return err
	}
	if task.Kind() == export.KindImport && task.Err() == nil {
		return r.Handler.Render(ctx, domain.EffectSet{r.session.View()})
	}
	return nil
}

func describeTask(s export.Status) string {
	msg := fmt.Sprintf("%s %s: %s", s.Kind, s.State, s.Path)
	if s.Error != "" {
		msg += " (" + s.Error + ")"
	}
	return msg
}

// close waits for or cancels the outstanding task and closes the session.
func (r *Runner) close(ctx context.Context, mode session.CloseMode) error {
	if task := r.session.CurrentTask(); task != nil && task.Running() && mode == session.CloseWait {
		_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("waiting for %s to finish...", task.Kind()))
	}
	if err := r.session.TryClose(ctx, mode); err != nil {
		return err
	}
	if err := r.reportTask(ctx); err != nil {
		return err
	}
	return nil
}
