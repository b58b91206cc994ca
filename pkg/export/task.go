package export

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes export tasks from import tasks.
type Kind string

const (
	KindExport Kind = "export"
	KindImport Kind = "import"
)

// TaskState is the lifecycle stage of a Task.
type TaskState string

const (
	TaskRunning   TaskState = "running"
	TaskSucceeded TaskState = "succeeded"
	TaskFailed    TaskState = "failed"
	TaskCancelled TaskState = "cancelled"
)

// Observer is notified once when a task finishes.
type Observer func(kind Kind, elapsed time.Duration, err error)

// Status is a point-in-time view of a Task, safe to serialize.
type Status struct {
	ID         string     `json:"id"`
	Kind       Kind       `json:"kind"`
	Path       string     `json:"path"`
	State      TaskState  `json:"state"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Task is an export or import running in its own goroutine.
type Task struct {
	id     string
	kind   Kind
	path   string
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	err       error
	cancelled bool
	started   time.Time
	finished  time.Time
}

// Start runs fn in a new goroutine with a context derived from parent and
// returns immediately. Observers are called after fn returns and before Done
// is closed.
func Start(parent context.Context, kind Kind, path string, fn func(ctx context.Context) error, observers ...Observer) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{
		id:      uuid.NewString(),
		kind:    kind,
		path:    path,
		cancel:  cancel,
		done:    make(chan struct{}),
		started: time.Now(),
	}

	go func() {
		defer close(t.done)
		defer cancel()

		err := fn(ctx)

		t.mu.Lock()
		t.err = err
		t.finished = time.Now()
		elapsed := t.finished.Sub(t.started)
		t.mu.Unlock()

		for _, obs := range observers {
			if obs != nil {
				obs(kind, elapsed, err)
			}
		}
	}()
	return t
}

// ID returns the task identifier.
func (t *Task) ID() string { return t.id }

// Kind returns whether this is an export or an import.
func (t *Task) Kind() Kind { return t.kind }

// Path returns the archive path the task writes or reads.
func (t *Task) Path() string { return t.path }

// Done is closed when the task has finished and its staging files are gone.
func (t *Task) Done() <-chan struct{} { return t.done }

// Running reports whether the task has not finished yet.
func (t *Task) Running() bool {
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// Cancel asks the task to stop. It does not wait; use Wait or Done.
func (t *Task) Cancel() {
	t.mu.Lock()
	if t.Running() {
		t.cancelled = true
	}
	t.mu.Unlock()
	t.cancel()
}

// Wait blocks until the task finishes or ctx is done, and returns the task error.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the result of a finished task, or nil while it runs.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Status returns a snapshot of the task.
func (t *Task) Status() Status {
	running := t.Running()

	t.mu.Lock()
	defer t.mu.Unlock()

	s := Status{
		ID:        t.id,
		Kind:      t.kind,
		Path:      t.path,
		State:     TaskRunning,
		StartedAt: t.started,
	}
	if running {
		return s
	}

	finished := t.finished
	s.FinishedAt = &finished
	switch {
	case t.err == nil:
		s.State = TaskSucceeded
	case t.cancelled || IsCancelled(t.err):
		s.State = TaskCancelled
		s.Error = t.err.Error()
	default:
		s.State = TaskFailed
		s.Error = t.err.Error()
	}
	return s
}
