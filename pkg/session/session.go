package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/mentor/internal/logging"
	"github.com/aretw0/mentor/internal/runtime"
	archive "github.com/aretw0/mentor/pkg/adapters/zip"
	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/export"
	"github.com/aretw0/mentor/pkg/graph"
	"github.com/aretw0/mentor/pkg/ports"
)

// CloseMode decides what TryClose does with an outstanding task.
type CloseMode int

const (
	// CloseWait lets the outstanding task finish.
	CloseWait CloseMode = iota
	// CloseCancel cancels the outstanding task and waits for its cleanup.
	CloseCancel
)

// Subscriber receives the effects of every processed event.
// Subscribers run while the session is locked and must not call back into it.
type Subscriber func(ctx context.Context, effects domain.EffectSet)

// SaveFunc persists a snapshot.
type SaveFunc func(ctx context.Context, snap *domain.Snapshot) error

// Session is one learner working through one Section.
// It is safe for concurrent use; events are applied one at a time.
type Session struct {
	id       string
	section  *domain.Section
	graph    *graph.Graph
	engine   *runtime.Engine
	exporter *export.Exporter
	save     SaveFunc
	logger   *slog.Logger

	engineOpts []runtime.EngineOption
	observers  []export.Observer
	restore    *domain.Snapshot

	mu      sync.Mutex
	task    *export.Task
	closing bool
	closed  bool
	subs    map[int]Subscriber
	nextSub int
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session ID. A random UUID is used otherwise.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithStore persists a snapshot after every accepted event.
func WithStore(store ports.SnapshotStore) Option {
	return func(s *Session) {
		if store != nil {
			s.save = func(ctx context.Context, snap *domain.Snapshot) error {
				return store.Save(ctx, snap.SessionID, snap)
			}
		}
	}
}

// WithSaveFunc persists snapshots through fn, typically Manager.Save.
func WithSaveFunc(fn SaveFunc) Option {
	return func(s *Session) {
		s.save = fn
	}
}

// WithSnapshot resumes the session from a stored snapshot.
func WithSnapshot(snap *domain.Snapshot) Option {
	return func(s *Session) {
		s.restore = snap
	}
}

// WithExporter sets the archive exporter. The default writes zip archives.
func WithExporter(x *export.Exporter) Option {
	return func(s *Session) {
		if x != nil {
			s.exporter = x
		}
	}
}

// WithTaskObserver registers a callback for finished export/import tasks.
func WithTaskObserver(obs export.Observer) Option {
	return func(s *Session) {
		s.observers = append(s.observers, obs)
	}
}

// WithEngineOptions forwards options to the traversal engine.
func WithEngineOptions(opts ...runtime.EngineOption) Option {
	return func(s *Session) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds the flow graph of section and starts a session on its Instruction node.
func New(section *domain.Section, opts ...Option) (*Session, error) {
	g, err := graph.Build(*section)
	if err != nil {
		return nil, fmt.Errorf("section '%s': %w", section.ID, err)
	}

	s := &Session{
		id:      uuid.NewString(),
		section: section,
		graph:   g,
		logger:  logging.NewNop(),
		subs:    make(map[int]Subscriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("section", section.ID, "session_id", s.id)
	if s.exporter == nil {
		s.exporter = export.NewExporter(archive.New(), export.WithLogger(s.logger))
	}

	engineOpts := append([]runtime.EngineOption{runtime.WithLogger(s.logger)}, s.engineOpts...)
	s.engine = runtime.NewEngine(g, engineOpts...)
	if s.restore != nil {
		if err := s.engine.Restore(s.restore); err != nil {
			return nil, fmt.Errorf("session '%s': %w", s.id, err)
		}
		s.restore = nil
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Section returns the section being trained.
func (s *Session) Section() *domain.Section { return s.section }

// Graph returns the flow graph of the section.
func (s *Session) Graph() *graph.Graph { return s.graph }

// Subscribe registers fn for effect notifications and returns a function that removes it.
func (s *Session) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Dispatch applies one event. The returned error is the illegal transition
// carried by the effects, or domain.ErrSessionClosed.
func (s *Session) Dispatch(ctx context.Context, ev domain.Event) (domain.EffectSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.closing {
		return nil, domain.ErrSessionClosed
	}

	effects := s.engine.Dispatch(ctx, ev)
	if err := effects.Err(); err != nil {
		s.notify(ctx, effects)
		return effects, err
	}

	if saved := s.persist(ctx); saved && effects.Has(domain.EffectSessionFinished) {
		effects = append(effects, domain.Effect{
			Type:     domain.EffectSolutionSaved,
			Solution: s.engine.Solution(),
		})
	}
	s.notify(ctx, effects)
	return effects, nil
}

// persist saves a snapshot and reports whether it was stored. Must hold s.mu.
func (s *Session) persist(ctx context.Context) bool {
	if s.save == nil {
		return false
	}
	if err := s.save(ctx, s.engine.Snapshot(s.id)); err != nil {
		s.logger.WarnContext(ctx, "failed to persist session", "err", err)
		return false
	}
	return true
}

// notify fans effects out to subscribers. Must hold s.mu.
func (s *Session) notify(ctx context.Context, effects domain.EffectSet) {
	for _, fn := range s.subs {
		fn(ctx, effects)
	}
}

// View returns the render effect of the current node.
func (s *Session) View() domain.Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.View()
}

// Summary returns the data of the Total view.
func (s *Session) Summary() domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Summary()
}

// Solution returns a copy of the current answers.
func (s *Session) Solution() *domain.Solution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Solution()
}

// IsSectionCompleted reports whether every reachable case has an answer.
func (s *Session) IsSectionCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.IsSectionCompleted()
}

// Snapshot captures the session state.
func (s *Session) Snapshot() *domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot(s.id)
}

// States returns the state of every node keyed by node key.
func (s *Session) States() map[string]domain.NodeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.NodeState, s.graph.Len())
	for _, n := range s.graph.Nodes() {
		out[n.Key] = s.engine.State(n.ID)
	}
	return out
}

// CurrentTask returns the most recent export or import task, or nil.
func (s *Session) CurrentTask() *export.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task
}

// Closed reports whether TryClose completed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
