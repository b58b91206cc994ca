package mentor

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/mentor/internal/logging"
	"github.com/aretw0/mentor/internal/runtime"
	"github.com/aretw0/mentor/pkg/adapters/file"
	loamAdapter "github.com/aretw0/mentor/pkg/adapters/loam"
	"github.com/aretw0/mentor/pkg/adapters/memory"
	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/export"
	"github.com/aretw0/mentor/pkg/ports"
	"github.com/aretw0/mentor/pkg/session"
)

// Trainer is the high-level entry point of the library. It loads sections
// and keeps one open session per section.
type Trainer struct {
	loader    ports.SectionLoader
	store     ports.SnapshotStore
	locker    ports.DistributedLocker
	hooks     domain.LifecycleHooks
	observers []export.Observer
	logger    *slog.Logger
	policy    domain.MentorPolicy
	manager   *session.Manager
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithLoader replaces the default SourceLoader.
func WithLoader(l ports.SectionLoader) Option {
	return func(t *Trainer) {
		t.loader = l
	}
}

// WithStore persists sessions in store. The default keeps them in memory.
func WithStore(store ports.SnapshotStore) Option {
	return func(t *Trainer) {
		t.store = store
	}
}

// WithLocker guards snapshot access with a distributed lock.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(t *Trainer) {
		t.locker = locker
	}
}

// WithLifecycleHooks registers observability hooks on every session engine.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Trainer) {
		t.hooks = hooks
	}
}

// WithTaskObserver is called when an export or import task ends.
func WithTaskObserver(obs export.Observer) Option {
	return func(t *Trainer) {
		t.observers = append(t.observers, obs)
	}
}

// WithDefaultPolicy applies p to sections that do not declare a mentor policy.
func WithDefaultPolicy(p domain.MentorPolicy) Option {
	return func(t *Trainer) {
		t.policy = p
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trainer) {
		t.logger = logger
	}
}

// New creates a Trainer.
func New(opts ...Option) (*Trainer, error) {
	t := &Trainer{}
	for _, opt := range opts {
		opt(t)
	}
	if t.loader == nil {
		t.loader = NewSourceLoader()
	}
	if t.store == nil {
		t.store = memory.NewStore()
	}
	if t.logger == nil {
		t.logger = logging.NewNop()
	}

	sessionOpts := []session.Option{
		session.WithEngineOptions(runtime.WithLifecycleHooks(t.hooks)),
	}
	for _, obs := range t.observers {
		sessionOpts = append(sessionOpts, session.WithTaskObserver(obs))
	}
	managerOpts := []session.ManagerOption{
		session.WithManagerLogger(t.logger),
		session.WithSessionOptions(sessionOpts...),
	}
	if t.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(t.locker))
	}
	t.manager = session.NewManager(t.store, managerOpts...)
	return t, nil
}

// Open loads the section at path and returns its session. A non-empty
// sessionID resumes that stored session.
func (t *Trainer) Open(ctx context.Context, path, sessionID string) (*session.Session, error) {
	section, err := t.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return t.manager.Open(ctx, section, sessionID)
}

// Load reads the section at path with the default policy applied.
// A Trainer is itself a ports.SectionLoader.
func (t *Trainer) Load(ctx context.Context, path string) (*domain.Section, error) {
	section, err := t.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if section.Policy == "" && t.policy != "" {
		withPolicy := *section
		withPolicy.Policy = t.policy
		section = &withPolicy
	}
	return section, nil
}

// Manager returns the session manager.
func (t *Trainer) Manager() *session.Manager {
	return t.manager
}

// Loader returns the underlying section loader.
func (t *Trainer) Loader() ports.SectionLoader {
	return t.loader
}

// Close closes every open session, waiting for outstanding tasks.
func (t *Trainer) Close(ctx context.Context) error {
	return t.manager.CloseAll(ctx, session.CloseWait)
}

// SourceLoader reads a directory through the Markdown repository loader and
// a single file through the YAML/JSON loader.
type SourceLoader struct {
	Dir  ports.SectionLoader
	File ports.SectionLoader
}

// NewSourceLoader creates a SourceLoader with the default adapters.
func NewSourceLoader() *SourceLoader {
	return &SourceLoader{
		Dir:  loamAdapter.New(),
		File: file.NewLoader(),
	}
}

// Load implements ports.SectionLoader.
func (l *SourceLoader) Load(ctx context.Context, path string) (*domain.Section, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("section not found: %w", err)
	}
	if info.IsDir() {
		return l.Dir.Load(ctx, path)
	}
	return l.File.Load(ctx, path)
}
