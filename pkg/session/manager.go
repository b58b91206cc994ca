package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/mentor/internal/logging"
	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/ports"
)

// DefaultLockTTL is how long a distributed session lock lives without release.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager keeps the open sessions and orchestrates their persistence.
// Opening a section that already has a session returns that session.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu       sync.Mutex            // Guards the maps below
	locks    map[string]*lockEntry // Active per-session locks
	sessions map[string]*Session   // Open sessions by session ID
	sections map[string]string     // Section ID -> session ID

	locker      ports.DistributedLocker
	lockTTL     time.Duration
	logger      *slog.Logger
	sessionOpts []Option
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) ManagerOption {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithManagerLogger configures a logger for the Manager and the sessions it opens.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithSessionOptions applies opts to every session the Manager opens.
func WithSessionOptions(opts ...Option) ManagerOption {
	return func(m *Manager) {
		m.sessionOpts = append(m.sessionOpts, opts...)
	}
}

// NewManager creates a new session Manager with the given snapshot store.
func NewManager(store ports.SnapshotStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*Session),
		sections: make(map[string]string),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the local and, if configured, distributed lock of the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Open returns the session of section, creating it when the section is not open yet.
// A non-empty sessionID resumes the stored snapshot of that session, or starts
// a fresh session under that ID when nothing is stored.
func (m *Manager) Open(ctx context.Context, section *domain.Section, sessionID string) (*Session, error) {
	m.mu.Lock()
	if id, ok := m.sections[section.ID]; ok {
		s := m.sessions[id]
		m.mu.Unlock()
		if sessionID != "" && sessionID != id {
			return nil, fmt.Errorf("section '%s' is already open in session '%s'", section.ID, id)
		}
		return s, nil
	}
	m.mu.Unlock()

	opts := append([]Option{WithLogger(m.logger)}, m.sessionOpts...)
	opts = append(opts, WithSaveFunc(m.Save))

	if sessionID != "" {
		snap, err := m.Load(ctx, sessionID)
		switch {
		case err == nil:
			if snap.SectionID != section.ID {
				return nil, fmt.Errorf("session '%s' belongs to section '%s': %w", sessionID, snap.SectionID, domain.ErrSectionMismatch)
			}
			opts = append(opts, WithSnapshot(snap))
		case !errors.Is(err, domain.ErrSessionNotFound):
			return nil, fmt.Errorf("failed to check session existence: %w", err)
		}
		opts = append(opts, WithID(sessionID))
	}

	s, err := New(section, opts...)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.sections[section.ID]; ok {
		return m.sessions[id], nil
	}
	m.sessions[s.ID()] = s
	m.sections[section.ID] = s.ID()
	m.logger.Info("session opened", "session_id", s.ID(), "section", section.ID)
	return s, nil
}

// Get returns an open session.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Sessions returns the open sessions ordered by section ID.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Section().ID < out[j].Section().ID })
	return out
}

// Close closes an open session and forgets it. The stored snapshot is kept.
func (m *Manager) Close(ctx context.Context, sessionID string, mode CloseMode) error {
	s, err := m.Get(sessionID)
	if err != nil {
		return err
	}
	if err := s.TryClose(ctx, mode); err != nil {
		return err
	}
	m.forget(s)
	return nil
}

// CloseAll closes every open session and returns the joined errors of those that stayed open.
func (m *Manager) CloseAll(ctx context.Context, mode CloseMode) error {
	var errs []error
	for _, s := range m.Sessions() {
		if err := s.TryClose(ctx, mode); err != nil {
			errs = append(errs, fmt.Errorf("session '%s': %w", s.ID(), err))
			continue
		}
		m.forget(s)
	}
	return errors.Join(errs...)
}

func (m *Manager) forget(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, s.ID())
	if m.sections[s.Section().ID] == s.ID() {
		delete(m.sections, s.Section().ID)
	}
}

// Load retrieves a stored snapshot.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, sessionID)
		return err
	})
	return snap, err
}

// Save persists a snapshot under its session ID.
func (m *Manager) Save(ctx context.Context, snap *domain.Snapshot) error {
	return m.WithLock(ctx, snap.SessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, snap.SessionID, snap)
	})
}

// Delete closes the session if it is open (cancelling its task) and removes it from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	if s, err := m.Get(sessionID); err == nil {
		if err := s.TryClose(ctx, CloseCancel); err != nil {
			return err
		}
		m.forget(s)
	}
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// LockCount returns the number of session locks currently held or awaited.
func (m *Manager) LockCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
