package session_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mentor/pkg/adapters/memory"
	"github.com/aretw0/mentor/pkg/adapters/redis"
	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/session"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
	mu      sync.Mutex
	active  int
	overlap bool
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	s.mu.Lock()
	s.active++
	if s.active > 1 {
		s.overlap = true
	}
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	s.active--
	s.mu.Unlock()
	return s.Store.Save(ctx, sessionID, snap)
}

func TestManager_SavesAreSerialized(t *testing.T) {
	store := &SlowStore{Store: memory.NewStore()}
	manager := session.NewManager(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, manager.Save(ctx, domain.NewSnapshot("race-test", "sec")))
		}()
	}
	wg.Wait()

	assert.False(t, store.overlap, "saves of one session must not overlap")
}

func TestManager_OpenReturnsExistingSession(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager(memory.NewStore())

	first, err := manager.Open(ctx, twoCases(), "")
	require.NoError(t, err)
	second, err := manager.Open(ctx, twoCases(), "")
	require.NoError(t, err)
	assert.Same(t, first, second, "one session per section")

	_, err = manager.Open(ctx, twoCases(), "another-id")
	assert.Error(t, err)

	got, err := manager.Get(first.ID())
	require.NoError(t, err)
	assert.Same(t, first, got)

	_, err = manager.Get("nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_ResumeStoredSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	manager := session.NewManager(store)
	s, err := manager.Open(ctx, twoCases(), "resume-me")
	require.NoError(t, err)
	assert.Equal(t, "resume-me", s.ID())
	_, err = s.Dispatch(ctx, domain.StartEvent())
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, domain.SubmitEvent("persisted"))
	require.NoError(t, err)
	require.NoError(t, manager.CloseAll(ctx, session.CloseWait))
	assert.Empty(t, manager.Sessions())

	restarted := session.NewManager(store)
	resumed, err := restarted.Open(ctx, twoCases(), "resume-me")
	require.NoError(t, err)
	got, ok := resumed.Solution().Get("a")
	require.True(t, ok)
	assert.Equal(t, "persisted", got)

	other := twoCases()
	other.ID = "other"
	_, err = session.NewManager(store).Open(ctx, other, "resume-me")
	assert.ErrorIs(t, err, domain.ErrSectionMismatch)
}

func TestManager_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager(memory.NewStore())

	s, err := manager.Open(ctx, twoCases(), "to-delete")
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, domain.StartEvent())
	require.NoError(t, err)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"to-delete"}, ids)

	require.NoError(t, manager.Delete(ctx, "to-delete"))
	assert.True(t, s.Closed())

	ids, err = manager.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	_, err = manager.Load(ctx, "to-delete")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_LockLifecycle(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		snap := domain.NewSnapshot(fmt.Sprintf("session-%d", i), "sec")
		require.NoError(t, manager.Save(ctx, snap))
		require.NoError(t, manager.Delete(ctx, snap.SessionID))
	}

	assert.Equal(t, 0, manager.LockCount(), "locks must be released after use")
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	store := redis.NewFromClient(client)
	manager := session.NewManager(store,
		session.WithLocker(redis.NewLocker(client, "mentor:")),
		session.WithLockTTL(time.Second),
	)

	s, err := manager.Open(ctx, twoCases(), "locked")
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, domain.StartEvent())
	require.NoError(t, err)

	snap, err := store.Load(ctx, "locked")
	require.NoError(t, err)
	assert.Equal(t, "a", snap.Current)
	assert.False(t, mr.Exists("mentor:lock:locked"), "lock released after save")

	// A foreign holder blocks the manager until the caller gives up.
	unlock, err := redis.NewLocker(client, "mentor:").Lock(ctx, "locked", 5*time.Second)
	require.NoError(t, err)
	short, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = manager.Load(short, "locked")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, unlock(ctx))
}
