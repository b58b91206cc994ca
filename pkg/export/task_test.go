package export_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mentor/pkg/export"
)

func TestTask_Success(t *testing.T) {
	var observed atomic.Int32
	release := make(chan struct{})

	task := export.Start(context.Background(), export.KindImport, "in.zip", func(ctx context.Context) error {
		<-release
		return nil
	}, func(kind export.Kind, elapsed time.Duration, err error) {
		assert.Equal(t, export.KindImport, kind)
		assert.NoError(t, err)
		observed.Add(1)
	})

	assert.True(t, task.Running())
	assert.NoError(t, task.Err(), "no error while running")
	assert.Equal(t, export.TaskRunning, task.Status().State)
	assert.Len(t, task.ID(), 36)

	close(release)
	require.NoError(t, task.Wait(context.Background()))

	assert.False(t, task.Running())
	assert.Equal(t, int32(1), observed.Load(), "observer runs before Done")
	st := task.Status()
	assert.Equal(t, export.TaskSucceeded, st.State)
	assert.NotNil(t, st.FinishedAt)
	assert.Equal(t, "in.zip", st.Path)
}

func TestTask_Failure(t *testing.T) {
	boom := errors.New("boom")
	task := export.Start(context.Background(), export.KindExport, "out.zip", func(ctx context.Context) error {
		return boom
	})

	<-task.Done()
	assert.ErrorIs(t, task.Err(), boom)
	st := task.Status()
	assert.Equal(t, export.TaskFailed, st.State)
	assert.Equal(t, "boom", st.Error)
}

func TestTask_WaitHonoursContext(t *testing.T) {
	task := export.Start(context.Background(), export.KindExport, "out.zip", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	defer task.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, task.Wait(ctx), context.DeadlineExceeded)
	assert.True(t, task.Running(), "waiting does not cancel the task")
}

func TestTask_ParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	task := export.Start(parent, export.KindExport, "out.zip", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	cancel()
	assert.ErrorIs(t, task.Wait(context.Background()), context.Canceled)
	assert.Equal(t, export.TaskCancelled, task.Status().State)
}
