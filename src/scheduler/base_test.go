package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"investgame/src/scheduler"
	"investgame/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduledTask(t *testing.T) {
	t.Run("runs on schedule until canceled", func(t *testing.T) {
		var runs atomic.Int32
		task, err := scheduler.NewScheduledTask("@every 1s", utils.NewSilentLogger(), func(ctx context.Context) {
			runs.Add(1)
		})
		require.NoError(t, err)
		assert.False(t, task.Next().IsZero())

		require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
		task.Cancel()

		after := runs.Load()
		time.Sleep(1200 * time.Millisecond)
		assert.Equal(t, after, runs.Load())
	})

	t.Run("cancel stops a run in progress", func(t *testing.T) {
		started := make(chan struct{})
		stopped := make(chan struct{})
		task, err := scheduler.NewScheduledTask("@every 1s", utils.NewSilentLogger(), func(ctx context.Context) {
			close(started)
			<-ctx.Done()
			close(stopped)
		})
		require.NoError(t, err)

		select {
		case <-started:
		case <-time.After(3 * time.Second):
			t.Fatal("task never started")
		}
		task.Cancel()

		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("task context was not canceled")
		}
	})

	t.Run("invalid spec", func(t *testing.T) {
		_, err := scheduler.NewScheduledTask("not a cron spec", utils.NewSilentLogger(), func(context.Context) {})
		assert.Error(t, err)
	})
}
