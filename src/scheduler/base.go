package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ScheduledTask runs a function on a cron schedule. A run that is still in
// progress when the next tick fires causes that tick to be skipped.
type ScheduledTask struct {
	cronID cron.EntryID
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduledTask(cronSpec string, logger logrus.FieldLogger, taskFunc func(ctx context.Context)) (*ScheduledTask, error) {
	cronLogger := cron.PrintfLogger(logger)
	c := cron.New(cron.WithLogger(cronLogger), cron.WithChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	))
	ctx, cancel := context.WithCancel(context.Background())
	task := &ScheduledTask{
		cron:   c,
		ctx:    ctx,
		cancel: cancel,
	}

	id, err := c.AddFunc(cronSpec, func() {
		select {
		case <-ctx.Done():
			return
		default:
			taskFunc(ctx)
		}
	})
	if err != nil {
		cancel()
		return nil, err
	}

	task.cronID = id
	c.Start()
	return task, nil
}

// Next returns the time of the next scheduled run.
func (s *ScheduledTask) Next() time.Time {
	return s.cron.Entry(s.cronID).Next
}

// Cancel stops the schedule and cancels a run in progress.
func (s *ScheduledTask) Cancel() {
	s.cron.Remove(s.cronID)
	s.cancel()
	<-s.cron.Stop().Done()
}
