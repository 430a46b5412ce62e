package controllers

import (
	"context"
	"sync"
	"time"

	"investgame/src/scheduler"
	"investgame/src/schemas"
	"investgame/src/services"
	"investgame/src/utils"

	"github.com/sirupsen/logrus"
)

type Controller struct {
	Refresher      services.RefreshServiceI
	Logger         logrus.FieldLogger
	SchedulerMutex sync.Mutex
	Scheduler      *scheduler.ScheduledTask
}

func NewController(refresher services.RefreshServiceI, logger logrus.FieldLogger) *Controller {
	return &Controller{Refresher: refresher, Logger: logger}
}

func (c *Controller) RefreshPrices(ctx context.Context) (*schemas.RefreshResult, error) {
	return c.Refresher.Refresh(ctx)
}

// StartRefreshSchedule runs a price refresh on cronSpec until StopRefreshSchedule.
// An empty spec disables the schedule.
func (c *Controller) StartRefreshSchedule(cronSpec string) error {
	if cronSpec == "" {
		return nil
	}

	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()

	if c.Scheduler != nil {
		c.Scheduler.Cancel()
	}

	task, err := scheduler.NewScheduledTask(cronSpec, c.Logger, func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, utils.RefreshRequestTimeout)
		defer cancel()
		logger := c.Logger.WithField("trigger", "schedule")
		if _, err := c.Refresher.Refresh(utils.WithLogger(ctx, logger)); err != nil {
			logger.WithError(err).Error("scheduled price refresh failed")
		}
	})
	if err != nil {
		return err
	}
	c.Scheduler = task
	c.Logger.WithField("next_run", task.Next()).Info("price refresh scheduled")
	return nil
}

// NextScheduledRefresh reports when the schedule fires next.
func (c *Controller) NextScheduledRefresh() (time.Time, bool) {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()
	if c.Scheduler == nil {
		return time.Time{}, false
	}
	return c.Scheduler.Next(), true
}

func (c *Controller) StopRefreshSchedule() {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()
	if c.Scheduler != nil {
		c.Scheduler.Cancel()
		c.Scheduler = nil
	}
}
