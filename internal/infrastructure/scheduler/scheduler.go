package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a unit of periodic work. Each run gets its own timeout context.
type Job func(ctx context.Context) error

type Scheduler struct {
	c       *cron.Cron
	log     *logrus.Logger
	timeout time.Duration
}

func New(log *logrus.Logger, timeout time.Duration) *Scheduler {
	return &Scheduler{
		c: cron.New(
			cron.WithLogger(cron.PrintfLogger(log)),
			cron.WithChain(cron.Recover(cron.PrintfLogger(log)), cron.SkipIfStillRunning(cron.PrintfLogger(log))),
		),
		log:     log,
		timeout: timeout,
	}
}

// Add registers job under a standard 5-field cron spec.
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		entry := s.log.WithField("job", name)
		if err := job(ctx); err != nil {
			entry.WithError(err).Error("scheduled job failed")
			return
		}
		entry.WithField("took", time.Since(start).String()).Debug("scheduled job done")
	})
	return err
}

func (s *Scheduler) Start() { s.c.Start() }

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
	}
}
