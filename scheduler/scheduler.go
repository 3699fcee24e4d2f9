package scheduler

import (
	"context"
	"time"

	"newsdesk/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout bounds a single run of any job.
const jobTimeout = 2 * time.Minute

// Publisher flips due scheduled posts to published.
type Publisher interface {
	PublishDue(ctx context.Context) (int, error)
}

// Sweeper drops expired entries from an in-process store.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Scheduler runs the periodic background jobs.
type Scheduler struct {
	cron *cron.Cron
	now  func() time.Time
}

func New() *Scheduler {
	return &Scheduler{cron: cron.New(), now: time.Now}
}

// AddPublishJob registers the scheduled-post sweep on a cron schedule.
func (s *Scheduler) AddPublishJob(spec string, publisher Publisher) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.runPublish(ctx, publisher)
	})
	if err != nil {
		return err
	}
	logger.Log.Info("Scheduled post publisher registered", zap.String("schedule", spec))
	return nil
}

func (s *Scheduler) runPublish(ctx context.Context, publisher Publisher) {
	n, err := publisher.PublishDue(ctx)
	if err != nil {
		logger.Log.Error("Scheduled publish failed", zap.Int("published", n), zap.Error(err))
	}
}

// AddSweepJob registers a cleanup of an in-memory store.
func (s *Scheduler) AddSweepJob(spec, name string, sweeper Sweeper) error {
	_, err := s.cron.AddFunc(spec, func() {
		if n := sweeper.Sweep(s.now()); n > 0 {
			logger.Log.Debug("Swept expired entries", zap.String("store", name), zap.Int("removed", n))
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Log.Info("Scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop halts scheduling. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	logger.Log.Info("Stopping scheduler")
	return s.cron.Stop()
}
