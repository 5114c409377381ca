// internal/jobs/scheduler.go
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const dispatchTimeout = 2 * time.Minute

// DueDispatcher hands every scheduled campaign whose time has come to the sender.
type DueDispatcher interface {
	DispatchDue(ctx context.Context) (int, error)
}

// Scheduler runs the periodic jobs of the API process.
type Scheduler struct {
	cron      *cron.Cron
	campaigns DueDispatcher
	log       zerolog.Logger
}

func NewScheduler(campaigns DueDispatcher, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		// A tick still running when the next fires is skipped, not stacked.
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		campaigns: campaigns,
		log:       log,
	}
}

// Setup registers the scheduled-campaign job on spec (e.g. "@every 1m").
func (s *Scheduler) Setup(spec string) error {
	_, err := s.cron.AddFunc(spec, s.DispatchDue)
	if err != nil {
		return err
	}
	s.log.Info().Str("spec", spec).Msg("🕐 Scheduled campaign dispatch registered")
	return nil
}

// DispatchDue is one tick of the scheduled-campaign job.
func (s *Scheduler) DispatchDue() {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	n, err := s.campaigns.DispatchDue(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("❌ Failed to dispatch scheduled campaigns")
		return
	}
	if n > 0 {
		s.log.Info().Int("count", n).Msg("✅ Scheduled campaigns dispatched")
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running tick to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
