// internal/service/stats_service.go
package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
)

var (
	klinKinds   = []model.SubmissionKind{model.KindKlinRequest, model.KindKlinIntelligence, model.KindKlinPartnership}
	kaizenKinds = []model.SubmissionKind{model.KindKaizenProject, model.KindBuildPlanner}
)

// StatsService builds the admin dashboard counters.
type StatsService struct {
	Submissions repository.SubmissionRepositoryInterface
	Subscribers repository.SubscriberRepositoryInterface
}

// Dashboard runs the counts concurrently. Klin counts cover every klin form
// and kaizen counts include build planner submissions.
func (s *StatsService) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	var (
		stats  model.DashboardStats
		mu     sync.Mutex
		active = true
	)

	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int, kinds []model.SubmissionKind, status string) {
		for _, kind := range kinds {
			g.Go(func() error {
				n, err := s.Submissions.CountByStatus(ctx, kind, status)
				if err != nil {
					return err
				}
				mu.Lock()
				*dst += n
				mu.Unlock()
				return nil
			})
		}
	}

	contact := []model.SubmissionKind{model.KindContact}
	count(&stats.Contacts.Total, contact, "")
	count(&stats.Contacts.New, contact, model.StatusNew)
	count(&stats.Contacts.Pending, contact, model.StatusPending)

	count(&stats.KlinRequests.Total, klinKinds, "")
	count(&stats.KlinRequests.Pending, klinKinds, model.StatusPending)
	count(&stats.KlinRequests.Completed, klinKinds, model.StatusCompleted)

	count(&stats.KaizenProjects.Total, kaizenKinds, "")
	count(&stats.KaizenProjects.Pending, kaizenKinds, model.StatusPending)
	count(&stats.KaizenProjects.Completed, kaizenKinds, model.StatusCompleted)

	g.Go(func() error {
		n, err := s.Subscribers.Count(ctx, nil)
		stats.Newsletter.TotalSubscribers = n
		return err
	})
	g.Go(func() error {
		n, err := s.Subscribers.Count(ctx, &active)
		stats.Newsletter.ActiveSubscribers = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
