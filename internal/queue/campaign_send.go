package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/events"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
	"github.com/unclebandit/wealthyelephant-backend/internal/service"
)

// CampaignDispatcher hands campaigns to the send queue, at most once at a time each.
type CampaignDispatcher struct {
	Queue     Queue
	Guard     InFlightGuard
	Campaigns repository.CampaignRepositoryInterface
	Log       zerolog.Logger
}

// Dispatch claims the campaign, marks it sending and enqueues it. A campaign
// that is already in flight yields appErrors.ErrCampaignInFlight.
func (d *CampaignDispatcher) Dispatch(ctx context.Context, campaignID string) error {
	ok, err := d.Guard.Acquire(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("acquire send guard: %w", err)
	}
	if !ok {
		return appErrors.ErrCampaignInFlight
	}

	if err := d.Campaigns.UpdateStatus(ctx, campaignID, model.CampaignSending); err != nil {
		d.release(campaignID)
		return err
	}

	if err := d.Queue.Publish(TopicCampaignSends, SendJob{CampaignID: campaignID}); err != nil {
		d.release(campaignID)
		if markErr := d.Campaigns.MarkFailed(context.WithoutCancel(ctx), campaignID); markErr != nil {
			d.Log.Error().Err(markErr).Str("campaign_id", campaignID).Msg("❌ Failed to mark campaign failed")
		}
		return fmt.Errorf("enqueue campaign %s: %w", campaignID, err)
	}

	d.Log.Info().Str("campaign_id", campaignID).Msg("📬 Campaign queued for sending")
	return nil
}

func (d *CampaignDispatcher) release(campaignID string) {
	if err := d.Guard.Release(context.Background(), campaignID); err != nil {
		d.Log.Error().Err(err).Str("campaign_id", campaignID).Msg("⚠️ Failed to release send guard")
	}
}

// Sender runs one campaign send to completion.
type Sender interface {
	Send(ctx context.Context, c *model.Campaign) (*service.SendReport, error)
}

const resultsBuffer = 16

// CampaignSendSubscriber consumes TopicCampaignSends. It owns the terminal
// state of each campaign it receives and frees the guard afterwards.
type CampaignSendSubscriber struct {
	Queue     Queue
	Guard     InFlightGuard
	Campaigns repository.CampaignRepositoryInterface
	Sender    Sender
	Events    events.Publisher
	Log       zerolog.Logger

	ctx     context.Context
	results chan service.SendReport
}

func NewCampaignSendSubscriber(q Queue, guard InFlightGuard, campaigns repository.CampaignRepositoryInterface,
	sender Sender, pub events.Publisher, log zerolog.Logger) *CampaignSendSubscriber {
	return &CampaignSendSubscriber{
		Queue:     q,
		Guard:     guard,
		Campaigns: campaigns,
		Sender:    sender,
		Events:    pub,
		Log:       log,
		results:   make(chan service.SendReport, resultsBuffer),
	}
}

// Start subscribes to the send topic. ctx bounds every send it runs.
func (s *CampaignSendSubscriber) Start(ctx context.Context) error {
	s.ctx = ctx
	if err := s.Queue.Subscribe(TopicCampaignSends, s.handle); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicCampaignSends, err)
	}
	s.Log.Info().Str("topic", TopicCampaignSends).Msg("👂 Campaign send subscriber started")
	return nil
}

// Results yields one report per finished send. Reports are dropped when
// nobody reads them.
func (s *CampaignSendSubscriber) Results() <-chan service.SendReport {
	return s.results
}

func (s *CampaignSendSubscriber) handle(payload any) error {
	job, err := DecodeJob(payload)
	if err != nil {
		s.Log.Warn().Err(err).Msg("⚠️ Invalid campaign send job")
		return nil
	}

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	s.Log.Info().Str("campaign_id", job.CampaignID).Msg("📩 Processing campaign send")
	report := s.run(ctx, job.CampaignID)

	if err := s.Guard.Release(context.WithoutCancel(ctx), job.CampaignID); err != nil {
		s.Log.Error().Err(err).Str("campaign_id", job.CampaignID).Msg("⚠️ Failed to release send guard")
	}

	if report != nil {
		s.publish(ctx, *report)
	}
	return nil
}

func (s *CampaignSendSubscriber) run(ctx context.Context, campaignID string) *service.SendReport {
	c, err := s.Campaigns.GetByID(ctx, campaignID)
	if err != nil {
		if appErrors.IsNotFound(err) {
			s.Log.Warn().Str("campaign_id", campaignID).Msg("⚠️ Campaign not found, dropping send")
			return nil
		}
		now := time.Now()
		if markErr := s.Campaigns.MarkFailed(context.WithoutCancel(ctx), campaignID); markErr != nil {
			s.Log.Error().Err(markErr).Str("campaign_id", campaignID).Msg("❌ Failed to mark campaign failed")
		}
		return &service.SendReport{
			CampaignID:       campaignID,
			Status:           model.CampaignFailed,
			FailedRecipients: []string{},
			StartedAt:        now,
			FinishedAt:       now,
			Error:            err.Error(),
		}
	}

	report, err := s.Sender.Send(ctx, c)
	if err != nil {
		s.Log.Error().Err(err).Str("campaign_id", campaignID).Msg("❌ Campaign send error")
	}
	return report
}

func (s *CampaignSendSubscriber) publish(ctx context.Context, report service.SendReport) {
	select {
	case s.results <- report:
	default:
		s.Log.Debug().Str("campaign_id", report.CampaignID).Msg("Send report dropped, no reader")
	}

	if s.Events == nil {
		return
	}
	eventType := events.CampaignSent
	if report.Status != model.CampaignSent {
		eventType = events.CampaignFailed
	}
	if err := s.Events.Publish(context.WithoutCancel(ctx), eventType, report.CampaignID, report); err != nil {
		s.Log.Warn().Err(err).Str("campaign_id", report.CampaignID).Msg("⚠️ Failed to publish campaign event")
	}
}
