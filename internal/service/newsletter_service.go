// internal/service/newsletter_service.go
package service

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/events"
	"github.com/unclebandit/wealthyelephant-backend/internal/metrics"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
	"github.com/unclebandit/wealthyelephant-backend/internal/validation"
)

// Subscription outcomes, also used as metric labels.
const (
	SubscriptionCreated     = "created"
	SubscriptionReactivated = "reactivated"
	SubscriptionDuplicate   = "duplicate"
)

type SubscribeResult struct {
	Subscriber *model.Subscriber
	Outcome    string
}

// NewsletterService covers signup, unsubscribe, tracking and the admin
// subscriber views.
type NewsletterService struct {
	Subscribers repository.SubscriberRepositoryInterface
	Campaigns   repository.CampaignRepositoryInterface
	Validator   *validation.Validator
	Notifier    Notifier
	Events      events.Publisher
	Metrics     *metrics.Metrics
	Log         zerolog.Logger
}

func (s *NewsletterService) count(outcome string) {
	if s.Metrics != nil {
		s.Metrics.SubscriptionsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *NewsletterService) emit(ctx context.Context, eventType string, sub *model.Subscriber) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(context.WithoutCancel(ctx), eventType, sub.ID, sub.View()); err != nil {
		s.Log.Warn().Err(err).Str("type", eventType).Msg("⚠️ Failed to publish subscriber event")
	}
}

// Subscribe creates a subscriber, or reactivates the same row when the
// address unsubscribed earlier. An active address is rejected with 400.
func (s *NewsletterService) Subscribe(ctx context.Context, req *model.NewsletterRequest) (*SubscribeResult, error) {
	if err := s.Validator.Validate(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(req.Email)

	existing, err := s.Subscribers.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	var (
		sub     *model.Subscriber
		outcome string
	)
	switch {
	case existing != nil && existing.IsActive:
		s.count(SubscriptionDuplicate)
		return nil, appErrors.NewAppError("Email already subscribed", http.StatusBadRequest)
	case existing != nil:
		if sub, err = s.Subscribers.Reactivate(ctx, email, req.Name); err != nil {
			return nil, err
		}
		outcome = SubscriptionReactivated
	default:
		sub = &model.Subscriber{Email: email, Name: req.Name}
		if err := s.Subscribers.Create(ctx, sub); err != nil {
			return nil, err
		}
		outcome = SubscriptionCreated
	}

	s.count(outcome)
	s.Log.Info().Str("subscriber_id", sub.ID).Str("outcome", outcome).Msg("📰 Newsletter signup")
	s.emit(ctx, events.SubscriberJoined, sub)

	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	s.Notifier.NewsletterWelcome(ctx, email, name)

	return &SubscribeResult{Subscriber: sub, Outcome: outcome}, nil
}

// Unsubscribe deactivates the subscriber. A campaign id credits the
// unsubscribe to that campaign when the subscriber was still active.
func (s *NewsletterService) Unsubscribe(ctx context.Context, subscriberID, campaignID string) (*model.Subscriber, error) {
	if subscriberID == "" {
		return nil, appErrors.NewAppError("Subscriber ID is required", http.StatusBadRequest)
	}

	sub, err := s.Subscribers.FindByID(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	wasActive := sub.IsActive

	if err := s.Subscribers.Deactivate(ctx, sub.ID); err != nil {
		return nil, err
	}
	sub.IsActive = false

	if wasActive {
		s.emit(ctx, events.SubscriberLeft, sub)
		if campaignID != "" {
			if err := s.Campaigns.IncrementUnsubscribes(ctx, campaignID); err != nil {
				s.Log.Warn().Err(err).Str("campaign_id", campaignID).Msg("⚠️ Failed to count unsubscribe")
			}
		}
	}

	s.Log.Info().Str("subscriber_id", sub.ID).Msg("👋 Subscriber unsubscribed")
	return sub, nil
}

// TrackOpen records the first open of a campaign by a subscriber. Repeats
// are ignored.
func (s *NewsletterService) TrackOpen(ctx context.Context, subscriberID, campaignID string) error {
	if subscriberID == "" || campaignID == "" {
		return nil
	}
	_, err := s.Campaigns.RecordOpen(ctx, subscriberID, campaignID)
	return err
}

// TrackClick validates the redirect target and records the click. Recording
// errors are logged; the redirect target is returned regardless.
func (s *NewsletterService) TrackClick(ctx context.Context, subscriberID, campaignID, target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", appErrors.NewAppError("Invalid URL", http.StatusBadRequest)
	}

	if subscriberID != "" && campaignID != "" {
		if err := s.Campaigns.RecordClick(ctx, subscriberID, campaignID, target); err != nil {
			s.Log.Warn().Err(err).Str("campaign_id", campaignID).Msg("⚠️ Failed to record click")
		}
	}
	return u.String(), nil
}

func (s *NewsletterService) Stats(ctx context.Context) (*model.NewsletterStats, error) {
	active := true
	inactive := false

	total, err := s.Subscribers.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	activeCount, err := s.Subscribers.Count(ctx, &active)
	if err != nil {
		return nil, err
	}
	unsubscribed, err := s.Subscribers.Count(ctx, &inactive)
	if err != nil {
		return nil, err
	}

	stats := &model.NewsletterStats{
		TotalSubscribers:  total,
		ActiveSubscribers: activeCount,
		Unsubscribed:      unsubscribed,
	}

	last, err := s.Campaigns.LastSent(ctx)
	if err != nil {
		return nil, err
	}
	if last != nil {
		stats.LastCampaign = &model.LastCampaign{
			ID:        last.ID,
			Subject:   last.Subject,
			SentDate:  last.SentDate,
			OpenRate:  last.OpenRate(),
			ClickRate: last.ClickRate(),
			TotalSent: last.TotalSent,
		}
	}
	return stats, nil
}

func (s *NewsletterService) ListSubscribers(ctx context.Context, q repository.ListQuery) ([]model.SubscriberView, int, repository.ListQuery, error) {
	q = q.Normalize(repository.DefaultSubscriberLimit)
	if q.Status != repository.SubscriberActive && q.Status != repository.SubscriberInactive {
		q.Status = ""
	}

	subs, total, err := s.Subscribers.List(ctx, q)
	if err != nil {
		return nil, 0, q, err
	}
	return views(subs), total, q, nil
}

func (s *NewsletterService) Search(ctx context.Context, term string) ([]model.SubscriberView, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, appErrors.NewAppError("Search query is required", http.StatusBadRequest)
	}

	subs, err := s.Subscribers.Search(ctx, term, repository.SearchLimit)
	if err != nil {
		return nil, err
	}
	return views(subs), nil
}

// ActiveSubscribers feeds the export endpoints.
func (s *NewsletterService) ActiveSubscribers(ctx context.Context) ([]*model.Subscriber, error) {
	return s.Subscribers.ListActive(ctx)
}

func views(subs []*model.Subscriber) []model.SubscriberView {
	out := make([]model.SubscriberView, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.View())
	}
	return out
}
