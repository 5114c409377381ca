// internal/service/campaign_service.go
package service

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
	"github.com/unclebandit/wealthyelephant-backend/internal/validation"
)

// CampaignDispatcher hands a campaign to the background sender.
type CampaignDispatcher interface {
	Dispatch(ctx context.Context, campaignID string) error
}

// SendTracker reports whether a send currently holds a campaign.
type SendTracker interface {
	Held(ctx context.Context, campaignID string) (bool, error)
}

// TestSender delivers an untracked preview.
type TestSender interface {
	SendTest(ctx context.Context, c *model.Campaign, email string) error
}

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	Dispatcher   CampaignDispatcher
	// InFlight decides whether a campaign in sending status is really being
	// sent. Without it every sending campaign counts as in flight.
	InFlight  SendTracker
	Tester    TestSender
	Validator *validation.Validator
	Now       func() time.Time
	Log       zerolog.Logger
}

// Result struct for SendCampaign
type SendCampaignResult struct {
	CampaignID    string     `json:"campaignId"`
	Status        string     `json:"status"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
}

func (s *CampaignService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ensureIdle rejects changes while a send holds c. A sending status with no
// live hold is left over from a send whose process died.
func (s *CampaignService) ensureIdle(ctx context.Context, c *model.Campaign) error {
	if c.Status != model.CampaignSending {
		return nil
	}
	if s.InFlight == nil {
		return appErrors.ErrCampaignInFlight
	}

	held, err := s.InFlight.Held(ctx, c.ID)
	if err != nil {
		return err
	}
	if held {
		return appErrors.ErrCampaignInFlight
	}
	s.Log.Warn().Str("campaign_id", c.ID).Msg("⚠️ Campaign left in sending with no active send")
	return nil
}

func (s *CampaignService) CreateCampaign(ctx context.Context, req *model.CampaignRequest) (*model.Campaign, error) {
	if err := s.Validator.Validate(req); err != nil {
		return nil, err
	}

	c := &model.Campaign{}
	req.ToCampaign(c)
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.Log.Info().Str("campaign_id", c.ID).Msg("🆕 Campaign created")
	return c, nil
}

// UpdateCampaign replaces the editable fields. Counters and send dates are kept.
func (s *CampaignService) UpdateCampaign(ctx context.Context, id string, req *model.CampaignRequest) (*model.Campaign, error) {
	if err := s.Validator.Validate(req); err != nil {
		return nil, err
	}

	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureIdle(ctx, c); err != nil {
		return nil, err
	}

	req.ToCampaign(c)
	if err := s.CampaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CampaignService) DeleteCampaign(ctx context.Context, id string) error {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureIdle(ctx, c); err != nil {
		return err
	}
	return s.CampaignRepo.Delete(ctx, id)
}

func (s *CampaignService) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(ctx, id)
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, q repository.ListQuery) ([]model.CampaignSummary, int, repository.ListQuery, error) {
	q = q.Normalize(repository.DefaultLimit)

	rows, total, err := s.CampaignRepo.List(ctx, q)
	if err != nil {
		return nil, 0, q, err
	}

	out := make([]model.CampaignSummary, 0, len(rows))
	for _, c := range rows {
		out = append(out, c.Summary())
	}
	return out, total, q, nil
}

// DuplicateCampaign copies subject and content into a new draft.
func (s *CampaignService) DuplicateCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	src, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	blocks := make([]model.ContentBlock, len(src.Content.Blocks))
	copy(blocks, src.Content.Blocks)

	c := &model.Campaign{
		Subject:     "Copy of " + src.Subject,
		PreviewText: src.PreviewText,
		FromName:    src.FromName,
		Content:     model.CampaignContent{Blocks: blocks},
		Status:      model.CampaignDraft,
	}
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CampaignService) SendTest(ctx context.Context, id string, req *model.TestSendRequest) error {
	if req.Email == "" {
		return appErrors.NewAppError("Email address is required", http.StatusBadRequest)
	}
	if err := s.Validator.Validate(req); err != nil {
		return err
	}

	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.Tester.SendTest(ctx, c, req.Email)
}

// SendCampaign schedules the campaign or hands it to the background sender.
// A send that is already running yields ErrCampaignInFlight. A campaign stuck
// in sending after a crash can be sent again.
func (s *CampaignService) SendCampaign(ctx context.Context, id string, req *model.SendCampaignRequest) (*SendCampaignResult, error) {
	if err := s.Validator.Validate(req); err != nil {
		return nil, err
	}

	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureIdle(ctx, c); err != nil {
		return nil, err
	}

	if req.SendType == model.SendTypeScheduled {
		at := req.ScheduledDate.UTC()
		if !at.After(s.now()) {
			return nil, appErrors.NewAppError("Scheduled date must be in the future", http.StatusBadRequest)
		}
		if err := s.CampaignRepo.Schedule(ctx, id, at); err != nil {
			return nil, err
		}
		s.Log.Info().Str("campaign_id", id).Time("scheduled_date", at).Msg("🗓️ Campaign scheduled")
		return &SendCampaignResult{CampaignID: id, Status: model.CampaignScheduled, ScheduledDate: &at}, nil
	}

	if err := s.Dispatcher.Dispatch(ctx, id); err != nil {
		return nil, err
	}
	return &SendCampaignResult{CampaignID: id, Status: model.CampaignSending}, nil
}

func (s *CampaignService) Analytics(ctx context.Context, id string) (*model.CampaignAnalytics, error) {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	links, err := s.CampaignRepo.TopLinks(ctx, id, repository.TopLinksLimit)
	if err != nil {
		return nil, err
	}
	if links == nil {
		links = []model.LinkStat{}
	}

	return &model.CampaignAnalytics{
		Subject:      c.Subject,
		SentDate:     c.SentDate,
		TotalSent:    c.TotalSent,
		OpenRate:     c.OpenRate(),
		ClickRate:    c.ClickRate(),
		Unsubscribes: c.Unsubscribes,
		TopLinks:     links,
	}, nil
}

// DispatchDue hands every scheduled campaign whose date has passed to the
// sender. It returns how many were dispatched.
func (s *CampaignService) DispatchDue(ctx context.Context) (int, error) {
	due, err := s.CampaignRepo.ListDue(ctx, s.now())
	if err != nil {
		return 0, err
	}

	n := 0
	for _, c := range due {
		if err := s.Dispatcher.Dispatch(ctx, c.ID); err != nil {
			s.Log.Warn().Err(err).Str("campaign_id", c.ID).Msg("⚠️ Failed to dispatch scheduled campaign")
			continue
		}
		n++
	}
	return n, nil
}
