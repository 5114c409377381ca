// internal/service/sender.go
package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/metrics"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/notify"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
)

const (
	DefaultChunkSize    = 50
	DefaultChunkDelay   = time.Second
	DefaultSendTimeout  = 10 * time.Second
	DefaultCampaignFrom = "noreply@wealthyelephant.com"
)

// SendReport is the outcome of one campaign send.
type SendReport struct {
	CampaignID       string    `json:"campaignId"`
	Status           string    `json:"status"`
	Total            int       `json:"total"`
	SuccessCount     int       `json:"successCount"`
	FailCount        int       `json:"failCount"`
	FailedRecipients []string  `json:"failedRecipients"`
	StartedAt        time.Time `json:"startedAt"`
	FinishedAt       time.Time `json:"finishedAt"`
	Error            string    `json:"error,omitempty"`
}

// BatchSender delivers a campaign to every active subscriber in chunks.
type BatchSender struct {
	Campaigns   repository.CampaignRepositoryInterface
	Subscribers repository.SubscriberRepositoryInterface
	Mailer      notify.Mailer
	Renderer    CampaignRenderer
	FromAddress string
	ChunkSize   int
	ChunkDelay  time.Duration
	SendTimeout time.Duration
	// Throttle paces individual deliveries when the provider caps the send
	// rate. Nil sends as fast as the chunks allow.
	Throttle *rate.Limiter
	Metrics  *metrics.Metrics
	Log      zerolog.Logger
}

func (s *BatchSender) from(c *model.Campaign) string {
	addr := s.FromAddress
	if addr == "" {
		addr = DefaultCampaignFrom
	}
	return fmt.Sprintf("%s <%s>", c.FromName, addr)
}

// Send delivers c and records the terminal status. A campaign with no
// successful delivery ends up failed.
func (s *BatchSender) Send(ctx context.Context, c *model.Campaign) (*SendReport, error) {
	report := &SendReport{CampaignID: c.ID, StartedAt: time.Now(), FailedRecipients: []string{}}
	log := s.Log.With().Str("campaign_id", c.ID).Logger()

	subs, err := s.Subscribers.ListActive(ctx)
	if err != nil {
		return s.fail(ctx, report, err)
	}
	if len(subs) == 0 {
		return s.fail(ctx, report, appErrors.ErrNoActiveSubscribers)
	}
	report.Total = len(subs)

	size := s.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}

	log.Info().Int("recipients", len(subs)).Int("chunk_size", size).Msg("📨 Sending campaign")

	for start := 0; start < len(subs); start += size {
		end := min(start+size, len(subs))
		s.sendChunk(ctx, c, subs[start:end], report)

		if end < len(subs) {
			if err := sleep(ctx, s.ChunkDelay); err != nil {
				return s.fail(ctx, report, err)
			}
		}
	}

	sort.Strings(report.FailedRecipients)

	if report.SuccessCount == 0 {
		return s.fail(ctx, report, nil)
	}

	now := time.Now()
	if err := s.Campaigns.MarkSent(context.WithoutCancel(ctx), c.ID, report.SuccessCount, now); err != nil {
		return s.fail(ctx, report, err)
	}

	report.Status = model.CampaignSent
	report.FinishedAt = now
	s.observe(report)
	log.Info().Int("success", report.SuccessCount).Int("failed", report.FailCount).Msg("✅ Campaign sent")
	return report, nil
}

// sendChunk sends to every subscriber in chunk concurrently and waits for all.
func (s *BatchSender) sendChunk(ctx context.Context, c *model.Campaign, chunk []*model.Subscriber, report *SendReport) {
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, sub := range chunk {
		g.Go(func() error {
			err := s.deliver(ctx, c, sub)
			if s.Metrics != nil {
				s.Metrics.RecordEmail(err)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.Log.Warn().Err(err).Str("email", sub.Email).Msg("⚠️ Failed to send campaign email")
				report.FailCount++
				report.FailedRecipients = append(report.FailedRecipients, sub.Email)
				return nil
			}
			report.SuccessCount++
			return nil
		})
	}
	_ = g.Wait()
}

func (s *BatchSender) deliver(ctx context.Context, c *model.Campaign, sub *model.Subscriber) error {
	timeout := s.SendTimeout
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := s.Renderer.Render(c, sub.ID)
	if err != nil {
		return err
	}
	if s.Throttle != nil {
		if err := s.Throttle.Wait(ctx); err != nil {
			return fmt.Errorf("send rate: %w", err)
		}
	}
	return s.Mailer.Send(ctx, notify.Message{
		From:    s.from(c),
		To:      sub.Email,
		Subject: c.Subject,
		HTML:    body,
	})
}

// fail marks the campaign failed and returns cause. A nil cause means the
// send ran but nothing was delivered.
func (s *BatchSender) fail(ctx context.Context, report *SendReport, cause error) (*SendReport, error) {
	report.Status = model.CampaignFailed
	report.FinishedAt = time.Now()
	if cause != nil {
		report.Error = cause.Error()
	}

	if err := s.Campaigns.MarkFailed(context.WithoutCancel(ctx), report.CampaignID); err != nil {
		s.Log.Error().Err(err).Str("campaign_id", report.CampaignID).Msg("❌ Failed to mark campaign failed")
	}
	s.observe(report)
	s.Log.Error().Str("campaign_id", report.CampaignID).Int("success", report.SuccessCount).
		Int("failed", report.FailCount).Str("error", report.Error).Msg("❌ Campaign failed")
	return report, cause
}

func (s *BatchSender) observe(report *SendReport) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.CampaignsCompleted.WithLabelValues(report.Status).Inc()
	s.Metrics.CampaignSendSeconds.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
}

// SendTest sends an untracked preview to one address.
func (s *BatchSender) SendTest(ctx context.Context, c *model.Campaign, email string) error {
	timeout := s.SendTimeout
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := s.Renderer.RenderTest(c)
	if err != nil {
		return err
	}
	return s.Mailer.Send(ctx, notify.Message{
		From:    s.from(c),
		To:      email,
		Subject: "[TEST] " + c.Subject,
		HTML:    body,
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
