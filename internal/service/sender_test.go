package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/metrics"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
)

func draftCampaign(id string) *model.Campaign {
	return &model.Campaign{
		ID:       id,
		Subject:  "Monthly update",
		FromName: "Wealthy Elephant",
		Status:   model.CampaignSending,
		Content: model.CampaignContent{Blocks: []model.ContentBlock{
			{Type: model.BlockText, Content: "<p>Hi</p>"},
		}},
	}
}

func newTestSender(campaigns *mockCampaignRepo, subs *mockSubscriberRepo, mailer *mockMailer) *BatchSender {
	return &BatchSender{
		Campaigns:   campaigns,
		Subscribers: subs,
		Mailer:      mailer,
		Renderer:    testRenderer(),
		FromAddress: "news@wealthyelephant.com",
		ChunkSize:   3,
		SendTimeout: time.Second,
		Metrics:     metrics.NewNop(),
		Log:         zerolog.Nop(),
	}
}

func TestBatchSender_SendsToEveryoneInChunks(t *testing.T) {
	c := draftCampaign("camp-1")
	campaigns := newMockCampaignRepo(c)
	subs := &mockSubscriberRepo{subs: fakeSubscribers(7)}
	mailer := &mockMailer{delay: 5 * time.Millisecond}

	s := newTestSender(campaigns, subs, mailer)
	s.ChunkDelay = 20 * time.Millisecond

	start := time.Now()
	report, err := s.Send(context.Background(), c)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, model.CampaignSent, report.Status)
	assert.Equal(t, 7, report.Total)
	assert.Equal(t, 7, report.SuccessCount)
	assert.Zero(t, report.FailCount)
	assert.Empty(t, report.FailedRecipients)

	assert.LessOrEqual(t, mailer.maxInFlight, 3)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond, "two pauses between three chunks")

	assert.Equal(t, 7, campaigns.sentTotal)
	assert.Equal(t, model.CampaignSent, campaigns.campaigns["camp-1"].Status)
	assert.NotNil(t, campaigns.campaigns["camp-1"].SentDate)

	msgs := mailer.messages()
	require.Len(t, msgs, 7)
	assert.Equal(t, "Wealthy Elephant <news@wealthyelephant.com>", msgs[0].From)
	assert.Equal(t, "Monthly update", msgs[0].Subject)
	assert.Contains(t, msgs[0].HTML, "track/open/")

	assert.Equal(t, 7.0, testutil.ToFloat64(s.Metrics.EmailsSent.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.CampaignsCompleted.WithLabelValues(model.CampaignSent)))
}

func TestBatchSender_NoPauseAfterLastChunk(t *testing.T) {
	c := draftCampaign("camp-1")
	s := newTestSender(newMockCampaignRepo(c), &mockSubscriberRepo{subs: fakeSubscribers(3)}, &mockMailer{})
	s.ChunkDelay = 500 * time.Millisecond

	start := time.Now()
	_, err := s.Send(context.Background(), c)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestBatchSender_PartialFailureStillSent(t *testing.T) {
	c := draftCampaign("camp-1")
	campaigns := newMockCampaignRepo(c)
	all := fakeSubscribers(5)
	mailer := &mockMailer{fail: map[string]bool{all[1].Email: true, all[3].Email: true}}

	report, err := newTestSender(campaigns, &mockSubscriberRepo{subs: all}, mailer).Send(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, model.CampaignSent, report.Status)
	assert.Equal(t, 3, report.SuccessCount)
	assert.Equal(t, 2, report.FailCount)
	assert.Equal(t, []string{all[1].Email, all[3].Email}, report.FailedRecipients)
	assert.Equal(t, 3, campaigns.sentTotal, "total_sent counts successes only")
}

func TestBatchSender_AllFailuresMarkFailed(t *testing.T) {
	c := draftCampaign("camp-1")
	campaigns := newMockCampaignRepo(c)

	report, err := newTestSender(campaigns, &mockSubscriberRepo{subs: fakeSubscribers(4)}, &mockMailer{failAll: true}).
		Send(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, model.CampaignFailed, report.Status)
	assert.Equal(t, 4, report.FailCount)
	assert.Equal(t, model.CampaignFailed, campaigns.campaigns["camp-1"].Status)
	assert.Zero(t, campaigns.sentTotal)
}

func TestBatchSender_NoActiveSubscribers(t *testing.T) {
	c := draftCampaign("camp-1")
	campaigns := newMockCampaignRepo(c)
	mailer := &mockMailer{}

	report, err := newTestSender(campaigns, &mockSubscriberRepo{}, mailer).Send(context.Background(), c)
	assert.ErrorIs(t, err, appErrors.ErrNoActiveSubscribers)
	assert.Equal(t, model.CampaignFailed, report.Status)
	assert.Equal(t, model.CampaignFailed, campaigns.campaigns["camp-1"].Status)
	assert.Empty(t, mailer.messages())
}

func TestBatchSender_ListErrorMarksFailed(t *testing.T) {
	c := draftCampaign("camp-1")
	campaigns := newMockCampaignRepo(c)
	boom := errors.New("db down")

	_, err := newTestSender(campaigns, &mockSubscriberRepo{listErr: boom}, &mockMailer{}).Send(context.Background(), c)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, model.CampaignFailed, campaigns.campaigns["camp-1"].Status)
}

func TestBatchSender_CancelledBetweenChunks(t *testing.T) {
	c := draftCampaign("camp-1")
	campaigns := newMockCampaignRepo(c)
	s := newTestSender(campaigns, &mockSubscriberRepo{subs: fakeSubscribers(6)}, &mockMailer{})
	s.ChunkDelay = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	report, err := s.Send(ctx, c)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 3, report.SuccessCount)
	assert.Equal(t, model.CampaignFailed, campaigns.campaigns["camp-1"].Status)
}

func TestBatchSender_SendTest(t *testing.T) {
	mailer := &mockMailer{}
	s := newTestSender(newMockCampaignRepo(), &mockSubscriberRepo{}, mailer)

	require.NoError(t, s.SendTest(context.Background(), draftCampaign("camp-1"), "preview@example.com"))

	msgs := mailer.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "[TEST] Monthly update", msgs[0].Subject)
	assert.Equal(t, "preview@example.com", msgs[0].To)
	assert.NotContains(t, msgs[0].HTML, "track/open")
}

func TestBatchSender_ThrottleCapsDeliveries(t *testing.T) {
	c := draftCampaign("camp-1")
	campaigns := newMockCampaignRepo(c)
	subs := &mockSubscriberRepo{subs: fakeSubscribers(3)}
	mailer := &mockMailer{}

	s := newTestSender(campaigns, subs, mailer)
	// two tokens now, the next one an hour away, well past the send timeout
	s.Throttle = rate.NewLimiter(rate.Every(time.Hour), 2)

	report, err := s.Send(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 1, report.FailCount)
	assert.Len(t, mailer.messages(), 2)
}
