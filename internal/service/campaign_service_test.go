package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
	"github.com/unclebandit/wealthyelephant-backend/internal/validation"
)

var fixedNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func newTestCampaignService(repo *mockCampaignRepo) (*CampaignService, *fakeDispatcher, *mockMailer) {
	d := &fakeDispatcher{}
	mailer := &mockMailer{}
	sender := newTestSender(repo, &mockSubscriberRepo{}, mailer)
	return &CampaignService{
		CampaignRepo: repo,
		Dispatcher:   d,
		Tester:       sender,
		Validator:    validation.New(),
		Now:          func() time.Time { return fixedNow },
		Log:          zerolog.Nop(),
	}, d, mailer
}

func campaignRequest() *model.CampaignRequest {
	return &model.CampaignRequest{
		Subject: "  October update ",
		Content: &model.CampaignContentRequest{Blocks: []model.CampaignBlockRequest{
			{Type: model.BlockText, Content: "<p>Hello</p>"},
			{Type: model.BlockButton, Link: "https://example.com", Text: "Read more", Style: "primary"},
		}},
	}
}

func TestCreateCampaign_AppliesDefaults(t *testing.T) {
	svc, _, _ := newTestCampaignService(newMockCampaignRepo())

	c, err := svc.CreateCampaign(context.Background(), campaignRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "October update", c.Subject)
	assert.Equal(t, model.DefaultFromName, c.FromName)
	assert.Equal(t, model.CampaignDraft, c.Status)
	assert.Len(t, c.Content.Blocks, 2)
}

func TestCreateCampaign_ValidationFails(t *testing.T) {
	svc, _, _ := newTestCampaignService(newMockCampaignRepo())

	req := campaignRequest()
	req.Subject = ""
	req.Content.Blocks = append(req.Content.Blocks, model.CampaignBlockRequest{Type: model.BlockImage})

	_, err := svc.CreateCampaign(context.Background(), req)
	var verr *appErrors.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := map[string]bool{}
	for _, fe := range verr.Errors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["subject"])
	assert.True(t, fields["content.blocks[2].url"])
}

func TestUpdateCampaign_RejectsWhileSending(t *testing.T) {
	repo := newMockCampaignRepo(&model.Campaign{ID: "c1", Subject: "Old", Status: model.CampaignSending})
	svc, _, _ := newTestCampaignService(repo)
	svc.InFlight = fakeTracker{held: map[string]bool{"c1": true}}

	_, err := svc.UpdateCampaign(context.Background(), "c1", campaignRequest())
	assert.ErrorIs(t, err, appErrors.ErrCampaignInFlight)

	err = svc.DeleteCampaign(context.Background(), "c1")
	assert.ErrorIs(t, err, appErrors.ErrCampaignInFlight)
}

func TestUpdateCampaign_StaleSendingIsEditable(t *testing.T) {
	repo := newMockCampaignRepo(&model.Campaign{ID: "c1", Subject: "Old", Status: model.CampaignSending})
	svc, _, _ := newTestCampaignService(repo)
	svc.InFlight = fakeTracker{}

	c, err := svc.UpdateCampaign(context.Background(), "c1", campaignRequest())
	require.NoError(t, err)
	assert.Equal(t, "October update", c.Subject)

	require.NoError(t, svc.DeleteCampaign(context.Background(), "c1"))
	_, err = svc.GetCampaign(context.Background(), "c1")
	assert.Error(t, err)
}

func TestUpdateCampaign_TrackerError(t *testing.T) {
	repo := newMockCampaignRepo(&model.Campaign{ID: "c1", Status: model.CampaignSending})
	svc, _, _ := newTestCampaignService(repo)
	svc.InFlight = fakeTracker{err: errors.New("redis down")}

	err := svc.DeleteCampaign(context.Background(), "c1")
	assert.EqualError(t, err, "redis down")
}

func TestUpdateAndDeleteCampaign(t *testing.T) {
	repo := newMockCampaignRepo(&model.Campaign{ID: "c1", Subject: "Old", Status: model.CampaignDraft, TotalSent: 4})
	svc, _, _ := newTestCampaignService(repo)

	c, err := svc.UpdateCampaign(context.Background(), "c1", campaignRequest())
	require.NoError(t, err)
	assert.Equal(t, "October update", c.Subject)
	assert.Equal(t, 4, c.TotalSent, "counters survive an edit")

	require.NoError(t, svc.DeleteCampaign(context.Background(), "c1"))
	_, err = svc.GetCampaign(context.Background(), "c1")
	assert.True(t, appErrors.IsNotFound(err))
}

func TestDuplicateCampaign(t *testing.T) {
	src := &model.Campaign{
		ID: "c1", Subject: "Launch", FromName: "Kaizen Kora", Status: model.CampaignSent, TotalSent: 10,
		Content: model.CampaignContent{Blocks: []model.ContentBlock{{Type: model.BlockText, Content: "x"}}},
	}
	repo := newMockCampaignRepo(src)
	svc, _, _ := newTestCampaignService(repo)

	dup, err := svc.DuplicateCampaign(context.Background(), "c1")
	require.NoError(t, err)

	assert.NotEqual(t, "c1", dup.ID)
	assert.Equal(t, "Copy of Launch", dup.Subject)
	assert.Equal(t, model.CampaignDraft, dup.Status)
	assert.Equal(t, "Kaizen Kora", dup.FromName)
	assert.Zero(t, dup.TotalSent)
	assert.Equal(t, src.Content.Blocks, dup.Content.Blocks)
}

func TestListCampaigns_NormalizesPaging(t *testing.T) {
	repo := newMockCampaignRepo(
		&model.Campaign{ID: "c1", Status: model.CampaignSent, TotalSent: 200, TotalOpens: 51, TotalClicks: 7},
	)
	svc, _, _ := newTestCampaignService(repo)

	rows, total, q, err := svc.ListCampaigns(context.Background(), repository.ListQuery{Page: 0, Limit: 500})
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, repository.MaxLimit, q.Limit)
	require.Len(t, rows, 1)
	assert.Equal(t, 25.5, rows[0].OpenRate)
	assert.Equal(t, 3.5, rows[0].ClickRate)
}

func TestSendCampaign_Now(t *testing.T) {
	repo := newMockCampaignRepo(&model.Campaign{ID: "c1", Status: model.CampaignDraft})
	svc, d, _ := newTestCampaignService(repo)

	res, err := svc.SendCampaign(context.Background(), "c1", &model.SendCampaignRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.CampaignSending, res.Status)
	assert.Equal(t, []string{"c1"}, d.dispatched)
}

func TestSendCampaign_PropagatesInFlight(t *testing.T) {
	repo := newMockCampaignRepo(&model.Campaign{ID: "c1", Status: model.CampaignDraft})
	svc, d, _ := newTestCampaignService(repo)
	d.err = appErrors.ErrCampaignInFlight

	_, err := svc.SendCampaign(context.Background(), "c1", &model.SendCampaignRequest{SendType: "now"})
	assert.Equal(t, http.StatusConflict, appErrors.StatusOf(err))
}

func TestSendCampaign_AlreadySending(t *testing.T) {
	repo := newMockCampaignRepo(&model.Campaign{ID: "c1", Status: model.CampaignSending})
	svc, d, _ := newTestCampaignService(repo)
	svc.InFlight = fakeTracker{held: map[string]bool{"c1": true}}

	_, err := svc.SendCampaign(context.Background(), "c1", &model.SendCampaignRequest{})
	assert.ErrorIs(t, err, appErrors.ErrCampaignInFlight)
	assert.Empty(t, d.dispatched)
}

func TestSendCampaign_ResendsAfterCrashedSend(t *testing.T) {
	// status still says sending but no send holds the guard
	repo := newMockCampaignRepo(&model.Campaign{ID: "c1", Status: model.CampaignSending})
	svc, d, _ := newTestCampaignService(repo)
	svc.InFlight = fakeTracker{}

	res, err := svc.SendCampaign(context.Background(), "c1", &model.SendCampaignRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.CampaignSending, res.Status)
	assert.Equal(t, []string{"c1"}, d.dispatched)
}

func TestSendCampaign_SendingWithoutTrackerIsInFlight(t *testing.T) {
	repo := newMockCampaignRepo(&model.Campaign{ID: "c1", Status: model.CampaignSending})
	svc, d, _ := newTestCampaignService(repo)

	_, err := svc.SendCampaign(context.Background(), "c1", &model.SendCampaignRequest{})
	assert.ErrorIs(t, err, appErrors.ErrCampaignInFlight)
	assert.Empty(t, d.dispatched)
}

func TestSendCampaign_Scheduled(t *testing.T) {
	repo := newMockCampaignRepo(&model.Campaign{ID: "c1", Status: model.CampaignDraft})
	svc, d, _ := newTestCampaignService(repo)
	at := fixedNow.Add(48 * time.Hour)

	res, err := svc.SendCampaign(context.Background(), "c1", &model.SendCampaignRequest{SendType: "scheduled", ScheduledDate: &at})
	require.NoError(t, err)

	assert.Equal(t, model.CampaignScheduled, res.Status)
	assert.Equal(t, at, *res.ScheduledDate)
	assert.Equal(t, model.CampaignScheduled, repo.campaigns["c1"].Status)
	assert.Equal(t, at, *repo.campaigns["c1"].ScheduledDate)
	assert.Empty(t, d.dispatched)
}

func TestSendCampaign_ScheduledValidation(t *testing.T) {
	repo := newMockCampaignRepo(&model.Campaign{ID: "c1", Status: model.CampaignDraft})
	svc, _, _ := newTestCampaignService(repo)

	_, err := svc.SendCampaign(context.Background(), "c1", &model.SendCampaignRequest{SendType: "scheduled"})
	var verr *appErrors.ValidationError
	assert.ErrorAs(t, err, &verr, "scheduledDate is required")

	past := fixedNow.Add(-time.Hour)
	_, err = svc.SendCampaign(context.Background(), "c1", &model.SendCampaignRequest{SendType: "scheduled", ScheduledDate: &past})
	assert.EqualError(t, err, "Scheduled date must be in the future")

	_, err = svc.SendCampaign(context.Background(), "c1", &model.SendCampaignRequest{SendType: "later"})
	assert.ErrorAs(t, err, &verr)
}

func TestSendCampaign_NotFound(t *testing.T) {
	svc, _, _ := newTestCampaignService(newMockCampaignRepo())
	_, err := svc.SendCampaign(context.Background(), "missing", &model.SendCampaignRequest{})
	assert.True(t, appErrors.IsNotFound(err))
}

func TestSendTest(t *testing.T) {
	repo := newMockCampaignRepo(&model.Campaign{ID: "c1", Subject: "Preview me", FromName: "Wealthy Elephant"})
	svc, _, mailer := newTestCampaignService(repo)

	err := svc.SendTest(context.Background(), "c1", &model.TestSendRequest{})
	assert.EqualError(t, err, "Email address is required")

	require.NoError(t, svc.SendTest(context.Background(), "c1", &model.TestSendRequest{Email: "qa@example.com"}))
	msgs := mailer.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "[TEST] Preview me", msgs[0].Subject)
}

func TestAnalytics(t *testing.T) {
	sent := fixedNow.Add(-time.Hour)
	repo := newMockCampaignRepo(&model.Campaign{
		ID: "c1", Subject: "Launch", SentDate: &sent, TotalSent: 3, TotalOpens: 2, TotalClicks: 1, Unsubscribes: 1,
	})
	svc, _, _ := newTestCampaignService(repo)

	a, err := svc.Analytics(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 66.7, a.OpenRate)
	assert.Equal(t, 33.3, a.ClickRate)
	assert.Equal(t, 1, a.Unsubscribes)
	assert.NotNil(t, a.TopLinks)
	assert.Empty(t, a.TopLinks)

	repo.topLinks = []model.LinkStat{{URL: "https://example.com", Clicks: 3}}
	a, err = svc.Analytics(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, repo.topLinks, a.TopLinks)
}

func TestDispatchDue(t *testing.T) {
	repo := newMockCampaignRepo()
	repo.due = []*model.Campaign{{ID: "c1"}, {ID: "c2"}}
	svc, d, _ := newTestCampaignService(repo)

	n, err := svc.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"c1", "c2"}, d.dispatched)

	d.err = appErrors.ErrCampaignInFlight
	n, err = svc.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
