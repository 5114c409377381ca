package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/metrics"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
	"github.com/unclebandit/wealthyelephant-backend/internal/validation"
)

func newTestSubmissionService() (*SubmissionService, *mockSubmissionRepo, *mockNotifier, *recordingPublisher) {
	repo := &mockSubmissionRepo{}
	notifier := &mockNotifier{}
	pub := &recordingPublisher{}
	return &SubmissionService{
		Repo:        repo,
		Validator:   validation.New(),
		Notifier:    notifier,
		Events:      pub,
		Metrics:     metrics.NewNop(),
		PhoneRegion: "KE",
		Log:         zerolog.Nop(),
	}, repo, notifier, pub
}

func TestSubmitContact(t *testing.T) {
	svc, repo, notifier, pub := newTestSubmissionService()

	c, err := svc.SubmitContact(context.Background(), &model.ContactRequest{
		Name: " Amina ", Email: "Amina@Example.COM", InquiryType: "general", Message: "Hello there, team.",
	})
	require.NoError(t, err)

	assert.Equal(t, "contact-1", c.ID)
	assert.Equal(t, model.StatusNew, c.Status)
	assert.Equal(t, "Amina", c.Name)
	assert.Equal(t, "amina@example.com", c.Email)
	assert.Len(t, repo.created, 1)
	assert.Equal(t, []string{"contact:amina@example.com"}, notifier.calls)
	assert.Equal(t, []string{"submission.created:contact-1"}, pub.events)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.Metrics.SubmissionsTotal.WithLabelValues("contact")))
}

func TestSubmitContact_InvalidDoesNotPersist(t *testing.T) {
	svc, repo, notifier, _ := newTestSubmissionService()

	_, err := svc.SubmitContact(context.Background(), &model.ContactRequest{
		Name: "A", Email: "nope", InquiryType: "sales", Message: "short",
	})
	var verr *appErrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 4)
	assert.Empty(t, repo.created)
	assert.Empty(t, notifier.calls)
}

func TestSubmitContact_PersistErrorSkipsNotify(t *testing.T) {
	svc, repo, notifier, _ := newTestSubmissionService()
	repo.err = errors.New("db down")

	_, err := svc.SubmitContact(context.Background(), &model.ContactRequest{
		Name: "Amina", Email: "amina@example.com", InquiryType: "general", Message: "Hello there, team.",
	})
	assert.EqualError(t, err, "db down")
	assert.Empty(t, notifier.calls)
}

func TestSubmitKlinRequest_NormalizesPhone(t *testing.T) {
	svc, _, notifier, _ := newTestSubmissionService()

	r, err := svc.SubmitKlinRequest(context.Background(), &model.KlinRentalRequest{
		Name: "Brian", Email: "brian@example.com", Phone: "0712 345 678",
		PropertyType: "apartment", Location: "Kilimani", Budget: "KES 80,000",
	})
	require.NoError(t, err)

	assert.Equal(t, "+254712345678", r.Phone)
	assert.Equal(t, model.StatusPending, r.Status)
	assert.Equal(t, []string{"klin_request:brian@example.com"}, notifier.calls)
}

func TestSubmitIntelligenceCheck_DefaultsUrgency(t *testing.T) {
	svc, _, _, _ := newTestSubmissionService()

	c, err := svc.SubmitIntelligenceCheck(context.Background(), &model.KlinIntelligenceRequest{
		Name: "Chen", Email: "chen@example.com", Phone: "+254712345678",
		PropertyAddress: "12 Argwings Kodhek Rd", CheckType: "credit",
	})
	require.NoError(t, err)
	assert.Equal(t, "normal", c.Urgency)
}

func TestSubmitPartnership_EmptyWebsiteDropped(t *testing.T) {
	svc, _, notifier, _ := newTestSubmissionService()
	empty := ""

	p, err := svc.SubmitPartnership(context.Background(), &model.KlinPartnershipRequest{
		CompanyName: "Acme Realty", ContactPerson: "Esther", Email: "esther@acme.co.ke", Phone: "0712345678",
		PartnershipType: "agent", Description: "We manage forty units in Westlands.", Website: &empty,
	})
	require.NoError(t, err)
	assert.Nil(t, p.Website)
	assert.Equal(t, []string{"klin_partnership:esther@acme.co.ke"}, notifier.calls)
}

func TestSubmitKaizenAndBuildPlanner(t *testing.T) {
	svc, repo, notifier, _ := newTestSubmissionService()

	_, err := svc.SubmitKaizenProject(context.Background(), &model.KaizenProjectRequest{
		Name: "Dana", Email: "dana@example.com", Phone: "0712345678", ProjectType: "renovation",
		ProjectScope: "medium", Budget: "2M", Timeline: "6 months", Description: "Kitchen and two bathrooms redone.",
	})
	require.NoError(t, err)

	_, err = svc.SubmitBuildPlanner(context.Background(), &model.BuildPlannerRequest{
		Name: "Dana", Email: "dana@example.com", Phone: "0712345678", ProjectType: "residential",
		PropertySize: "1/8 acre", Budget: "5M", Features: "Three bedrooms and a rooftop garden",
	})
	require.NoError(t, err)

	assert.Len(t, repo.created, 2)
	assert.Equal(t, []string{"kaizen_project:dana@example.com", "build_planner:dana@example.com"}, notifier.calls)
}

func TestSubmissionList_Normalizes(t *testing.T) {
	svc, repo, _, _ := newTestSubmissionService()

	_, _, q, err := svc.List(context.Background(), model.KindContact, repository.ListQuery{Page: -1, Status: "new"})
	require.NoError(t, err)
	assert.Equal(t, repository.ListQuery{Page: 1, Limit: repository.DefaultLimit, Status: "new"}, q)
	assert.Equal(t, q, repo.lastQ)
}

func TestSubmissionUpdateStatus(t *testing.T) {
	svc, repo, _, _ := newTestSubmissionService()
	repo.rows = map[string]model.Submission{"x1": &model.ContactInquiry{SubmissionMeta: model.SubmissionMeta{ID: "x1", Status: "new"}}}
	notes := "Called back"

	row, err := svc.UpdateStatus(context.Background(), model.KindContact, "x1", &model.UpdateStatusRequest{Status: "resolved", AdminNotes: &notes})
	require.NoError(t, err)
	c := row.(*model.ContactInquiry)
	assert.Equal(t, "resolved", c.Status)
	assert.Equal(t, "Called back", *c.AdminNotes)

	_, err = svc.UpdateStatus(context.Background(), model.KindContact, "missing", &model.UpdateStatusRequest{Status: "resolved"})
	assert.True(t, appErrors.IsNotFound(err))

	_, err = svc.UpdateStatus(context.Background(), model.KindContact, "x1", &model.UpdateStatusRequest{})
	var verr *appErrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}
