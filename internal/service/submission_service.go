// internal/service/submission_service.go
package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/unclebandit/wealthyelephant-backend/internal/events"
	"github.com/unclebandit/wealthyelephant-backend/internal/metrics"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
	"github.com/unclebandit/wealthyelephant-backend/internal/validation"
)

// Notifier sends the emails that follow a public submission. Implementations
// swallow their own failures.
type Notifier interface {
	ContactInquiry(ctx context.Context, c *model.ContactInquiry)
	KlinRequest(ctx context.Context, r *model.KlinRequest)
	KlinIntelligence(ctx context.Context, c *model.KlinIntelligenceCheck)
	KlinPartnership(ctx context.Context, p *model.KlinPartnership)
	KaizenProject(ctx context.Context, p *model.KaizenProject)
	BuildPlanner(ctx context.Context, b *model.BuildPlannerSubmission)
	NewsletterWelcome(ctx context.Context, email, name string)
}

// SubmissionService handles the public forms and their admin review.
type SubmissionService struct {
	Repo        repository.SubmissionRepositoryInterface
	Validator   *validation.Validator
	Notifier    Notifier
	Events      events.Publisher
	Metrics     *metrics.Metrics
	PhoneRegion string
	Log         zerolog.Logger
}

func (s *SubmissionService) phone(raw string) string {
	return validation.NormalizePhone(raw, s.PhoneRegion)
}

// created records the side channels of a stored submission. The email
// notification is awaited by the caller, the event is not.
func (s *SubmissionService) created(ctx context.Context, kind model.SubmissionKind, id string) {
	if s.Metrics != nil {
		s.Metrics.SubmissionsTotal.WithLabelValues(string(kind)).Inc()
	}
	s.Log.Info().Str("kind", string(kind)).Str("id", id).Msg("📝 Submission stored")

	if s.Events == nil {
		return
	}
	data := map[string]string{"kind": string(kind), "id": id}
	if err := s.Events.Publish(context.WithoutCancel(ctx), events.SubmissionCreated, id, data); err != nil {
		s.Log.Warn().Err(err).Str("kind", string(kind)).Msg("⚠️ Failed to publish submission event")
	}
}

func (s *SubmissionService) SubmitContact(ctx context.Context, req *model.ContactRequest) (*model.ContactInquiry, error) {
	if err := s.Validator.Validate(req); err != nil {
		return nil, err
	}
	c := &model.ContactInquiry{
		Name:        req.Name,
		Email:       strings.ToLower(req.Email),
		InquiryType: req.InquiryType,
		Message:     req.Message,
	}
	if err := s.Repo.CreateContact(ctx, c); err != nil {
		return nil, err
	}
	s.created(ctx, model.KindContact, c.ID)
	s.Notifier.ContactInquiry(ctx, c)
	return c, nil
}

func (s *SubmissionService) SubmitKlinRequest(ctx context.Context, req *model.KlinRentalRequest) (*model.KlinRequest, error) {
	if err := s.Validator.Validate(req); err != nil {
		return nil, err
	}
	r := &model.KlinRequest{
		Name:            req.Name,
		Email:           strings.ToLower(req.Email),
		Phone:           s.phone(req.Phone),
		PropertyType:    req.PropertyType,
		Location:        req.Location,
		Budget:          req.Budget,
		MoveInDate:      req.MoveInDate,
		AdditionalNotes: req.AdditionalNotes,
	}
	if err := s.Repo.CreateKlinRequest(ctx, r); err != nil {
		return nil, err
	}
	s.created(ctx, model.KindKlinRequest, r.ID)
	s.Notifier.KlinRequest(ctx, r)
	return r, nil
}

func (s *SubmissionService) SubmitIntelligenceCheck(ctx context.Context, req *model.KlinIntelligenceRequest) (*model.KlinIntelligenceCheck, error) {
	if err := s.Validator.Validate(req); err != nil {
		return nil, err
	}
	c := &model.KlinIntelligenceCheck{
		Name:            req.Name,
		Email:           strings.ToLower(req.Email),
		Phone:           s.phone(req.Phone),
		PropertyAddress: req.PropertyAddress,
		CheckType:       req.CheckType,
		Urgency:         req.Urgency,
		AdditionalInfo:  req.AdditionalInfo,
	}
	if err := s.Repo.CreateIntelligenceCheck(ctx, c); err != nil {
		return nil, err
	}
	s.created(ctx, model.KindKlinIntelligence, c.ID)
	s.Notifier.KlinIntelligence(ctx, c)
	return c, nil
}

func (s *SubmissionService) SubmitPartnership(ctx context.Context, req *model.KlinPartnershipRequest) (*model.KlinPartnership, error) {
	if err := s.Validator.Validate(req); err != nil {
		return nil, err
	}
	p := &model.KlinPartnership{
		CompanyName:     req.CompanyName,
		ContactPerson:   req.ContactPerson,
		Email:           strings.ToLower(req.Email),
		Phone:           s.phone(req.Phone),
		PartnershipType: req.PartnershipType,
		Description:     req.Description,
		Website:         req.Website,
	}
	if err := s.Repo.CreatePartnership(ctx, p); err != nil {
		return nil, err
	}
	s.created(ctx, model.KindKlinPartnership, p.ID)
	s.Notifier.KlinPartnership(ctx, p)
	return p, nil
}

func (s *SubmissionService) SubmitKaizenProject(ctx context.Context, req *model.KaizenProjectRequest) (*model.KaizenProject, error) {
	if err := s.Validator.Validate(req); err != nil {
		return nil, err
	}
	p := &model.KaizenProject{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Phone:        s.phone(req.Phone),
		ProjectType:  req.ProjectType,
		ProjectScope: req.ProjectScope,
		Budget:       req.Budget,
		Timeline:     req.Timeline,
		Description:  req.Description,
		Location:     req.Location,
	}
	if err := s.Repo.CreateKaizenProject(ctx, p); err != nil {
		return nil, err
	}
	s.created(ctx, model.KindKaizenProject, p.ID)
	s.Notifier.KaizenProject(ctx, p)
	return p, nil
}

func (s *SubmissionService) SubmitBuildPlanner(ctx context.Context, req *model.BuildPlannerRequest) (*model.BuildPlannerSubmission, error) {
	if err := s.Validator.Validate(req); err != nil {
		return nil, err
	}
	b := &model.BuildPlannerSubmission{
		Name:            req.Name,
		Email:           strings.ToLower(req.Email),
		Phone:           s.phone(req.Phone),
		ProjectType:     req.ProjectType,
		PropertySize:    req.PropertySize,
		Budget:          req.Budget,
		StartDate:       req.StartDate,
		Features:        req.Features,
		AdditionalNotes: req.AdditionalNotes,
	}
	if err := s.Repo.CreateBuildPlanner(ctx, b); err != nil {
		return nil, err
	}
	s.created(ctx, model.KindBuildPlanner, b.ID)
	s.Notifier.BuildPlanner(ctx, b)
	return b, nil
}

// List returns one page of a submission kind, newest first.
func (s *SubmissionService) List(ctx context.Context, kind model.SubmissionKind, q repository.ListQuery) ([]model.Submission, int, repository.ListQuery, error) {
	q = q.Normalize(repository.DefaultLimit)
	rows, total, err := s.Repo.List(ctx, kind, q)
	if err != nil {
		return nil, 0, q, err
	}
	return rows, total, q, nil
}

func (s *SubmissionService) UpdateStatus(ctx context.Context, kind model.SubmissionKind, id string, req *model.UpdateStatusRequest) (model.Submission, error) {
	if err := s.Validator.Validate(req); err != nil {
		return nil, err
	}
	return s.Repo.UpdateStatus(ctx, kind, id, req.Status, req.AdminNotes)
}
