// internal/controller/submission_controller.go
package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
)

type SubmissionService interface {
	SubmitContact(ctx context.Context, req *model.ContactRequest) (*model.ContactInquiry, error)
	SubmitKlinRequest(ctx context.Context, req *model.KlinRentalRequest) (*model.KlinRequest, error)
	SubmitIntelligenceCheck(ctx context.Context, req *model.KlinIntelligenceRequest) (*model.KlinIntelligenceCheck, error)
	SubmitPartnership(ctx context.Context, req *model.KlinPartnershipRequest) (*model.KlinPartnership, error)
	SubmitKaizenProject(ctx context.Context, req *model.KaizenProjectRequest) (*model.KaizenProject, error)
	SubmitBuildPlanner(ctx context.Context, req *model.BuildPlannerRequest) (*model.BuildPlannerSubmission, error)
	List(ctx context.Context, kind model.SubmissionKind, q repository.ListQuery) ([]model.Submission, int, repository.ListQuery, error)
	UpdateStatus(ctx context.Context, kind model.SubmissionKind, id string, req *model.UpdateStatusRequest) (model.Submission, error)
}

// SubmissionController serves the public forms and their admin views.
type SubmissionController struct {
	Service SubmissionService
	Responder
}

type idResponse struct {
	ID string `json:"id"`
}

// submit decodes T, runs fn and answers 201 with the new id.
func submit[T any, R model.Submission](rs Responder, message string, fn func(context.Context, *T) (R, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := new(T)
		if err := Decode(w, r, req); err != nil {
			rs.Error(w, r, err)
			return
		}

		created, err := fn(r.Context(), req)
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		rs.Success(w, http.StatusCreated, message, idResponse{ID: created.SubmissionID()})
	}
}

func (c *SubmissionController) Contact() http.HandlerFunc {
	return submit(c.Responder, "Contact inquiry submitted successfully", c.Service.SubmitContact)
}

func (c *SubmissionController) KlinRequest() http.HandlerFunc {
	return submit(c.Responder, "Rental request submitted successfully", c.Service.SubmitKlinRequest)
}

func (c *SubmissionController) KlinIntelligence() http.HandlerFunc {
	return submit(c.Responder, "Intelligence check request submitted successfully", c.Service.SubmitIntelligenceCheck)
}

func (c *SubmissionController) KlinPartnership() http.HandlerFunc {
	return submit(c.Responder, "Partnership request submitted successfully", c.Service.SubmitPartnership)
}

func (c *SubmissionController) KaizenProject() http.HandlerFunc {
	return submit(c.Responder, "Project request submitted successfully", c.Service.SubmitKaizenProject)
}

func (c *SubmissionController) BuildPlanner() http.HandlerFunc {
	return submit(c.Responder, "Build planner submission successful", c.Service.SubmitBuildPlanner)
}

// List serves GET /api/admin/... for one submission kind, rows under key.
func (c *SubmissionController) List(kind model.SubmissionKind, key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, total, q, err := c.Service.List(r.Context(), kind, ListQuery(r))
		if err != nil {
			c.Error(w, r, err)
			return
		}
		if rows == nil {
			rows = []model.Submission{}
		}
		c.Responder.List(w, key, rows, total, q)
	}
}

// Update serves PUT /api/admin/.../{id}.
func (c *SubmissionController) Update(kind model.SubmissionKind, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.UpdateStatusRequest
		if err := Decode(w, r, &req); err != nil {
			c.Error(w, r, err)
			return
		}

		row, err := c.Service.UpdateStatus(r.Context(), kind, chi.URLParam(r, "id"), &req)
		if err != nil {
			c.Error(w, r, err)
			return
		}
		c.Success(w, http.StatusOK, message, row)
	}
}
