// internal/controller/campaign_controller.go
package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
	"github.com/unclebandit/wealthyelephant-backend/internal/service"
)

type CampaignService interface {
	CreateCampaign(ctx context.Context, req *model.CampaignRequest) (*model.Campaign, error)
	UpdateCampaign(ctx context.Context, id string, req *model.CampaignRequest) (*model.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error
	GetCampaign(ctx context.Context, id string) (*model.Campaign, error)
	ListCampaigns(ctx context.Context, q repository.ListQuery) ([]model.CampaignSummary, int, repository.ListQuery, error)
	DuplicateCampaign(ctx context.Context, id string) (*model.Campaign, error)
	SendTest(ctx context.Context, id string, req *model.TestSendRequest) error
	SendCampaign(ctx context.Context, id string, req *model.SendCampaignRequest) (*service.SendCampaignResult, error)
	Analytics(ctx context.Context, id string) (*model.CampaignAnalytics, error)
}

type CampaignController struct {
	CampaignService CampaignService
	Responder
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	rows, total, q, err := c.CampaignService.ListCampaigns(r.Context(), ListQuery(r))
	if err != nil {
		c.Error(w, r, err)
		return
	}
	if rows == nil {
		rows = []model.CampaignSummary{}
	}
	c.List(w, "campaigns", rows, total, q)
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body model.CampaignRequest
	if err := Decode(w, r, &body); err != nil {
		c.Error(w, r, err)
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(r.Context(), &body)
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.Success(w, http.StatusCreated, "Campaign created successfully", campaign)
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := c.CampaignService.GetCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.Success(w, http.StatusOK, "", campaign)
}

func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var body model.CampaignRequest
	if err := Decode(w, r, &body); err != nil {
		c.Error(w, r, err)
		return
	}

	campaign, err := c.CampaignService.UpdateCampaign(r.Context(), chi.URLParam(r, "id"), &body)
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.Success(w, http.StatusOK, "Campaign updated successfully", campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := c.CampaignService.DeleteCampaign(r.Context(), chi.URLParam(r, "id")); err != nil {
		c.Error(w, r, err)
		return
	}
	c.Success(w, http.StatusOK, "Campaign deleted successfully", nil)
}

func (c *CampaignController) DuplicateCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := c.CampaignService.DuplicateCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.Success(w, http.StatusCreated, "Campaign duplicated successfully", campaign)
}

func (c *CampaignController) SendTest(w http.ResponseWriter, r *http.Request) {
	var body model.TestSendRequest
	if err := Decode(w, r, &body); err != nil {
		c.Error(w, r, err)
		return
	}

	if err := c.CampaignService.SendTest(r.Context(), chi.URLParam(r, "id"), &body); err != nil {
		c.Error(w, r, err)
		return
	}
	c.Success(w, http.StatusOK, "Test email sent successfully", nil)
}

// SendCampaign either schedules the campaign or hands it to the sender and
// returns straight away.
func (c *CampaignController) SendCampaign(w http.ResponseWriter, r *http.Request) {
	var body model.SendCampaignRequest
	if err := Decode(w, r, &body); err != nil {
		c.Error(w, r, err)
		return
	}

	res, err := c.CampaignService.SendCampaign(r.Context(), chi.URLParam(r, "id"), &body)
	if err != nil {
		c.Error(w, r, err)
		return
	}

	message := "Campaign is being sent"
	if res.Status == model.CampaignScheduled {
		message = "Campaign scheduled successfully"
	}
	c.Success(w, http.StatusOK, message, res)
}

func (c *CampaignController) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := c.CampaignService.Analytics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.Success(w, http.StatusOK, "", a)
}
