// internal/controller/newsletter_controller.go
package controller

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/export"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
	"github.com/unclebandit/wealthyelephant-backend/internal/service"
)

type NewsletterService interface {
	Subscribe(ctx context.Context, req *model.NewsletterRequest) (*service.SubscribeResult, error)
	Stats(ctx context.Context) (*model.NewsletterStats, error)
	ListSubscribers(ctx context.Context, q repository.ListQuery) ([]model.SubscriberView, int, repository.ListQuery, error)
	Search(ctx context.Context, term string) ([]model.SubscriberView, error)
	ActiveSubscribers(ctx context.Context) ([]*model.Subscriber, error)
}

type NewsletterController struct {
	Service NewsletterService
	Responder
}

// Subscribe answers 201 for a new address and 200 for a reactivation.
func (c *NewsletterController) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req model.NewsletterRequest
	if err := Decode(w, r, &req); err != nil {
		c.Error(w, r, err)
		return
	}

	res, err := c.Service.Subscribe(r.Context(), &req)
	if err != nil {
		c.Error(w, r, err)
		return
	}

	if res.Outcome == service.SubscriptionReactivated {
		c.Success(w, http.StatusOK, "Newsletter subscription reactivated successfully", nil)
		return
	}
	c.Success(w, http.StatusCreated, "Successfully subscribed to newsletter", nil)
}

func (c *NewsletterController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Service.Stats(r.Context())
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.Success(w, http.StatusOK, "", stats)
}

func (c *NewsletterController) Subscribers(w http.ResponseWriter, r *http.Request) {
	rows, total, q, err := c.Service.ListSubscribers(r.Context(), ListQuery(r))
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.List(w, "subscribers", rows, total, q)
}

func (c *NewsletterController) Search(w http.ResponseWriter, r *http.Request) {
	rows, err := c.Service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.Success(w, http.StatusOK, "", map[string]any{"subscribers": rows})
}

// Export streams the active subscribers as CSV (default) or XLSX.
func (c *NewsletterController) Export(w http.ResponseWriter, r *http.Request) {
	format, ok := export.Lookup(r.URL.Query().Get("format"))
	if !ok {
		c.Error(w, r, appErrors.NewAppError("Unsupported export format", http.StatusBadRequest))
		return
	}

	subs, err := c.Service.ActiveSubscribers(r.Context())
	if err != nil {
		c.Error(w, r, err)
		return
	}

	// Buffer so an encoding failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := format.Write(&buf, subs); err != nil {
		c.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+format.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
