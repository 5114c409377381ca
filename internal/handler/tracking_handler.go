// internal/handler/tracking_handler.go
package handler

import (
	"context"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/wealthyelephant-backend/internal/controller"
	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
)

// transparent 1x1 GIF
var pixel = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

// Tracker is the slice of the newsletter service the email links hit.
type Tracker interface {
	TrackOpen(ctx context.Context, subscriberID, campaignID string) error
	TrackClick(ctx context.Context, subscriberID, campaignID, target string) (string, error)
	Unsubscribe(ctx context.Context, subscriberID, campaignID string) (*model.Subscriber, error)
}

// TrackingHandler serves the non-JSON endpoints linked from campaign emails.
type TrackingHandler struct {
	Tracker     Tracker
	FrontendURL string
	controller.Responder
}

// Open always answers with the pixel so mail clients never show a broken image.
func (h *TrackingHandler) Open(w http.ResponseWriter, r *http.Request) {
	subscriberID := chi.URLParam(r, "subscriberId")
	campaignID := r.URL.Query().Get("c")

	if err := h.Tracker.TrackOpen(r.Context(), subscriberID, campaignID); err != nil {
		h.Log.Warn().Err(err).Str("subscriber_id", subscriberID).Str("campaign_id", campaignID).Msg("⚠️ Failed to record open")
	}

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(pixel)
}

// Click records the click and redirects to the original link.
func (h *TrackingHandler) Click(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, err := h.Tracker.TrackClick(r.Context(), chi.URLParam(r, "subscriberId"), q.Get("c"), q.Get("url"))
	if err != nil {
		h.Error(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, target, http.StatusFound)
}

type pageData struct {
	Title       string
	Heading     string
	Message     string
	FrontendURL string
}

var unsubscribePage = template.Must(template.New("unsubscribe").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f8f9fa; color: #333; margin: 0; padding: 40px 20px;">
  <div style="max-width: 480px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px; text-align: center;">
    <h1 style="font-size: 22px; margin-top: 0;">{{.Heading}}</h1>
    <p style="line-height: 1.6;">{{.Message}}</p>
    <a href="{{.FrontendURL}}" style="display: inline-block; margin-top: 16px; color: #0066cc;">Return to Wealthy Elephant</a>
  </div>
</body>
</html>
`))

func (h *TrackingHandler) page(w http.ResponseWriter, status int, data pageData) {
	data.FrontendURL = h.FrontendURL
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := unsubscribePage.Execute(w, data); err != nil {
		h.Log.Error().Err(err).Msg("❌ Failed to render unsubscribe page")
	}
}

// Unsubscribe flips the subscriber inactive and answers with a page, not JSON.
func (h *TrackingHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	subscriberID := q.Get("id")
	if subscriberID == "" {
		h.page(w, http.StatusBadRequest, pageData{
			Title:   "Invalid link",
			Heading: "Invalid unsubscribe link",
			Message: "This unsubscribe link is missing information. Please use the link from your email.",
		})
		return
	}

	_, err := h.Tracker.Unsubscribe(r.Context(), subscriberID, q.Get("c"))
	switch {
	case err == nil:
		h.page(w, http.StatusOK, pageData{
			Title:   "Unsubscribed",
			Heading: "You have been unsubscribed",
			Message: "You will no longer receive the Wealthy Elephant newsletter. You can subscribe again at any time.",
		})
	case appErrors.IsNotFound(err):
		h.page(w, http.StatusNotFound, pageData{
			Title:   "Not found",
			Heading: "Subscription not found",
			Message: "We could not find a subscription for this link. You may already be unsubscribed.",
		})
	default:
		h.Log.Error().Err(err).Str("subscriber_id", subscriberID).Msg("❌ Unsubscribe failed")
		h.page(w, http.StatusInternalServerError, pageData{
			Title:   "Error",
			Heading: "Something went wrong",
			Message: "We could not process your request. Please try again later.",
		})
	}
}
