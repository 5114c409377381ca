// cmd/server/router.go
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/unclebandit/wealthyelephant-backend/internal/controller"
	"github.com/unclebandit/wealthyelephant-backend/internal/handler"
	"github.com/unclebandit/wealthyelephant-backend/internal/metrics"
	"github.com/unclebandit/wealthyelephant-backend/internal/middleware"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
)

type limiters struct {
	Global     *middleware.RateLimiter
	Forms      *middleware.RateLimiter
	Newsletter *middleware.RateLimiter
}

// newLimiters builds the limiters. A nil store keeps counts in memory.
func newLimiters(m *metrics.Metrics, store middleware.WindowCounter) limiters {
	l := limiters{
		Global:     middleware.GlobalLimiter(m),
		Forms:      middleware.FormLimiter(m),
		Newsletter: middleware.NewsletterLimiter(m),
	}
	for _, rl := range l.all() {
		rl.Store = store
	}
	return l
}

func (l limiters) all() []*middleware.RateLimiter {
	return []*middleware.RateLimiter{l.Global, l.Forms, l.Newsletter}
}

// api is everything the router mounts.
type api struct {
	Log      zerolog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Origins  []string
	Auth     middleware.Authenticator
	Limits   limiters

	// Extra runs right after the request id, e.g. the sentry hub.
	Extra []func(http.Handler) http.Handler

	AuthCtl     *controller.AuthController
	Submissions *controller.SubmissionController
	Newsletter  *controller.NewsletterController
	Campaigns   *controller.CampaignController
	Stats       *controller.StatsController
	Tracking    *handler.TrackingHandler
}

func newRouter(a api) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.Extra...)
	r.Use(middleware.AccessLog(a.Log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(a.Metrics))
	r.Use(middleware.CORS(a.Origins))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig()))

	r.Get("/health", controller.Health)
	if a.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(a.Limits.Global.Handler)

		forms := a.Limits.Forms
		r.With(forms.Bucket(string(model.KindContact))).Post("/contact", a.Submissions.Contact())
		r.With(forms.Bucket(string(model.KindKlinRequest))).Post("/klin/request", a.Submissions.KlinRequest())
		r.With(forms.Bucket(string(model.KindKlinIntelligence))).Post("/klin/intelligence", a.Submissions.KlinIntelligence())
		r.With(forms.Bucket(string(model.KindKlinPartnership))).Post("/klin/partnership", a.Submissions.KlinPartnership())
		r.With(forms.Bucket(string(model.KindKaizenProject))).Post("/kaizen/project", a.Submissions.KaizenProject())
		r.With(forms.Bucket(string(model.KindBuildPlanner))).Post("/kaizen/buildplanner", a.Submissions.BuildPlanner())

		r.Route("/newsletter", func(r chi.Router) {
			r.With(a.Limits.Newsletter.Handler).Post("/", a.Newsletter.Subscribe)
			r.Get("/unsubscribe", a.Tracking.Unsubscribe)
			r.Get("/track/open/{subscriberId}", a.Tracking.Open)
			r.Get("/track/click/{subscriberId}", a.Tracking.Click)
		})

		r.Post("/auth/login", a.AuthCtl.Login)
		r.With(middleware.RequireAdmin(a.Auth)).Get("/auth/verify", a.AuthCtl.Verify)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(a.Auth))

			r.Get("/stats", a.Stats.Dashboard)
			adminSubmissions(r, a.Submissions)

			r.Route("/newsletter", func(r chi.Router) {
				r.Get("/stats", a.Newsletter.Stats)
				r.Get("/subscribers", a.Newsletter.Subscribers)
				r.Get("/subscribers/search", a.Newsletter.Search)
				r.Get("/subscribers/export", a.Newsletter.Export)

				r.Get("/campaigns", a.Campaigns.ListCampaigns)
				r.Post("/campaigns", a.Campaigns.CreateCampaign)
				r.Route("/campaigns/{id}", func(r chi.Router) {
					r.Get("/", a.Campaigns.GetCampaign)
					r.Put("/", a.Campaigns.UpdateCampaign)
					r.Delete("/", a.Campaigns.DeleteCampaign)
					r.Post("/duplicate", a.Campaigns.DuplicateCampaign)
					r.Post("/test", a.Campaigns.SendTest)
					r.Post("/send", a.Campaigns.SendCampaign)
					r.Get("/analytics", a.Campaigns.Analytics)
				})
			})
		})
	})

	r.NotFound(controller.NotFound)
	return r
}

type adminList struct {
	path    string
	kind    model.SubmissionKind
	key     string
	updated string
}

var adminLists = []adminList{
	{"/contacts", model.KindContact, "contacts", "Contact updated successfully"},
	{"/klin/requests", model.KindKlinRequest, "requests", "Request updated successfully"},
	{"/klin/intelligence", model.KindKlinIntelligence, "checks", "Intelligence check updated successfully"},
	{"/klin/partnerships", model.KindKlinPartnership, "partnerships", "Partnership updated successfully"},
	{"/kaizen/projects", model.KindKaizenProject, "projects", "Project updated successfully"},
	{"/kaizen/buildplanner", model.KindBuildPlanner, "submissions", "Submission updated successfully"},
}

func adminSubmissions(r chi.Router, c *controller.SubmissionController) {
	for _, l := range adminLists {
		r.Get(l.path, c.List(l.kind, l.key))
		r.Put(l.path+"/{id}", c.Update(l.kind, l.updated))
	}
}
