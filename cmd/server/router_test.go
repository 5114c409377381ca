package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/wealthyelephant-backend/internal/controller"
	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/handler"
	"github.com/unclebandit/wealthyelephant-backend/internal/metrics"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
	"github.com/unclebandit/wealthyelephant-backend/internal/service"
)

type stubAuth struct{}

func (stubAuth) Login(context.Context, *model.LoginRequest) (*service.LoginResult, error) {
	return nil, appErrors.ErrInvalidCredentials
}

func (stubAuth) Authenticate(_ context.Context, token string) (*model.AdminUser, error) {
	if token != "good" {
		return nil, appErrors.ErrInvalidToken
	}
	return &model.AdminUser{ID: "u1", Email: "admin@example.com", Role: model.RoleAdmin}, nil
}

type stubDashboard struct{}

func (stubDashboard) Dashboard(context.Context) (*model.DashboardStats, error) {
	return &model.DashboardStats{}, nil
}

// stubSubmissions is only routed, never called.
type stubSubmissions struct{ controller.SubmissionService }

type stubNewsletter struct{}

func (stubNewsletter) Subscribe(_ context.Context, req *model.NewsletterRequest) (*service.SubscribeResult, error) {
	return &service.SubscribeResult{
		Subscriber: &model.Subscriber{ID: "s1", Email: req.Email, IsActive: true},
		Outcome:    service.SubscriptionCreated,
	}, nil
}

func (stubNewsletter) Stats(context.Context) (*model.NewsletterStats, error) {
	return &model.NewsletterStats{}, nil
}

func (stubNewsletter) ListSubscribers(_ context.Context, q repository.ListQuery) ([]model.SubscriberView, int, repository.ListQuery, error) {
	return nil, 0, q, nil
}

func (stubNewsletter) Search(context.Context, string) ([]model.SubscriberView, error) {
	return nil, nil
}

func (stubNewsletter) ActiveSubscribers(context.Context) ([]*model.Subscriber, error) {
	return nil, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	rs := controller.Responder{Log: zerolog.Nop()}

	return newRouter(api{
		Log:      zerolog.Nop(),
		Metrics:  m,
		Gatherer: reg,
		Origins:  []string{"https://www.wealthyelephant.com", "http://localhost:5173"},
		Auth:     stubAuth{},
		Limits:   newLimiters(m, nil),

		AuthCtl:     &controller.AuthController{Service: stubAuth{}, Responder: rs},
		Submissions: &controller.SubmissionController{Service: stubSubmissions{}, Responder: rs},
		Newsletter:  &controller.NewsletterController{Service: stubNewsletter{}, Responder: rs},
		Campaigns:   &controller.CampaignController{Responder: rs},
		Stats:       &controller.StatsController{Service: stubDashboard{}, Responder: rs},
		Tracking:    &handler.TrackingHandler{FrontendURL: "https://www.wealthyelephant.com", Responder: rs},
	})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestRouter_Health(t *testing.T) {
	rec := serve(testRouter(t), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Wealthy Elephant API is running", message(t, rec))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRouter_NotFound(t *testing.T) {
	r := testRouter(t)

	for _, path := range []string{"/nope", "/api/nope", "/api/admin/nope"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := serve(r, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "Route not found", message(t, rec), path)
	}
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	r := testRouter(t)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token provided", message(t, rec))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", message(t, rec))

	req = httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = serve(r, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_NewsletterLimit(t *testing.T) {
	r := testRouter(t)

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/newsletter", strings.NewReader(`{"email":"a@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		return serve(r, req)
	}

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusCreated, post().Code, "attempt %d", i+1)
	}
	rec := post()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many subscription attempts, please try again tomorrow.", message(t, rec))
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(r, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r := testRouter(t)
	serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestRouter_Routes(t *testing.T) {
	routes := map[string]bool{}
	err := chi.Walk(testRouter(t).(chi.Routes), func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes[method+" "+route] = true
		return nil
	})
	require.NoError(t, err)

	for _, want := range []string{
		"POST /api/contact",
		"POST /api/klin/request",
		"POST /api/klin/intelligence",
		"POST /api/klin/partnership",
		"POST /api/kaizen/project",
		"POST /api/kaizen/buildplanner",
		"POST /api/auth/login",
		"GET /api/auth/verify",
		"GET /api/newsletter/unsubscribe",
		"GET /api/newsletter/track/open/{subscriberId}",
		"GET /api/newsletter/track/click/{subscriberId}",
		"GET /api/admin/stats",
		"GET /api/admin/contacts",
		"PUT /api/admin/contacts/{id}",
		"GET /api/admin/klin/requests",
		"PUT /api/admin/klin/intelligence/{id}",
		"PUT /api/admin/klin/partnerships/{id}",
		"GET /api/admin/kaizen/projects",
		"PUT /api/admin/kaizen/buildplanner/{id}",
		"GET /api/admin/newsletter/stats",
		"GET /api/admin/newsletter/campaigns",
		"POST /api/admin/newsletter/campaigns",
		"POST /api/admin/newsletter/campaigns/{id}/duplicate",
		"POST /api/admin/newsletter/campaigns/{id}/test",
		"POST /api/admin/newsletter/campaigns/{id}/send",
		"GET /api/admin/newsletter/campaigns/{id}/analytics",
		"GET /api/admin/newsletter/subscribers/export",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}
