package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/unclebandit/wealthyelephant-backend/internal/model"
)

type DashboardService interface {
	Dashboard(ctx context.Context) (*model.DashboardStats, error)
}

type StatsController struct {
	Service DashboardService
	Responder
}

func (c *StatsController) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Service.Dashboard(r.Context())
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.Success(w, http.StatusOK, "", stats)
}

func Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Wealthy Elephant API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]any{
		"success": false,
		"message": "Route not found",
	})
}
