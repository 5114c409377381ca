package controller

import (
	"context"
	"net/http"

	"github.com/unclebandit/wealthyelephant-backend/internal/middleware"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/service"
)

type AuthService interface {
	Login(ctx context.Context, req *model.LoginRequest) (*service.LoginResult, error)
}

type AuthController struct {
	Service AuthService
	Responder
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := Decode(w, r, &req); err != nil {
		c.Error(w, r, err)
		return
	}

	res, err := c.Service.Login(r.Context(), &req)
	if err != nil {
		c.Error(w, r, err)
		return
	}
	c.Success(w, http.StatusOK, "Login successful", res)
}

// Verify runs behind RequireAdmin and echoes the freshly loaded user.
func (c *AuthController) Verify(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		WriteJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "No token provided"})
		return
	}
	c.Success(w, http.StatusOK, "", map[string]any{"user": user.Public()})
}
