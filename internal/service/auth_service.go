// internal/service/auth_service.go
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/unclebandit/wealthyelephant-backend/internal/auth"
	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/metrics"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
	"github.com/unclebandit/wealthyelephant-backend/internal/validation"
)

const lastLoginTimeout = 5 * time.Second

type LoginResult struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

type AuthService struct {
	Users     repository.AdminUserRepositoryInterface
	Validator *validation.Validator
	Secret    string
	Expiry    time.Duration
	Metrics   *metrics.Metrics
	Log       zerolog.Logger

	// wg tracks background last-login writes.
	wg sync.WaitGroup
}

// Login checks the credentials and issues a token. Unknown email and wrong
// password fail the same way.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*LoginResult, error) {
	if err := s.Validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.Users.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.attempt("failure")
		s.Log.Warn().Str("email", req.Email).Msg("🔒 Failed login attempt")
		return nil, appErrors.ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role, s.Secret, s.Expiry)
	if err != nil {
		return nil, err
	}

	s.attempt("success")
	s.touch(user.ID)
	return &LoginResult{Token: token, User: user.Public()}, nil
}

func (s *AuthService) attempt(status string) {
	if s.Metrics != nil {
		s.Metrics.LoginAttempts.WithLabelValues(status).Inc()
	}
}

// touch records the login time without holding up the response.
func (s *AuthService) touch(userID string) {
	s.wg.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), lastLoginTimeout)
		defer cancel()
		if err := s.Users.UpdateLastLogin(ctx, userID); err != nil {
			s.Log.Warn().Err(err).Str("user_id", userID).Msg("⚠️ Failed to update last login")
		}
	})
}

// Authenticate resolves a bearer token to the current admin. Any failure,
// including a deleted user, is reported as an invalid token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.AdminUser, error) {
	claims, err := auth.ValidateJWT(token, s.Secret)
	if err != nil {
		return nil, appErrors.ErrInvalidToken
	}

	user, err := s.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return nil, appErrors.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// Wait blocks until pending last-login writes finish.
func (s *AuthService) Wait() {
	s.wg.Wait()
}
