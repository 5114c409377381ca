package appErrors

import (
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ValidationError{Errors: []FieldError{{Field: "email", Message: "Invalid email address"}}}, http.StatusBadRequest},
		{"app error", NewAppError("Email already subscribed", http.StatusBadRequest), http.StatusBadRequest},
		{"not found", NewNotFound("campaign", "abc"), http.StatusNotFound},
		{"wrapped not found", pkgerrors.Wrap(NewNotFound("contact", "x"), "update status"), http.StatusNotFound},
		{"in flight", fmt.Errorf("send: %w", ErrCampaignInFlight), http.StatusConflict},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"token", ErrInvalidToken, http.StatusUnauthorized},
		{"unknown", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestNotFoundError_Message(t *testing.T) {
	err := NewNotFound("campaign", "42")
	assert.Equal(t, "campaign with ID 42 not found", err.Error())
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(ErrNoActiveSubscribers))
}

func TestMessageOf(t *testing.T) {
	boom := fmt.Errorf("pq: connection refused")

	assert.Equal(t, "Validation failed", MessageOf(&ValidationError{}, true))
	assert.Equal(t, "Email already subscribed", MessageOf(NewAppError("Email already subscribed", 400), true))
	assert.Equal(t, "Campaign with ID x not found", MessageOf(pkgerrors.Wrap(NewNotFound("Campaign", "x"), "get"), true))
	assert.Equal(t, "Campaign is already being sent", MessageOf(ErrCampaignInFlight, true))
	assert.Equal(t, "Invalid email or password", MessageOf(ErrInvalidCredentials, true))
	assert.Equal(t, "Invalid or expired token", MessageOf(ErrInvalidToken, false))
	assert.Equal(t, "Internal server error", MessageOf(boom, true))
	assert.Equal(t, "pq: connection refused", MessageOf(boom, false))
}
