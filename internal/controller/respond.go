// internal/controller/respond.go
package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	appErrors "github.com/unclebandit/wealthyelephant-backend/internal/errors"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
)

const maxBodyBytes = 10 << 20

// Responder writes the JSON envelope every endpoint shares.
type Responder struct {
	Log zerolog.Logger
	// Redact hides unexpected error messages from clients.
	Redact bool
}

// Pagination mirrors the list envelope.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

func NewPagination(total int, q repository.ListQuery) Pagination {
	return Pagination{
		Total: total,
		Page:  q.Page,
		Pages: repository.Pages(total, q.Limit),
		Limit: q.Limit,
	}
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Success writes {success:true, message?, data?}.
func (rs Responder) Success(w http.ResponseWriter, status int, message string, data any) {
	body := map[string]any{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	WriteJSON(w, status, body)
}

// List writes rows under key together with the pagination block.
func (rs Responder) List(w http.ResponseWriter, key string, rows any, total int, q repository.ListQuery) {
	rs.Success(w, http.StatusOK, "", map[string]any{
		key:          rows,
		"pagination": NewPagination(total, q),
	})
}

// Error maps err to its status and client message. Server errors are logged
// and reported to Sentry.
func (rs Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := appErrors.StatusOf(err)
	body := map[string]any{
		"success": false,
		"message": appErrors.MessageOf(err, rs.Redact),
	}

	var verr *appErrors.ValidationError
	if errors.As(err, &verr) {
		body["errors"] = verr.Errors
	}

	if status >= http.StatusInternalServerError {
		rs.Log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("❌ Request failed")
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
	}

	WriteJSON(w, status, body)
}

// Decode reads a JSON body into dst. An empty body leaves dst zeroed so
// validation reports the missing fields.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return appErrors.NewAppError("Invalid JSON body", http.StatusBadRequest)
	}
	return nil
}

// ListQuery reads page, limit and status from the query string. Garbage
// values fall back to the defaults during normalisation.
func ListQuery(r *http.Request) repository.ListQuery {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return repository.ListQuery{
		Page:   page,
		Limit:  limit,
		Status: q.Get("status"),
	}
}
