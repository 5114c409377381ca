package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the listed origins with credentials. Requests without an
// Origin header (curl, server-to-server) pass untouched.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition", "RateLimit-Limit", "RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
