package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouterOptions tunes the middleware chain.
type RouterOptions struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter registers the API routes and wraps them, outermost first, with
// request ids, access logging, panic recovery, CORS and rate limiting.
func NewRouter(h *Handler, opts RouterOptions, l logging.Logger) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.MethodNotAllowed)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = r.NotFoundHandler
	api.MethodNotAllowedHandler = r.MethodNotAllowedHandler
	api.HandleFunc("/user", h.ListUsers).Methods(http.MethodGet)
	api.HandleFunc("/user", h.CreateUser).Methods(http.MethodPost)
	api.HandleFunc("/user/{id}", h.UpdateUser).Methods(http.MethodPut)
	api.HandleFunc("/user/{id}", h.DeleteUser).Methods(http.MethodDelete)

	l = l.With("module", "http")

	var next http.Handler = r
	next = withRateLimit(opts.RateLimitRPS, opts.RateLimitBurst, next)
	next = cors.AllowAll().Handler(next)
	next = withRecovery(l, next)
	next = withAccessLog(l, next)
	next = withRequestID(next)
	return next
}
