package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mangopay-card-gateway/internal/usecase"
)

// Server wires the registration coordinator to the HTTP surface: the
// merchant-facing prepare endpoint and the provider-facing return endpoint.
type Server struct {
	regUC usecase.RegistrationUseCase
	auth  *AuthManager
	log   *zerolog.Logger
}

func NewServer(regUC usecase.RegistrationUseCase, auth *AuthManager, logger *zerolog.Logger) *Server {
	return &Server{regUC: regUC, auth: auth, log: logger}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/card-registrations", func(r chi.Router) {
		r.With(s.auth.Middleware).Post("/", s.handlePrepare)
		// The provider redirect carries no credentials; the unguessable
		// session id is the correlation proof.
		r.Get("/return", s.handleReturn)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
