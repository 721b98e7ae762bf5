package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"merchant-banklink/internal/usecase"
)

// Server exposes the merchant-side endpoints: payment initiation and the
// return/cancel URLs registered with the banks. Transport to the bank itself
// happens in the shopper's browser via the rendered form.
type Server struct {
	uc     usecase.ExchangeUseCase
	banks  map[string]*usecase.Bank
	apiKey string
	log    *zerolog.Logger
}

// NewServer builds the merchant endpoint server. apiKey guards the metrics
// route; empty disables the guard.
func NewServer(uc usecase.ExchangeUseCase, banks map[string]*usecase.Bank, apiKey string, logger *zerolog.Logger) *Server {
	return &Server{uc: uc, banks: banks, apiKey: apiKey, log: logger}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID(), Recover(s.log), RequestLog(s.log))
	r.Get("/health", s.handleHealth)
	r.With(RequireAPIKey(s.apiKey)).Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/banklink/{bank}", func(r chi.Router) {
		r.Post("/pay", s.handlePay)
		r.Post("/auth", s.handleAuth)
		r.Get("/return", s.handleReturn)
		r.Post("/return", s.handleReturn)
		r.Get("/cancel", s.handleCancel)
		r.Post("/cancel", s.handleCancel)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}
