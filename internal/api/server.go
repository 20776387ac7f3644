package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/opensource-health/heron/internal/domain"
)

// Server is the HTTP front of the analysis engine.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer wires the router, middleware, and routes.
func NewServer(cfg domain.ServerConfig, deps Deps) *Server {
	handler := NewHandler(deps)
	router := chi.NewRouter()

	router.Use(CORSMiddleware)
	router.Use(RecoverMiddleware)
	router.Use(TracingMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(middleware.RealIP)
	router.Use(middleware.Compress(5))

	// Health endpoints (no facility required)
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)

	// API routes (facility required)
	router.Route("/", func(r chi.Router) {
		r.Use(FacilityMiddleware)

		// Heuristic analysis
		r.Post("/analysis/predict-cost", handler.PredictCost)
		r.Post("/analysis/assess-risk", handler.AssessRisk)
		r.Post("/analysis/billing-analytics", handler.BillingAnalytics)
		r.Post("/analysis/detect-anomalies", handler.DetectAnomalies)
		r.Get("/analysis/models", handler.ListModels)

		// Item catalog
		r.Get("/items", handler.ListItems)
		r.Post("/items", handler.CreateItem)
		r.Put("/items/{id}", handler.UpdateItem)
		r.Delete("/items/{id}", handler.DeleteItem)

		// Session bills
		r.Post("/bills", handler.SaveBill)
		r.Get("/bills", handler.GetBill)

		// Synchronous bill audit
		r.Post("/audit", handler.Audit)

		// Audit rule management
		r.Get("/audit/rules", handler.ListAuditRules)
		r.Get("/audit/rules/{id}", handler.GetAuditRule)
		r.Post("/audit/rules", handler.CreateAuditRule)
		r.Delete("/audit/rules/{id}", handler.DeleteAuditRule)
		r.Post("/audit/rules/reload", handler.ReloadAuditRules)

		// Stored analysis reports
		r.Get("/reports/{id}", handler.GetReport)
	})

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router exposes the mux so tests can drive it with httptest.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler exposes the handler set for tests.
func (s *Server) Handler() *Handler {
	return s.handler
}
