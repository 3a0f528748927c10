package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ordonezjosue/wheeltracker/internal/api/handlers"
	custommiddleware "github.com/ordonezjosue/wheeltracker/internal/api/middleware"
	"github.com/ordonezjosue/wheeltracker/internal/config"
	"github.com/ordonezjosue/wheeltracker/internal/service"
)

// Services bundles the service-layer dependencies the router wires into
// handlers.
type Services struct {
	System  *service.SystemService
	Journal *service.JournalService
	Wheel   *service.WheelService
	Import  *service.ImportService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		tradeHandler := handlers.NewTradeHandler(svc.Journal)

		r.Route("/trade", func(r chi.Router) {
			r.Get("/", tradeHandler.AllTrades)
			r.Post("/", tradeHandler.CreateTrade)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", tradeHandler.GetTrade)
				r.With(custommiddleware.APIKeyMiddleware).Delete("/", tradeHandler.DeleteTrade)
			})
		})

		r.Route("/wheel", func(r chi.Router) {
			wheelHandler := handlers.NewWheelHandler(svc.Wheel)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Post("/assign", wheelHandler.Assign)
				r.Post("/covered-call", wheelHandler.CoveredCall)
				r.Post("/close-call", wheelHandler.CloseCall)
				r.Post("/close-put", wheelHandler.ClosePut)
			})
		})

		importHandler := handlers.NewImportHandler(svc.Import)
		r.With(custommiddleware.APIKeyMiddleware).Post("/import", importHandler.Import)

		r.Get("/export", tradeHandler.Export)
		r.Get("/summary", tradeHandler.Summary)
	})

	return r
}
