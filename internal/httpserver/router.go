package httpserver

import (
	"net/http"

	"lv-marginrisk/internal/audit"
	"lv-marginrisk/internal/auth"
	"lv-marginrisk/internal/clients"
	"lv-marginrisk/internal/health"
	"lv-marginrisk/internal/instruments"
	"lv-marginrisk/internal/risk"
	"lv-marginrisk/internal/trades"

	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	AuthHandler        *auth.Handler
	HealthHandler      *health.Handler
	ClientsHandler     *clients.Handler
	RiskHandler        *risk.Handler
	TradesHandler      *trades.Handler
	InstrumentsHandler *instruments.Handler
	AuditHandler       *audit.Handler
	AuthService        *auth.Service
	InternalToken      string
	EventsWSHandler    http.Handler
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", d.HealthHandler.Ready)
	r.Get("/health/live", d.HealthHandler.Live)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", d.AuthHandler.Login)
			r.With(InternalAuth(d.InternalToken)).Post("/register", d.AuthHandler.Register)
		})

		r.Get("/events/ws", d.EventsWSHandler.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(WithAuth(d.AuthService))

			r.Get("/instruments", d.InstrumentsHandler.List)
			r.Get("/instruments/{symbol}", d.InstrumentsHandler.Get)

			r.Post("/clients", d.ClientsHandler.Create)
			r.Post("/clients/{id}/cash", d.ClientsHandler.SetCash)
			r.Post("/clients/{id}/collateral", d.ClientsHandler.SetCollateral)

			r.Get("/clients/{id}/risk", d.RiskHandler.Overview)
			r.Post("/clients/{id}/risk/recalculate", d.RiskHandler.Recalculate)
			r.Post("/clients/{id}/risk/margin", d.RiskHandler.SetMargin)

			r.Get("/clients/{id}/audit", d.AuditHandler.ListByClient)

			r.Post("/trades", d.TradesHandler.Execute)
			r.Post("/trades/check", d.TradesHandler.Check)
		})
	})

	return r
}
