package handlers

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes here
		r.Get("/health", h.HealthHandler)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/balance", h.GetBalanceHandler)

			r.Route("/games", func(r chi.Router) {
				r.Post("/", h.CreateGameHandler)

				r.Route("/{gameID}", func(r chi.Router) {
					r.Get("/", h.GetGameHandler)
					r.Post("/join", h.JoinTeamHandler)
					r.Post("/begin", h.BeginGameHandler)
					r.Post("/play", h.PlayCardHandler)
					r.Post("/abort", h.AbortGameHandler)
					r.Get("/player", h.GetPlayerHandler)
					r.Get("/cards/{cardID}", h.GetCardHandler)
					r.Get("/settlement", h.GetSettlementHandler)
				})
			})
		})
	})
}
