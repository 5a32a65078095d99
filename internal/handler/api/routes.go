// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-events/internal/middleware"
)

// Routes returns the API router, to be mounted at /api. The session and
// middleware.LoadUser must run before it.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteNotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Public catalog
	r.Get("/events", h.ListEvents)
	r.Get("/events/{id}", h.GetEvent)

	// Authentication
	r.Group(func(r chi.Router) {
		if h.authRateLimiter != nil {
			r.Use(h.authRateLimiter.Middleware)
		}
		r.Post("/register", h.SignUp)
		r.Post("/login", h.Login)
	})
	r.Post("/logout", h.Logout)

	// Signed-in users
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Get("/user", h.CurrentUser)

		r.Get("/saved-events", h.ListSaved)
		r.Post("/saved-events", h.SaveEvent)
		r.Delete("/saved-events/{eventId}", h.UnsaveEvent)

		r.Get("/registrations", h.ListRegistrations)
		r.Post("/registrations", h.RegisterForEvent)
		r.Get("/registrations/check/{eventId}", h.CheckRegistration)

		r.Route("/organizer", func(r chi.Router) {
			r.Get("/dashboard", h.OrganizerDashboard)
			r.Post("/events", h.CreateEvent)
			r.Get("/events/{id}/registrations", h.EventRegistrations)
		})
	})

	return r
}
