// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/campus-events/internal/middleware"
	"github.com/olegiv/campus-events/internal/service"
)

// OrganizerDashboard handles GET /api/organizer/dashboard. Events are matched
// to the current user by username.
func (h *Handler) OrganizerDashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	stats, err := h.events.OrganizerStats(r.Context(), user.Username)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load dashboard")
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

// CreateEvent handles POST /api/organizer/events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in service.EventInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	user := middleware.GetUser(r)
	event, err := h.events.CreateEvent(r.Context(), user.Username, in)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create event")
		return
	}

	WriteJSON(w, http.StatusCreated, event)
}

// EventRegistrations handles GET /api/organizer/events/{id}/registrations.
// Only the event's organizer may read it.
func (h *Handler) EventRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid event ID")
		return
	}

	user := middleware.GetUser(r)
	regs, err := h.registrations.Attendees(r.Context(), user.Username, eventID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch registrations")
		return
	}

	WriteJSON(w, http.StatusOK, regs)
}
