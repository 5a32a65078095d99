// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/campus-events/internal/service"
)

// ListEvents handles GET /api/events.
// Optional query parameters: q (text search), category, status (upcoming|past).
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	status, err := service.ParseStatus(query.Get("status"))
	if err != nil {
		WriteBadRequest(w, "Invalid status filter")
		return
	}

	events, err := h.events.Search(r.Context(), service.EventFilter{
		Query:    query.Get("q"),
		Category: query.Get("category"),
		Status:   status,
	})
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch events")
		return
	}

	WriteJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /api/events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "Invalid event ID")
		return
	}

	event, err := h.events.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch event")
		return
	}

	WriteJSON(w, http.StatusOK, event)
}
