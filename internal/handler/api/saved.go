// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/campus-events/internal/middleware"
)

// ListSaved handles GET /api/saved-events.
func (h *Handler) ListSaved(w http.ResponseWriter, r *http.Request) {
	saved, err := h.store.ListSaved(r.Context(), middleware.GetUserID(r))
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch saved events")
		return
	}

	WriteJSON(w, http.StatusOK, saved)
}

// SaveEvent handles POST /api/saved-events with body {"eventId": n}.
func (h *Handler) SaveEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := decodeEventRef(w, r)
	if !ok {
		return
	}

	saved, err := h.store.Save(r.Context(), middleware.GetUserID(r), eventID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to save event")
		return
	}

	slog.InfoContext(r.Context(), "event saved", "event_id", eventID)
	WriteJSON(w, http.StatusOK, saved)
}

// UnsaveEvent handles DELETE /api/saved-events/{eventId}. Removing an event
// that was never saved still succeeds.
func (h *Handler) UnsaveEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIDParam(r, "eventId")
	if err != nil {
		WriteBadRequest(w, "Invalid event ID")
		return
	}

	if err := h.store.Unsave(r.Context(), middleware.GetUserID(r), eventID); err != nil {
		writeServiceError(w, r, err, "Failed to remove saved event")
		return
	}

	WriteMessage(w, http.StatusOK, "Event removed from saved")
}
