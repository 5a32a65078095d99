// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/campus-events/internal/middleware"
)

// RegisterForEvent handles POST /api/registrations with body {"eventId": n}.
// A second registration for the same event answers 400 with the reason.
func (h *Handler) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := decodeEventRef(w, r)
	if !ok {
		return
	}

	reg, err := h.registrations.Register(r.Context(), middleware.GetUserID(r), eventID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to register for event")
		return
	}

	WriteJSON(w, http.StatusOK, reg)
}

// ListRegistrations handles GET /api/registrations.
func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrations.ListForUser(r.Context(), middleware.GetUserID(r))
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch registrations")
		return
	}

	WriteJSON(w, http.StatusOK, regs)
}

// RegistrationStatusResponse is returned by CheckRegistration.
type RegistrationStatusResponse struct {
	IsRegistered bool `json:"isRegistered"`
}

// CheckRegistration handles GET /api/registrations/check/{eventId}.
func (h *Handler) CheckRegistration(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIDParam(r, "eventId")
	if err != nil {
		WriteBadRequest(w, "Invalid event ID")
		return
	}

	registered, err := h.registrations.IsRegistered(r.Context(), middleware.GetUserID(r), eventID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to check registration")
		return
	}

	WriteJSON(w, http.StatusOK, RegistrationStatusResponse{IsRegistered: registered})
}
