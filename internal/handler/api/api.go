// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API consumed by the campus events frontend.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-events/internal/middleware"
	"github.com/olegiv/campus-events/internal/service"
	"github.com/olegiv/campus-events/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Config holds the dependencies of the API handlers.
type Config struct {
	Events          *service.EventService
	Registrations   *service.RegistrationService
	Users           *service.UserService
	Store           store.Store // saved-events ledger
	Sessions        *scs.SessionManager
	LoginProtection *middleware.LoginProtection
	AuthRateLimiter *middleware.RateLimiter // optional, guards sign-up and login
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	events          *service.EventService
	registrations   *service.RegistrationService
	users           *service.UserService
	store           store.Store
	sessions        *scs.SessionManager
	loginProtection *middleware.LoginProtection
	authRateLimiter *middleware.RateLimiter
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	lp := cfg.LoginProtection
	if lp == nil {
		lp = middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	}
	return &Handler{
		events:          cfg.Events,
		registrations:   cfg.Registrations,
		users:           cfg.Users,
		store:           cfg.Store,
		sessions:        cfg.Sessions,
		loginProtection: lp,
		authRateLimiter: cfg.AuthRateLimiter,
	}
}

// MessageResponse is the body of every error response.
type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse is returned with 422 when a payload fails validation.
type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteMessage writes a {"message": ...} response.
func WriteMessage(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, MessageResponse{Message: message})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteMessage(w, http.StatusBadRequest, message)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteMessage(w, http.StatusNotFound, message)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteMessage(w, http.StatusUnauthorized, message)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteMessage(w, http.StatusInternalServerError, message)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
		Message: "Validation failed",
		Details: fieldErrors,
	})
}

// writeServiceError maps domain errors to responses. Unknown errors are
// logged and answered with fallback as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Details)
	case errors.Is(err, store.ErrNotFound):
		WriteNotFound(w, "Event not found")
	case errors.Is(err, store.ErrAlreadyRegistered),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken):
		WriteBadRequest(w, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteUnauthorized(w, err.Error())
	case errors.Is(err, service.ErrNotOrganizer):
		WriteMessage(w, http.StatusForbidden, err.Error())
	default:
		slog.ErrorContext(r.Context(), fallback, "error", err)
		WriteInternalError(w, fallback)
	}
}

// decodeJSON reads a JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// parseIDParam parses a positive integer URL parameter.
func parseIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// eventRef is the {eventId} body shared by save and register requests.
type eventRef struct {
	EventID int64 `json:"eventId"`
}

// decodeEventRef decodes an {eventId} body. It writes 400 and returns false
// on a malformed body or a non-positive id.
func decodeEventRef(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var ref eventRef
	if err := decodeJSON(w, r, &ref); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return 0, false
	}
	if ref.EventID <= 0 {
		WriteBadRequest(w, "eventId is required")
		return 0, false
	}
	return ref.EventID, true
}
