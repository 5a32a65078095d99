// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/campus-events/internal/middleware"
	"github.com/olegiv/campus-events/internal/model"
	"github.com/olegiv/campus-events/internal/service"
)

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignUp handles POST /api/register. The new user is signed in.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var in service.SignUpInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.users.SignUp(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create account")
		return
	}

	if !h.startSession(w, r, user) {
		return
	}

	WriteJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		WriteBadRequest(w, "Username and password are required")
		return
	}

	key := strings.ToLower(strings.TrimSpace(req.Username))
	if locked, remaining := h.loginProtection.IsLocked(key); locked {
		slog.WarnContext(r.Context(), "login attempt on locked account", "username", key)
		writeLocked(w, remaining)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			writeServiceError(w, r, err, "Failed to log in")
			return
		}
		// Unknown usernames count too, so lockouts do not reveal which accounts exist.
		if locked, d := h.loginProtection.RecordFailure(key); locked {
			writeLocked(w, d)
			return
		}
		slog.DebugContext(r.Context(), "invalid login attempt", "username", key)
		WriteUnauthorized(w, err.Error())
		return
	}

	h.loginProtection.RecordSuccess(key)

	if !h.startSession(w, r, user) {
		return
	}

	slog.InfoContext(r.Context(), "user logged in", "user_id", user.ID)
	WriteJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/logout. Logging out without a session succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	if err := h.sessions.Destroy(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "session destroy error", "error", err)
		WriteInternalError(w, "Failed to log out")
		return
	}

	slog.InfoContext(r.Context(), "user logged out", "user_id", userID)
	WriteMessage(w, http.StatusOK, "Logged out")
}

// CurrentUser handles GET /api/user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, middleware.GetUser(r))
}

// startSession renews the session token and binds it to user. It writes a
// 500 and returns false on failure.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user model.User) bool {
	// Regenerate session ID to prevent session fixation
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "session renewal error", "error", err)
		WriteInternalError(w, "Failed to start session")
		return false
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, user.ID)
	return true
}

func writeLocked(w http.ResponseWriter, remaining time.Duration) {
	w.Header().Set("Retry-After", fmt.Sprintf("%d", int(remaining.Seconds())+1))
	WriteMessage(w, http.StatusTooManyRequests,
		"Too many failed login attempts. Try again in "+formatDuration(remaining))
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	}
	minutes := int(d.Round(time.Minute).Minutes())
	if minutes == 1 {
		return "1 minute"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := minutes / 60
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
