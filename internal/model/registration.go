// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"time"
)

// RegistrationStatus is the state of a registration.
type RegistrationStatus string

// Registration statuses. Only StatusRegistered is produced today; the other
// two have no transition leading to them.
const (
	StatusRegistered RegistrationStatus = "registered"
	StatusCancelled  RegistrationStatus = "cancelled"
	StatusWaitlisted RegistrationStatus = "waitlisted"
)

// Valid reports whether s is one of the known statuses.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusRegistered, StatusCancelled, StatusWaitlisted:
		return true
	}
	return false
}

// ParseRegistrationStatus converts a stored string into a RegistrationStatus.
func ParseRegistrationStatus(s string) (RegistrationStatus, error) {
	status := RegistrationStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown registration status %q", s)
	}
	return status, nil
}

// Registration is a user's sign-up for an event.
type Registration struct {
	ID           int64              `json:"id"`
	UserID       int64              `json:"userId"`
	EventID      int64              `json:"eventId"`
	Status       RegistrationStatus `json:"status"`
	RegisteredAt time.Time          `json:"registeredAt"`
}

// IsActive reports whether the registration counts as a held place.
func (r Registration) IsActive() bool {
	return r.Status == StatusRegistered
}
