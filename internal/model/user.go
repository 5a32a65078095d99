// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain records shared by the store, services and
// HTTP handlers: events, saved events, registrations and users.
package model

import "time"

// User represents a registered account.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // Pre-hashed credential, never exposed in JSON
	CreatedAt time.Time `json:"createdAt"`
}
