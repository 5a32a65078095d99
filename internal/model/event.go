// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Event is a campus activity listing.
// Date is free text as entered by the organizer (e.g. "March 20") and is never
// parsed by the store.
type Event struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Attendees   int    `json:"attendees"`
	Organizer   string `json:"organizer"`
	IsPast      bool   `json:"isPast"`
}

// SavedEvent is a user's bookmark of an event.
type SavedEvent struct {
	ID      int64 `json:"id"`
	UserID  int64 `json:"userId"`
	EventID int64 `json:"eventId"`
}
