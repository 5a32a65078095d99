// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"strings"
	"time"
)

// Layouts accepted for event dates. Dates without a year ("March 20") are
// never matched, so catalog events written that way keep their seeded state.
var datedLayouts = []string{"January 2, 2006", "Jan 2, 2006", "2006-01-02"}

// ParseEventDate interprets the free-text date of an event in the location of
// now. It reports false when the date carries no year or no layout matches.
func ParseEventDate(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	loc := now.Location()
	for _, layout := range datedLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dayEnded reports whether the calendar day of t finished at or before now.
func dayEnded(t, now time.Time) bool {
	end := time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
	return !now.Before(end)
}
