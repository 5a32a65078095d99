// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/olegiv/campus-events/internal/model"
)

// Status filters.
const (
	StatusUpcoming = "upcoming"
	StatusPast     = "past"
)

// AllCategories disables the category filter.
const AllCategories = "All"

// EventFilter narrows a catalog listing. Zero fields do not filter.
type EventFilter struct {
	Query    string // matched case-insensitively against the text fields
	Category string // exact match; "All" matches every category
	Status   string // "upcoming", "past" or empty
}

// ParseStatus validates a status filter value.
func ParseStatus(s string) (string, error) {
	switch s {
	case "", StatusUpcoming, StatusPast:
		return s, nil
	default:
		return "", fmt.Errorf("unknown status filter %q", s)
	}
}

// IsZero reports whether f matches every event.
func (f EventFilter) IsZero() bool {
	return strings.TrimSpace(f.Query) == "" &&
		(f.Category == "" || f.Category == AllCategories) &&
		f.Status == ""
}

// Match reports whether e passes every filter in f.
func (f EventFilter) Match(e model.Event) bool {
	if f.Category != "" && f.Category != AllCategories && e.Category != f.Category {
		return false
	}

	switch f.Status {
	case StatusUpcoming:
		if e.IsPast {
			return false
		}
	case StatusPast:
		if !e.IsPast {
			return false
		}
	}

	q := strings.TrimSpace(f.Query)
	if q == "" {
		return true
	}

	folder := cases.Fold()
	needle := folder.String(q)
	for _, field := range []string{e.Title, e.Category, e.Location, e.Description, e.Organizer} {
		if strings.Contains(folder.String(field), needle) {
			return true
		}
	}
	return false
}
