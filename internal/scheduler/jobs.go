// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Job names.
const (
	JobPastEvents = "past-events"
	JobPrune      = "prune-auth-state"
)

// PastRefresher marks events whose date has passed.
type PastRefresher interface {
	RefreshPast(ctx context.Context, now time.Time) (int, error)
}

// PastEventsJob flags events as past once their day has ended.
func PastEventsJob(events PastRefresher, schedule string) Job {
	return Job{
		Name:        JobPastEvents,
		Description: "Mark events whose date has passed",
		Schedule:    schedule,
		Run: func(ctx context.Context) error {
			n, err := events.RefreshPast(ctx, time.Now())
			if n > 0 {
				slog.InfoContext(ctx, "marked events as past", "count", n)
			}
			return err
		},
	}
}

// PruneJob runs the given cleanup functions, such as dropping stale
// rate-limiter and login-lockout entries.
func PruneJob(schedule string, prune ...func()) Job {
	return Job{
		Name:        JobPrune,
		Description: "Drop expired rate-limit and lockout entries",
		Schedule:    schedule,
		Run: func(context.Context) error {
			for _, p := range prune {
				p()
			}
			return nil
		},
	}
}
