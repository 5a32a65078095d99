// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/campus-events/internal/cache"
	"github.com/olegiv/campus-events/internal/model"
	"github.com/olegiv/campus-events/internal/store"
)

const catalogCacheKey = "events:all"

// EventService serves the catalog through a listing cache and implements
// organizer tools on top of the store.
type EventService struct {
	store     store.Store
	listing   *cache.TypedCache[[]model.Event]
	sanitizer *bluemonday.Policy
	validate  *validator.Validate
}

// NewEventService creates an EventService. The cache holds the full catalog
// listing for ttl (zero uses the cache default).
func NewEventService(st store.Store, c cache.Cache, ttl time.Duration) *EventService {
	return &EventService{
		store:     st,
		listing:   cache.NewTypedCache[[]model.Event](c, ttl),
		sanitizer: bluemonday.StrictPolicy(),
		validate:  newValidator(),
	}
}

// List returns the full catalog in store order.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	events, err := s.listing.GetOrLoad(ctx, catalogCacheKey, s.store.ListEvents)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

// Get returns one event. A missing event yields store.ErrNotFound.
func (s *EventService) Get(ctx context.Context, id int64) (model.Event, error) {
	return s.store.GetEvent(ctx, id)
}

// Search returns the catalog events matching f, in catalog order.
func (s *EventService) Search(ctx context.Context, f EventFilter) ([]model.Event, error) {
	events, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if f.IsZero() {
		return events, nil
	}

	matched := make([]model.Event, 0, len(events))
	for _, e := range events {
		if f.Match(e) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// OrganizerStats summarizes the events organized by username.
type OrganizerStats struct {
	TotalEvents      int           `json:"totalEvents"`
	TotalAttendees   int           `json:"totalAttendees"`
	AverageAttendees int           `json:"averageAttendees"`
	UpcomingEvents   int           `json:"upcomingEvents"`
	Events           []model.Event `json:"events"`
}

// OrganizerStats computes dashboard totals for the events whose organizer is username.
func (s *EventService) OrganizerStats(ctx context.Context, username string) (OrganizerStats, error) {
	events, err := s.List(ctx)
	if err != nil {
		return OrganizerStats{}, err
	}

	stats := OrganizerStats{Events: []model.Event{}}
	for _, e := range events {
		if e.Organizer != username {
			continue
		}
		stats.Events = append(stats.Events, e)
		stats.TotalAttendees += e.Attendees
		if !e.IsPast {
			stats.UpcomingEvents++
		}
	}

	stats.TotalEvents = len(stats.Events)
	if stats.TotalEvents > 0 {
		stats.AverageAttendees = int(math.Round(float64(stats.TotalAttendees) / float64(stats.TotalEvents)))
	}
	return stats, nil
}

// EventInput is the organizer-submitted payload for a new event.
type EventInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Date        string `json:"date" validate:"required,max=100"`
	Category    string `json:"category" validate:"required,max=50"`
	Location    string `json:"location" validate:"required,max=200"`
	Image       string `json:"image" validate:"omitempty,max=500"`
	Description string `json:"description" validate:"max=5000"`
}

// CreateEvent publishes a new event owned by organizer. Text fields are
// stripped of markup before validation. New events start upcoming with no
// attendees.
func (s *EventService) CreateEvent(ctx context.Context, organizer string, in EventInput) (model.Event, error) {
	in.Title = s.clean(in.Title)
	in.Date = s.clean(in.Date)
	in.Category = s.clean(in.Category)
	in.Location = s.clean(in.Location)
	in.Image = strings.TrimSpace(in.Image)
	in.Description = s.clean(in.Description)

	if err := validateStruct(s.validate, in); err != nil {
		return model.Event{}, err
	}

	event := model.Event{
		Title:       in.Title,
		Date:        in.Date,
		Category:    in.Category,
		Location:    in.Location,
		Image:       in.Image,
		Description: in.Description,
		Organizer:   organizer,
	}

	created, err := s.store.CreateEvent(ctx, event)
	if err != nil {
		return model.Event{}, err
	}
	s.Invalidate(ctx)

	slog.InfoContext(ctx, "event created", "event_id", created.ID, "organizer", organizer)
	return created, nil
}

// RefreshPast marks events whose dated day has passed. Events whose date
// lacks a year or does not parse are left alone, and past events are never
// reopened. It returns the
// number of events updated.
func (s *EventService) RefreshPast(ctx context.Context, now time.Time) (int, error) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing events: %w", err)
	}

	var (
		updated int
		errs    []error
	)
	for _, e := range events {
		if e.IsPast {
			continue
		}
		t, ok := ParseEventDate(e.Date, now)
		if !ok {
			slog.DebugContext(ctx, "skipping event with unparseable date", "event_id", e.ID, "date", e.Date)
			continue
		}
		if !dayEnded(t, now) {
			continue
		}
		if err := s.store.SetEventPast(ctx, e.ID, true); err != nil {
			errs = append(errs, fmt.Errorf("event %d: %w", e.ID, err))
			continue
		}
		updated++
	}

	if updated > 0 {
		s.Invalidate(ctx)
	}
	return updated, errors.Join(errs...)
}

// Invalidate drops the cached catalog listing.
func (s *EventService) Invalidate(ctx context.Context) {
	if err := s.listing.Delete(ctx, catalogCacheKey); err != nil {
		slog.WarnContext(ctx, "failed to invalidate catalog cache", "error", err)
	}
}

// clean drops markup and decodes the entities the sanitizer escaped.
func (s *EventService) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(v)))
}
