// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/olegiv/campus-events/internal/model"
	"github.com/olegiv/campus-events/internal/store"
)

// RegistrationService records attendance and keeps the catalog cache in
// step with attendee counts.
type RegistrationService struct {
	store  store.Store
	events *EventService
}

// NewRegistrationService creates a RegistrationService.
func NewRegistrationService(st store.Store, events *EventService) *RegistrationService {
	return &RegistrationService{store: st, events: events}
}

// Register signs userID up for eventID. A second active registration for the
// same pair fails with store.ErrAlreadyRegistered.
func (s *RegistrationService) Register(ctx context.Context, userID, eventID int64) (model.Registration, error) {
	reg, err := s.store.Register(ctx, userID, eventID)
	if err != nil {
		if !errors.Is(err, store.ErrAlreadyRegistered) {
			slog.ErrorContext(ctx, "registration failed", "event_id", eventID, "error", err)
		}
		return model.Registration{}, err
	}
	s.events.Invalidate(ctx)

	slog.InfoContext(ctx, "registered for event", "event_id", eventID, "registration_id", reg.ID)
	return reg, nil
}

// IsRegistered reports whether the user holds an active registration.
func (s *RegistrationService) IsRegistered(ctx context.Context, userID, eventID int64) (bool, error) {
	return s.store.IsRegistered(ctx, userID, eventID)
}

// ListForUser returns all of the user's registrations.
func (s *RegistrationService) ListForUser(ctx context.Context, userID int64) ([]model.Registration, error) {
	return s.store.ListRegistrationsByUser(ctx, userID)
}

// Attendees returns the registrations for an event organized by organizer.
// Unknown events yield store.ErrNotFound; other organizers get ErrNotOrganizer.
func (s *RegistrationService) Attendees(ctx context.Context, organizer string, eventID int64) ([]model.Registration, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Organizer != organizer {
		return nil, ErrNotOrganizer
	}
	return s.store.ListRegistrationsByEvent(ctx, eventID)
}
