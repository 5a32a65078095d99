// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/olegiv/campus-events/internal/model"
)

// Memory is an in-process Store. State is lost when the process exits.
// A single RWMutex guards every collection so that Register can check and
// insert atomically.
type Memory struct {
	mu sync.RWMutex

	events        []model.Event
	savedEvents   []model.SavedEvent
	registrations []model.Registration
	users         []model.User

	nextEventID        int64
	nextSavedEventID   int64
	nextRegistrationID int64
	nextUserID         int64

	now func() time.Time
}

// Compile-time check that Memory implements Store.
var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		nextEventID:        1,
		nextSavedEventID:   1,
		nextRegistrationID: 1,
		nextUserID:         1,
		now:                time.Now,
	}
}

// ListEvents returns all events in insertion order.
func (m *Memory) ListEvents(_ context.Context) ([]model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]model.Event, len(m.events))
	copy(events, m.events)
	return events, nil
}

// GetEvent returns the event with the given id.
func (m *Memory) GetEvent(_ context.Context, id int64) (model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.eventIndex(id)
	if idx < 0 {
		return model.Event{}, ErrNotFound
	}
	return m.events[idx], nil
}

// CreateEvent appends an event, assigning it the next id.
// A non-zero ID on the input is honored so that seeded catalogs keep their ids.
func (m *Memory) CreateEvent(_ context.Context, event model.Event) (model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.ID == 0 {
		event.ID = m.nextEventID
	}
	if event.ID >= m.nextEventID {
		m.nextEventID = event.ID + 1
	}
	m.events = append(m.events, event)
	return event, nil
}

// SetEventPast updates the past flag of an event.
func (m *Memory) SetEventPast(_ context.Context, id int64, isPast bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.eventIndex(id)
	if idx < 0 {
		return ErrNotFound
	}
	m.events[idx].IsPast = isPast
	return nil
}

// ListSaved returns the user's saved events in insertion order.
func (m *Memory) ListSaved(_ context.Context, userID int64) ([]model.SavedEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	saved := make([]model.SavedEvent, 0)
	for _, s := range m.savedEvents {
		if s.UserID == userID {
			saved = append(saved, s)
		}
	}
	return saved, nil
}

// Save bookmarks an event for a user. Identical pairs are not de-duplicated
// and the event id is not checked against the catalog.
func (m *Memory) Save(_ context.Context, userID, eventID int64) (model.SavedEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := model.SavedEvent{
		ID:      m.nextSavedEventID,
		UserID:  userID,
		EventID: eventID,
	}
	m.nextSavedEventID++
	m.savedEvents = append(m.savedEvents, saved)
	return saved, nil
}

// Unsave removes every bookmark matching the pair. Removing nothing is not an error.
func (m *Memory) Unsave(_ context.Context, userID, eventID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.savedEvents = slices.DeleteFunc(m.savedEvents, func(s model.SavedEvent) bool {
		return s.UserID == userID && s.EventID == eventID
	})
	return nil
}

// IsRegistered reports whether the user holds an active registration for the event.
func (m *Memory) IsRegistered(_ context.Context, userID, eventID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.isRegisteredLocked(userID, eventID), nil
}

// Register records a registration and increments the event's attendee count.
// The increment is skipped when the event does not exist; the registration is
// still created.
func (m *Memory) Register(_ context.Context, userID, eventID int64) (model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRegisteredLocked(userID, eventID) {
		return model.Registration{}, ErrAlreadyRegistered
	}

	reg := model.Registration{
		ID:           m.nextRegistrationID,
		UserID:       userID,
		EventID:      eventID,
		Status:       model.StatusRegistered,
		RegisteredAt: m.now(),
	}
	m.nextRegistrationID++
	m.registrations = append(m.registrations, reg)

	if idx := m.eventIndex(eventID); idx >= 0 {
		m.events[idx].Attendees++
	}

	return reg, nil
}

// ListRegistrationsByUser returns all of a user's registrations, any status.
func (m *Memory) ListRegistrationsByUser(_ context.Context, userID int64) ([]model.Registration, error) {
	return m.filterRegistrations(func(r model.Registration) bool { return r.UserID == userID }), nil
}

// ListRegistrationsByEvent returns all registrations for an event, any status.
func (m *Memory) ListRegistrationsByEvent(_ context.Context, eventID int64) ([]model.Registration, error) {
	return m.filterRegistrations(func(r model.Registration) bool { return r.EventID == eventID }), nil
}

// GetUser returns the user with the given id.
func (m *Memory) GetUser(_ context.Context, id int64) (model.User, error) {
	return m.findUser(func(u model.User) bool { return u.ID == id })
}

// GetUserByUsername returns the user with the given username.
func (m *Memory) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	return m.findUser(func(u model.User) bool { return u.Username == username })
}

// GetUserByEmail returns the user with the given email.
func (m *Memory) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	return m.findUser(func(u model.User) bool { return u.Email == email })
}

// CreateUser stores a user, assigning id and creation time. The password is
// stored exactly as supplied. Uniqueness is not enforced here.
func (m *Memory) CreateUser(_ context.Context, user model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.ID = m.nextUserID
	user.CreatedAt = m.now()
	m.nextUserID++
	m.users = append(m.users, user)
	return user, nil
}

// Ping always succeeds.
func (m *Memory) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// eventIndex returns the slice index of the event or -1. Caller must hold the lock.
func (m *Memory) eventIndex(id int64) int {
	return slices.IndexFunc(m.events, func(e model.Event) bool { return e.ID == id })
}

// isRegisteredLocked is IsRegistered without locking. Caller must hold the lock.
func (m *Memory) isRegisteredLocked(userID, eventID int64) bool {
	return slices.ContainsFunc(m.registrations, func(r model.Registration) bool {
		return r.UserID == userID && r.EventID == eventID && r.IsActive()
	})
}

func (m *Memory) filterRegistrations(match func(model.Registration) bool) []model.Registration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	regs := make([]model.Registration, 0)
	for _, r := range m.registrations {
		if match(r) {
			regs = append(regs, r)
		}
	}
	return regs
}

func (m *Memory) findUser(match func(model.User) bool) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := slices.IndexFunc(m.users, match)
	if idx < 0 {
		return model.User{}, ErrNotFound
	}
	return m.users[idx], nil
}
