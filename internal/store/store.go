// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store owns the event catalog, the saved-events and registration
// ledgers and the user directory. Two implementations share the Store
// interface: Memory (default, no durability) and SQLite.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/olegiv/campus-events/internal/model"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrNotFound signals that a looked-up record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyRegistered is returned by Register when the user already holds
	// an active registration for the event. Its text is shown to API clients.
	ErrAlreadyRegistered = errors.New("User is already registered for this event")

	// ErrDuplicateUser is returned by CreateUser when a unique constraint on
	// username or email rejects the insert.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrDuplicateEmail narrows ErrDuplicateUser to the email column.
	// errors.Is(ErrDuplicateEmail, ErrDuplicateUser) holds.
	ErrDuplicateEmail = fmt.Errorf("%w: email taken", ErrDuplicateUser)
)

// Store is the storage contract used by services and handlers.
// Returned records are copies; mutating them never changes stored state.
type Store interface {
	// Event catalog
	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id int64) (model.Event, error)
	CreateEvent(ctx context.Context, event model.Event) (model.Event, error)
	SetEventPast(ctx context.Context, id int64, isPast bool) error

	// Saved-events ledger
	ListSaved(ctx context.Context, userID int64) ([]model.SavedEvent, error)
	Save(ctx context.Context, userID, eventID int64) (model.SavedEvent, error)
	Unsave(ctx context.Context, userID, eventID int64) error

	// Registration ledger
	IsRegistered(ctx context.Context, userID, eventID int64) (bool, error)
	Register(ctx context.Context, userID, eventID int64) (model.Registration, error)
	ListRegistrationsByUser(ctx context.Context, userID int64) ([]model.Registration, error)
	ListRegistrationsByEvent(ctx context.Context, eventID int64) ([]model.Registration, error)

	// User directory
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	CreateUser(ctx context.Context, user model.User) (model.User, error)

	Ping(ctx context.Context) error
	Close() error
}
