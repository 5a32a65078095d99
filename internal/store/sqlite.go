// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/campus-events/internal/model"
)

// SQLite is a Store backed by a migrated SQLite database.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// Compile-time check that SQLite implements Store.
var _ Store = (*SQLite)(nil)

// NewSQLite wraps an open, migrated database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// DB exposes the underlying handle for collaborators sharing the database
// (the session store).
func (s *SQLite) DB() *sql.DB {
	return s.db
}

const eventColumns = `id, title, date, category, location, image, description, attendees, organizer, is_past`

// ListEvents returns all events in insertion order.
func (s *SQLite) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetEvent returns the event with the given id.
func (s *SQLite) GetEvent(ctx context.Context, id int64) (model.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	return e, err
}

// CreateEvent inserts an event. A non-zero ID on the input is kept.
func (s *SQLite) CreateEvent(ctx context.Context, event model.Event) (model.Event, error) {
	var (
		result sql.Result
		err    error
	)
	if event.ID != 0 {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO events (id, title, date, category, location, image, description, attendees, organizer, is_past)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, event.ID, event.Title, event.Date, event.Category, event.Location, event.Image,
			event.Description, event.Attendees, event.Organizer, event.IsPast)
	} else {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO events (title, date, category, location, image, description, attendees, organizer, is_past)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, event.Title, event.Date, event.Category, event.Location, event.Image,
			event.Description, event.Attendees, event.Organizer, event.IsPast)
	}
	if err != nil {
		return model.Event{}, fmt.Errorf("creating event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Event{}, fmt.Errorf("getting last insert id: %w", err)
	}
	event.ID = id
	return event, nil
}

// SetEventPast updates the past flag of an event.
func (s *SQLite) SetEventPast(ctx context.Context, id int64, isPast bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE events SET is_past = ? WHERE id = ?`, isPast, id)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	return requireAffected(result)
}

// ListSaved returns the user's saved events in insertion order.
func (s *SQLite) ListSaved(ctx context.Context, userID int64) ([]model.SavedEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, event_id FROM saved_events WHERE user_id = ? ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing saved events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	saved := make([]model.SavedEvent, 0)
	for rows.Next() {
		var se model.SavedEvent
		if err := rows.Scan(&se.ID, &se.UserID, &se.EventID); err != nil {
			return nil, fmt.Errorf("scanning saved event: %w", err)
		}
		saved = append(saved, se)
	}
	return saved, rows.Err()
}

// Save bookmarks an event for a user without de-duplication.
func (s *SQLite) Save(ctx context.Context, userID, eventID int64) (model.SavedEvent, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO saved_events (user_id, event_id) VALUES (?, ?)`, userID, eventID)
	if err != nil {
		return model.SavedEvent{}, fmt.Errorf("saving event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.SavedEvent{}, fmt.Errorf("getting last insert id: %w", err)
	}
	return model.SavedEvent{ID: id, UserID: userID, EventID: eventID}, nil
}

// Unsave removes every bookmark matching the pair.
func (s *SQLite) Unsave(ctx context.Context, userID, eventID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saved_events WHERE user_id = ? AND event_id = ?`, userID, eventID); err != nil {
		return fmt.Errorf("unsaving event: %w", err)
	}
	return nil
}

// IsRegistered reports whether the user holds an active registration for the event.
func (s *SQLite) IsRegistered(ctx context.Context, userID, eventID int64) (bool, error) {
	return isRegistered(ctx, s.db, userID, eventID)
}

// Register records a registration and increments the event's attendee count
// in one transaction. The partial unique index on active registrations backs
// up the explicit check.
func (s *SQLite) Register(ctx context.Context, userID, eventID int64) (model.Registration, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Registration{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	registered, err := isRegistered(ctx, tx, userID, eventID)
	if err != nil {
		return model.Registration{}, err
	}
	if registered {
		return model.Registration{}, ErrAlreadyRegistered
	}

	reg := model.Registration{
		UserID:       userID,
		EventID:      eventID,
		Status:       model.StatusRegistered,
		RegisteredAt: s.now(),
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO registrations (user_id, event_id, status, registered_at)
		VALUES (?, ?, ?, ?)
	`, reg.UserID, reg.EventID, string(reg.Status), reg.RegisteredAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Registration{}, ErrAlreadyRegistered
		}
		return model.Registration{}, fmt.Errorf("creating registration: %w", err)
	}

	if reg.ID, err = result.LastInsertId(); err != nil {
		return model.Registration{}, fmt.Errorf("getting last insert id: %w", err)
	}

	// Zero rows affected means the event is unknown; the registration stands.
	if _, err := tx.ExecContext(ctx, `UPDATE events SET attendees = attendees + 1 WHERE id = ?`, eventID); err != nil {
		return model.Registration{}, fmt.Errorf("incrementing attendees: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Registration{}, fmt.Errorf("committing registration: %w", err)
	}
	return reg, nil
}

// ListRegistrationsByUser returns all of a user's registrations, any status.
func (s *SQLite) ListRegistrationsByUser(ctx context.Context, userID int64) ([]model.Registration, error) {
	return s.queryRegistrations(ctx, `WHERE user_id = ?`, userID)
}

// ListRegistrationsByEvent returns all registrations for an event, any status.
func (s *SQLite) ListRegistrationsByEvent(ctx context.Context, eventID int64) ([]model.Registration, error) {
	return s.queryRegistrations(ctx, `WHERE event_id = ?`, eventID)
}

// GetUser returns the user with the given id.
func (s *SQLite) GetUser(ctx context.Context, id int64) (model.User, error) {
	return s.queryUser(ctx, `WHERE id = ?`, id)
}

// GetUserByUsername returns the user with the given username.
func (s *SQLite) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return s.queryUser(ctx, `WHERE username = ?`, username)
}

// GetUserByEmail returns the user with the given email.
func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.queryUser(ctx, `WHERE email = ?`, email)
}

// CreateUser stores a user. Unique columns reject taken usernames and emails
// with ErrDuplicateUser.
func (s *SQLite) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	user.CreatedAt = s.now()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password, created_at) VALUES (?, ?, ?, ?)
	`, user.Username, user.Email, user.Password, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "users.email") {
				return model.User{}, ErrDuplicateEmail
			}
			return model.User{}, ErrDuplicateUser
		}
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	if user.ID, err = result.LastInsertId(); err != nil {
		return model.User{}, fmt.Errorf("getting last insert id: %w", err)
	}
	return user, nil
}

// Ping verifies the database connection.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func isRegistered(ctx context.Context, q querier, userID, eventID int64) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM registrations
		WHERE user_id = ? AND event_id = ? AND status = ?
	`, userID, eventID, string(model.StatusRegistered)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking registration: %w", err)
	}
	return count > 0, nil
}

func (s *SQLite) queryRegistrations(ctx context.Context, where string, arg any) ([]model.Registration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, event_id, status, registered_at FROM registrations `+where+` ORDER BY id
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("listing registrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	regs := make([]model.Registration, 0)
	for rows.Next() {
		var (
			r      model.Registration
			status string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.EventID, &status, &r.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scanning registration: %w", err)
		}
		if r.Status, err = model.ParseRegistrationStatus(status); err != nil {
			return nil, err
		}
		regs = append(regs, r)
	}
	return regs, rows.Err()
}

func (s *SQLite) queryUser(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password, created_at FROM users `+where,
		arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Date, &e.Category, &e.Location, &e.Image,
		&e.Description, &e.Attendees, &e.Organizer, &e.IsPast)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Event{}, err
		}
		return model.Event{}, fmt.Errorf("scanning event: %w", err)
	}
	return e, nil
}

func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
