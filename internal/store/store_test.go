// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-events/internal/model"
)

// testDB creates a temporary migrated database.
func testDB(t *testing.T) *SQLite {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "campus-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return NewSQLite(db)
}

// forEachStore runs fn against a fresh instance of every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, st Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemory())
	})
	t.Run("sqlite", func(t *testing.T) {
		fn(t, testDB(t))
	})
}

func seedEvent(t *testing.T, st Store, id int64, attendees int) model.Event {
	t.Helper()
	event, err := st.CreateEvent(context.Background(), model.Event{
		ID:        id,
		Title:     "Event",
		Date:      "March 20",
		Category:  "Music",
		Location:  "Hall",
		Attendees: attendees,
		Organizer: "Music Club",
	})
	require.NoError(t, err)
	return event
}

func TestListEvents(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		events, err := st.ListEvents(ctx)
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.NotNil(t, events, "empty catalog should be an empty slice")

		require.NoError(t, Seed(ctx, st, DefaultCatalog()))

		first, err := st.ListEvents(ctx)
		require.NoError(t, err)
		require.Len(t, first, 5)

		second, err := st.ListEvents(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second, "repeated listing should be identical")

		seen := make(map[int64]int)
		for i, e := range first {
			seen[e.ID]++
			assert.Equal(t, DefaultCatalog()[i].Title, e.Title, "insertion order")
		}
		for id, n := range seen {
			assert.Equal(t, 1, n, "event %d listed more than once", id)
		}
	})
}

func TestListEventsReturnsCopies(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		seedEvent(t, st, 1, 10)

		events, err := st.ListEvents(ctx)
		require.NoError(t, err)
		events[0].Attendees = 999

		stored, err := st.GetEvent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 10, stored.Attendees)
	})
}

func TestGetEventNotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		_, err := st.GetEvent(context.Background(), 404)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCreateEventAssignsID(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		seedEvent(t, st, 7, 0)

		created, err := st.CreateEvent(ctx, model.Event{Title: "Next", Organizer: "alice"})
		require.NoError(t, err)
		assert.Greater(t, created.ID, int64(7))
	})
}

func TestSetEventPast(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		seedEvent(t, st, 1, 0)

		require.NoError(t, st.SetEventPast(ctx, 1, true))
		event, err := st.GetEvent(ctx, 1)
		require.NoError(t, err)
		assert.True(t, event.IsPast)

		assert.ErrorIs(t, st.SetEventPast(ctx, 99, true), ErrNotFound)
	})
}

func TestSaveAndUnsave(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		saved, err := st.Save(ctx, 42, 1)
		require.NoError(t, err)
		assert.NotZero(t, saved.ID)
		assert.Equal(t, int64(42), saved.UserID)
		assert.Equal(t, int64(1), saved.EventID)

		_, err = st.Save(ctx, 42, 2)
		require.NoError(t, err)
		_, err = st.Save(ctx, 7, 1)
		require.NoError(t, err)

		list, err := st.ListSaved(ctx, 42)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, int64(1), list[0].EventID)
		assert.Equal(t, int64(2), list[1].EventID)

		require.NoError(t, st.Unsave(ctx, 42, 1))
		list, err = st.ListSaved(ctx, 42)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, int64(2), list[0].EventID)

		// Unsaving again is a no-op.
		require.NoError(t, st.Unsave(ctx, 42, 1))

		// Other users are unaffected.
		others, err := st.ListSaved(ctx, 7)
		require.NoError(t, err)
		assert.Len(t, others, 1)
	})
}

func TestSaveAllowsDuplicatesAndUnsaveRemovesAll(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		a, err := st.Save(ctx, 1, 5)
		require.NoError(t, err)
		b, err := st.Save(ctx, 1, 5)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)

		list, err := st.ListSaved(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		require.NoError(t, st.Unsave(ctx, 1, 5))
		list, err = st.ListSaved(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestRegisterScenario(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		seedEvent(t, st, 1, 10)

		reg, err := st.Register(ctx, 42, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(42), reg.UserID)
		assert.Equal(t, int64(1), reg.EventID)
		assert.Equal(t, model.StatusRegistered, reg.Status)
		assert.NotZero(t, reg.ID)
		assert.WithinDuration(t, time.Now(), reg.RegisteredAt, 5*time.Second)

		event, err := st.GetEvent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 11, event.Attendees)

		registered, err := st.IsRegistered(ctx, 42, 1)
		require.NoError(t, err)
		assert.True(t, registered)

		_, err = st.Register(ctx, 42, 1)
		require.ErrorIs(t, err, ErrAlreadyRegistered)
		assert.EqualError(t, err, "User is already registered for this event")

		event, err = st.GetEvent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 11, event.Attendees, "failed registration must not increment")

		regs, err := st.ListRegistrationsByUser(ctx, 42)
		require.NoError(t, err)
		assert.Len(t, regs, 1)
	})
}

func TestRegisterUnknownEvent(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		reg, err := st.Register(ctx, 1, 999)
		require.NoError(t, err, "registration for an unknown event still succeeds")
		assert.Equal(t, int64(999), reg.EventID)

		registered, err := st.IsRegistered(ctx, 1, 999)
		require.NoError(t, err)
		assert.True(t, registered)
	})
}

func TestIsRegisteredFalse(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		registered, err := st.IsRegistered(context.Background(), 1, 1)
		require.NoError(t, err)
		assert.False(t, registered)
	})
}

func TestListRegistrationsByEvent(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		seedEvent(t, st, 1, 0)
		seedEvent(t, st, 2, 0)

		for _, userID := range []int64{10, 11, 12} {
			_, err := st.Register(ctx, userID, 1)
			require.NoError(t, err)
		}
		_, err := st.Register(ctx, 10, 2)
		require.NoError(t, err)

		regs, err := st.ListRegistrationsByEvent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, regs, 3)
		for _, r := range regs {
			assert.Equal(t, int64(1), r.EventID)
		}

		byUser, err := st.ListRegistrationsByUser(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, byUser, 2)

		none, err := st.ListRegistrationsByEvent(ctx, 3)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestRegisterConcurrent(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		seedEvent(t, st, 1, 0)

		const workers = 20
		var (
			wg        sync.WaitGroup
			successes atomic.Int32
			dupes     atomic.Int32
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := st.Register(ctx, 42, 1)
				switch {
				case err == nil:
					successes.Add(1)
				case errors.Is(err, ErrAlreadyRegistered):
					dupes.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), successes.Load())
		assert.Equal(t, int32(workers-1), dupes.Load())

		event, err := st.GetEvent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, event.Attendees)
	})
}

func TestCreateAndGetUser(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		user, err := st.CreateUser(ctx, model.User{
			Username: "alice",
			Email:    "alice@x.com",
			Password: "hashed",
		})
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "hashed", user.Password)
		assert.WithinDuration(t, time.Now(), user.CreatedAt, 5*time.Second)

		byName, err := st.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byName.ID)
		assert.Equal(t, user.Email, byName.Email)
		assert.Equal(t, user.Password, byName.Password)
		assert.True(t, user.CreatedAt.Equal(byName.CreatedAt))

		byID, err := st.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", byID.Username)

		byEmail, err := st.GetUserByEmail(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
	})
}

func TestGetUserNotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		_, err := st.GetUser(ctx, 1)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = st.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = st.GetUserByEmail(ctx, "nobody@x.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSQLiteRejectsDuplicateUser(t *testing.T) {
	st := testDB(t)
	ctx := context.Background()

	_, err := st.CreateUser(ctx, model.User{Username: "bob", Email: "bob@x.com", Password: "h"})
	require.NoError(t, err)

	_, err = st.CreateUser(ctx, model.User{Username: "bob", Email: "other@x.com", Password: "h"})
	assert.ErrorIs(t, err, ErrDuplicateUser)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)

	_, err = st.CreateUser(ctx, model.User{Username: "robert", Email: "bob@x.com", Password: "h"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestSQLiteDBSharesHandle(t *testing.T) {
	st := testDB(t)

	var n int
	require.NoError(t, st.DB().QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n))
	assert.Zero(t, n)
}

func TestMemoryAllowsDuplicateUser(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	a, err := st.CreateUser(ctx, model.User{Username: "bob", Email: "bob@x.com"})
	require.NoError(t, err)
	b, err := st.CreateUser(ctx, model.User{Username: "bob", Email: "bob@x.com"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPing(t *testing.T) {
	forEachStore(t, func(t *testing.T, st Store) {
		assert.NoError(t, st.Ping(context.Background()))
	})
}
