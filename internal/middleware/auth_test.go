// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/olegiv/campus-events/internal/model"
	"github.com/olegiv/campus-events/internal/store"
)

type fakeUsers map[int64]model.User

func (f fakeUsers) Get(_ context.Context, id int64) (model.User, error) {
	u, ok := f[id]
	if !ok {
		return model.User{}, store.ErrNotFound
	}
	return u, nil
}

type failingUsers struct{}

func (failingUsers) Get(context.Context, int64) (model.User, error) {
	return model.User{}, errors.New("database down")
}

func newTestSessionManager() *scs.SessionManager {
	sm := scs.New()
	sm.Store = memstore.New()
	return sm
}

// withSessionUser runs a request through sm with userID stored in the session,
// then through LoadUser and the final handler.
func withSessionUser(t *testing.T, sm *scs.SessionManager, users UserLoader, userID int64, final http.Handler) *httptest.ResponseRecorder {
	t.Helper()

	chain := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID != 0 {
			sm.Put(r.Context(), SessionKeyUserID, userID)
		}
		LoadUser(sm, users)(final).ServeHTTP(w, r)
	}))

	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/user", nil))
	return rr
}

func TestLoadUser(t *testing.T) {
	sm := newTestSessionManager()
	users := fakeUsers{7: {ID: 7, Username: "alice"}}

	var got *model.User
	withSessionUser(t, sm, users, 7, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUser(r)
	}))

	if got == nil {
		t.Fatal("user not loaded into context")
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want alice", got.Username)
	}
}

func TestLoadUser_Anonymous(t *testing.T) {
	sm := newTestSessionManager()

	var got *model.User
	withSessionUser(t, sm, fakeUsers{}, 0, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUser(r)
	}))

	if got != nil {
		t.Errorf("GetUser = %+v, want nil", got)
	}
}

func TestLoadUser_MissingUserClearsSession(t *testing.T) {
	sm := newTestSessionManager()

	var sessionID int64 = -1
	withSessionUser(t, sm, fakeUsers{}, 99, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r) != nil {
			t.Error("missing user should not be loaded")
		}
		sessionID = sm.GetInt64(r.Context(), SessionKeyUserID)
	}))

	if sessionID != 0 {
		t.Errorf("session user id = %d, want cleared", sessionID)
	}
}

func TestLoadUser_LoaderError(t *testing.T) {
	sm := newTestSessionManager()

	called := false
	withSessionUser(t, sm, failingUsers{}, 5, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if GetUser(r) != nil {
			t.Error("user should not be loaded on error")
		}
	}))

	if !called {
		t.Error("request should continue anonymously")
	}
}

func TestRequireUser(t *testing.T) {
	protected := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("anonymous", func(t *testing.T) {
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/saved-events", nil))

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Status = %d, want %d", rr.Code, http.StatusUnauthorized)
		}
		var body map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body["message"] != "Not authenticated" {
			t.Errorf("message = %q, want %q", body["message"], "Not authenticated")
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/saved-events", nil)
		req = req.WithContext(context.WithValue(req.Context(), ContextKeyUser, model.User{ID: 1}))

		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)

		if rr.Code != http.StatusNoContent {
			t.Errorf("Status = %d, want %d", rr.Code, http.StatusNoContent)
		}
	})
}

func TestGetUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetUserID(req); id != 0 {
		t.Errorf("GetUserID without user = %d, want 0", id)
	}

	req = req.WithContext(context.WithValue(req.Context(), ContextKeyUser, model.User{ID: 42}))
	if id := GetUserID(req); id != 42 {
		t.Errorf("GetUserID = %d, want 42", id)
	}
}

func TestRequestPath(t *testing.T) {
	var got string
	handler := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = r.Context().Value(ContextKeyRequestPath).(string)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/events?q=rock", nil))

	if got != "/api/events" {
		t.Errorf("request path = %q, want /api/events", got)
	}
}
