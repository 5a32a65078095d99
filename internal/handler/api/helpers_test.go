// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-events/internal/auth"
	"github.com/olegiv/campus-events/internal/cache"
	"github.com/olegiv/campus-events/internal/middleware"
	"github.com/olegiv/campus-events/internal/service"
	"github.com/olegiv/campus-events/internal/session"
	"github.com/olegiv/campus-events/internal/store"
	"github.com/olegiv/campus-events/internal/testutil"
)

// testParams keeps password hashing quick in tests.
var testParams = auth.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16, SaltLen: 8}

// testServer runs the API over a seeded memory store behind the same session
// middleware used in production.
type testServer struct {
	t     *testing.T
	srv   *httptest.Server
	store *store.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st := testutil.SeededMemory(t)

	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	events := service.NewEventService(st, c, 0)
	users := service.NewUserService(st, testParams)
	sm := session.NewMemory(true)

	h := NewHandler(Config{
		Events:        events,
		Registrations: service.NewRegistrationService(st, events),
		Users:         users,
		Store:         st,
		Sessions:      sm,
	})

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadUser(sm, users))
	r.Mount("/api", h.Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{t: t, srv: srv, store: st}
}

// client returns an HTTP client with its own cookie jar, i.e. its own session.
func (ts *testServer) client() *http.Client {
	ts.t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		ts.t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

// do sends a request with an optional JSON body and returns the status and body.
func (ts *testServer) do(c *http.Client, method, path string, body any) (int, []byte) {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reader = bytes.NewBufferString(raw)
		} else {
			data, err := json.Marshal(body)
			if err != nil {
				ts.t.Fatalf("marshal body: %v", err)
			}
			reader = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	if err != nil {
		ts.t.Fatalf("NewRequest: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		ts.t.Fatalf("reading body: %v", err)
	}
	return resp.StatusCode, data
}

// signUp registers username and returns a client holding its session.
func (ts *testServer) signUp(username string) *http.Client {
	ts.t.Helper()

	c := ts.client()
	status, body := ts.do(c, http.MethodPost, "/api/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	if status != http.StatusCreated {
		ts.t.Fatalf("sign up %s: status %d, body %s", username, status, body)
	}
	return c
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decoding %s: %v", data, err)
	}
	return v
}

func messageOf(t *testing.T, data []byte) string {
	t.Helper()
	return decode[MessageResponse](t, data).Message
}
