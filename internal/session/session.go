// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the cookie session manager used for sign-in.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

// Lifetime is how long a session stays valid after sign-in.
const Lifetime = 24 * time.Hour

// New creates a session manager backed by st.
func New(st scs.Store, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = st

	sm.Lifetime = Lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev

	// __Host- cookies require Secure and Path=/ and no Domain.
	if !isDev {
		sm.Cookie.Name = "__Host-session"
		sm.Cookie.Path = "/"
	}

	return sm
}

// NewMemory creates a session manager with an in-process store.
// Sessions are lost on restart.
func NewMemory(isDev bool) *scs.SessionManager {
	return New(memstore.New(), isDev)
}

// NewSQLite creates a session manager storing sessions in the sessions table.
func NewSQLite(db *sql.DB, isDev bool) *scs.SessionManager {
	return New(sqlite3store.New(db), isDev)
}
