// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the campus-events project.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/olegiv/campus-events/internal/store"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary SQLite store with migrations applied.
// It is closed when the test ends.
func TestDB(t *testing.T) *store.SQLite {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "campus-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return store.NewSQLite(db)
}

// SeededMemory returns an in-memory store loaded with the default catalog.
func SeededMemory(t *testing.T) *store.Memory {
	t.Helper()

	m := store.NewMemory()
	if err := store.Seed(context.Background(), m, store.DefaultCatalog()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return m
}
