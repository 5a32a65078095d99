// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/olegiv/campus-events/internal/model"
	"github.com/olegiv/campus-events/internal/store"
)

func TestRegistrationService_Register(t *testing.T) {
	events, st := newTestEventService(t)
	svc := NewRegistrationService(st, events)
	ctx := context.Background()

	reg, err := svc.Register(ctx, 42, 1)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.UserID != 42 || reg.EventID != 1 || reg.Status != model.StatusRegistered {
		t.Errorf("Register = %+v", reg)
	}

	_, err = svc.Register(ctx, 42, 1)
	if !errors.Is(err, store.ErrAlreadyRegistered) {
		t.Fatalf("second Register error = %v, want ErrAlreadyRegistered", err)
	}
	if err.Error() != "User is already registered for this event" {
		t.Errorf("error message = %q", err.Error())
	}

	ok, err := svc.IsRegistered(ctx, 42, 1)
	if err != nil || !ok {
		t.Errorf("IsRegistered = %v, %v; want true", ok, err)
	}
	ok, _ = svc.IsRegistered(ctx, 42, 2)
	if ok {
		t.Error("IsRegistered for other event = true")
	}

	list, err := svc.ListForUser(ctx, 42)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("ListForUser = %d registrations, want 1", len(list))
	}
}

func TestRegistrationService_Attendees(t *testing.T) {
	events, st := newTestEventService(t)
	svc := NewRegistrationService(st, events)
	ctx := context.Background()

	event, err := st.CreateEvent(ctx, model.Event{Title: "Jazz", Organizer: "alice"})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	for _, userID := range []int64{1, 2} {
		if _, err := svc.Register(ctx, userID, event.ID); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	regs, err := svc.Attendees(ctx, "alice", event.ID)
	if err != nil {
		t.Fatalf("Attendees: %v", err)
	}
	if len(regs) != 2 {
		t.Errorf("Attendees = %d, want 2", len(regs))
	}

	if _, err := svc.Attendees(ctx, "bob", event.ID); !errors.Is(err, ErrNotOrganizer) {
		t.Errorf("other organizer error = %v, want ErrNotOrganizer", err)
	}
	if _, err := svc.Attendees(ctx, "alice", 999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown event error = %v, want ErrNotFound", err)
	}
}
