// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/olegiv/campus-events/internal/auth"
	"github.com/olegiv/campus-events/internal/model"
	"github.com/olegiv/campus-events/internal/store"
)

// SignUpInput is the account creation payload.
type SignUpInput struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanumunicode"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// UserService manages accounts and credentials.
type UserService struct {
	store    store.Store
	hasher   *auth.Hasher
	validate *validator.Validate

	// signUpMu serializes the uniqueness check and insert, which the memory
	// store does not enforce on its own.
	signUpMu sync.Mutex

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService creates a UserService hashing with the given parameters.
func NewUserService(st store.Store, params auth.Params) *UserService {
	return &UserService{
		store:    st,
		hasher:   auth.NewHasher(params),
		validate: newValidator(),
	}
}

// SignUp validates the input, checks username and email uniqueness, hashes
// the password and stores the user.
func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validateStruct(s.validate, in); err != nil {
		return model.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	s.signUpMu.Lock()
	defer s.signUpMu.Unlock()

	if err := s.checkAvailable(ctx, in.Username, in.Email); err != nil {
		return model.User{}, err
	}

	user, err := s.store.CreateUser(ctx, model.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
	})
	if errors.Is(err, store.ErrDuplicateEmail) {
		return model.User{}, ErrEmailTaken
	}
	if errors.Is(err, store.ErrDuplicateUser) {
		return model.User{}, ErrUsernameTaken
	}
	if err != nil {
		return model.User{}, err
	}

	slog.InfoContext(ctx, "user signed up", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *UserService) checkAvailable(ctx context.Context, username, email string) error {
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// Authenticate returns the user whose credentials match. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		// Spend the same hashing time as a real check.
		_, _ = s.hasher.Verify(password, s.dummy())
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		slog.WarnContext(ctx, "stored password hash is unreadable", "user_id", user.ID, "error", err)
		return model.User{}, ErrInvalidCredentials
	}
	if !ok {
		return model.User{}, ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.Password) {
		slog.InfoContext(ctx, "password hash uses outdated parameters", "user_id", user.ID)
	}
	return user, nil
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id int64) (model.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("campus-events-dummy-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
