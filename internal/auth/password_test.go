// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"testing"
)

// fastParams keeps tests quick.
var fastParams = Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16, SaltLen: 8}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Errorf("unexpected hash prefix: %s", hash)
	}
	if strings.Contains(hash, "changeme") {
		t.Error("hash contains plaintext")
	}
}

func TestHashPassword_UniqueSalt(t *testing.T) {
	h := NewHasher(fastParams)

	a, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}

func TestCheckPassword_Correct(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("changeme", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !valid {
		t.Fatal("Correct password was rejected")
	}
}

func TestCheckPassword_Wrong(t *testing.T) {
	h := NewHasher(fastParams)
	hash, err := h.Hash("changeme")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	valid, err := h.Verify("wrongpassword", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if valid {
		t.Fatal("Wrong password was accepted")
	}
}

func TestVerify_UsesStoredParams(t *testing.T) {
	old := NewHasher(fastParams)
	hash, err := old.Hash("pw")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	valid, err := CheckPassword("pw", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !valid {
		t.Fatal("hash made with other parameters should still verify")
	}
}

func TestVerify_InvalidHash(t *testing.T) {
	h := NewHasher(fastParams)

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"plaintext", "password123"},
		{"wrong algorithm", "$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$a2V5"},
		{"bad version", "$argon2id$v=x$m=1024,t=1,p=1$c2FsdA$a2V5"},
		{"bad params", "$argon2id$v=19$garbage$c2FsdA$a2V5"},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5"},
		{"bad key", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, err := h.Verify("pw", tt.hash)
			if !errors.Is(err, ErrInvalidHash) {
				t.Errorf("Verify error = %v, want ErrInvalidHash", err)
			}
			if valid {
				t.Error("invalid hash must not verify")
			}
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	current := NewHasher(DefaultParams)

	fresh, err := current.Hash("pw")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if current.NeedsRehash(fresh) {
		t.Error("hash with current params should not need rehash")
	}

	old, err := NewHasher(fastParams).Hash("pw")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !current.NeedsRehash(old) {
		t.Error("hash with old params should need rehash")
	}

	if !current.NeedsRehash("not-a-hash") {
		t.Error("unparseable hash should need rehash")
	}
}
