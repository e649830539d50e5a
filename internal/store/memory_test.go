// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreCRUD(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	// Missing key
	_, err := s.Get(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: got %v, want ErrNotFound", err)
	}

	// Set and get
	if err := s.Set(ctx, "k", []byte("hello")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("Get: got %q, want %q", got, "hello")
	}

	// Overwrite
	if err := s.Set(ctx, "k", []byte("world")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _ = s.Get(ctx, "k")
	if string(got) != "world" {
		t.Fatalf("Get after overwrite: got %q", got)
	}

	// Delete
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: got %v, want ErrNotFound", err)
	}

	// Deleting a missing key is fine
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	val := []byte("original")
	if err := s.Set(ctx, "k", val); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Mutating the caller's slice must not change the stored value
	val[0] = 'X'
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("stored value mutated: got %q", got)
	}

	// Mutating the returned slice must not change the stored value
	got[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "original" {
		t.Fatalf("returned value aliased: got %q", again)
	}
}
