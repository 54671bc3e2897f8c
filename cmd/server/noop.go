// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"

	"github.com/google/uuid"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db"
)

// noopIdentityStore backs the jsondb development mode, every visit behaves
// like a first visit.
type noopIdentityStore struct{}

func (noopIdentityStore) Bind(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (noopIdentityStore) Lookup(context.Context, uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, db.ErrIdentityNotFound
}

func (noopIdentityStore) Forget(context.Context, uuid.UUID) error { return nil }
