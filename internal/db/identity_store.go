// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/google/uuid"
)

// IdentityStore maps the opaque per-browser session id to the RSVP that
// browser created. It is the persistence behind session continuity, a
// returning visitor resolves to "their" RSVP without authentication.
type IdentityStore interface {
	Bind(ctx context.Context, sessionID, rsvpID uuid.UUID) error
	Lookup(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error)
	// Forget is idempotent.
	Forget(ctx context.Context, sessionID uuid.UUID) error
}
