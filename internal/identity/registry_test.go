// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package identity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db/kvdb"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"
)

func newTestRegistry(t *testing.T) (*Registry, *kvdb.RSVPStore) {
	t.Helper()
	bdb, err := bolt.Open(filepath.Join(t.TempDir(), "test.db"), 0600, nil)
	if err != nil {
		t.Fatalf("could not open bolt db: %v", err)
	}
	t.Cleanup(func() { bdb.Close() })

	rsvps, err := kvdb.NewRSVPStore(bdb)
	if err != nil {
		t.Fatalf("could not create rsvp store: %v", err)
	}
	identities, err := kvdb.NewIdentityStore(bdb)
	if err != nil {
		t.Fatalf("could not create identity store: %v", err)
	}
	return NewRegistry(identities, rsvps), rsvps
}

func TestResolveUnknownSession(t *testing.T) {
	registry, _ := newTestRegistry(t)

	if _, err := registry.Resolve(context.Background(), uuid.New()); !errors.Is(err, db.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestRememberAndResolve(t *testing.T) {
	ctx := context.Background()
	registry, rsvps := newTestRegistry(t)

	rsvp := &model.RSVP{ID: uuid.New(), Name: "Jane", StationID: "baker-street", FriendGroup: "Work", CreatedAt: time.Now().UTC()}
	if err := rsvps.PutRSVP(ctx, rsvp); err != nil {
		t.Fatalf("put rsvp failed: %v", err)
	}

	sessionID := uuid.New()
	if err := registry.Remember(ctx, sessionID, rsvp.ID); err != nil {
		t.Fatalf("remember failed: %v", err)
	}

	got, err := registry.Resolve(ctx, sessionID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got.ID != rsvp.ID || got.Name != "Jane" {
		t.Fatalf("resolved wrong rsvp: %+v", got)
	}
}

func TestResolveSelfCorrectsAfterRemoteDelete(t *testing.T) {
	ctx := context.Background()
	registry, rsvps := newTestRegistry(t)

	rsvp := &model.RSVP{ID: uuid.New(), Name: "Amir", StationID: "brixton", FriendGroup: "Uni", CreatedAt: time.Now().UTC()}
	if err := rsvps.PutRSVP(ctx, rsvp); err != nil {
		t.Fatalf("put rsvp failed: %v", err)
	}

	sessionID := uuid.New()
	if err := registry.Remember(ctx, sessionID, rsvp.ID); err != nil {
		t.Fatalf("remember failed: %v", err)
	}

	// An organizer deletes the RSVP on another device.
	if err := rsvps.DeleteRSVP(ctx, rsvp.ID); err != nil {
		t.Fatalf("delete rsvp failed: %v", err)
	}

	if _, err := registry.Resolve(ctx, sessionID); !errors.Is(err, db.ErrIdentityNotFound) {
		t.Fatalf("expected self-correction to ErrIdentityNotFound, got %v", err)
	}

	// The dangling binding is gone, the next resolve behaves like a first
	// visit even if the rsvp id gets reused.
	if _, err := registry.Resolve(ctx, sessionID); !errors.Is(err, db.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound on repeat resolve, got %v", err)
	}
}

func TestForgetIsIdempotent(t *testing.T) {
	registry, _ := newTestRegistry(t)
	sessionID := uuid.New()

	if err := registry.Forget(context.Background(), sessionID); err != nil {
		t.Fatalf("forgetting unknown session errored: %v", err)
	}
}
