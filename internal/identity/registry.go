// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

// Package identity gives a returning visitor "their" RSVP back without any
// authentication. Each browser carries an opaque session id in a cookie, the
// registry binds that id to the RSVP it created. The binding is revalidated
// against the live rsvp collection on every resolve and forgotten when the
// RSVP was deleted on another device, local belief self-corrects instead of
// pointing at a dangling id.
package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"
)

func NewRegistry(identities db.IdentityStore, rsvps db.RSVPStore) *Registry {
	return &Registry{
		identities: identities,
		rsvps:      rsvps,
	}
}

type Registry struct {
	identities db.IdentityStore
	rsvps      db.RSVPStore
}

// Remember binds a session to the RSVP it just created.
func (r *Registry) Remember(ctx context.Context, sessionID, rsvpID uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Registry.Remember")
	defer span.End()

	if err := r.identities.Bind(ctx, sessionID, rsvpID); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Resolve returns the RSVP belonging to a session. db.ErrIdentityNotFound
// means the visitor has not RSVP'd yet, either a first visit or the RSVP was
// removed remotely in the meantime.
func (r *Registry) Resolve(ctx context.Context, sessionID uuid.UUID) (*model.RSVP, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Registry.Resolve")
	defer span.End()

	rsvpID, err := r.identities.Lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rsvp, err := r.rsvps.GetRSVPByID(ctx, rsvpID)
	if errors.Is(err, db.ErrRSVPNotFound) {
		span.AddEvent("rsvp deleted upstream, forgetting binding")
		if err := r.identities.Forget(ctx, sessionID); err != nil {
			span.RecordError(err)
			return nil, err
		}
		return nil, db.ErrIdentityNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return rsvp, nil
}

// Forget drops the binding, used when a guest cancels their own RSVP.
func (r *Registry) Forget(ctx context.Context, sessionID uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Registry.Forget")
	defer span.End()

	return r.identities.Forget(ctx, sessionID)
}
