// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

// Package party reconciles the two synchronized collections, rsvps and
// bookings, into derived views and exposes the mutation operations that keep
// them consistent: one booking per guest (replace, not append) and cascade
// delete of a guest's booking with the guest. Capacity is the caller's check,
// the core never rejects an over-capacity assignment on its own.
package party

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/realtime"
)

var ErrMissingField = errors.New("name, stationId and friendGroup are required")

func NewCore(store *realtime.Store) *Core {
	return &Core{
		store: store,
		snap: Snapshot{
			RSVPs:    make(map[uuid.UUID]*model.RSVP),
			Bookings: make(map[uuid.UUID]*model.Booking),
		},
	}
}

type Core struct {
	store *realtime.Store

	mu   sync.RWMutex
	snap Snapshot
}

// Run keeps the in-memory snapshot current from the two store subscriptions
// until ctx is done. Each delivery replaces the whole map, partial updates
// are never applied.
func (c *Core) Run(ctx context.Context) error {
	rsvps, stopRSVPs := c.store.SubscribeRSVPs(ctx)
	defer stopRSVPs()
	bookings, stopBookings := c.store.SubscribeBookings(ctx)
	defer stopBookings()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-rsvps:
			if !ok {
				return nil
			}
			c.mu.Lock()
			c.snap.RSVPs = snap
			c.mu.Unlock()
		case snap, ok := <-bookings:
			if !ok {
				return nil
			}
			c.mu.Lock()
			c.snap.Bookings = snap
			c.mu.Unlock()
		}
	}
}

// Refresh loads both collections synchronously, used once at startup so the
// first request does not race the subscription warm-up.
func (c *Core) Refresh(ctx context.Context) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Core.Refresh")
	defer span.End()

	rsvps, err := c.store.ListRSVPs(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	bookings, err := c.store.ListBookings(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	snap := Snapshot{
		RSVPs:    make(map[uuid.UUID]*model.RSVP, len(rsvps)),
		Bookings: make(map[uuid.UUID]*model.Booking, len(bookings)),
	}
	for _, r := range rsvps {
		snap.RSVPs[r.ID] = r
	}
	for _, b := range bookings {
		snap.Bookings[b.ID] = b
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
	return nil
}

// Snapshot returns the current reconciled state. The maps are replaced
// wholesale on every update and must be treated as read-only.
func (c *Core) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// AddRSVP writes a new guest registration. Field validation beyond the three
// required fields is the form's job, not the core's.
func (c *Core) AddRSVP(ctx context.Context, name, email, stationID, friendGroup string) (*model.RSVP, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Core.AddRSVP")
	defer span.End()

	if name == "" || stationID == "" || friendGroup == "" {
		span.RecordError(ErrMissingField)
		return nil, ErrMissingField
	}

	rsvp := &model.RSVP{
		ID:          c.store.GenerateID(),
		Name:        name,
		Email:       email,
		StationID:   stationID,
		FriendGroup: friendGroup,
		CreatedAt:   time.Now().UTC(),
	}
	if err := c.store.PutRSVP(ctx, rsvp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return rsvp, nil
}

// UpdateRSVP overwrites the full record at the same id. Callers pass the
// complete merged record, there is no partial-field patch.
func (c *Core) UpdateRSVP(ctx context.Context, rsvp *model.RSVP) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Core.UpdateRSVP")
	defer span.End()

	if rsvp.ID == uuid.Nil {
		err := errors.New("rsvp ID is required for updating")
		span.RecordError(err)
		return err
	}
	if err := c.store.PutRSVP(ctx, rsvp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// DeleteRSVP removes the guest and cascades to their booking. The two writes
// are separate store calls, a crash in between leaves a transient orphan
// booking that the views filter until it is cleaned up.
func (c *Core) DeleteRSVP(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Core.DeleteRSVP")
	defer span.End()

	if err := c.store.RemoveRSVP(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return c.removeBookingsFor(ctx, span, id)
}

// AddBooking assigns a guest to a session with replace semantics: any
// existing booking for the guest is deleted first, then the new one is
// inserted. Not atomic, a concurrent reader can momentarily observe the guest
// unassigned, which self-heals once both writes land.
func (c *Core) AddBooking(ctx context.Context, rsvpID uuid.UUID, sessionID string) (*model.Booking, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Core.AddBooking")
	defer span.End()

	if err := c.removeBookingsFor(ctx, span, rsvpID); err != nil {
		return nil, err
	}

	booking := &model.Booking{
		ID:        c.store.GenerateID(),
		RSVPID:    rsvpID,
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.store.PutBooking(ctx, booking); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return booking, nil
}

// UnassignRSVP deletes the guest's booking, a no-op if none exists.
func (c *Core) UnassignRSVP(ctx context.Context, rsvpID uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Core.UnassignRSVP")
	defer span.End()

	return c.removeBookingsFor(ctx, span, rsvpID)
}

func (c *Core) removeBookingsFor(ctx context.Context, span trace.Span, rsvpID uuid.UUID) error {
	bookings, err := c.store.ListBookings(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	for _, b := range bookings {
		if b.RSVPID != rsvpID {
			continue
		}
		if err := c.store.RemoveBooking(ctx, b.ID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return nil
}
