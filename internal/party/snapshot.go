// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package party

import (
	"sort"

	"github.com/google/uuid"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"
)

// Snapshot is the reconciled state of the two synchronized collections. The
// view methods are pure functions over the two maps, no hidden counters, so
// correctness can be asserted from constructed fixtures alone.
type Snapshot struct {
	RSVPs    map[uuid.UUID]*model.RSVP
	Bookings map[uuid.UUID]*model.Booking
}

// UnassignedGuests lists every RSVP that appears in no booking, ordered by
// creation time so the output is stable across reconnects.
func (s Snapshot) UnassignedGuests() []*model.RSVP {
	booked := make(map[uuid.UUID]bool, len(s.Bookings))
	for _, b := range s.Bookings {
		booked[b.RSVPID] = true
	}

	var out []*model.RSVP
	for _, r := range s.RSVPs {
		if !booked[r.ID] {
			out = append(out, r)
		}
	}
	sortRSVPs(out)
	return out
}

// GuestsBySession resolves every booking through the rsvp map. Bookings
// referencing a deleted RSVP are dropped, a dangling foreign key is an
// expected transient between the two cascade-delete writes, not an error.
func (s Snapshot) GuestsBySession() map[string][]*model.RSVP {
	out := make(map[string][]*model.RSVP)
	for _, b := range s.Bookings {
		rsvp, ok := s.RSVPs[b.RSVPID]
		if !ok {
			continue
		}
		out[b.SessionID] = append(out[b.SessionID], rsvp)
	}
	for _, guests := range out {
		sortRSVPs(guests)
	}
	return out
}

// SessionOccupancy counts the resolvable bookings of one session. The caller
// compares it against the session's capacity before assigning, a soft check
// only, two concurrent assignments into the last slot can both land.
func (s Snapshot) SessionOccupancy(sessionID string) int {
	n := 0
	for _, b := range s.Bookings {
		if b.SessionID != sessionID {
			continue
		}
		if _, ok := s.RSVPs[b.RSVPID]; ok {
			n++
		}
	}
	return n
}

// BookingFor returns the live booking of a guest, if any.
func (s Snapshot) BookingFor(rsvpID uuid.UUID) (*model.Booking, bool) {
	for _, b := range s.Bookings {
		if b.RSVPID == rsvpID {
			return b, true
		}
	}
	return nil, false
}

func sortRSVPs(rsvps []*model.RSVP) {
	sort.Slice(rsvps, func(i, j int) bool {
		if rsvps[i].CreatedAt.Equal(rsvps[j].CreatedAt) {
			return rsvps[i].ID.String() < rsvps[j].ID.String()
		}
		return rsvps[i].CreatedAt.Before(rsvps[j].CreatedAt)
	})
}
