// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package model

import (
	"time"

	"github.com/google/uuid"
)

// RSVP is a guest's registration. One RSVP per logical guest; the id is
// assigned by the store on creation.
type RSVP struct {
	ID          uuid.UUID `json:"id" form:"-"`
	Name        string    `json:"name" form:"name"`
	Email       string    `json:"email" form:"email"`
	StationID   string    `json:"stationId" form:"station_id"`
	FriendGroup string    `json:"friendGroup" form:"friend_group"`
	CreatedAt   time.Time `json:"createdAt" form:"-"`
}

// Booking assigns one RSVP to one arrival session. At most one live Booking
// exists per RSVP; replacing an assignment deletes the old Booking first.
type Booking struct {
	ID        uuid.UUID `json:"id"`
	RSVPID    uuid.UUID `json:"rsvpId"`
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}
