// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"
)

type BookingStore interface {
	// PutBooking upserts the full record, last write wins.
	PutBooking(context.Context, *model.Booking) error
	// DeleteBooking is idempotent, removing an absent id is not an error.
	DeleteBooking(context.Context, uuid.UUID) error
	ListBookings(context.Context) ([]*model.Booking, error)
}
