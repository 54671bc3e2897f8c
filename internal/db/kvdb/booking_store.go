// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/trace"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"
)

const bucketBooking = "booking_store"

func NewBookingStore(db *bolt.DB) (*BookingStore, error) {
	return &BookingStore{db: db}, db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketBooking))
		return err
	})
}

type BookingStore struct {
	db *bolt.DB
}

func (s *BookingStore) PutBooking(ctx context.Context, booking *model.Booking) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "PutBooking")
	defer span.End()

	if booking.ID == uuid.Nil {
		err := errors.New("booking ID is required")
		span.RecordError(err)
		return err
	}

	j, err := json.Marshal(booking)
	if err != nil {
		return err
	}

	span.AddEvent("Update bucket")
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketBooking)).Put(booking.ID[:], j)
	})
}

func (s *BookingStore) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "DeleteBooking")
	defer span.End()

	if id == uuid.Nil {
		err := errors.New("booking ID is required")
		span.RecordError(err)
		return err
	}
	span.AddEvent("Update bucket")
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketBooking)).Delete(id[:])
	})
}

func (s *BookingStore) ListBookings(ctx context.Context) ([]*model.Booking, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListBookings")
	defer span.End()

	span.AddEvent("View bucket")
	var bookings []*model.Booking
	return bookings, s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketBooking))
		return bucket.ForEach(func(_, v []byte) error {
			booking := &model.Booking{}
			if err := json.Unmarshal(v, booking); err != nil {
				span.RecordError(err)
				return err
			}
			bookings = append(bookings, booking)
			return nil
		})
	})
}
