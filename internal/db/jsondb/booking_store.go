// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"
)

func NewBookingStore(filename string) (*BookingStore, error) {
	store := &BookingStore{
		bookings: make(map[uuid.UUID]*model.Booking),
		filename: filename,
	}

	if err := store.loadFromFile(); err != nil {
		return nil, err
	}
	return store, nil
}

type BookingStore struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]*model.Booking
	filename string
}

func (s *BookingStore) PutBooking(ctx context.Context, booking *model.Booking) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "PutBooking")
	defer span.End()

	if booking.ID == uuid.Nil {
		err := errors.New("booking ID is required")
		span.RecordError(err)
		return err
	}

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	s.bookings[booking.ID] = booking
	return s.saveToFile(ctx)
}

func (s *BookingStore) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteBooking")
	defer span.End()

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	delete(s.bookings, id)
	return s.saveToFile(ctx)
}

func (s *BookingStore) ListBookings(ctx context.Context) ([]*model.Booking, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListBookings")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	var res []*model.Booking
	for _, booking := range s.bookings {
		res = append(res, booking)
	}
	return res, nil
}

// saveToFile saves the current booking store to the JSON file.
func (s *BookingStore) saveToFile(ctx context.Context) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveToFile")
	defer span.End()

	fileData, err := json.MarshalIndent(s.bookings, "", "  ")
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := os.WriteFile(s.filename, fileData, 0644); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// loadFromFile loads booking data from the JSON file into the store.
func (s *BookingStore) loadFromFile() error {
	if _, err := os.Stat(s.filename); os.IsNotExist(err) {
		// File does not exist, no bookings to load
		return nil
	}

	fileData, err := os.ReadFile(s.filename)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return json.Unmarshal(fileData, &s.bookings)
}
