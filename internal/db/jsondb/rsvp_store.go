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

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"
)

func NewRSVPStore(filename string) (*RSVPStore, error) {
	store := &RSVPStore{
		rsvps:    make(map[uuid.UUID]*model.RSVP),
		filename: filename,
	}

	if err := store.loadFromFile(); err != nil {
		return nil, err
	}
	return store, nil
}

type RSVPStore struct {
	mu       sync.RWMutex
	rsvps    map[uuid.UUID]*model.RSVP
	filename string
}

func (s *RSVPStore) PutRSVP(ctx context.Context, rsvp *model.RSVP) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "PutRSVP")
	defer span.End()

	if rsvp.ID == uuid.Nil {
		err := errors.New("rsvp ID is required")
		span.RecordError(err)
		return err
	}

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	s.rsvps[rsvp.ID] = rsvp
	return s.saveToFile(ctx)
}

func (s *RSVPStore) DeleteRSVP(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteRSVP")
	defer span.End()

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	delete(s.rsvps, id)
	return s.saveToFile(ctx)
}

func (s *RSVPStore) ListRSVPs(ctx context.Context) ([]*model.RSVP, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListRSVPs")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	var res []*model.RSVP
	for _, rsvp := range s.rsvps {
		res = append(res, rsvp)
	}
	return res, nil
}

func (s *RSVPStore) GetRSVPByID(ctx context.Context, id uuid.UUID) (*model.RSVP, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetRSVPByID")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	rsvp, ok := s.rsvps[id]
	if !ok {
		span.RecordError(db.ErrRSVPNotFound)
		return nil, db.ErrRSVPNotFound
	}
	return rsvp, nil
}

// saveToFile saves the current rsvp store to the JSON file.
func (s *RSVPStore) saveToFile(ctx context.Context) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveToFile")
	defer span.End()

	fileData, err := json.MarshalIndent(s.rsvps, "", "  ")
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

// loadFromFile loads rsvp data from the JSON file into the store.
func (s *RSVPStore) loadFromFile() error {
	if _, err := os.Stat(s.filename); os.IsNotExist(err) {
		// File does not exist, no rsvps to load
		return nil
	}

	fileData, err := os.ReadFile(s.filename)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return json.Unmarshal(fileData, &s.rsvps)
}
