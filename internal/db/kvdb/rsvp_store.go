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

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"
)

const bucketRSVP = "rsvp_store"

func NewRSVPStore(db *bolt.DB) (*RSVPStore, error) {
	return &RSVPStore{db: db}, db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRSVP))
		return err
	})
}

type RSVPStore struct {
	db *bolt.DB
}

func (s *RSVPStore) PutRSVP(ctx context.Context, rsvp *model.RSVP) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "PutRSVP")
	defer span.End()

	if rsvp.ID == uuid.Nil {
		err := errors.New("rsvp ID is required")
		span.RecordError(err)
		return err
	}

	j, err := json.Marshal(rsvp)
	if err != nil {
		return err
	}

	span.AddEvent("Update bucket")
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRSVP)).Put(rsvp.ID[:], j)
	})
}

func (s *RSVPStore) DeleteRSVP(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "DeleteRSVP")
	defer span.End()

	if id == uuid.Nil {
		err := errors.New("rsvp ID is required")
		span.RecordError(err)
		return err
	}
	span.AddEvent("Update bucket")
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRSVP)).Delete(id[:])
	})
}

func (s *RSVPStore) ListRSVPs(ctx context.Context) ([]*model.RSVP, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListRSVPs")
	defer span.End()

	span.AddEvent("View bucket")
	var rsvps []*model.RSVP
	return rsvps, s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketRSVP))
		return bucket.ForEach(func(_, v []byte) error {
			rsvp := &model.RSVP{}
			if err := json.Unmarshal(v, rsvp); err != nil {
				span.RecordError(err)
				return err
			}
			rsvps = append(rsvps, rsvp)
			return nil
		})
	})
}

func (s *RSVPStore) GetRSVPByID(ctx context.Context, id uuid.UUID) (*model.RSVP, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetRSVPByID")
	defer span.End()
	span.AddEvent("View bucket")
	rsvp := &model.RSVP{}
	return rsvp, s.db.View(func(tx *bolt.Tx) error {
		res := tx.Bucket([]byte(bucketRSVP)).Get(id[:])
		if res == nil {
			span.RecordError(db.ErrRSVPNotFound)
			return db.ErrRSVPNotFound
		}
		return json.Unmarshal(res, rsvp)
	})
}
