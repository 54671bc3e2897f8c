// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/trace"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db"
)

const bucketIdentity = "identity_store"

func NewIdentityStore(db *bolt.DB) (*IdentityStore, error) {
	return &IdentityStore{db: db}, db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketIdentity))
		return err
	})
}

type IdentityStore struct {
	db *bolt.DB
}

func (s *IdentityStore) Bind(ctx context.Context, sessionID, rsvpID uuid.UUID) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "Bind")
	defer span.End()

	span.AddEvent("Update bucket")
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketIdentity)).Put(sessionID[:], rsvpID[:])
	})
}

func (s *IdentityStore) Lookup(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "Lookup")
	defer span.End()

	var rsvpID uuid.UUID
	span.AddEvent("View bucket")
	return rsvpID, s.db.View(func(tx *bolt.Tx) error {
		res := tx.Bucket([]byte(bucketIdentity)).Get(sessionID[:])
		if res == nil {
			return db.ErrIdentityNotFound
		}
		var err error
		rsvpID, err = uuid.FromBytes(res)
		return err
	})
}

func (s *IdentityStore) Forget(ctx context.Context, sessionID uuid.UUID) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "Forget")
	defer span.End()

	span.AddEvent("Update bucket")
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketIdentity)).Delete(sessionID[:])
	})
}
