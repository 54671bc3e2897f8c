// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

// Package realtime turns the plain persistence stores into synchronized
// collections. Every mutation is written through to the backing store and
// then fanned out to all subscribers, including the writer itself - a client
// observes its own write as a normal update event, not as a special case.
// Writes are last-write-wins, removals are idempotent and no ordering is
// guaranteed between writers.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"
)

type Collection string

const (
	CollectionRSVPs    Collection = "rsvps"
	CollectionBookings Collection = "bookings"
)

// Broker bridges change notifications between server instances. A nil broker
// means single-instance operation, local fan-out only.
type Broker interface {
	Publish(ctx context.Context, collection Collection) error
	Subscribe(ctx context.Context, handler func(Collection)) error
}

func NewStore(rsvps db.RSVPStore, bookings db.BookingStore, broker Broker) *Store {
	return &Store{
		rsvps:    rsvps,
		bookings: bookings,
		broker:   broker,
		logger:   slog.Default().WithGroup("realtime"),
		signals:  make(map[Collection]map[int]chan struct{}),
	}
}

type Store struct {
	rsvps    db.RSVPStore
	bookings db.BookingStore
	broker   Broker
	logger   *slog.Logger

	mu      sync.Mutex
	signals map[Collection]map[int]chan struct{}
	nextSub int
}

// Run pumps remote change notifications into the local fan-out until ctx is
// done. It is a no-op without a broker.
func (s *Store) Run(ctx context.Context) error {
	if s.broker == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.broker.Subscribe(ctx, func(collection Collection) {
		s.wakeLocal(collection)
	})
}

func (s *Store) GenerateID() uuid.UUID {
	return uuid.New()
}

func (s *Store) PutRSVP(ctx context.Context, rsvp *model.RSVP) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "PutRSVP")
	defer span.End()

	if err := s.rsvps.PutRSVP(ctx, rsvp); err != nil {
		span.RecordError(err)
		return err
	}
	s.notify(ctx, CollectionRSVPs)
	return nil
}

func (s *Store) RemoveRSVP(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "RemoveRSVP")
	defer span.End()

	if err := s.rsvps.DeleteRSVP(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	s.notify(ctx, CollectionRSVPs)
	return nil
}

func (s *Store) PutBooking(ctx context.Context, booking *model.Booking) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "PutBooking")
	defer span.End()

	if err := s.bookings.PutBooking(ctx, booking); err != nil {
		span.RecordError(err)
		return err
	}
	s.notify(ctx, CollectionBookings)
	return nil
}

func (s *Store) RemoveBooking(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "RemoveBooking")
	defer span.End()

	if err := s.bookings.DeleteBooking(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	s.notify(ctx, CollectionBookings)
	return nil
}

func (s *Store) ListRSVPs(ctx context.Context) ([]*model.RSVP, error) {
	return s.rsvps.ListRSVPs(ctx)
}

func (s *Store) GetRSVPByID(ctx context.Context, id uuid.UUID) (*model.RSVP, error) {
	return s.rsvps.GetRSVPByID(ctx, id)
}

func (s *Store) ListBookings(ctx context.Context) ([]*model.Booking, error) {
	return s.bookings.ListBookings(ctx)
}

// SubscribeRSVPs registers a live listener on the rsvp collection. The
// returned channel fires immediately with the current snapshot and again
// after every mutation. Delivery is coalescing, a slow consumer sees fewer
// snapshots but always ends on the latest one. The returned func releases the
// listener.
func (s *Store) SubscribeRSVPs(ctx context.Context) (<-chan map[uuid.UUID]*model.RSVP, func()) {
	return subscribe(ctx, s, CollectionRSVPs, func(ctx context.Context) (map[uuid.UUID]*model.RSVP, error) {
		list, err := s.rsvps.ListRSVPs(ctx)
		if err != nil {
			return nil, err
		}
		snap := make(map[uuid.UUID]*model.RSVP, len(list))
		for _, r := range list {
			snap[r.ID] = r
		}
		return snap, nil
	})
}

// SubscribeBookings registers a live listener on the booking collection, with
// the same contract as SubscribeRSVPs.
func (s *Store) SubscribeBookings(ctx context.Context) (<-chan map[uuid.UUID]*model.Booking, func()) {
	return subscribe(ctx, s, CollectionBookings, func(ctx context.Context) (map[uuid.UUID]*model.Booking, error) {
		list, err := s.bookings.ListBookings(ctx)
		if err != nil {
			return nil, err
		}
		snap := make(map[uuid.UUID]*model.Booking, len(list))
		for _, b := range list {
			snap[b.ID] = b
		}
		return snap, nil
	})
}

func subscribe[T any](ctx context.Context, s *Store, collection Collection, load func(context.Context) (map[uuid.UUID]T, error)) (<-chan map[uuid.UUID]T, func()) {
	signal, release := s.register(collection)
	out := make(chan map[uuid.UUID]T)
	done := make(chan struct{})

	go func() {
		defer close(out)

		pending, err := load(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "could not load initial snapshot", "collection", collection, "error", err)
		}
		havePending := err == nil

		for {
			var outCh chan map[uuid.UUID]T
			if havePending {
				outCh = out
			}
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-signal:
				snap, err := load(ctx)
				if err != nil {
					s.logger.ErrorContext(ctx, "could not reload snapshot", "collection", collection, "error", err)
					continue
				}
				pending = snap
				havePending = true
			case outCh <- pending:
				havePending = false
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			release()
			close(done)
		})
	}
}

func (s *Store) register(collection Collection) (chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	signal := make(chan struct{}, 1)
	id := s.nextSub
	s.nextSub++
	if s.signals[collection] == nil {
		s.signals[collection] = make(map[int]chan struct{})
	}
	s.signals[collection][id] = signal

	return signal, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.signals[collection], id)
	}
}

func (s *Store) notify(ctx context.Context, collection Collection) {
	s.wakeLocal(collection)
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, collection); err != nil {
		// Remote peers miss one wake-up, their next local write resyncs them.
		s.logger.ErrorContext(ctx, "could not publish change", "collection", collection, "error", err)
	}
}

func (s *Store) wakeLocal(collection Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, signal := range s.signals[collection] {
		select {
		case signal <- struct{}{}:
		default:
		}
	}
}
