// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

// Command convert migrates the jsondb development files into a bolt database
// so a locally prepared guest list can be promoted to the kvdb backend.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	bolt "go.etcd.io/bbolt"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db/jsondb"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db/kvdb"
)

func main() {
	var (
		inputPath  = flag.String("input-path", "testdata", "directory holding the jsondb files")
		outputPath = flag.String("output-path", "party.db", "bolt database to write")
	)
	flag.Parse()

	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{})
	logger := slog.New(jsonHandler)

	jdb := newJSONDB(logger, *inputPath)
	kdb := newKVDB(logger, *outputPath)
	logger.Info("start converting")
	into(kdb, jdb)
	logger.Info("finished converting")
}

type database interface {
	db.RSVPStore
	db.BookingStore
	Close() error
}

type dbWrapper struct {
	db.RSVPStore
	db.BookingStore

	closeFN func() error
}

func (d *dbWrapper) Close() error {
	return d.closeFN()
}

func into(dst, src database) {
	defer src.Close()
	defer dst.Close()
	ctx := context.Background()

	rsvps, err := src.ListRSVPs(ctx)
	if err != nil {
		panic(err)
	}
	for _, r := range rsvps {
		if err := dst.PutRSVP(ctx, r); err != nil {
			panic(err)
		}
	}
	bookings, err := src.ListBookings(ctx)
	if err != nil {
		panic(err)
	}
	for _, b := range bookings {
		if err := dst.PutBooking(ctx, b); err != nil {
			panic(err)
		}
	}
}

func newKVDB(logger *slog.Logger, path string) database {
	bdb, err := bolt.Open(path, 0600, nil)
	if err != nil {
		logger.Error("could not open database", "error", err)
		os.Exit(1)
	}

	rsvpStore, err := kvdb.NewRSVPStore(bdb)
	if err != nil {
		logger.Error("could not initialize rsvp bucket", "error", err)
		os.Exit(1)
	}

	bookingStore, err := kvdb.NewBookingStore(bdb)
	if err != nil {
		logger.Error("could not initialize booking bucket", "error", err)
		os.Exit(1)
	}

	return &dbWrapper{
		RSVPStore:    rsvpStore,
		BookingStore: bookingStore,
		closeFN:      bdb.Close,
	}
}

func newJSONDB(logger *slog.Logger, path string) database {
	logger.Info("jsondb storage folder", "path", path)
	rsvpStore, err := jsondb.NewRSVPStore(path + "/rsvps.json")
	if err != nil {
		logger.Error("could not initialize rsvp store", "path", path)
		os.Exit(1)
	}
	bookingStore, err := jsondb.NewBookingStore(path + "/bookings.json")
	if err != nil {
		logger.Error("could not initialize booking store", "path", path)
		os.Exit(1)
	}
	return &dbWrapper{
		RSVPStore:    rsvpStore,
		BookingStore: bookingStore,
		closeFN:      func() error { return nil },
	}
}
