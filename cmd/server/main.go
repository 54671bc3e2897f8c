// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"net/http"
	"net/url"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db/jsondb"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db/kvdb"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/identity"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/party"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/realtime"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/server"
)

func main() {
	_ = godotenv.Load()

	var (
		serviceName = flag.String("service-name", "housewarming", "otel service name")
		addr        = flag.String("addr", "0.0.0.0:8080", "default server address")
		dbStr       = flag.String("db", "kvdb://testdata/party.db", "database connection string")
		redisAddr   = flag.String("redis", "", "redis address for cross-instance fan-out, by default disabled. Example value: localhost:6379")
		otlpAddr    = flag.String("otlp-grpc", "", "default otlp/gRPC address, by default disabled. Example value: localhost:4317")
		logLevelArg = flag.String("log-level", "INFO", "log level")
		staticDir   = flag.String("static-dir", "", "path to static directory")
		origins     = flag.String("allowed-origins", "", "comma separated CORS origins for the frontend")
		deadline    = flag.String("deadline", "", "rsvp deadline in format: 01 May 25 10:00 BST")
	)
	flag.Parse()

	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(*logLevelArg))
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(jsonHandler)
	if err != nil {
		logger.Error("unable to parse log level", "level-input", *logLevelArg, "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)
	logger.Info("start and listen", "address", *addr)
	logger.Info("otlp/gRPC", "address", *otlpAddr, "service", *serviceName)
	logger.Info("static-dir", "directory", *staticDir)

	if *otlpAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		grpcOptions := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithBlock()}
		conn, err := grpc.DialContext(ctx, *otlpAddr, grpcOptions...)
		if err != nil {
			logger.Error("failed to create gRPC connection to collector", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		// Set up a trace exporter
		otelExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
		if err != nil {
			logger.Error("failed to create trace exporter", "error", err)
			os.Exit(1)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(otelExporter))
		otel.SetTracerProvider(tp)
	}

	var dline time.Time
	if *deadline != "" {
		var err error
		dline, err = time.Parse(time.RFC822, *deadline)
		logger.Info("rsvp deadline set to", "date", *deadline)
		if err != nil {
			logger.Error("failed to parse deadline", "error", err)
			os.Exit(1)
		}
	}

	var (
		rsvpStore     db.RSVPStore
		bookingStore  db.BookingStore
		identityStore db.IdentityStore
	)

	u, err := url.Parse(*dbStr)
	if err != nil {
		logger.Error("unable to parse db connection string", "error", err)
		os.Exit(1)
	}

	switch u.Scheme {
	case "kvdb":
		path := u.Host + u.Path
		bdb, err := bolt.Open(path, 0600, nil)
		if err != nil {
			logger.Error("could not open database", "error", err)
			os.Exit(1)
		}
		defer bdb.Close()

		rsvpStore, err = kvdb.NewRSVPStore(bdb)
		if err != nil {
			logger.Error("could not initialize rsvp bucket", "error", err)
			os.Exit(1)
		}

		bookingStore, err = kvdb.NewBookingStore(bdb)
		if err != nil {
			logger.Error("could not initialize booking bucket", "error", err)
			os.Exit(1)
		}

		identityStore, err = kvdb.NewIdentityStore(bdb)
		if err != nil {
			logger.Error("could not initialize identity bucket", "error", err)
			os.Exit(1)
		}
	case "jsondb":
		dir := u.Host + u.Path
		rsvpStore, err = jsondb.NewRSVPStore(dir + "/rsvps.json")
		if err != nil {
			logger.Error("could not initialize rsvp store", "error", err)
			os.Exit(1)
		}
		bookingStore, err = jsondb.NewBookingStore(dir + "/bookings.json")
		if err != nil {
			logger.Error("could not initialize booking store", "error", err)
			os.Exit(1)
		}
		// Session continuity needs the kvdb identity bucket, jsondb is for
		// local development and the convert tool only.
		logger.Warn("jsondb backend has no identity store, session continuity disabled")
		identityStore = noopIdentityStore{}
	default:
		logger.Error("Unknown storage backend", "type", u.Scheme)
		os.Exit(1)
	}

	var broker realtime.Broker
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Error("could not reach redis", "address", *redisAddr, "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		broker = realtime.NewRedisBroker(rdb)
		logger.Info("redis fan-out enabled", "address", *redisAddr)
	}

	live := realtime.NewStore(rsvpStore, bookingStore, broker)
	core := party.NewCore(live)
	registry := identity.NewRegistry(identityStore, rsvpStore)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := core.Refresh(ctx); err != nil {
		logger.Error("could not load initial state", "error", err)
		os.Exit(1)
	}

	var allowedOrigins []string
	if *origins != "" {
		allowedOrigins = strings.Split(*origins, ",")
	}

	srv := &http.Server{
		Addr: *addr,
		Handler: server.NewServer(
			*serviceName,
			*staticDir,
			allowedOrigins,
			dline,
			core,
			registry,
			live,
		),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := core.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := live.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("error during listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown")
}
