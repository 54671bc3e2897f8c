// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package server

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/identity"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/party"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/realtime"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/server/api"
)

func NewServer(
	serviceName string,
	staticDir string,
	allowedOrigins []string,
	deadline time.Time,
	core *party.Core,
	registry *identity.Registry,
	live *realtime.Store,
) *Server {
	return &Server{
		logger:         slog.Default().WithGroup("http"),
		serviceName:    serviceName,
		staticDir:      staticDir,
		allowedOrigins: allowedOrigins,
		deadline:       deadline,
		core:           core,
		registry:       registry,
		live:           live,
	}
}

type Server struct {
	serviceName    string
	staticDir      string
	allowedOrigins []string
	deadline       time.Time
	logger         *slog.Logger
	core           *party.Core
	registry       *identity.Registry
	live           *realtime.Store
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := gin.New()
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	mux.Use(
		sloggin.NewWithConfig(s.logger,
			sloggin.Config{
				DefaultLevel:     slog.LevelInfo,
				ClientErrorLevel: slog.LevelWarn,
				ServerErrorLevel: slog.LevelError,
			},
		),
		gin.Recovery(), otelgin.Middleware(s.serviceName), slogAddTraceAttributes,
	)

	if len(s.allowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = s.allowedOrigins
		corsCfg.AllowCredentials = true
		corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsCfg.MaxAge = 12 * time.Hour
		mux.Use(cors.New(corsCfg))
	}

	username := "admin"
	if v, ok := os.LookupEnv("PARTY_ADMIN"); ok {
		username = v
	}

	password := "admin"
	if v, ok := os.LookupEnv("PARTY_PASSWORD"); ok {
		password = v
	}

	if s.staticDir != "" {
		mux.StaticFS("/static", http.Dir(s.staticDir))
	}

	if !s.deadline.IsZero() {
		mux.Use(readOnly(s.logger, s.deadline))
	}

	partyHandler := api.NewPartyHandler(s.core, s.registry, s.live)

	mux.GET("/api/stations", partyHandler.ListStations)
	mux.GET("/api/sessions", partyHandler.ListSessions)
	mux.GET("/api/groups", partyHandler.ListGroups)
	mux.GET("/api/plan", partyHandler.Plan)
	mux.GET("/api/me", partyHandler.Me)
	mux.GET("/api/live", partyHandler.Live)

	mux.POST("/api/rsvps", partyHandler.CreateRSVP)
	mux.PUT("/api/rsvps/:rsvpid", partyHandler.UpdateRSVP)
	mux.DELETE("/api/rsvps/:rsvpid", partyHandler.DeleteRSVP)
	mux.PUT("/api/rsvps/:rsvpid/booking", partyHandler.AssignBooking)
	mux.DELETE("/api/rsvps/:rsvpid/booking", partyHandler.Unassign)

	mux.GET("/calendar.ics", partyHandler.Calendar)

	adminArea := mux.Group("/admin")
	adminArea.Use(gin.BasicAuth(gin.Accounts{
		username: password,
	}))
	adminArea.GET("/overview", partyHandler.AdminOverview)
	adminArea.GET("/export/rsvps.csv", partyHandler.ExportCSV)
	adminArea.GET("/export/emails.txt", partyHandler.ExportEmails)

	mux.NoRoute(notFound)

	mux.ServeHTTP(w, r)
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"code": "PAGE_NOT_FOUND", "message": "Page not found"})
}

// readOnly freezes the guest list once the RSVP deadline has passed, reads
// keep working so the plan stays visible on the day.
func readOnly(logger *slog.Logger, deadline time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var span trace.Span
		ctx := c.Request.Context()
		ctx, span = tracer.Start(ctx, "Middleware.readOnly")
		defer span.End()

		if deadline.Before(time.Now()) && c.Request.Method != http.MethodGet {
			err := errors.New("request method not allowed")
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.ErrorContext(ctx, "readOnly-mode", "error", err)
			c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{
				"code":    "RSVP_DEADLINE_PASSED",
				"message": "The RSVP deadline has passed",
			})
			return
		}
		c.Next()
	}
}

func slogAddTraceAttributes(c *gin.Context) {
	sloggin.AddCustomAttributes(c,
		slog.String("trace-id", trace.SpanFromContext(c.Request.Context()).SpanContext().TraceID().String()),
	)
	sloggin.AddCustomAttributes(c,
		slog.String("span-id", trace.SpanFromContext(c.Request.Context()).SpanContext().SpanID().String()),
	)
	c.Next()
}
