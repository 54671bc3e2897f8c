// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

// Package api carries the JSON handlers of the party service. Mutations wait
// for the store write to be acknowledged before responding, clients render
// confirmed state only - the fresh state reaches every open browser through
// the live WebSocket stream rather than through these responses.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/catalog"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/db"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/export"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/identity"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/parser/form"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/party"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/realtime"
)

const sessionCookie = "party_session"

func NewPartyHandler(core *party.Core, registry *identity.Registry, live *realtime.Store) *PartyHandler {
	return &PartyHandler{
		core:     core,
		registry: registry,
		live:     live,
		logger:   slog.Default().WithGroup("http"),
	}
}

type PartyHandler struct {
	core     *party.Core
	registry *identity.Registry
	live     *realtime.Store
	logger   *slog.Logger
}

func (p *PartyHandler) ListStations(c *gin.Context) {
	stations := catalog.Stations()
	colors := make(map[string]string, len(stations))
	for _, s := range stations {
		colors[string(s.Line)] = catalog.LineColor(s.Line)
	}
	c.JSON(http.StatusOK, gin.H{"stations": stations, "lineColors": colors})
}

func (p *PartyHandler) ListSessions(c *gin.Context) {
	snap := p.core.Snapshot()
	sessions := catalog.Sessions()
	occupancy := make(map[string]int, len(sessions))
	for _, s := range sessions {
		occupancy[s.ID] = snap.SessionOccupancy(s.ID)
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "occupancy": occupancy})
}

func (p *PartyHandler) ListGroups(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"groups": catalog.FriendGroups()})
}

// Plan is the drag-and-drop board: who is still unassigned and who arrives
// when.
func (p *PartyHandler) Plan(c *gin.Context) {
	var span trace.Span
	_, span = tracer.Start(c.Request.Context(), "PartyHandler.Plan")
	defer span.End()

	snap := p.core.Snapshot()
	bySession := snap.GuestsBySession()
	sessions := catalog.Sessions()
	occupancy := make(map[string]int, len(sessions))
	for _, s := range sessions {
		occupancy[s.ID] = len(bySession[s.ID])
	}

	c.JSON(http.StatusOK, gin.H{
		"unassigned": emptyIfNil(snap.UnassignedGuests()),
		"bySession":  bySession,
		"occupancy":  occupancy,
	})
}

// Me resolves the visitor's own RSVP from the session cookie.
func (p *PartyHandler) Me(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "PartyHandler.Me")
	defer span.End()

	sessionID, ok := p.currentSession(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"code": "NO_RSVP", "message": "You have not RSVP'd yet"})
		return
	}

	rsvp, err := p.registry.Resolve(ctx, sessionID)
	if errors.Is(err, db.ErrIdentityNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"code": "NO_RSVP", "message": "You have not RSVP'd yet"})
		return
	}
	if err != nil {
		span.RecordError(err)
		p.logger.ErrorContext(ctx, "could not resolve session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "RESOLVE_FAILED", "message": "could not resolve session"})
		return
	}

	res := gin.H{"rsvp": rsvp}
	if booking, ok := p.core.Snapshot().BookingFor(rsvp.ID); ok {
		res["booking"] = booking
	}
	c.JSON(http.StatusOK, res)
}

type rsvpRequest struct {
	Name        string `json:"name" form:"name"`
	Email       string `json:"email" form:"email"`
	StationID   string `json:"stationId" form:"station_id"`
	FriendGroup string `json:"friendGroup" form:"friend_group"`
}

// CreateRSVP accepts the RSVP form, either as JSON or as a classic
// url-encoded form post. Required-field validation happens here, the core
// only re-checks non-emptiness.
func (p *PartyHandler) CreateRSVP(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "PartyHandler.CreateRSVP")
	defer span.End()

	var req rsvpRequest
	if strings.HasPrefix(c.ContentType(), "application/x-www-form-urlencoded") {
		if err := c.Request.ParseForm(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_FORM", "message": err.Error()})
			return
		}
		if err := form.Unmarshal(c.Request.PostForm, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_FORM", "message": err.Error()})
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_JSON", "message": err.Error()})
		return
	}

	if req.Name == "" || req.StationID == "" || req.FriendGroup == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "MISSING_FIELD", "message": "name, station and friend group are required"})
		return
	}
	if _, ok := catalog.StationByID(req.StationID); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"code": "UNKNOWN_STATION", "message": "unknown station: " + req.StationID})
		return
	}

	rsvp, err := p.core.AddRSVP(ctx, req.Name, req.Email, req.StationID, req.FriendGroup)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.ErrorContext(ctx, "could not create rsvp", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "WRITE_FAILED", "message": "could not save your RSVP, please try again"})
		return
	}

	sessionID := p.ensureSession(c)
	if err := p.registry.Remember(ctx, sessionID, rsvp.ID); err != nil {
		// The RSVP itself landed, the visitor just loses the shortcut back
		// to it on their next visit.
		span.RecordError(err)
		p.logger.WarnContext(ctx, "could not bind session to rsvp", "error", err, "rsvp", rsvp.ID.String())
	}

	c.JSON(http.StatusCreated, gin.H{"rsvp": rsvp})
}

// UpdateRSVP overwrites the complete record, there is no partial patch.
func (p *PartyHandler) UpdateRSVP(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "PartyHandler.UpdateRSVP")
	defer span.End()

	rsvpID, err := uuid.Parse(c.Param("rsvpid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_ID", "message": "invalid rsvp id"})
		return
	}

	existing, err := p.live.GetRSVPByID(ctx, rsvpID)
	if errors.Is(err, db.ErrRSVPNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"code": "RSVP_NOT_FOUND", "message": "rsvp not found"})
		return
	}
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "READ_FAILED", "message": "could not load rsvp"})
		return
	}

	var req rsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_JSON", "message": err.Error()})
		return
	}
	if req.Name == "" || req.StationID == "" || req.FriendGroup == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "MISSING_FIELD", "message": "name, station and friend group are required"})
		return
	}
	if _, ok := catalog.StationByID(req.StationID); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"code": "UNKNOWN_STATION", "message": "unknown station: " + req.StationID})
		return
	}

	updated := &model.RSVP{
		ID:          rsvpID,
		Name:        req.Name,
		Email:       req.Email,
		StationID:   req.StationID,
		FriendGroup: req.FriendGroup,
		CreatedAt:   existing.CreatedAt,
	}
	if err := p.core.UpdateRSVP(ctx, updated); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.ErrorContext(ctx, "could not update rsvp", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "WRITE_FAILED", "message": "could not save changes, please try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rsvp": updated})
}

func (p *PartyHandler) DeleteRSVP(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "PartyHandler.DeleteRSVP")
	defer span.End()

	rsvpID, err := uuid.Parse(c.Param("rsvpid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_ID", "message": "invalid rsvp id"})
		return
	}

	// Check before the delete whether this browser is removing its own RSVP.
	// Anyone may remove any guest from the board, only an own-delete may drop
	// the session binding.
	ownDelete := false
	sessionID, hasSession := p.currentSession(c)
	if hasSession {
		if own, err := p.registry.Resolve(ctx, sessionID); err == nil && own.ID == rsvpID {
			ownDelete = true
		}
	}

	if err := p.core.DeleteRSVP(ctx, rsvpID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.ErrorContext(ctx, "could not delete rsvp", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "WRITE_FAILED", "message": "could not delete RSVP, please try again"})
		return
	}

	if ownDelete {
		if err := p.registry.Forget(ctx, sessionID); err != nil {
			p.logger.WarnContext(ctx, "could not forget session binding", "error", err)
		}
	}

	c.Status(http.StatusNoContent)
}

type bookingRequest struct {
	SessionID string `json:"sessionId"`
}

// AssignBooking puts a guest into a session. The capacity check happens here,
// before the core is invoked - it is advisory only, two assignments racing
// into the last slot can both land (see Plan occupancy, soft limit).
func (p *PartyHandler) AssignBooking(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "PartyHandler.AssignBooking")
	defer span.End()

	rsvpID, err := uuid.Parse(c.Param("rsvpid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_ID", "message": "invalid rsvp id"})
		return
	}

	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_JSON", "message": err.Error()})
		return
	}

	session, ok := catalog.SessionByID(req.SessionID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"code": "UNKNOWN_SESSION", "message": "unknown session: " + req.SessionID})
		return
	}

	snap := p.core.Snapshot()
	if _, ok := snap.RSVPs[rsvpID]; !ok {
		// Tolerate a snapshot that has not caught up yet, the store is the
		// source of truth.
		if _, err := p.live.GetRSVPByID(ctx, rsvpID); err != nil {
			if errors.Is(err, db.ErrRSVPNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": "RSVP_NOT_FOUND", "message": "rsvp not found"})
				return
			}
			span.RecordError(err)
			p.logger.ErrorContext(ctx, "could not load rsvp", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": "READ_FAILED", "message": "could not load rsvp"})
			return
		}
	}

	alreadyHere := false
	if booking, ok := snap.BookingFor(rsvpID); ok && booking.SessionID == session.ID {
		alreadyHere = true
	}
	if !alreadyHere && snap.SessionOccupancy(session.ID) >= session.Capacity {
		c.JSON(http.StatusConflict, gin.H{"code": "SESSION_FULL", "message": "this time slot is full"})
		return
	}

	booking, err := p.core.AddBooking(ctx, rsvpID, session.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.ErrorContext(ctx, "could not assign booking", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "WRITE_FAILED", "message": "could not book the slot, please try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

func (p *PartyHandler) Unassign(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "PartyHandler.Unassign")
	defer span.End()

	rsvpID, err := uuid.Parse(c.Param("rsvpid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_ID", "message": "invalid rsvp id"})
		return
	}

	if err := p.core.UnassignRSVP(ctx, rsvpID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.ErrorContext(ctx, "could not unassign", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "WRITE_FAILED", "message": "could not unassign, please try again"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (p *PartyHandler) Calendar(c *gin.Context) {
	c.Header("Content-Type", "text/calendar; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="housewarming.ics"`)
	if err := export.WriteICS(c.Writer, export.Housewarming()); err != nil {
		p.logger.ErrorContext(c.Request.Context(), "could not write calendar", "error", err)
	}
}

func (p *PartyHandler) ExportCSV(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "PartyHandler.ExportCSV")
	defer span.End()

	rsvps, err := p.live.ListRSVPs(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "READ_FAILED", "message": "could not list rsvps"})
		return
	}

	filename := "housewarming-rsvps-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteCSV(c.Writer, rsvps); err != nil {
		p.logger.ErrorContext(ctx, "could not write csv", "error", err)
	}
}

func (p *PartyHandler) ExportEmails(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "PartyHandler.ExportEmails")
	defer span.End()

	rsvps, err := p.live.ListRSVPs(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "READ_FAILED", "message": "could not list rsvps"})
		return
	}

	filename := "housewarming-emails-" + time.Now().UTC().Format("2006-01-02") + ".txt"
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteEmails(c.Writer, rsvps); err != nil {
		p.logger.ErrorContext(ctx, "could not write emails", "error", err)
	}
}

// AdminOverview summarizes the guest list for the organizers.
func (p *PartyHandler) AdminOverview(c *gin.Context) {
	var span trace.Span
	_, span = tracer.Start(c.Request.Context(), "PartyHandler.AdminOverview")
	defer span.End()

	snap := p.core.Snapshot()
	bySession := snap.GuestsBySession()

	status := struct {
		Total      int `json:"total"`
		Assigned   int `json:"assigned"`
		Unassigned int `json:"unassigned"`
	}{Total: len(snap.RSVPs)}

	sessions := make(map[string]gin.H)
	for _, s := range catalog.Sessions() {
		guests := bySession[s.ID]
		status.Assigned += len(guests)
		sessions[s.ID] = gin.H{
			"time":     s.Time,
			"capacity": s.Capacity,
			"occupied": len(guests),
			"guests":   guests,
		}
	}
	status.Unassigned = status.Total - status.Assigned

	groups := make(map[string]int)
	for _, r := range snap.RSVPs {
		groups[r.FriendGroup]++
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"sessions": sessions,
		"groups":   groups,
	})
}

// currentSession reads the session cookie without creating one.
func (p *PartyHandler) currentSession(c *gin.Context) (uuid.UUID, bool) {
	raw, err := c.Cookie(sessionCookie)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// ensureSession returns the browser's session id, minting and setting the
// cookie on first contact.
func (p *PartyHandler) ensureSession(c *gin.Context) uuid.UUID {
	if id, ok := p.currentSession(c); ok {
		return id
	}
	id := uuid.New()
	maxAge := int((365 * 24 * time.Hour).Seconds())
	c.SetCookie(sessionCookie, id.String(), maxAge, "/", "", false, true)
	return id
}

func emptyIfNil(rsvps []*model.RSVP) []*model.RSVP {
	if rsvps == nil {
		return []*model.RSVP{}
	}
	return rsvps
}
